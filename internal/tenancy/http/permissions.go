package http

import (
	"net/http"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/service"
	"github.com/aussiebroadwan/tenancy/pkg/authsdk"
	"github.com/aussiebroadwan/tenancy/pkg/httpx"
)

const msgPermissionNotFound = "Permission not found"

type PermissionsHandler struct {
	PermissionService *service.PermissionService
}

// HandleCreate godoc
//
//	@Summary	Create a permission
//	@Tags		Permissions
//	@Accept		json
//	@Produce	json
//	@Param		request	body		authsdk.CreatePermissionRequest	true	"Permission"
//	@Success	201		{object}	authsdk.Permission
//	@Failure	400		{string}	string	"Invalid input or code taken"
//	@Security	BearerAuth
//	@Router		/permissions [post]
func (h *PermissionsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req authsdk.CreatePermissionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteText(w, http.StatusBadRequest, msgBadRequest)
		return
	}

	p, err := h.PermissionService.Create(r.Context(), req.Code, req.Description)
	if err != nil {
		writeServiceError(w, r, err, msgPermissionNotFound)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toPermission(p))
}

// HandleList godoc
//
//	@Summary	List permissions
//	@Tags		Permissions
//	@Produce	json
//	@Success	200	{array}	authsdk.Permission
//	@Security	BearerAuth
//	@Router		/permissions [get]
func (h *PermissionsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	perms, err := h.PermissionService.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err, msgPermissionNotFound)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, mapSlice(perms, toPermission))
}

// HandleGet godoc
//
//	@Summary	Get a permission
//	@Tags		Permissions
//	@Produce	json
//	@Param		id	path		string	true	"Permission ULID"
//	@Success	200	{object}	authsdk.Permission
//	@Failure	404	{string}	string	"Permission not found"
//	@Security	BearerAuth
//	@Router		/permissions/{id} [get]
func (h *PermissionsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.WriteText(w, http.StatusNotFound, msgPermissionNotFound)
		return
	}

	p, err := h.PermissionService.GetPermissionByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, msgPermissionNotFound)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toPermission(p))
}

// HandleUpdate godoc
//
//	@Summary	Update a permission
//	@Tags		Permissions
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string							true	"Permission ULID"
//	@Param		request	body		authsdk.UpdatePermissionRequest	true	"Fields to change"
//	@Success	200		{object}	authsdk.Permission
//	@Failure	400		{string}	string	"Invalid input or code taken"
//	@Failure	404		{string}	string	"Permission not found"
//	@Security	BearerAuth
//	@Router		/permissions/{id} [put]
func (h *PermissionsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.WriteText(w, http.StatusNotFound, msgPermissionNotFound)
		return
	}

	var req authsdk.UpdatePermissionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteText(w, http.StatusBadRequest, msgBadRequest)
		return
	}

	p, err := h.PermissionService.Update(r.Context(), id, domain.PermissionPatch{
		Code:        req.Code,
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, r, err, msgPermissionNotFound)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toPermission(p))
}

// HandleDelete godoc
//
//	@Summary	Delete a permission
//	@Tags		Permissions
//	@Param		id	path	string	true	"Permission ULID"
//	@Success	204
//	@Failure	404	{string}	string	"Permission not found"
//	@Security	BearerAuth
//	@Router		/permissions/{id} [delete]
func (h *PermissionsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.WriteText(w, http.StatusNotFound, msgPermissionNotFound)
		return
	}

	if err := h.PermissionService.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err, msgPermissionNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
