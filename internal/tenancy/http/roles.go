package http

import (
	"net/http"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/service"
	"github.com/aussiebroadwan/tenancy/pkg/authsdk"
	"github.com/aussiebroadwan/tenancy/pkg/httpx"
)

const msgRoleNotFound = "Role not found"

type RolesHandler struct {
	RolesService *service.RolesService
}

// HandleCreate godoc
//
//	@Summary	Create a role
//	@Tags		Roles
//	@Accept		json
//	@Produce	json
//	@Param		request	body		authsdk.CreateRoleRequest	true	"Role"
//	@Success	201		{object}	authsdk.Role
//	@Failure	400		{string}	string	"Invalid input or name taken"
//	@Security	BearerAuth
//	@Router		/roles [post]
func (h *RolesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req authsdk.CreateRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteText(w, http.StatusBadRequest, msgBadRequest)
		return
	}

	role, err := h.RolesService.Create(r.Context(), req.Name, req.Description)
	if err != nil {
		writeServiceError(w, r, err, msgRoleNotFound)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toRole(role))
}

// HandleList godoc
//
//	@Summary	List roles
//	@Tags		Roles
//	@Produce	json
//	@Success	200	{array}	authsdk.Role
//	@Security	BearerAuth
//	@Router		/roles [get]
func (h *RolesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	roles, err := h.RolesService.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err, msgRoleNotFound)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, mapSlice(roles, toRole))
}

// HandleGet godoc
//
//	@Summary	Get a role
//	@Tags		Roles
//	@Produce	json
//	@Param		id	path		string	true	"Role ULID"
//	@Success	200	{object}	authsdk.Role
//	@Failure	404	{string}	string	"Role not found"
//	@Security	BearerAuth
//	@Router		/roles/{id} [get]
func (h *RolesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.WriteText(w, http.StatusNotFound, msgRoleNotFound)
		return
	}

	role, err := h.RolesService.GetRoleByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, msgRoleNotFound)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toRole(role))
}

// HandleUpdate godoc
//
//	@Summary	Update a role
//	@Tags		Roles
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string						true	"Role ULID"
//	@Param		request	body		authsdk.UpdateRoleRequest	true	"Fields to change"
//	@Success	200		{object}	authsdk.Role
//	@Failure	400		{string}	string	"Invalid input or name taken"
//	@Failure	404		{string}	string	"Role not found"
//	@Security	BearerAuth
//	@Router		/roles/{id} [put]
func (h *RolesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.WriteText(w, http.StatusNotFound, msgRoleNotFound)
		return
	}

	var req authsdk.UpdateRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteText(w, http.StatusBadRequest, msgBadRequest)
		return
	}

	role, err := h.RolesService.Update(r.Context(), id, domain.RolePatch{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, r, err, msgRoleNotFound)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toRole(role))
}

// HandleDelete godoc
//
//	@Summary	Delete a role
//	@Tags		Roles
//	@Param		id	path	string	true	"Role ULID"
//	@Success	204
//	@Failure	404	{string}	string	"Role not found"
//	@Security	BearerAuth
//	@Router		/roles/{id} [delete]
func (h *RolesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.WriteText(w, http.StatusNotFound, msgRoleNotFound)
		return
	}

	if err := h.RolesService.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err, msgRoleNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
