package http

import (
	"net/http"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/service"
	"github.com/aussiebroadwan/tenancy/pkg/authsdk"
	"github.com/aussiebroadwan/tenancy/pkg/httpx"
)

const msgTenantNotFound = "Tenant not found"

type TenantsHandler struct {
	TenantService *service.TenantService
}

// HandleCreate godoc
//
//	@Summary		Create a tenant
//	@Description	Domain is lowercased and must be unique when set. Timezone defaults to UTC.
//	@Tags			Tenants
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.CreateTenantRequest	true	"Tenant"
//	@Success		201		{object}	authsdk.Tenant
//	@Failure		400		{string}	string	"Invalid input or domain taken"
//	@Failure		401		{string}	string	"Missing or invalid access token"
//	@Security		BearerAuth
//	@Router			/tenants [post]
func (h *TenantsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req authsdk.CreateTenantRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteText(w, http.StatusBadRequest, msgBadRequest)
		return
	}

	t, err := h.TenantService.Create(r.Context(), service.NewTenant{
		Name:         req.Name,
		Domain:       req.Domain,
		Address:      req.Address,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		LogoURL:      req.LogoURL,
		Timezone:     req.Timezone,
	})
	if err != nil {
		writeServiceError(w, r, err, msgTenantNotFound)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toTenant(t))
}

// HandleList godoc
//
//	@Summary	List tenants
//	@Tags		Tenants
//	@Produce	json
//	@Success	200	{array}		authsdk.Tenant
//	@Failure	401	{string}	string	"Missing or invalid access token"
//	@Security	BearerAuth
//	@Router		/tenants [get]
func (h *TenantsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.TenantService.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err, msgTenantNotFound)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, mapSlice(tenants, toTenant))
}

// HandleGet godoc
//
//	@Summary	Get a tenant by id
//	@Tags		Tenants
//	@Produce	json
//	@Param		id	path		string	true	"Tenant ULID"
//	@Success	200	{object}	authsdk.Tenant
//	@Failure	404	{string}	string	"Tenant not found"
//	@Security	BearerAuth
//	@Router		/tenants/{id} [get]
func (h *TenantsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.WriteText(w, http.StatusNotFound, msgTenantNotFound)
		return
	}

	t, err := h.TenantService.GetTenantByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, msgTenantNotFound)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toTenant(t))
}

// HandleGetByName godoc
//
//	@Summary		Get a tenant by name
//	@Description	Names are not unique; the oldest match is returned.
//	@Tags			Tenants
//	@Produce		json
//	@Param			name	path		string	true	"Tenant name"
//	@Success		200		{object}	authsdk.Tenant
//	@Failure		404		{string}	string	"Tenant not found"
//	@Security		BearerAuth
//	@Router			/tenants/name/{name} [get]
func (h *TenantsHandler) HandleGetByName(w http.ResponseWriter, r *http.Request) {
	t, err := h.TenantService.GetTenantByName(r.Context(), r.PathValue("name"))
	if err != nil {
		writeServiceError(w, r, err, msgTenantNotFound)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toTenant(t))
}

// HandleGetByDomain godoc
//
//	@Summary	Get a tenant by domain
//	@Tags		Tenants
//	@Produce	json
//	@Param		domain	path		string	true	"Tenant domain"
//	@Success	200		{object}	authsdk.Tenant
//	@Failure	404		{string}	string	"Tenant not found"
//	@Security	BearerAuth
//	@Router		/tenants/domain/{domain} [get]
func (h *TenantsHandler) HandleGetByDomain(w http.ResponseWriter, r *http.Request) {
	t, err := h.TenantService.GetTenantByDomain(r.Context(), r.PathValue("domain"))
	if err != nil {
		writeServiceError(w, r, err, msgTenantNotFound)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toTenant(t))
}

// HandleUpdate godoc
//
//	@Summary		Update a tenant
//	@Description	Omitted fields are left as they are. An empty domain detaches the tenant from its domain.
//	@Tags			Tenants
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Tenant ULID"
//	@Param			request	body		authsdk.UpdateTenantRequest	true	"Fields to change"
//	@Success		200		{object}	authsdk.Tenant
//	@Failure		400		{string}	string	"Invalid input or domain taken"
//	@Failure		404		{string}	string	"Tenant not found"
//	@Security		BearerAuth
//	@Router			/tenants/{id} [put]
func (h *TenantsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.WriteText(w, http.StatusNotFound, msgTenantNotFound)
		return
	}

	var req authsdk.UpdateTenantRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteText(w, http.StatusBadRequest, msgBadRequest)
		return
	}

	t, err := h.TenantService.Update(r.Context(), id, domain.TenantPatch{
		Name:         req.Name,
		Domain:       req.Domain,
		Address:      req.Address,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		LogoURL:      req.LogoURL,
		Timezone:     req.Timezone,
	})
	if err != nil {
		writeServiceError(w, r, err, msgTenantNotFound)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toTenant(t))
}

// HandleDelete godoc
//
//	@Summary		Delete a tenant
//	@Description	Members stay, detached from any tenant.
//	@Tags			Tenants
//	@Param			id	path	string	true	"Tenant ULID"
//	@Success		204
//	@Failure		404	{string}	string	"Tenant not found"
//	@Security		BearerAuth
//	@Router			/tenants/{id} [delete]
func (h *TenantsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.WriteText(w, http.StatusNotFound, msgTenantNotFound)
		return
	}

	if err := h.TenantService.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err, msgTenantNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDeleteByName godoc
//
//	@Summary	Delete every tenant with a name
//	@Tags		Tenants
//	@Param		name	path	string	true	"Tenant name"
//	@Success	204
//	@Failure	404	{string}	string	"Tenant not found"
//	@Security	BearerAuth
//	@Router		/tenants/name/{name} [delete]
func (h *TenantsHandler) HandleDeleteByName(w http.ResponseWriter, r *http.Request) {
	if err := h.TenantService.DeleteByName(r.Context(), r.PathValue("name")); err != nil {
		writeServiceError(w, r, err, msgTenantNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDeleteByDomain godoc
//
//	@Summary	Delete a tenant by domain
//	@Tags		Tenants
//	@Param		domain	path	string	true	"Tenant domain"
//	@Success	204
//	@Failure	404	{string}	string	"Tenant not found"
//	@Security	BearerAuth
//	@Router		/tenants/domain/{domain} [delete]
func (h *TenantsHandler) HandleDeleteByDomain(w http.ResponseWriter, r *http.Request) {
	if err := h.TenantService.DeleteByDomain(r.Context(), r.PathValue("domain")); err != nil {
		writeServiceError(w, r, err, msgTenantNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
