package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/service"
	"github.com/aussiebroadwan/tenancy/pkg/httpx"
	"github.com/aussiebroadwan/tenancy/pkg/idx"
	"github.com/aussiebroadwan/tenancy/pkg/slogx"
)

// pathID returns the {id} path value if it is a well-formed ULID. Anything
// else cannot name a row, so callers answer 404 without a lookup.
func pathID(r *http.Request) (string, bool) {
	id, err := idx.Parse(r.PathValue("id"))
	return id.String(), err == nil
}

// writeServiceError maps CRUD service errors onto status codes and plain
// text bodies. notFound is the body for a missing entity.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		httpx.WriteText(w, http.StatusNotFound, notFound)
	case errors.Is(err, service.ErrInvalidInput):
		httpx.WriteText(w, http.StatusBadRequest, msgBadRequest)
	case errors.Is(err, service.ErrUnknownTenant):
		httpx.WriteText(w, http.StatusBadRequest, "Tenant does not exist")
	case errors.Is(err, service.ErrEmailTaken):
		httpx.WriteText(w, http.StatusBadRequest, "User with this email already exists")
	case errors.Is(err, service.ErrDomainTaken):
		httpx.WriteText(w, http.StatusBadRequest, "Tenant with this domain already exists")
	case errors.Is(err, service.ErrRoleNameTaken):
		httpx.WriteText(w, http.StatusBadRequest, "Role with this name already exists")
	case errors.Is(err, service.ErrPermissionCodeTaken):
		httpx.WriteText(w, http.StatusBadRequest, "Permission with this code already exists")
	default:
		slogx.FromContext(r.Context()).Error("request failed", "error", err)
		httpx.WriteText(w, http.StatusInternalServerError, msgInternal)
	}
}
