package authsdk

import (
	"context"
	"net/http"
	"net/url"
)

func (s *Session) ListTenants(ctx context.Context) ([]Tenant, error) {
	var tenants []Tenant
	if err := s.do(ctx, http.MethodGet, "/tenants", nil, &tenants, http.StatusOK); err != nil {
		return nil, err
	}
	return tenants, nil
}

func (s *Session) GetTenant(ctx context.Context, id string) (*Tenant, error) {
	var t Tenant
	if err := s.do(ctx, http.MethodGet, "/tenants/"+url.PathEscape(id), nil, &t, http.StatusOK); err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTenant registers a tenant. A taken domain is a 400.
func (s *Session) CreateTenant(ctx context.Context, req CreateTenantRequest) (*Tenant, error) {
	var t Tenant
	if err := s.do(ctx, http.MethodPost, "/tenants", req, &t, http.StatusCreated); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTenantByName returns the oldest tenant carrying name.
func (s *Session) GetTenantByName(ctx context.Context, name string) (*Tenant, error) {
	var t Tenant
	if err := s.do(ctx, http.MethodGet, "/tenants/name/"+url.PathEscape(name), nil, &t, http.StatusOK); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Session) GetTenantByDomain(ctx context.Context, domain string) (*Tenant, error) {
	var t Tenant
	if err := s.do(ctx, http.MethodGet, "/tenants/domain/"+url.PathEscape(domain), nil, &t, http.StatusOK); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Session) UpdateTenant(ctx context.Context, id string, req UpdateTenantRequest) (*Tenant, error) {
	var t Tenant
	if err := s.do(ctx, http.MethodPut, "/tenants/"+url.PathEscape(id), req, &t, http.StatusOK); err != nil {
		return nil, err
	}
	return &t, nil
}

// DeleteTenant removes a tenant. Its users are kept without a tenant.
func (s *Session) DeleteTenant(ctx context.Context, id string) error {
	return s.do(ctx, http.MethodDelete, "/tenants/"+url.PathEscape(id), nil, nil, http.StatusNoContent)
}

// DeleteTenantsByName removes every tenant carrying name.
func (s *Session) DeleteTenantsByName(ctx context.Context, name string) error {
	return s.do(ctx, http.MethodDelete, "/tenants/name/"+url.PathEscape(name), nil, nil, http.StatusNoContent)
}

func (s *Session) DeleteTenantByDomain(ctx context.Context, domain string) error {
	return s.do(ctx, http.MethodDelete, "/tenants/domain/"+url.PathEscape(domain), nil, nil, http.StatusNoContent)
}
