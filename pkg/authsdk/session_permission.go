package authsdk

import (
	"context"
	"net/http"
	"net/url"
)

// ListPermissions returns all permissions ordered by code.
func (s *Session) ListPermissions(ctx context.Context) ([]Permission, error) {
	var perms []Permission
	if err := s.do(ctx, http.MethodGet, "/permissions", nil, &perms, http.StatusOK); err != nil {
		return nil, err
	}
	return perms, nil
}

func (s *Session) CreatePermission(ctx context.Context, req CreatePermissionRequest) (*Permission, error) {
	var p Permission
	if err := s.do(ctx, http.MethodPost, "/permissions", req, &p, http.StatusCreated); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Session) GetPermission(ctx context.Context, id string) (*Permission, error) {
	var p Permission
	if err := s.do(ctx, http.MethodGet, "/permissions/"+url.PathEscape(id), nil, &p, http.StatusOK); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Session) UpdatePermission(ctx context.Context, id string, req UpdatePermissionRequest) (*Permission, error) {
	var p Permission
	if err := s.do(ctx, http.MethodPut, "/permissions/"+url.PathEscape(id), req, &p, http.StatusOK); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Session) DeletePermission(ctx context.Context, id string) error {
	return s.do(ctx, http.MethodDelete, "/permissions/"+url.PathEscape(id), nil, nil, http.StatusNoContent)
}
