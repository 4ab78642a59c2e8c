package authsdk

import (
	"context"
	"net/http"
	"net/url"
)

// ListRoles returns all roles ordered by name.
func (s *Session) ListRoles(ctx context.Context) ([]Role, error) {
	var roles []Role
	if err := s.do(ctx, http.MethodGet, "/roles", nil, &roles, http.StatusOK); err != nil {
		return nil, err
	}
	return roles, nil
}

func (s *Session) GetRole(ctx context.Context, id string) (*Role, error) {
	var r Role
	if err := s.do(ctx, http.MethodGet, "/roles/"+url.PathEscape(id), nil, &r, http.StatusOK); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Session) CreateRole(ctx context.Context, req CreateRoleRequest) (*Role, error) {
	var r Role
	if err := s.do(ctx, http.MethodPost, "/roles", req, &r, http.StatusCreated); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Session) UpdateRole(ctx context.Context, id string, req UpdateRoleRequest) (*Role, error) {
	var r Role
	if err := s.do(ctx, http.MethodPut, "/roles/"+url.PathEscape(id), req, &r, http.StatusOK); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Session) DeleteRole(ctx context.Context, id string) error {
	return s.do(ctx, http.MethodDelete, "/roles/"+url.PathEscape(id), nil, nil, http.StatusNoContent)
}
