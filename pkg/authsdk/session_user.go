package authsdk

import (
	"context"
	"net/http"
	"net/url"
)

func (s *Session) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := s.do(ctx, http.MethodGet, "/users", nil, &users, http.StatusOK); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Session) GetUser(ctx context.Context, id string) (*User, error) {
	var u User
	if err := s.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, &u, http.StatusOK); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Session) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	if err := s.do(ctx, http.MethodGet, "/users/email/"+url.PathEscape(email), nil, &u, http.StatusOK); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser registers a user. A taken email is a 400.
func (s *Session) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	var u User
	if err := s.do(ctx, http.MethodPost, "/users", req, &u, http.StatusCreated); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Session) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*User, error) {
	var u User
	if err := s.do(ctx, http.MethodPut, "/users/"+url.PathEscape(id), req, &u, http.StatusOK); err != nil {
		return nil, err
	}
	return &u, nil
}

// DeleteUser soft deletes a user and revokes their refresh tokens.
func (s *Session) DeleteUser(ctx context.Context, id string) error {
	return s.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil, http.StatusNoContent)
}
