package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password so callers can't tell them apart.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	// ErrUnauthorized is the umbrella for every refresh token rejection.
	ErrUnauthorized = errors.New("unauthorized")

	ErrRefreshNotFound = fmt.Errorf("%w: refresh token not found", ErrUnauthorized)
	ErrRefreshRevoked  = fmt.Errorf("%w: refresh token revoked", ErrUnauthorized)
	ErrRefreshExpired  = fmt.Errorf("%w: refresh token expired", ErrUnauthorized)

	ErrTokenMalformed        = errors.New("token_malformed")
	ErrTokenExpired          = errors.New("token_expired")
	ErrTokenSignatureInvalid = errors.New("token_signature_invalid")
)

// CRUD errors.
var (
	ErrNotFound      = errors.New("not_found")
	ErrInvalidInput  = errors.New("invalid_input")
	ErrUnknownTenant = errors.New("unknown_tenant")

	ErrEmailTaken          = errors.New("email_taken")
	ErrDomainTaken         = errors.New("domain_taken")
	ErrRoleNameTaken       = errors.New("role_name_taken")
	ErrPermissionCodeTaken = errors.New("permission_code_taken")
)
