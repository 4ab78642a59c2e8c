package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
)

var (
	ErrNotFound = errors.New("store: not found")

	// ErrReferenceNotFound is returned when a write names a row that does
	// not exist, e.g. a user with an unknown tenant_id.
	ErrReferenceNotFound = errors.New("store: referenced row not found")
)

// ConflictError reports a unique constraint violation. Constraint uses the
// postgres default naming, <table>_<column>_key, on every driver.
type ConflictError struct {
	Constraint string
	Err        error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("store: conflict on %s", e.Constraint)
}

func (e *ConflictError) Unwrap() error { return e.Err }

// IsConflict reports whether err is a ConflictError on constraint.
func IsConflict(err error, constraint string) bool {
	var ce *ConflictError
	return errors.As(err, &ce) && ce.Constraint == constraint
}

// Constraint names surfaced through ConflictError.
const (
	ConstraintUserEmail        = "users_email_key"
	ConstraintTenantDomain     = "tenants_domain_key"
	ConstraintRoleName         = "roles_name_key"
	ConstraintPermissionCode   = "permissions_code_key"
	ConstraintRefreshTokenHash = "refresh_tokens_token_hash_key"
)

// Repos are the repositories available both on the root store and inside a
// transaction.
type Repos interface {
	Users() Users
	Tenants() Tenants
	Roles() Roles
	Permissions() Permissions
	RefreshTokens() RefreshTokens
}

// Store is the root data access interface, implemented by the sqlite and
// postgres drivers.
type Store interface {
	Repos

	// WithTx runs fn in a transaction. fn's error rolls back, nil commits.
	// Tx has no WithTx of its own, so transactions cannot nest.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	ApplyMigrations() error
	Ping(ctx context.Context) error
	Close() error
}

// Tx is the transaction-scoped view of the store.
type Tx interface {
	Repos
}

type Users interface {
	CreateUser(ctx context.Context, u domain.User) error
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)

	// UpdateUser writes the mutable profile fields of u.
	UpdateUser(ctx context.Context, u domain.User) error

	// TouchLastLogin sets last_login_at.
	TouchLastLogin(ctx context.Context, id string, at time.Time) error

	// DeleteUser soft deletes: the row stays for its refresh tokens but is
	// invisible to every other method and frees the email.
	DeleteUser(ctx context.Context, id string, at time.Time) error
}

type Tenants interface {
	CreateTenant(ctx context.Context, t domain.Tenant) error
	GetTenantByID(ctx context.Context, id string) (domain.Tenant, error)

	// GetTenantByName returns the oldest tenant with that name; names are
	// not unique.
	GetTenantByName(ctx context.Context, name string) (domain.Tenant, error)
	GetTenantByDomain(ctx context.Context, dom string) (domain.Tenant, error)
	ListTenants(ctx context.Context) ([]domain.Tenant, error)
	UpdateTenant(ctx context.Context, t domain.Tenant) error

	// Deletes detach member users (tenant_id becomes NULL). The by-name
	// variant removes every tenant sharing the name.
	DeleteTenant(ctx context.Context, id string) error
	DeleteTenantsByName(ctx context.Context, name string) error
	DeleteTenantByDomain(ctx context.Context, dom string) error
}

type Roles interface {
	CreateRole(ctx context.Context, r domain.Role) error
	GetRoleByID(ctx context.Context, id string) (domain.Role, error)
	ListRoles(ctx context.Context) ([]domain.Role, error)
	UpdateRole(ctx context.Context, r domain.Role) error
	DeleteRole(ctx context.Context, id string) error
}

type Permissions interface {
	CreatePermission(ctx context.Context, p domain.Permission) error
	GetPermissionByID(ctx context.Context, id string) (domain.Permission, error)
	ListPermissions(ctx context.Context) ([]domain.Permission, error)
	UpdatePermission(ctx context.Context, p domain.Permission) error
	DeletePermission(ctx context.Context, id string) error
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new, unrevoked refresh token record.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByHash returns the record for a token fingerprint.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// RevokeRefreshToken flips revoked to true for the one matching row.
	// Unknown or already revoked hashes are not an error.
	RevokeRefreshToken(ctx context.Context, hash string, at time.Time) error

	// RevokeUserRefreshTokens revokes every live token of a user and
	// reports how many flipped.
	RevokeUserRefreshTokens(ctx context.Context, userID string, at time.Time) (int64, error)

	// CountRefreshTokens tallies the rows by state as of now.
	CountRefreshTokens(ctx context.Context, now time.Time) (domain.RefreshTokenCounts, error)
}
