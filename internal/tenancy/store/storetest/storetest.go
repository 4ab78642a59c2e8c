// Package storetest is a conformance suite run against every store driver.
package storetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
	"github.com/aussiebroadwan/tenancy/pkg/idx"
	"github.com/stretchr/testify/require"
)

// Run exercises st, which must be freshly migrated and empty.
func Run(t *testing.T, st store.Store) {
	t.Run("Users", func(t *testing.T) { testUsers(t, st) })
	t.Run("Tenants", func(t *testing.T) { testTenants(t, st) })
	t.Run("Roles", func(t *testing.T) { testRoles(t, st) })
	t.Run("Permissions", func(t *testing.T) { testPermissions(t, st) })
	t.Run("RefreshTokens", func(t *testing.T) { testRefreshTokens(t, st) })
	t.Run("WithTx", func(t *testing.T) { testWithTx(t, st) })
}

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// NewUser returns a valid user with a unique id and email.
func NewUser(email string) domain.User {
	return domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: "$2a$04$placeholderplaceholderplaceholderplaceholderplacehol",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		CreatedAt:    base,
		IsActive:     true,
	}
}

func testUsers(t *testing.T, st store.Store) {
	ctx := context.Background()

	u := NewUser("ada@example.com")
	u.ContactPhone = "+61 400 000 000"
	dob := time.Date(1815, 12, 10, 0, 0, 0, 0, time.UTC)
	u.DateOfBirth = &dob
	u.Gender = "female"
	require.NoError(t, st.Users().CreateUser(ctx, u))

	got, err := st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, got.Email)
	require.Equal(t, u.PasswordHash, got.PasswordHash)
	require.Equal(t, "+61 400 000 000", got.ContactPhone)
	require.Empty(t, got.Address)
	require.Empty(t, got.ProfilePictureURL)
	require.Equal(t, "female", got.Gender)
	require.NotNil(t, got.DateOfBirth)
	require.True(t, dob.Equal(*got.DateOfBirth), "date_of_birth %v", got.DateOfBirth)
	require.Empty(t, got.TenantID)
	require.Nil(t, got.LastLoginAt)
	require.True(t, got.IsActive)
	require.True(t, base.Equal(got.CreatedAt), "created_at %v", got.CreatedAt)

	byEmail, err := st.Users().GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, byEmail.ID)

	_, err = st.Users().GetUserByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)

	dup := NewUser("ada@example.com")
	err = st.Users().CreateUser(ctx, dup)
	require.True(t, store.IsConflict(err, store.ConstraintUserEmail), "got %v", err)

	orphan := NewUser("orphan@example.com")
	orphan.TenantID = idx.New().String()
	require.ErrorIs(t, st.Users().CreateUser(ctx, orphan), store.ErrReferenceNotFound)

	at := base.Add(time.Hour)
	require.NoError(t, st.Users().TouchLastLogin(ctx, u.ID, at))
	got, err = st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLoginAt)
	require.True(t, at.Equal(*got.LastLoginAt))

	got.Address = "1 Loop Rd"
	got.FirstName = "Augusta"
	got.ProfilePictureURL = "https://cdn.example/ada.png"
	got.DateOfBirth = nil
	require.NoError(t, st.Users().UpdateUser(ctx, got))
	got, err = st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "Augusta", got.FirstName)
	require.Equal(t, "1 Loop Rd", got.Address)
	require.Equal(t, "https://cdn.example/ada.png", got.ProfilePictureURL)
	require.Nil(t, got.DateOfBirth)

	other := NewUser("other@example.com")
	require.NoError(t, st.Users().CreateUser(ctx, other))
	other.Email = "ada@example.com"
	require.True(t, store.IsConflict(st.Users().UpdateUser(ctx, other), store.ConstraintUserEmail))

	all, err := st.Users().ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	require.NoError(t, st.Users().DeleteUser(ctx, other.ID, at))
	require.ErrorIs(t, st.Users().DeleteUser(ctx, other.ID, at), store.ErrNotFound)
	require.ErrorIs(t, st.Users().UpdateUser(ctx, other), store.ErrNotFound)
	require.ErrorIs(t, st.Users().TouchLastLogin(ctx, other.ID, at), store.ErrNotFound)
	_, err = st.Users().GetUserByID(ctx, other.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, st.Users().DeleteUser(ctx, u.ID, at))
	_, err = st.Users().GetUserByEmail(ctx, "ada@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)

	all, err = st.Users().ListUsers(ctx)
	require.NoError(t, err)
	require.Empty(t, all)

	// A deleted user's email is free again.
	again := NewUser("ada@example.com")
	require.NoError(t, st.Users().CreateUser(ctx, again))
	require.NoError(t, st.Users().DeleteUser(ctx, again.ID, at))
}

func testTenants(t *testing.T, st store.Store) {
	ctx := context.Background()

	acme := domain.Tenant{
		ID:           idx.New().String(),
		Name:         "Acme",
		Domain:       "acme.example",
		Address:      "1 Road",
		ContactEmail: "ops@acme.example",
		Timezone:     "Australia/Sydney",
		CreatedAt:    base,
		IsActive:     true,
	}
	require.NoError(t, st.Tenants().CreateTenant(ctx, acme))

	got, err := st.Tenants().GetTenantByID(ctx, acme.ID)
	require.NoError(t, err)
	require.Equal(t, "acme.example", got.Domain)
	require.Empty(t, got.LogoURL)

	dup := acme
	dup.ID = idx.New().String()
	require.True(t, store.IsConflict(st.Tenants().CreateTenant(ctx, dup), store.ConstraintTenantDomain))

	// Tenants without a domain never collide with each other.
	for range 2 {
		nodomain := acme
		nodomain.ID = idx.New().String()
		nodomain.Domain = ""
		nodomain.CreatedAt = base.Add(time.Minute)
		require.NoError(t, st.Tenants().CreateTenant(ctx, nodomain))
	}

	all, err := st.Tenants().ListTenants(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	_, err = st.Tenants().GetTenantByID(ctx, idx.New().String())
	require.ErrorIs(t, err, store.ErrNotFound)

	byName, err := st.Tenants().GetTenantByName(ctx, "Acme")
	require.NoError(t, err)
	require.Equal(t, acme.ID, byName.ID)

	byDomain, err := st.Tenants().GetTenantByDomain(ctx, "acme.example")
	require.NoError(t, err)
	require.Equal(t, acme.ID, byDomain.ID)

	_, err = st.Tenants().GetTenantByDomain(ctx, "nowhere.example")
	require.ErrorIs(t, err, store.ErrNotFound)

	member := NewUser("member@acme.example")
	member.TenantID = acme.ID
	require.NoError(t, st.Users().CreateUser(ctx, member))
	got2, err := st.Users().GetUserByID(ctx, member.ID)
	require.NoError(t, err)
	require.Equal(t, acme.ID, got2.TenantID)

	got.Name = "Acme Holdings"
	got.Timezone = "UTC"
	got.LogoURL = "https://cdn.example/acme.png"
	require.NoError(t, st.Tenants().UpdateTenant(ctx, got))
	got, err = st.Tenants().GetTenantByID(ctx, acme.ID)
	require.NoError(t, err)
	require.Equal(t, "Acme Holdings", got.Name)
	require.Equal(t, "https://cdn.example/acme.png", got.LogoURL)

	var clash domain.Tenant
	for _, tn := range all {
		if tn.ID != acme.ID {
			clash = tn
			break
		}
	}
	clash.Domain = "acme.example"
	require.True(t, store.IsConflict(st.Tenants().UpdateTenant(ctx, clash), store.ConstraintTenantDomain))

	// Deleting the tenant detaches its members.
	require.NoError(t, st.Tenants().DeleteTenantByDomain(ctx, "acme.example"))
	require.ErrorIs(t, st.Tenants().DeleteTenantByDomain(ctx, "acme.example"), store.ErrNotFound)
	require.ErrorIs(t, st.Tenants().UpdateTenant(ctx, got), store.ErrNotFound)
	got2, err = st.Users().GetUserByID(ctx, member.ID)
	require.NoError(t, err)
	require.Empty(t, got2.TenantID)

	// The two domainless tenants share the name "Acme".
	require.NoError(t, st.Tenants().DeleteTenantsByName(ctx, "Acme"))
	require.ErrorIs(t, st.Tenants().DeleteTenantsByName(ctx, "Acme"), store.ErrNotFound)
	_, err = st.Tenants().GetTenantByName(ctx, "Acme")
	require.ErrorIs(t, err, store.ErrNotFound)

	solo := acme
	solo.ID = idx.New().String()
	solo.Domain = ""
	require.NoError(t, st.Tenants().CreateTenant(ctx, solo))
	require.NoError(t, st.Tenants().DeleteTenant(ctx, solo.ID))
	require.ErrorIs(t, st.Tenants().DeleteTenant(ctx, solo.ID), store.ErrNotFound)

	all, err = st.Tenants().ListTenants(ctx)
	require.NoError(t, err)
	require.Empty(t, all)

	require.NoError(t, st.Users().DeleteUser(ctx, member.ID, base))
}

func testRoles(t *testing.T, st store.Store) {
	ctx := context.Background()

	admin := domain.Role{ID: idx.New().String(), Name: "admin", Description: "everything", CreatedAt: base}
	viewer := domain.Role{ID: idx.New().String(), Name: "viewer", CreatedAt: base}
	require.NoError(t, st.Roles().CreateRole(ctx, admin))
	require.NoError(t, st.Roles().CreateRole(ctx, viewer))

	dup := domain.Role{ID: idx.New().String(), Name: "admin", CreatedAt: base}
	require.True(t, store.IsConflict(st.Roles().CreateRole(ctx, dup), store.ConstraintRoleName))

	viewer.Name = "admin"
	require.True(t, store.IsConflict(st.Roles().UpdateRole(ctx, viewer), store.ConstraintRoleName))

	viewer.Name = "reader"
	viewer.Description = "read only"
	require.NoError(t, st.Roles().UpdateRole(ctx, viewer))

	got, err := st.Roles().GetRoleByID(ctx, viewer.ID)
	require.NoError(t, err)
	require.Equal(t, "reader", got.Name)
	require.Equal(t, "read only", got.Description)

	roles, err := st.Roles().ListRoles(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 2)
	require.Equal(t, "admin", roles[0].Name)

	require.NoError(t, st.Roles().DeleteRole(ctx, viewer.ID))
	require.ErrorIs(t, st.Roles().DeleteRole(ctx, viewer.ID), store.ErrNotFound)
	_, err = st.Roles().GetRoleByID(ctx, viewer.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testPermissions(t *testing.T, st store.Store) {
	ctx := context.Background()

	p := domain.Permission{ID: idx.New().String(), Code: "users:write", CreatedAt: base}
	require.NoError(t, st.Permissions().CreatePermission(ctx, p))

	dup := domain.Permission{ID: idx.New().String(), Code: "users:write", CreatedAt: base}
	require.True(t, store.IsConflict(st.Permissions().CreatePermission(ctx, dup), store.ConstraintPermissionCode))

	perms, err := st.Permissions().ListPermissions(ctx)
	require.NoError(t, err)
	require.Len(t, perms, 1)
	require.Empty(t, perms[0].Description)

	other := domain.Permission{ID: idx.New().String(), Code: "users:read", CreatedAt: base}
	require.NoError(t, st.Permissions().CreatePermission(ctx, other))

	other.Code = "users:write"
	require.True(t, store.IsConflict(st.Permissions().UpdatePermission(ctx, other), store.ConstraintPermissionCode))

	other.Code = "users:list"
	other.Description = "list users"
	require.NoError(t, st.Permissions().UpdatePermission(ctx, other))

	got, err := st.Permissions().GetPermissionByID(ctx, other.ID)
	require.NoError(t, err)
	require.Equal(t, "users:list", got.Code)
	require.Equal(t, "list users", got.Description)

	require.NoError(t, st.Permissions().DeletePermission(ctx, other.ID))
	require.ErrorIs(t, st.Permissions().DeletePermission(ctx, other.ID), store.ErrNotFound)
	require.ErrorIs(t, st.Permissions().UpdatePermission(ctx, other), store.ErrNotFound)
	_, err = st.Permissions().GetPermissionByID(ctx, other.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testRefreshTokens(t *testing.T, st store.Store) {
	ctx := context.Background()

	u := NewUser("tokens@example.com")
	require.NoError(t, st.Users().CreateUser(ctx, u))

	rt := domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    u.ID,
		TokenHash: "hash-1",
		IssuedAt:  base,
		ExpiresAt: base.Add(30 * 24 * time.Hour),
	}
	require.NoError(t, st.RefreshTokens().CreateRefreshToken(ctx, rt))

	got, err := st.RefreshTokens().GetRefreshTokenByHash(ctx, "hash-1")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.UserID)
	require.False(t, got.Revoked)
	require.Nil(t, got.RevokedAt)
	require.True(t, rt.ExpiresAt.Equal(got.ExpiresAt))

	dup := rt
	dup.ID = idx.New().String()
	require.True(t, store.IsConflict(st.RefreshTokens().CreateRefreshToken(ctx, dup), store.ConstraintRefreshTokenHash))

	unknownUser := rt
	unknownUser.ID = idx.New().String()
	unknownUser.TokenHash = "hash-orphan"
	unknownUser.UserID = idx.New().String()
	require.ErrorIs(t, st.RefreshTokens().CreateRefreshToken(ctx, unknownUser), store.ErrReferenceNotFound)

	_, err = st.RefreshTokens().GetRefreshTokenByHash(ctx, "nope")
	require.ErrorIs(t, err, store.ErrNotFound)

	first := base.Add(time.Minute)
	require.NoError(t, st.RefreshTokens().RevokeRefreshToken(ctx, "hash-1", first))
	require.NoError(t, st.RefreshTokens().RevokeRefreshToken(ctx, "hash-1", first.Add(time.Hour)))
	require.NoError(t, st.RefreshTokens().RevokeRefreshToken(ctx, "never-issued", first))

	got, err = st.RefreshTokens().GetRefreshTokenByHash(ctx, "hash-1")
	require.NoError(t, err)
	require.True(t, got.Revoked)
	require.NotNil(t, got.RevokedAt)
	require.True(t, first.Equal(*got.RevokedAt))

	// Revoking one token leaves the user's others alone.
	sibling := rt
	sibling.ID = idx.New().String()
	sibling.TokenHash = "hash-2"
	require.NoError(t, st.RefreshTokens().CreateRefreshToken(ctx, sibling))
	got, err = st.RefreshTokens().GetRefreshTokenByHash(ctx, "hash-2")
	require.NoError(t, err)
	require.False(t, got.Revoked)

	// Concurrent revocations of the same row all succeed.
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 8 {
		wg.Go(func() {
			errs <- st.RefreshTokens().RevokeRefreshToken(ctx, "hash-2", first)
		})
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stale := rt
	stale.ID = idx.New().String()
	stale.TokenHash = "hash-stale"
	stale.ExpiresAt = base.Add(-time.Hour)
	require.NoError(t, st.RefreshTokens().CreateRefreshToken(ctx, stale))

	fresh := rt
	fresh.ID = idx.New().String()
	fresh.TokenHash = "hash-3"
	require.NoError(t, st.RefreshTokens().CreateRefreshToken(ctx, fresh))

	counts, err := st.RefreshTokens().CountRefreshTokens(ctx, base)
	require.NoError(t, err)
	require.Equal(t, domain.RefreshTokenCounts{Live: 1, Revoked: 2, Expired: 1}, counts)

	// Deleting the user revokes what is still live and keeps every row.
	require.NoError(t, st.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().DeleteUser(ctx, u.ID, base); err != nil {
			return err
		}
		n, err := tx.RefreshTokens().RevokeUserRefreshTokens(ctx, u.ID, base)
		require.EqualValues(t, 2, n)
		return err
	}))

	got, err = st.RefreshTokens().GetRefreshTokenByHash(ctx, "hash-stale")
	require.NoError(t, err)
	require.True(t, got.Revoked)

	got, err = st.RefreshTokens().GetRefreshTokenByHash(ctx, "hash-1")
	require.NoError(t, err)
	require.True(t, first.Equal(*got.RevokedAt), "earlier revocation time is kept")

	counts, err = st.RefreshTokens().CountRefreshTokens(ctx, base)
	require.NoError(t, err)
	require.Equal(t, domain.RefreshTokenCounts{Revoked: 4}, counts)
}

func testWithTx(t *testing.T, st store.Store) {
	ctx := context.Background()

	committed := NewUser("tx-commit@example.com")
	require.NoError(t, st.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().CreateUser(ctx, committed)
	}))
	_, err := st.Users().GetUserByID(ctx, committed.ID)
	require.NoError(t, err)

	rolledBack := NewUser("tx-rollback@example.com")
	err = st.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, rolledBack); err != nil {
			return err
		}
		// Second insert conflicts and aborts the whole transaction.
		return tx.Users().CreateUser(ctx, NewUser("tx-commit@example.com"))
	})
	require.True(t, store.IsConflict(err, store.ConstraintUserEmail))

	_, err = st.Users().GetUserByID(ctx, rolledBack.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, st.Ping(ctx))
}
