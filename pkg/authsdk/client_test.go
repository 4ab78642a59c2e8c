package authsdk_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	httpapi "github.com/aussiebroadwan/tenancy/internal/tenancy/http"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/service"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store/drivers/sqlite"
	"github.com/aussiebroadwan/tenancy/pkg/authsdk"
	"github.com/aussiebroadwan/tenancy/pkg/httpx"
	"github.com/aussiebroadwan/tenancy/pkg/slogx"
	"github.com/stretchr/testify/require"
)

const (
	email    = "sdk@example.com"
	password = "sdk-password"
)

// newServer runs the real router over an in-memory store.
func newServer(t *testing.T) *authsdk.SDKClient {
	t.Helper()

	st, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	access, err := service.NewAccessTokens([]byte("sdk-access"), time.Now)
	require.NoError(t, err)
	refresh, err := service.NewRefreshTokens([]byte("sdk-refresh"), st, time.Now)
	require.NoError(t, err)

	users := &service.UserService{Store: st}
	_, err = users.Create(context.Background(), service.NewUser{Email: email, Password: password, FirstName: "S"})
	require.NoError(t, err)

	r := httpapi.NewRouter(access, httpx.DefaultRateLimits(), "sdk-test", st, slogx.Discard())
	r.SessionService = &service.SessionService{Store: st, AccessTokens: access, RefreshTokens: refresh}
	r.UserService = users
	r.TenantService = &service.TenantService{Store: st}
	r.RolesService = &service.RolesService{Store: st}
	r.PermissionService = &service.PermissionService{Store: st}
	r.ApplyRoutes()

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return authsdk.NewSDKClient(srv.URL)
}

func TestLoginErrors(t *testing.T) {
	c := newServer(t)

	_, err := c.Login(context.Background(), email, "wrong")
	require.True(t, authsdk.IsUnauthorized(err))

	var apiErr *authsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "Invalid credentials", apiErr.Message)
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	c := newServer(t)

	sess, err := c.Login(ctx, email, password)
	require.NoError(t, err)
	require.NotEmpty(t, sess.AccessToken())
	require.NotEmpty(t, sess.RefreshToken())

	me, err := sess.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, email, me.Email)

	fresh, err := c.Refresh(ctx, sess.RefreshToken())
	require.NoError(t, err)
	require.NotEmpty(t, fresh)

	require.NoError(t, sess.Logout(ctx))
	require.NoError(t, sess.Logout(ctx))

	_, err = c.Refresh(ctx, sess.RefreshToken())
	require.True(t, authsdk.IsUnauthorized(err))
	var apiErr *authsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "Invalid or revoked refresh token", apiErr.Message)
}

func TestSessionRefreshesUnusableAccessToken(t *testing.T) {
	ctx := context.Background()
	c := newServer(t)

	pair, err := c.LoginTokens(ctx, email, password)
	require.NoError(t, err)

	// An unreadable access token counts as expired, so the first call
	// refreshes before it goes out.
	sess := c.NewSessionFromTokens("stale", pair.RefreshToken)
	me, err := sess.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, email, me.Email)
	require.NotEqual(t, "stale", sess.AccessToken())

	require.NoError(t, c.Logout(ctx, pair.RefreshToken))

	dead := c.NewSessionFromTokens("", pair.RefreshToken)
	_, err = dead.Me(ctx)
	require.True(t, authsdk.IsUnauthorized(err))
}

func TestDirectoryCalls(t *testing.T) {
	ctx := context.Background()
	c := newServer(t)

	sess, err := c.Login(ctx, email, password)
	require.NoError(t, err)

	tenant, err := sess.CreateTenant(ctx, authsdk.CreateTenantRequest{Name: "Acme", Domain: "acme.test"})
	require.NoError(t, err)
	got, err := sess.GetTenant(ctx, tenant.ID)
	require.NoError(t, err)
	require.Equal(t, "acme.test", got.Domain)

	u, err := sess.CreateUser(ctx, authsdk.CreateUserRequest{
		TenantID: tenant.ID,
		Email:    "member@acme.test",
		Password: "pw",
	})
	require.NoError(t, err)
	require.Equal(t, tenant.ID, u.TenantID)

	byEmail, err := sess.GetUserByEmail(ctx, "member@acme.test")
	require.NoError(t, err)
	require.Equal(t, u.ID, byEmail.ID)

	name, dob := "Member", "1990-02-03"
	u, err = sess.UpdateUser(ctx, u.ID, authsdk.UpdateUserRequest{FirstName: &name, DateOfBirth: &dob})
	require.NoError(t, err)
	require.Equal(t, "Member", u.FirstName)
	require.Equal(t, dob, u.DateOfBirth)

	users, err := sess.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	require.NoError(t, sess.DeleteUser(ctx, u.ID))
	_, err = sess.GetUser(ctx, u.ID)
	require.True(t, authsdk.IsNotFound(err))

	role, err := sess.CreateRole(ctx, authsdk.CreateRoleRequest{Name: "viewer"})
	require.NoError(t, err)
	_, err = sess.CreateRole(ctx, authsdk.CreateRoleRequest{Name: "viewer"})
	require.Equal(t, 400, authsdk.StatusCode(err))

	desc := "read only"
	role, err = sess.UpdateRole(ctx, role.ID, authsdk.UpdateRoleRequest{Description: &desc})
	require.NoError(t, err)
	require.Equal(t, desc, role.Description)
	require.NoError(t, sess.DeleteRole(ctx, role.ID))
	roles, err := sess.ListRoles(ctx)
	require.NoError(t, err)
	require.Empty(t, roles)

	perm, err := sess.CreatePermission(ctx, authsdk.CreatePermissionRequest{Code: "tenants.read"})
	require.NoError(t, err)
	perms, err := sess.ListPermissions(ctx)
	require.NoError(t, err)
	require.Len(t, perms, 1)

	desc = "read tenants"
	perm, err = sess.UpdatePermission(ctx, perm.ID, authsdk.UpdatePermissionRequest{Description: &desc})
	require.NoError(t, err)
	require.Equal(t, desc, perm.Description)
	gotPerm, err := sess.GetPermission(ctx, perm.ID)
	require.NoError(t, err)
	require.Equal(t, "tenants.read", gotPerm.Code)
	require.NoError(t, sess.DeletePermission(ctx, perm.ID))
	_, err = sess.GetPermission(ctx, perm.ID)
	require.True(t, authsdk.IsNotFound(err))

	tenants, err := sess.ListTenants(ctx)
	require.NoError(t, err)
	require.Len(t, tenants, 1)
}

func TestTenantLookupsAndDeletes(t *testing.T) {
	ctx := context.Background()
	c := newServer(t)

	sess, err := c.Login(ctx, email, password)
	require.NoError(t, err)

	acme, err := sess.CreateTenant(ctx, authsdk.CreateTenantRequest{Name: "Acme", Domain: "acme.test"})
	require.NoError(t, err)

	byName, err := sess.GetTenantByName(ctx, "Acme")
	require.NoError(t, err)
	require.Equal(t, acme.ID, byName.ID)

	byDomain, err := sess.GetTenantByDomain(ctx, "acme.test")
	require.NoError(t, err)
	require.Equal(t, acme.ID, byDomain.ID)

	newDomain := "acme.example"
	updated, err := sess.UpdateTenant(ctx, acme.ID, authsdk.UpdateTenantRequest{Domain: &newDomain})
	require.NoError(t, err)
	require.Equal(t, newDomain, updated.Domain)
	_, err = sess.GetTenantByDomain(ctx, "acme.test")
	require.True(t, authsdk.IsNotFound(err))

	require.NoError(t, sess.DeleteTenantByDomain(ctx, newDomain))
	_, err = sess.GetTenant(ctx, acme.ID)
	require.True(t, authsdk.IsNotFound(err))

	for range 2 {
		_, err = sess.CreateTenant(ctx, authsdk.CreateTenantRequest{Name: "Twin"})
		require.NoError(t, err)
	}
	require.NoError(t, sess.DeleteTenantsByName(ctx, "Twin"))
	require.True(t, authsdk.IsNotFound(sess.DeleteTenantsByName(ctx, "Twin")))

	other, err := sess.CreateTenant(ctx, authsdk.CreateTenantRequest{Name: "Other"})
	require.NoError(t, err)
	require.NoError(t, sess.DeleteTenant(ctx, other.ID))

	tenants, err := sess.ListTenants(ctx)
	require.NoError(t, err)
	require.Empty(t, tenants)
}

func TestHealth(t *testing.T) {
	ctx := context.Background()
	c := newServer(t)

	live, err := c.GetLiveness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "sdk-test", live.Version)

	ready, err := c.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Checks.Database)
}
