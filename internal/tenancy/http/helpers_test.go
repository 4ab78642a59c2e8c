package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpapi "github.com/aussiebroadwan/tenancy/internal/tenancy/http"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/service"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store/drivers/sqlite"
	"github.com/aussiebroadwan/tenancy/pkg/authsdk"
	"github.com/aussiebroadwan/tenancy/pkg/cryptox"
	"github.com/aussiebroadwan/tenancy/pkg/httpx"
	"github.com/aussiebroadwan/tenancy/pkg/slogx"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "ada@example.com"
	testPassword = "correct horse battery staple"
)

type testServer struct {
	router *httpapi.Router
	store  store.Store
	users  *service.UserService
}

func generousLimits() httpx.RateLimits {
	l := httpx.RateLimitConfig{RequestsPerWindow: 10000, WindowSec: 60, Burst: 10000}
	return httpx.RateLimits{Login: l, Session: l, API: l, Public: l}
}

func newTestServer(t *testing.T, limits httpx.RateLimits) *testServer {
	t.Helper()

	st, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	access, err := service.NewAccessTokens([]byte("access-secret"), time.Now)
	require.NoError(t, err)
	refresh, err := service.NewRefreshTokens([]byte("refresh-secret"), st, time.Now)
	require.NoError(t, err)

	users := &service.UserService{Store: st, HashAlgorithm: cryptox.AlgArgon2id}

	r := httpapi.NewRouter(access, limits, "test", st, slogx.Discard())
	r.SessionService = &service.SessionService{Store: st, AccessTokens: access, RefreshTokens: refresh}
	r.UserService = users
	r.TenantService = &service.TenantService{Store: st}
	r.RolesService = &service.RolesService{Store: st}
	r.PermissionService = &service.PermissionService{Store: st}
	r.ApplyRoutes()

	_, err = users.Create(context.Background(), service.NewUser{
		Email:     testEmail,
		Password:  testPassword,
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	require.NoError(t, err)

	return &testServer{router: r, store: st, users: users}
}

// do sends a request with an optional JSON body and bearer token.
func (s *testServer) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T) authsdk.LoginResponse {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/login", `{"email":"`+testEmail+`","password":"`+testPassword+`"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp authsdk.LoginResponse
	decode(t, rec, &resp)
	return resp
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}
