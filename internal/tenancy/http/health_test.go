package http_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/tenancy/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

func TestLivez(t *testing.T) {
	s := newTestServer(t, generousLimits())

	rec := s.do(t, http.MethodGet, "/livez", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var h authsdk.HealthResponse
	decode(t, rec, &h)
	require.Equal(t, "ok", h.Status)
	require.Equal(t, "test", h.Version)
	require.Nil(t, h.Checks)
}

func TestReadyz(t *testing.T) {
	s := newTestServer(t, generousLimits())

	rec := s.do(t, http.MethodGet, "/readyz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var h authsdk.HealthResponse
	decode(t, rec, &h)
	require.Equal(t, "ok", h.Status)
	require.NotNil(t, h.Checks)
	require.Equal(t, "ok", h.Checks.Database)

	require.NoError(t, s.store.Close())

	rec = s.do(t, http.MethodGet, "/readyz", "", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	decode(t, rec, &h)
	require.Equal(t, "degraded", h.Status)
	require.NotEqual(t, "ok", h.Checks.Database)

	// Liveness does not depend on the store.
	rec = s.do(t, http.MethodGet, "/livez", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsRouteAbsentWithoutHandler(t *testing.T) {
	s := newTestServer(t, generousLimits())

	// Falls through to the gated catch-all.
	rec := s.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/metrics", "", s.login(t).AccessToken)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSwaggerUIServed(t *testing.T) {
	s := newTestServer(t, generousLimits())

	rec := s.do(t, http.MethodGet, "/swagger/doc.json", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"/tenants/domain/{domain}"`)
	require.Contains(t, rec.Body.String(), `"BearerAuth"`)

	rec = s.do(t, http.MethodGet, "/swagger/index.html", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "swagger")
}
