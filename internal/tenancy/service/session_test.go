package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/service"
	"github.com/aussiebroadwan/tenancy/pkg/cryptox"
	"github.com/aussiebroadwan/tenancy/pkg/idx"
	"github.com/aussiebroadwan/tenancy/pkg/metricx"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestLogin(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	clk := newClock()
	s := newSession(t, st, clk)
	user := seedUser(t, st, "ada@example.com", "correct horse")

	t.Run("success", func(t *testing.T) {
		pair, err := s.Login(ctx, "ada@example.com", "correct horse")
		require.NoError(t, err)
		require.NotEmpty(t, pair.AccessToken)
		require.NotEmpty(t, pair.RefreshToken)

		claims, err := s.AccessTokens.Verify(pair.AccessToken)
		require.NoError(t, err)
		require.Equal(t, user.ID, claims.Subject)

		subject, err := s.RefreshTokens.Verify(ctx, pair.RefreshToken)
		require.NoError(t, err)
		require.Equal(t, user.ID, subject)

		got, err := st.Users().GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, got.LastLoginAt)
		require.True(t, epoch.Equal(*got.LastLoginAt))
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := s.Login(ctx, "ada@example.com", "wrong")
		require.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := s.Login(ctx, "nobody@example.com", "correct horse")
		require.ErrorIs(t, err, service.ErrInvalidCredentials)
	})
}

func TestLoginUnknownEmailStillHashes(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, newStore(t), newClock())

	// The first call also builds the stand-in hash.
	_, err := s.Login(ctx, "warmup@example.com", "pw")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)

	start := time.Now()
	_, err = s.Login(ctx, "nobody@example.com", "pw")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)

	// A store miss alone returns in well under a millisecond; a bcrypt
	// comparison at the default cost does not.
	require.Greater(t, time.Since(start), 5*time.Millisecond)
}

func TestLoginRejectsUnusableAccounts(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	s := newSession(t, st, newClock())

	hash, err := cryptox.HashPassword("pw", cryptox.AlgBcrypt)
	require.NoError(t, err)

	require.NoError(t, st.Users().CreateUser(ctx, domain.User{
		ID: idx.New().String(), Email: "inactive@example.com", PasswordHash: hash,
		CreatedAt: epoch, IsActive: false,
	}))
	require.NoError(t, st.Users().CreateUser(ctx, domain.User{
		ID: idx.New().String(), Email: "garbled@example.com", PasswordHash: "plaintext-pw",
		CreatedAt: epoch, IsActive: true,
	}))

	_, err = s.Login(ctx, "inactive@example.com", "pw")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = s.Login(ctx, "garbled@example.com", "plaintext-pw")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	clk := newClock()
	s := newSession(t, st, clk)
	seedUser(t, st, "grace@example.com", "pw-grace")

	pair, err := s.Login(ctx, "grace@example.com", "pw-grace")
	require.NoError(t, err)

	clk.Advance(time.Second)
	access, err := s.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.AccessToken, access)

	// Not rotated: the same refresh token keeps working.
	_, err = s.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)

	require.NoError(t, s.Logout(ctx, pair.RefreshToken))
	_, err = s.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, service.ErrUnauthorized)

	// Logging out has no effect on access tokens already issued.
	_, err = s.AccessTokens.Verify(access)
	require.NoError(t, err)
}

func TestLogoutIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	s := newSession(t, st, newClock())
	seedUser(t, st, "linus@example.com", "pw")

	pair, err := s.Login(ctx, "linus@example.com", "pw")
	require.NoError(t, err)

	require.NoError(t, s.Logout(ctx, pair.RefreshToken))
	require.NoError(t, s.Logout(ctx, pair.RefreshToken))
	require.NoError(t, s.Logout(ctx, "garbage"))
}

func TestConcurrentLoginsAreIndependent(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	s := newSession(t, st, newClock())
	seedUser(t, st, "many@example.com", "pw")

	const n = 8
	pairs := make([]domain.TokenPair, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := range n {
		wg.Go(func() {
			pairs[i], errs[i] = s.Login(ctx, "many@example.com", "pw")
		})
	}
	wg.Wait()

	seen := map[string]bool{}
	for i := range n {
		require.NoError(t, errs[i])
		require.False(t, seen[pairs[i].RefreshToken], "duplicate refresh token")
		seen[pairs[i].RefreshToken] = true
	}

	require.NoError(t, s.Logout(ctx, pairs[0].RefreshToken))

	_, err := s.Refresh(ctx, pairs[0].RefreshToken)
	require.ErrorIs(t, err, service.ErrRefreshRevoked)
	for _, p := range pairs[1:] {
		_, err := s.Refresh(ctx, p.RefreshToken)
		require.NoError(t, err)
	}
}

func TestSessionMetrics(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	s := newSession(t, st, newClock())
	seedUser(t, st, "count@example.com", "pw")

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := metricx.New(provider.Meter("test"))
	require.NoError(t, err)
	s.Metrics = m

	pair, err := s.Login(ctx, "count@example.com", "pw")
	require.NoError(t, err)
	_, err = s.Login(ctx, "count@example.com", "nope")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)
	require.NoError(t, s.Logout(ctx, pair.RefreshToken))
	_, err = s.Refresh(ctx, pair.RefreshToken)
	require.Error(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	require.Equal(t, int64(1), counter(t, rm, "tenancy.auth.logins", attribute.String("outcome", metricx.LoginSucceeded)))
	require.Equal(t, int64(1), counter(t, rm, "tenancy.auth.logins", attribute.String("outcome", metricx.LoginRejected)))
	require.Equal(t, int64(1), counter(t, rm, "tenancy.tokens.revoked"))
	require.Equal(t, int64(1), counter(t, rm, "tenancy.tokens.refresh_denied", attribute.String("reason", "revoked")))
}

// counter sums the data points of the named Int64 sum whose attributes
// include every kv.
func counter(t *testing.T, rm metricdata.ResourceMetrics, name string, kvs ...attribute.KeyValue) int64 {
	t.Helper()
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "%s is not an int64 sum", name)
		points:
			for _, dp := range sum.DataPoints {
				for _, kv := range kvs {
					if v, ok := dp.Attributes.Value(kv.Key); !ok || v.Emit() != kv.Value.Emit() {
						continue points
					}
				}
				total += dp.Value
			}
		}
	}
	return total
}
