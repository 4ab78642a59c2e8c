package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/service"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store/drivers/sqlite"
	"github.com/aussiebroadwan/tenancy/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

var (
	accessSecret  = []byte("access-secret-for-tests")
	refreshSecret = []byte("refresh-secret-for-tests")
	epoch         = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
)

// fakeClock is a settable clock shared by both codecs.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *fakeClock { return &fakeClock{t: epoch} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newStore(t *testing.T) store.Store {
	t.Helper()
	st, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())
	return st
}

func newSession(t *testing.T, st store.Store, clk *fakeClock) *service.SessionService {
	t.Helper()
	access, err := service.NewAccessTokens(accessSecret, clk.Now)
	require.NoError(t, err)
	refresh, err := service.NewRefreshTokens(refreshSecret, st, clk.Now)
	require.NoError(t, err)
	return &service.SessionService{Store: st, AccessTokens: access, RefreshTokens: refresh}
}

// seedUser stores an active user with an argon2id hash of password.
func seedUser(t *testing.T, st store.Store, email, password string) domain.User {
	t.Helper()
	users := &service.UserService{Store: st, HashAlgorithm: cryptox.AlgArgon2id}
	u, err := users.Create(context.Background(), service.NewUser{
		Email:     email,
		Password:  password,
		FirstName: "Test",
		LastName:  "User",
	})
	require.NoError(t, err)
	return u
}
