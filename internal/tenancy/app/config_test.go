package app

import (
	"os"
	"testing"
	"time"

	"github.com/aussiebroadwan/tenancy/pkg/cryptox"
	"github.com/aussiebroadwan/tenancy/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		AccessTokenSecret:   "access",
		RefreshTokenSecret:  "refresh",
		DatabaseURL:         ":memory:",
		HashAlgorithm:       cryptox.AlgBcrypt,
		Env:                 "test",
		LogLevel:            "error",
		LogFormat:           "text",
		Port:                8080,
		ShutdownGracePeriod: time.Second,
		MetricsEnabled:      true,
		RateLimits:          httpx.DefaultRateLimits(),
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"ACCESS_TOKEN_SECRET", "REFRESH_TOKEN_SECRET", "DATABASE_URL", "PASSWORD_HASH_ALGORITHM",
		"ENV", "LOG_LEVEL", "LOG_FORMAT", "PORT", "SHUTDOWN_GRACE_PERIOD", "HOUSEKEEPING_INTERVAL",
		"METRICS_ENABLED", "RATELIMIT_LOGIN_REQUESTS", "RATELIMIT_LOGIN_BURST", "RATELIMIT_API_WINDOW_SEC",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "tenancy.db", cfg.DatabaseURL)
	require.Equal(t, cryptox.AlgBcrypt, cfg.HashAlgorithm)
	require.Equal(t, "dev", cfg.Env)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "json", cfg.LogFormat)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 10*time.Second, cfg.ShutdownGracePeriod)
	require.Equal(t, time.Hour, cfg.HousekeepingInterval)
	require.True(t, cfg.MetricsEnabled)
	require.Equal(t, httpx.DefaultRateLimits(), cfg.RateLimits)
	require.False(t, cfg.UsesPostgres())

	// Secrets have no default.
	require.ErrorIs(t, cfg.Validate(), ErrMissingSecret)
}

func TestLoadConfigFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("ACCESS_TOKEN_SECRET", "a")
	t.Setenv("REFRESH_TOKEN_SECRET", "r")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/tenancy")
	t.Setenv("PASSWORD_HASH_ALGORITHM", "argon2id")
	t.Setenv("PORT", "9090")
	t.Setenv("SHUTDOWN_GRACE_PERIOD", "5s")
	t.Setenv("HOUSEKEEPING_INTERVAL", "15m")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("RATELIMIT_LOGIN_BURST", "2")
	t.Setenv("RATELIMIT_API_WINDOW_SEC", "30")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "a", cfg.AccessTokenSecret)
	require.Equal(t, "r", cfg.RefreshTokenSecret)
	require.True(t, cfg.UsesPostgres())
	require.Equal(t, cryptox.AlgArgon2id, cfg.HashAlgorithm)
	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, 5*time.Second, cfg.ShutdownGracePeriod)
	require.Equal(t, 15*time.Minute, cfg.HousekeepingInterval)
	require.False(t, cfg.MetricsEnabled)
	require.Equal(t, 2, cfg.RateLimits.Login.Burst)
	require.Equal(t, httpx.DefaultRateLimits().Login.RequestsPerWindow, cfg.RateLimits.Login.RequestsPerWindow)
	require.Equal(t, 30*time.Second, cfg.RateLimits.API.Window())
	require.Equal(t, httpx.DefaultRateLimits().Session, cfg.RateLimits.Session)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigRejectsMalformedValues(t *testing.T) {
	for key, value := range map[string]string{
		"PORT":                     "eighty",
		"SHUTDOWN_GRACE_PERIOD":    "soon",
		"METRICS_ENABLED":          "maybe",
		"RATELIMIT_LOGIN_REQUESTS": "lots",
	} {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			_, err := LoadConfig()
			require.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"missing access secret", func(c *Config) { c.AccessTokenSecret = "" }, ErrMissingSecret},
		{"missing refresh secret", func(c *Config) { c.RefreshTokenSecret = "" }, ErrMissingSecret},
		{"shared secret", func(c *Config) { c.RefreshTokenSecret = c.AccessTokenSecret }, ErrSharedSecret},
		{"unknown hash", func(c *Config) { c.HashAlgorithm = "md5" }, cryptox.ErrUnknownAlgorithm},
	}

	require.NoError(t, validConfig().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}

	cfg := validConfig()
	cfg.Port = 0
	require.ErrorContains(t, cfg.Validate(), "PORT")

	cfg = validConfig()
	cfg.RateLimits.Login.RequestsPerWindow = -1
	require.ErrorIs(t, cfg.Validate(), httpx.ErrInvalidRateLimit)
}

func TestLoadConfigRejectsNonPositiveRateLimit(t *testing.T) {
	clearEnv(t)
	t.Setenv("ACCESS_TOKEN_SECRET", "a")
	t.Setenv("REFRESH_TOKEN_SECRET", "r")
	t.Setenv("RATELIMIT_LOGIN_REQUESTS", "0")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.ErrorIs(t, cfg.Validate(), httpx.ErrInvalidRateLimit)
}

func TestUsesPostgres(t *testing.T) {
	cfg := validConfig()
	for url, want := range map[string]bool{
		"postgres://localhost/db":   true,
		"postgresql://localhost/db": true,
		"tenancy.db":                false,
		"file:tenancy.db":           false,
		":memory:":                  false,
	} {
		cfg.DatabaseURL = url
		require.Equal(t, want, cfg.UsesPostgres(), url)
	}
}
