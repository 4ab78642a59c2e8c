package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/aussiebroadwan/tenancy/pkg/cryptox"
	"github.com/aussiebroadwan/tenancy/pkg/httpx"
)

type Config struct {
	AccessTokenSecret  string `env:"ACCESS_TOKEN_SECRET"`  // Required: HS256 secret for access tokens
	RefreshTokenSecret string `env:"REFRESH_TOKEN_SECRET"` // Required: HS256 secret for refresh tokens, must differ

	DatabaseURL          string        `env:"DATABASE_URL" envDefault:"tenancy.db"`          // postgres:// URL or sqlite path
	HashAlgorithm        string        `env:"PASSWORD_HASH_ALGORITHM" envDefault:"bcrypt"`   // bcrypt or argon2id, for new users
	Env                  string        `env:"ENV" envDefault:"dev"`                          // dev, staging, prod
	LogLevel             string        `env:"LOG_LEVEL" envDefault:"info"`                   // debug, info, warn, error
	LogFormat            string        `env:"LOG_FORMAT" envDefault:"json"`                  // json, text
	Port                 int           `env:"PORT" envDefault:"8080"`                        // HTTP server port
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`        // Graceful shutdown timeout
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`         // Refresh token tally interval
	MetricsEnabled       bool          `env:"METRICS_ENABLED" envDefault:"true"`             // Serve /metrics

	// RATELIMIT_{LOGIN,SESSION,API,PUBLIC}_{REQUESTS,WINDOW_SEC,BURST}.
	// Unset fields keep DefaultRateLimits.
	RateLimits httpx.RateLimits `envPrefix:"RATELIMIT_"`
}

// LoadConfig reads the environment once. Malformed values are an error
// rather than silently replaced by defaults.
func LoadConfig() (Config, error) {
	cfg := Config{RateLimits: httpx.DefaultRateLimits()}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

var (
	ErrMissingSecret = errors.New("token secret is required")
	ErrSharedSecret  = errors.New("access and refresh token secrets must differ")
)

// Validate reports every problem with cfg at once.
func (c Config) Validate() error {
	var errs []error

	if c.AccessTokenSecret == "" {
		errs = append(errs, fmt.Errorf("ACCESS_TOKEN_SECRET: %w", ErrMissingSecret))
	}
	if c.RefreshTokenSecret == "" {
		errs = append(errs, fmt.Errorf("REFRESH_TOKEN_SECRET: %w", ErrMissingSecret))
	}
	if c.AccessTokenSecret != "" && c.AccessTokenSecret == c.RefreshTokenSecret {
		errs = append(errs, ErrSharedSecret)
	}
	if !cryptox.ValidAlgorithm(c.HashAlgorithm) {
		errs = append(errs, fmt.Errorf("PASSWORD_HASH_ALGORITHM: %w: %q", cryptox.ErrUnknownAlgorithm, c.HashAlgorithm))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT: out of range: %d", c.Port))
	}
	if err := c.RateLimits.Validate(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// UsesPostgres reports whether DatabaseURL names a postgres server rather
// than a sqlite file.
func (c Config) UsesPostgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres://") || strings.HasPrefix(c.DatabaseURL, "postgresql://")
}
