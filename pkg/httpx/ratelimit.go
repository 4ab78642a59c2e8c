package httpx

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/tenancy/pkg/slogx"
	"golang.org/x/time/rate"
)

// RateLimitConfig is a token bucket refilled at RequestsPerWindow per
// window with capacity Burst. The env tags are relative to the profile
// prefix, e.g. RATELIMIT_LOGIN_REQUESTS.
type RateLimitConfig struct {
	RequestsPerWindow int `env:"REQUESTS"`
	WindowSec         int `env:"WINDOW_SEC"`
	Burst             int `env:"BURST"`
}

// Window is the refill period.
func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSec) * time.Second
}

// ErrInvalidRateLimit is returned by Validate for non-positive fields.
var ErrInvalidRateLimit = errors.New("rate limit values must be positive")

func (c RateLimitConfig) Validate() error {
	if c.RequestsPerWindow <= 0 || c.WindowSec <= 0 || c.Burst <= 0 {
		return fmt.Errorf("%w: requests=%d window_sec=%d burst=%d",
			ErrInvalidRateLimit, c.RequestsPerWindow, c.WindowSec, c.Burst)
	}
	return nil
}

// RateLimits groups the profiles the router hands out per route class.
type RateLimits struct {
	Login   RateLimitConfig `envPrefix:"LOGIN_"`   // credential checks, keyed by IP
	Session RateLimitConfig `envPrefix:"SESSION_"` // refresh and logout
	API     RateLimitConfig `envPrefix:"API_"`     // authenticated CRUD, keyed by subject
	Public  RateLimitConfig `envPrefix:"PUBLIC_"`  // health and metrics
}

// DefaultRateLimits returns the built-in profiles.
func DefaultRateLimits() RateLimits {
	return RateLimits{
		Login:   RateLimitConfig{RequestsPerWindow: 5, WindowSec: 60, Burst: 5},
		Session: RateLimitConfig{RequestsPerWindow: 20, WindowSec: 60, Burst: 20},
		API:     RateLimitConfig{RequestsPerWindow: 100, WindowSec: 60, Burst: 100},
		Public:  RateLimitConfig{RequestsPerWindow: 1000, WindowSec: 60, Burst: 1000},
	}
}

// Validate checks every profile.
func (l RateLimits) Validate() error {
	var errs []error
	for name, c := range map[string]RateLimitConfig{
		"LOGIN": l.Login, "SESSION": l.Session, "API": l.API, "PUBLIC": l.Public,
	} {
		if err := c.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("RATELIMIT_%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// KeyExtractor picks the bucket a request is charged against.
type KeyExtractor func(*http.Request) string

// IPKeyExtractor returns the client IP, preferring the first hop of
// X-Forwarded-For, then X-Real-IP, then RemoteAddr.
func IPKeyExtractor(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// SubjectKeyExtractor returns the authenticated subject, or "".
func SubjectKeyExtractor(r *http.Request) string {
	subject, _ := SubjectFromContext(r.Context())
	return subject
}

// CompositeKeyExtractor joins the non-empty keys of extractors with sep,
// e.g. "user123:192.168.1.1".
func CompositeKeyExtractor(sep string, extractors ...KeyExtractor) KeyExtractor {
	return func(r *http.Request) string {
		var parts []string
		for _, extractor := range extractors {
			if key := extractor(r); key != "" {
				parts = append(parts, key)
			}
		}
		return strings.Join(parts, sep)
	}
}

const limiterSweepInterval = 5 * time.Minute

// keyedLimiters holds one token bucket per key.
type keyedLimiters struct {
	rate  rate.Limit
	burst int

	mu        sync.Mutex
	buckets   map[string]*rate.Limiter
	lastSweep time.Time
}

func newKeyedLimiters(cfg RateLimitConfig) *keyedLimiters {
	return &keyedLimiters{
		rate:      rate.Limit(float64(cfg.RequestsPerWindow) / cfg.Window().Seconds()),
		burst:     cfg.Burst,
		buckets:   make(map[string]*rate.Limiter),
		lastSweep: time.Now(),
	}
}

func (k *keyedLimiters) get(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	// A full bucket has been idle for at least a window, so dropping it
	// loses nothing.
	if time.Since(k.lastSweep) >= limiterSweepInterval {
		k.lastSweep = time.Now()
		for key, l := range k.buckets {
			if l.Tokens() >= float64(k.burst) {
				delete(k.buckets, key)
			}
		}
	}

	l, ok := k.buckets[key]
	if !ok {
		l = rate.NewLimiter(k.rate, k.burst)
		k.buckets[key] = l
	}
	return l
}

// RateLimitStage limits requests per key with a token bucket. Requests for
// which no key can be extracted are admitted.
func RateLimitStage(config RateLimitConfig, keyExtractor KeyExtractor) Stage {
	buckets := newKeyedLimiters(config)

	return func(r *http.Request) Decision {
		log := slogx.FromContext(r.Context())

		key := keyExtractor(r)
		if key == "" {
			log.Warn("rate limit: unable to extract key, allowing request")
			return Admit(r)
		}

		limiter := buckets.get(key)
		if limiter.Allow() {
			return Admit(r)
		}

		// Peek at when the next token lands without consuming it.
		reservation := limiter.Reserve()
		delay := reservation.Delay()
		reservation.Cancel()

		retryAfter := max(int(delay.Seconds()), 1)

		log.Warn("rate limit exceeded",
			"key", key,
			"endpoint", r.URL.Path,
			"retry_after", retryAfter,
		)

		return Reject(Rejection{
			Status: http.StatusTooManyRequests,
			Header: http.Header{
				"Content-Type":       []string{"application/json"},
				"Retry-After":        []string{strconv.Itoa(retryAfter)},
				"X-Ratelimit-Limit":  []string{strconv.Itoa(config.RequestsPerWindow)},
				"X-Ratelimit-Window": []string{config.Window().String()},
			},
			Body: []byte(`{"error":"rate_limit_exceeded","error_description":"Too many requests. Please try again later."}` + "\n"),
		})
	}
}

// RateLimitMiddleware is RateLimitStage as a Middleware.
func RateLimitMiddleware(config RateLimitConfig, keyExtractor KeyExtractor) Middleware {
	return Stages(RateLimitStage(config, keyExtractor))
}

// RateLimitByIP creates a rate limiter that limits by IP address only.
func RateLimitByIP(config RateLimitConfig) Middleware {
	return RateLimitMiddleware(config, IPKeyExtractor)
}

// RateLimitByUser creates a rate limiter that limits by authenticated
// subject and IP. Must run after the bearer stage to see the subject.
func RateLimitByUser(config RateLimitConfig) Middleware {
	return RateLimitMiddleware(config, CompositeKeyExtractor(":",
		SubjectKeyExtractor,
		IPKeyExtractor,
	))
}
