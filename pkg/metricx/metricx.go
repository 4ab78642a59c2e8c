// Package metricx records service metrics through the OpenTelemetry metric
// API and exposes them in the Prometheus text format.
package metricx

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Login outcomes.
const (
	LoginSucceeded = "success"
	LoginRejected  = "invalid_credentials"
	LoginFailed    = "error"
)

// Token kinds.
const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

// Metrics holds the instruments. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	requests      metric.Int64Counter
	duration      metric.Float64Histogram
	logins        metric.Int64Counter
	issued        metric.Int64Counter
	revoked       metric.Int64Counter
	refreshDenied metric.Int64Counter
	refreshRows   metric.Int64Gauge
}

// New creates the instruments on meter.
func New(meter metric.Meter) (*Metrics, error) {
	var (
		m   Metrics
		err error
	)

	if m.requests, err = meter.Int64Counter(
		"tenancy.http.requests",
		metric.WithDescription("HTTP requests served"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, fmt.Errorf("metricx: requests counter: %w", err)
	}

	if m.duration, err = meter.Float64Histogram(
		"tenancy.http.duration_ms",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, fmt.Errorf("metricx: duration histogram: %w", err)
	}

	if m.logins, err = meter.Int64Counter(
		"tenancy.auth.logins",
		metric.WithDescription("Login attempts by outcome"),
		metric.WithUnit("{attempt}"),
	); err != nil {
		return nil, fmt.Errorf("metricx: logins counter: %w", err)
	}

	if m.issued, err = meter.Int64Counter(
		"tenancy.tokens.issued",
		metric.WithDescription("Tokens issued by kind"),
		metric.WithUnit("{token}"),
	); err != nil {
		return nil, fmt.Errorf("metricx: issued counter: %w", err)
	}

	if m.revoked, err = meter.Int64Counter(
		"tenancy.tokens.revoked",
		metric.WithDescription("Refresh token revocation requests"),
		metric.WithUnit("{token}"),
	); err != nil {
		return nil, fmt.Errorf("metricx: revoked counter: %w", err)
	}

	if m.refreshDenied, err = meter.Int64Counter(
		"tenancy.tokens.refresh_denied",
		metric.WithDescription("Refresh attempts rejected by reason"),
		metric.WithUnit("{attempt}"),
	); err != nil {
		return nil, fmt.Errorf("metricx: refresh denied counter: %w", err)
	}

	if m.refreshRows, err = meter.Int64Gauge(
		"tenancy.tokens.refresh_rows",
		metric.WithDescription("Stored refresh tokens by state at the last housekeeping pass"),
		metric.WithUnit("{token}"),
	); err != nil {
		return nil, fmt.Errorf("metricx: refresh rows gauge: %w", err)
	}

	return &m, nil
}

// Login records one login attempt.
func (m *Metrics) Login(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.logins.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// TokenIssued records one issued token of kind.
func (m *Metrics) TokenIssued(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.issued.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// TokenRevoked records one revocation request.
func (m *Metrics) TokenRevoked(ctx context.Context) {
	if m == nil {
		return
	}
	m.revoked.Add(ctx, 1)
}

// RefreshDenied records a rejected refresh, reason being e.g. "revoked".
func (m *Metrics) RefreshDenied(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.refreshDenied.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// RefreshTokenRows records the stored refresh token tally.
func (m *Metrics) RefreshTokenRows(ctx context.Context, live, revoked, expired int64) {
	if m == nil {
		return
	}
	for state, n := range map[string]int64{"live": live, "revoked": revoked, "expired": expired} {
		m.refreshRows.Record(ctx, n, metric.WithAttributes(attribute.String("state", state)))
	}
}

// HTTPMiddleware counts and times requests under the given route label.
// The route is a fixed pattern, never the raw path, to keep cardinality
// bounded.
func (m *Metrics) HTTPMiddleware(route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)

			opt := metric.WithAttributes(
				attribute.String("route", route),
				attribute.String("status", strconv.Itoa(rw.status)),
			)
			m.requests.Add(r.Context(), 1, opt)
			m.duration.Record(r.Context(), float64(time.Since(start).Microseconds())/1000, opt)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter

	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// Provider owns a MeterProvider backed by a private Prometheus registry.
type Provider struct {
	registry *prometheus.Registry
	provider *sdkmetric.MeterProvider
}

// NewPrometheus builds a Provider whose metrics are served by Handler.
func NewPrometheus() (*Provider, error) {
	reg := prometheus.NewRegistry()

	exp, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, fmt.Errorf("metricx: prometheus exporter: %w", err)
	}

	return &Provider{
		registry: reg,
		provider: sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp)),
	}, nil
}

// Meter returns a named meter.
func (p *Provider) Meter(name string) metric.Meter {
	return p.provider.Meter(name)
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Shutdown flushes and stops the meter provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.provider.Shutdown(ctx)
}
