package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
	"github.com/aussiebroadwan/tenancy/pkg/jwtx"
	"github.com/aussiebroadwan/tenancy/pkg/metricx"
)

const defaultHousekeepingInterval = time.Hour

// Housekeeping periodically tallies the stored refresh tokens by state and
// publishes the counts. It only reads: refresh token rows are kept for
// audit, and a revoked token must keep answering "revoked".
type Housekeeping struct {
	store    store.Store
	logger   *slog.Logger
	metrics  *metricx.Metrics
	interval time.Duration
	clock    jwtx.Clock

	started  atomic.Bool
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewHousekeeping builds a worker. A non-positive interval means one hour;
// a nil clock means time.Now. metrics may be nil.
func NewHousekeeping(st store.Store, logger *slog.Logger, metrics *metricx.Metrics, interval time.Duration, clock jwtx.Clock) *Housekeeping {
	if interval <= 0 {
		interval = defaultHousekeepingInterval
	}
	if clock == nil {
		clock = time.Now
	}

	return &Housekeeping{
		store:    st,
		logger:   logger,
		metrics:  metrics,
		interval: interval,
		clock:    clock,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs a pass immediately, then once per interval until Stop.
func (h *Housekeeping) Start() {
	if !h.started.CompareAndSwap(false, true) {
		return
	}
	go h.run()
	h.logger.Info("housekeeping started", "interval", h.interval)
}

// Stop waits for an in-flight pass to finish. Safe to call twice, or
// without Start.
func (h *Housekeeping) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopCh)
		if !h.started.Load() {
			return
		}
		<-h.doneCh
		h.logger.Info("housekeeping stopped")
	})
}

func (h *Housekeeping) run() {
	defer close(h.doneCh)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	h.pass()

	for {
		select {
		case <-ticker.C:
			h.pass()
		case <-h.stopCh:
			return
		}
	}
}

func (h *Housekeeping) pass() {
	if _, err := h.Tally(context.Background()); err != nil {
		h.logger.Error("failed to tally refresh tokens", "error", err)
	}
}

// Tally counts the refresh tokens by state and records the result.
func (h *Housekeeping) Tally(ctx context.Context) (domain.RefreshTokenCounts, error) {
	counts, err := h.store.RefreshTokens().CountRefreshTokens(ctx, h.clock())
	if err != nil {
		return domain.RefreshTokenCounts{}, err
	}

	h.metrics.RefreshTokenRows(ctx, counts.Live, counts.Revoked, counts.Expired)
	h.logger.Debug("refresh tokens tallied",
		"live", counts.Live,
		"revoked", counts.Revoked,
		"expired", counts.Expired,
	)
	return counts, nil
}
