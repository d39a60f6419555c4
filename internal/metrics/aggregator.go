package metrics

import (
	"context"
	"log/slog"
	"time"
)

// Store is what the aggregator needs from verification storage
type Store interface {
	CountByStatus(ctx context.Context) (map[string]int64, error)
	DeleteOlderThan(ctx context.Context, age time.Duration) (int64, error)
}

// Cleaner drops expired cache entries
type Cleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// Aggregator periodically refreshes storage gauges and prunes old verifications
type Aggregator struct {
	store     Store
	metrics   *Metrics
	logger    *slog.Logger
	interval  time.Duration
	retention time.Duration
	cleaner   Cleaner
	done      chan struct{}
}

// NewAggregator creates a new metrics aggregator worker.
// A zero retention disables pruning.
func NewAggregator(store Store, m *Metrics, logger *slog.Logger, interval, retention time.Duration) *Aggregator {
	if interval == 0 {
		interval = 1 * time.Minute
	}

	return &Aggregator{
		store:     store,
		metrics:   m,
		logger:    logger,
		interval:  interval,
		retention: retention,
		done:      make(chan struct{}),
	}
}

// WithCleaner also sweeps expired cache entries on every tick
func (a *Aggregator) WithCleaner(c Cleaner) *Aggregator {
	a.cleaner = c
	return a
}

// Start runs the worker until ctx is cancelled or Stop is called
func (a *Aggregator) Start(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	a.logger.Info("metrics aggregator started", "interval", a.interval, "retention", a.retention)

	a.aggregate(ctx)
	for {
		select {
		case <-ctx.Done():
			a.logger.Info("metrics aggregator stopped")
			return
		case <-a.done:
			a.logger.Info("metrics aggregator stopped")
			return
		case <-ticker.C:
			a.aggregate(ctx)
		}
	}
}

// Stop gracefully shuts down the aggregator
func (a *Aggregator) Stop() {
	close(a.done)
}

func (a *Aggregator) aggregate(ctx context.Context) {
	a.logger.Debug("running metrics aggregation")

	if a.retention > 0 {
		deleted, err := a.store.DeleteOlderThan(ctx, a.retention)
		if err != nil {
			a.logger.Error("failed to delete old verifications", "error", err)
		} else if deleted > 0 {
			a.logger.Info("deleted old verifications", "count", deleted)
		}
	}

	if a.cleaner != nil {
		if n, err := a.cleaner.CleanupExpired(ctx); err != nil {
			a.logger.Error("failed to clean cache", "error", err)
		} else if n > 0 {
			a.logger.Debug("expired cache entries removed", "count", n)
		}
	}

	counts, err := a.store.CountByStatus(ctx)
	if err != nil {
		a.logger.Error("failed to count verifications", "error", err)
		return
	}
	a.metrics.SetStored(counts)
}
