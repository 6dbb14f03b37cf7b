package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
)

// ExpiredPurger removes refresh records past their expiry.
type ExpiredPurger interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// Reaper periodically purges expired refresh records so the store does not
// grow without bound.
type Reaper struct {
	store    ExpiredPurger
	interval time.Duration
	logger   logging.Logger
	metrics  metrics.Recorder
}

func NewReaper(store ExpiredPurger, interval time.Duration, l logging.Logger, r metrics.Recorder) *Reaper {
	if r == nil {
		r = metrics.Nop{}
	}
	return &Reaper{store: store, interval: interval, logger: l.With("module", "reaper"), metrics: r}
}

// Run sweeps every interval until ctx is done. A non-positive interval
// disables the reaper and Run returns at once.
func (r *Reaper) Run(ctx context.Context) error {
	if r.interval <= 0 {
		r.logger.Info(ctx, "reaper disabled")
		return nil
	}

	t := time.NewTicker(r.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep runs one purge. Failures are logged and retried on the next tick.
func (r *Reaper) Sweep(ctx context.Context) {
	n, err := r.store.DeleteExpired(ctx)
	if err != nil {
		r.logger.Error(ctx, "expired token purge failed", "error", err)
		return
	}
	r.metrics.TokensRevoked("expired", n)
	if n > 0 {
		r.logger.Debug(ctx, "expired tokens purged", "count", n)
	}
}
