package throttle

import (
	"context"
	"log/slog"
	"time"
)

// Sweepable is implemented by limiters that keep state in process memory and
// need periodic eviction.
type Sweepable interface {
	Cleanup(maxAge time.Duration)
}

// Cleaner periodically evicts stale throttle entries.
type Cleaner struct {
	target   Sweepable
	interval time.Duration
	maxAge   time.Duration
	log      *slog.Logger
}

// NewCleaner constructs a Cleaner. maxAge is typically a multiple of the
// cooldown so recently active users are never evicted mid-window.
func NewCleaner(target Sweepable, interval, maxAge time.Duration, log *slog.Logger) *Cleaner {
	if log == nil {
		log = slog.Default()
	}

	return &Cleaner{
		target:   target,
		interval: interval,
		maxAge:   maxAge,
		log:      log,
	}
}

// Run sweeps on a ticker until the context is cancelled.
func (c *Cleaner) Run(ctx context.Context) {
	if c.target == nil || c.interval <= 0 {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.Info("throttle cleaner stopped", slog.String("reason", ctx.Err().Error()))
			return
		case <-ticker.C:
			c.target.Cleanup(c.maxAge)
		}
	}
}
