package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mgsg-dev/mgsg-bot/internal/registry"
)

var (
	updatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_updates_total",
			Help: "Total number of handled Telegram updates labeled by kind and status",
		},
		[]string{"kind", "status"},
	)
	updateDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bot_update_duration_seconds",
			Help:    "Duration of update handling in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
	gateDenialsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_gate_denials_total",
			Help: "Subscription gate denials labeled by reason",
		},
		[]string{"reason"},
	)
	throttledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_throttled_total",
			Help: "Free-text messages rejected by the anti-spam cooldown",
		},
	)
	completionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_completions_total",
			Help: "Completion gateway calls labeled by outcome",
		},
		[]string{"outcome"},
	)
	completionDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bot_completion_duration_seconds",
			Help:    "End-to-end completion latency including queueing and retries",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
	)
	registeredUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_registered_users",
			Help: "Number of users in the roster registry",
		},
	)
)

// RecordUpdate increments update counters and records handling duration.
func RecordUpdate(kind, status string, duration time.Duration) {
	if kind == "" {
		kind = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	updatesTotal.WithLabelValues(kind, status).Inc()
	updateDurationSeconds.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordGateDenial counts subscription gate rejections.
func RecordGateDenial(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	gateDenialsTotal.WithLabelValues(reason).Inc()
}

// RecordThrottled counts anti-spam rejections.
func RecordThrottled() {
	throttledTotal.Inc()
}

// RecordCompletion tracks one gateway call.
func RecordCompletion(outcome string, duration time.Duration) {
	if outcome == "" {
		outcome = "unknown"
	}

	completionsTotal.WithLabelValues(outcome).Inc()
	completionDurationSeconds.Observe(duration.Seconds())
}

// RosterCollector periodically publishes the registry size as a gauge.
type RosterCollector struct {
	store    registry.Store
	interval time.Duration
}

// NewRosterCollector builds a collector bound to the provided store.
func NewRosterCollector(store registry.Store, interval time.Duration) *RosterCollector {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	return &RosterCollector{
		store:    store,
		interval: interval,
	}
}

// Run polls the registry until ctx is cancelled.
func (c *RosterCollector) Run(ctx context.Context) {
	if c == nil || c.store == nil {
		return
	}

	for {
		if count, err := c.store.Count(ctx); err == nil {
			registeredUsers.Set(float64(count))
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.interval):
		}
	}
}
