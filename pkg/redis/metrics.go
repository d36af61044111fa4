package redis

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	goredis "github.com/redis/go-redis/v9"
)

var (
	commandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_commands_total",
			Help: "Redis commands issued, by command name and status.",
		},
		[]string{"command", "status"},
	)
	commandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_command_duration_seconds",
			Help:    "Redis command latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)
)

// metricsHook observes every command the client issues.
type metricsHook struct{}

func newMetricsHook() goredis.Hook {
	return metricsHook{}
}

func (metricsHook) DialHook(next goredis.DialHook) goredis.DialHook {
	return next
}

func (metricsHook) ProcessHook(next goredis.ProcessHook) goredis.ProcessHook {
	return func(ctx context.Context, cmd goredis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		observe(cmd.Name(), start, err)
		return err
	}
}

func (metricsHook) ProcessPipelineHook(next goredis.ProcessPipelineHook) goredis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []goredis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		observe("pipeline", start, err)
		return err
	}
}

func observe(command string, start time.Time, err error) {
	status := "ok"
	if err != nil && err != goredis.Nil {
		status = "error"
	}
	commandsTotal.WithLabelValues(command, status).Inc()
	commandDuration.WithLabelValues(command).Observe(time.Since(start).Seconds())
}
