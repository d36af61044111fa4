// Package redis owns the shared Redis connection used by the throttle and
// the update deduper.
package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/mgsg-dev/mgsg-bot/pkg/config"
)

// Client wraps go-redis with command instrumentation attached.
type Client struct {
	*goredis.Client
}

// New connects to Redis and verifies the connection with a ping. Every
// command issued through the client is observed by the metrics hook.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	rdb.AddHook(newMetricsHook())

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr, err)
	}
	return &Client{rdb}, nil
}
