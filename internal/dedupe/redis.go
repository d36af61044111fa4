package dedupe

import (
	"context"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// RedisDeduper claims keys with SET NX, so dedupe survives restarts and is
// shared between replicas.
type RedisDeduper struct {
	client *redis.Client
}

var _ Deduper = (*RedisDeduper)(nil)

func NewRedisDeduper(client *redis.Client) *RedisDeduper {
	return &RedisDeduper{client: client}
}

// Seen implements Deduper.
func (d *RedisDeduper) Seen(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if d.client == nil {
		return false, errors.New("redis client is not configured for dedupe")
	}

	claimed, err := d.client.SetNX(ctx, "dedupe:"+key, 1, ttl).Result()
	if err != nil {
		return false, err
	}

	return !claimed, nil
}
