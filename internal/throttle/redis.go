package throttle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// RedisLimiter implements the cooldown with a single SET NX PX per check, so
// concurrent messages from one user cannot both pass. Entries self-expire,
// no sweeping needed.
type RedisLimiter struct {
	client   *redis.Client
	cooldown time.Duration
	log      *slog.Logger
}

var _ Limiter = (*RedisLimiter)(nil)

// NewRedisLimiter creates a Redis-backed Limiter implementation.
func NewRedisLimiter(client *redis.Client, cooldown time.Duration, log *slog.Logger) *RedisLimiter {
	if log == nil {
		log = slog.Default()
	}

	return &RedisLimiter{
		client:   client,
		cooldown: cooldown,
		log:      log,
	}
}

// Allow implements Limiter. The NX write succeeds only when no cooldown key
// exists; a denied attempt does not refresh the key's TTL.
func (l *RedisLimiter) Allow(ctx context.Context, userID int64) (bool, error) {
	if l.client == nil {
		return false, errors.New("redis client is not configured for throttling")
	}

	key := fmt.Sprintf("throttle:%d", userID)

	ok, err := l.client.SetNX(ctx, key, 1, l.cooldown).Result()
	if err != nil {
		l.log.Error("throttle check failed", slog.Int64("user_id", userID), slog.Any("error", err))
		return false, err
	}

	return ok, nil
}

// Cooldown implements Limiter.
func (l *RedisLimiter) Cooldown() time.Duration {
	return l.cooldown
}
