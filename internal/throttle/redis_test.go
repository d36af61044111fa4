package throttle

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

func TestRedisLimiter_AllowsFirstThenBlocks(t *testing.T) {
	client, _ := setupTestRedis(t)

	limiter := NewRedisLimiter(client, 10*time.Second, testLogger())
	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, 1001)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.Allow(ctx, 1001)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestRedisLimiter_AllowsAgainAfterCooldownExpires(t *testing.T) {
	client, mr := setupTestRedis(t)

	limiter := NewRedisLimiter(client, 10*time.Second, testLogger())
	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, 7)
	require.NoError(t, err)
	require.True(t, allowed)

	mr.FastForward(11 * time.Second)

	allowed, err = limiter.Allow(ctx, 7)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRedisLimiter_DenialDoesNotExtendCooldown(t *testing.T) {
	client, mr := setupTestRedis(t)

	limiter := NewRedisLimiter(client, 10*time.Second, testLogger())
	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, 7)
	require.NoError(t, err)
	require.True(t, allowed)

	mr.FastForward(6 * time.Second)

	allowed, err = limiter.Allow(ctx, 7)
	require.NoError(t, err)
	require.False(t, allowed)

	// 10s after the accepted message, not 10s after the denial.
	mr.FastForward(5 * time.Second)

	allowed, err = limiter.Allow(ctx, 7)
	require.NoError(t, err)
	assert.True(t, allowed)
}
