// Package dedupe drops redelivered Telegram updates so each one is handled
// at most once. Telegram retries delivery when the poller restarts mid-batch;
// without this check a retried free-text message would produce a second reply.
package dedupe

import (
	"context"
	"time"
)

// Deduper marks update keys as handled.
//
// Seen returns false exactly once per key within the TTL: the first caller
// claims the key, every subsequent call sees true until it expires.
type Deduper interface {
	Seen(ctx context.Context, key string, ttl time.Duration) (bool, error)
}
