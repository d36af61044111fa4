// Package throttle enforces the per-user anti-spam cooldown for free-text
// messages. Commands and callbacks never pass through it.
package throttle

import (
	"context"
	"time"
)

// Limiter decides whether a user's free-text message may proceed.
//
// Allow returns true and records the accepted request exactly when the
// cooldown has elapsed since the user's last accepted request, or when the
// user has never been seen. A denial leaves the last-seen stamp untouched,
// so the cooldown is measured from the last accepted message.
type Limiter interface {
	Allow(ctx context.Context, userID int64) (bool, error)
	Cooldown() time.Duration
}
