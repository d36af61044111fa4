// Package registry persists the roster of users who have interacted with
// the bot. There is exactly one record per user id; the first-seen name wins.
package registry

import (
	"context"

	"github.com/mgsg-dev/mgsg-bot/internal/domain"
)

// Store records users and serves the roster listing.
type Store interface {
	// Remember upserts the user. It is idempotent: repeat calls for a known
	// id are no-ops, the stored name is never overwritten.
	Remember(ctx context.Context, id int64, name string) error
	// Roster returns all recorded users in first-seen order.
	Roster(ctx context.Context) ([]domain.User, error)
	// Count returns the number of recorded users.
	Count(ctx context.Context) (int, error)
	Close() error
}
