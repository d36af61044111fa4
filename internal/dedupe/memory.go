package dedupe

import (
	"context"
	"sync"
	"time"
)

// MemoryDeduper is the in-process fallback used when Redis is not
// configured. Expired keys are pruned lazily on each call.
type MemoryDeduper struct {
	mu   sync.Mutex
	keys map[string]time.Time
	now  func() time.Time
}

var _ Deduper = (*MemoryDeduper)(nil)

func NewMemoryDeduper() *MemoryDeduper {
	return &MemoryDeduper{
		keys: make(map[string]time.Time),
		now:  time.Now,
	}
}

// Seen implements Deduper.
func (d *MemoryDeduper) Seen(_ context.Context, key string, ttl time.Duration) (bool, error) {
	now := d.now()

	d.mu.Lock()
	defer d.mu.Unlock()

	for k, expiry := range d.keys {
		if expiry.Before(now) {
			delete(d.keys, k)
		}
	}

	if expiry, ok := d.keys[key]; ok && expiry.After(now) {
		return true, nil
	}

	d.keys[key] = now.Add(ttl)
	return false, nil
}
