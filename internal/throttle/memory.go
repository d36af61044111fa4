package throttle

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// MemoryLimiter is the in-process cooldown implementation used when Redis is
// not configured.
type MemoryLimiter struct {
	mu       sync.Mutex
	lastSeen map[int64]time.Time
	cooldown time.Duration
	now      func() time.Time
	log      *slog.Logger
}

// NewMemoryLimiter returns an in-memory limiter with the given cooldown.
func NewMemoryLimiter(cooldown time.Duration, log *slog.Logger) *MemoryLimiter {
	if log == nil {
		log = slog.Default()
	}

	return &MemoryLimiter{
		lastSeen: make(map[int64]time.Time),
		cooldown: cooldown,
		now:      time.Now,
		log:      log,
	}
}

// Allow implements Limiter.
func (m *MemoryLimiter) Allow(_ context.Context, userID int64) (bool, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	last, seen := m.lastSeen[userID]
	if seen && now.Sub(last) < m.cooldown {
		return false, nil
	}

	m.lastSeen[userID] = now
	return true, nil
}

// Cooldown implements Limiter.
func (m *MemoryLimiter) Cooldown() time.Duration {
	return m.cooldown
}

// Cleanup evicts entries idle for longer than maxAge, bounding map growth
// over the process lifetime.
func (m *MemoryLimiter) Cleanup(maxAge time.Duration) {
	if maxAge <= 0 {
		return
	}

	cutoff := m.now().Add(-maxAge)

	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for userID, last := range m.lastSeen {
		if last.Before(cutoff) {
			delete(m.lastSeen, userID)
			evicted++
		}
	}

	if evicted > 0 {
		m.log.Debug("throttle entries evicted", slog.Int("count", evicted))
	}
}

func (m *MemoryLimiter) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.lastSeen)
}
