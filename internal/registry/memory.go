package registry

import (
	"context"
	"sync"
	"time"

	"github.com/mgsg-dev/mgsg-bot/internal/domain"
)

// MemoryStore is the volatile backend for tests and local runs. All records
// are lost on restart.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[int64]domain.User
	order []int64
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[int64]domain.User),
	}
}

// Remember implements Store.
func (s *MemoryStore) Remember(_ context.Context, id int64, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; ok {
		return nil
	}

	s.users[id] = domain.User{ID: id, Name: name, FirstSeen: time.Now().UTC()}
	s.order = append(s.order, id)
	return nil
}

// Roster implements Store.
func (s *MemoryStore) Roster(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.User, 0, len(s.order))
	for _, id := range s.order {
		users = append(users, s.users[id])
	}
	return users, nil
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	return nil
}
