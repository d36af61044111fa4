package registry

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/mgsg-dev/mgsg-bot/internal/domain"
)

// FileStore keeps the roster in an append-only text file of `id/name` lines,
// the format the original deployment used. Records are appended, never
// rewritten in place. An in-process seen-set gives the O(1) membership check
// that prevents duplicate appends.
type FileStore struct {
	mu   sync.Mutex
	path string
	seen map[int64]struct{}
	log  *slog.Logger
}

var _ Store = (*FileStore)(nil)

// NewFileStore opens (creating if needed) the roster file at path and loads
// the seen-set from it.
func NewFileStore(path string, log *slog.Logger) (*FileStore, error) {
	if log == nil {
		log = slog.Default()
	}

	s := &FileStore{
		path: path,
		seen: make(map[int64]struct{}),
		log:  log,
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open roster file %q: %w", path, err)
	}
	defer f.Close()

	users, err := s.scan(f)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		s.seen[u.ID] = struct{}{}
	}

	return s, nil
}

// Remember implements Store. Known ids are skipped without touching the file.
func (s *FileStore) Remember(_ context.Context, id int64, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[id]; ok {
		return nil
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open roster file for append: %w", err)
	}
	defer f.Close()

	// The separator may not appear in Telegram usernames, but a pasted-in
	// full name could carry one; strip it so the record stays parseable.
	name = strings.ReplaceAll(name, "/", "")

	if _, err := fmt.Fprintf(f, "%d/%s\n", id, name); err != nil {
		return fmt.Errorf("append roster record: %w", err)
	}

	s.seen[id] = struct{}{}
	return nil
}

// Roster implements Store. The file is read in full on every query; the
// roster is small and the command is rare.
func (s *FileStore) Roster(_ context.Context) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open roster file %q: %w", s.path, err)
	}
	defer f.Close()

	return s.scan(f)
}

// Count implements Store.
func (s *FileStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen), nil
}

// Close implements Store. The file is only held open during operations.
func (s *FileStore) Close() error {
	return nil
}

// scan parses `id/name` lines. Malformed lines are skipped but counted and
// logged so corruption does not pass silently. Later duplicates of an id are
// ignored: first-seen wins.
func (s *FileStore) scan(f *os.File) ([]domain.User, error) {
	var users []domain.User
	loaded := make(map[int64]struct{})
	malformed := 0

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		idStr, name, ok := strings.Cut(line, "/")
		if !ok {
			malformed++
			continue
		}

		id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64)
		if err != nil {
			malformed++
			continue
		}

		if _, dup := loaded[id]; dup {
			continue
		}
		loaded[id] = struct{}{}

		users = append(users, domain.User{
			ID:   id,
			Name: strings.TrimSpace(name),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read roster file: %w", err)
	}

	if malformed > 0 {
		s.log.Warn("skipped malformed roster lines",
			slog.String("path", s.path),
			slog.Int("count", malformed),
		)
	}

	return users, nil
}
