package registry

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/mgsg-dev/mgsg-bot/internal/domain"
)

// PostgresStore is the durable registry backend. Schema lives in
// migrations/ and is applied by database.Migrator at startup.
type PostgresStore struct {
	db  *sql.DB
	log *slog.Logger
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a SQL-backed registry store.
func NewPostgresStore(db *sql.DB, log *slog.Logger) *PostgresStore {
	return &PostgresStore{
		db:  db,
		log: log,
	}
}

// Remember implements Store. ON CONFLICT DO NOTHING keeps first-seen-wins
// semantics without a separate existence check.
func (s *PostgresStore) Remember(ctx context.Context, id int64, name string) error {
	const query = `
		INSERT INTO users (telegram_id, username, first_seen)
		VALUES ($1, $2, $3)
		ON CONFLICT (telegram_id) DO NOTHING
	`

	if _, err := s.db.ExecContext(ctx, query, id, name, time.Now().UTC()); err != nil {
		if s.log != nil {
			s.log.Error("failed to record user", slog.Int64("telegram_id", id), slog.Any("error", err))
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// Roster implements Store.
func (s *PostgresStore) Roster(ctx context.Context) ([]domain.User, error) {
	const query = `
		SELECT telegram_id, username, first_seen
		FROM users
		ORDER BY first_seen, telegram_id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select roster: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Name, &u.FirstSeen); err != nil {
			return nil, fmt.Errorf("scan roster row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roster rows: %w", err)
	}

	return users, nil
}

// Count implements Store.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM users`

	var count int
	if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}

	return count, nil
}

// Close implements Store. The *sql.DB is owned by main, which also closes it;
// Close here is a no-op so both backends satisfy the same interface.
func (s *PostgresStore) Close() error {
	return nil
}
