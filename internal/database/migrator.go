// Package database applies schema migrations for the roster store.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Migrator executes *.up.sql files in lexical order, one transaction per
// file. Idempotency lives in the statements themselves (IF NOT EXISTS).
type Migrator struct {
	db  *sql.DB
	log *slog.Logger
}

func NewMigrator(db *sql.DB, log *slog.Logger) *Migrator {
	return &Migrator{
		db:  db,
		log: log.With(slog.String("component", "migrator")),
	}
}

// ApplyDir applies every up migration found in dir.
func (m *Migrator) ApplyDir(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read migrations dir %q: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".up.sql") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	if len(files) == 0 {
		m.log.Info("no migrations found", slog.String("dir", dir))
		return nil
	}
	sort.Strings(files)

	for _, path := range files {
		if err := m.apply(ctx, path); err != nil {
			return err
		}
	}
	return nil
}

func (m *Migrator) apply(ctx context.Context, path string) error {
	log := m.log.With(slog.String("file", filepath.Base(path)))
	log.Info("applying migration")

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read migration %q: %w", path, err)
	}

	statement := strings.TrimSpace(string(data))
	if statement == "" {
		log.Warn("empty migration, skipping")
		return nil
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %q: %w", path, err)
	}

	if _, err := tx.ExecContext(ctx, statement); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			log.Error("rollback failed", slog.Any("error", rbErr))
		}
		return fmt.Errorf("execute migration %q: %w", path, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %q: %w", path, err)
	}
	return nil
}
