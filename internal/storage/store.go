// Package storage persists each user's entity collections as opaque JSON
// arrays in a single SQLite table, one row per (user, collection) pair. The
// layout mirrors the per-user namespaced keys the data originally lived
// under, so an exported blob can be re-imported byte for byte. The
// aggregation engine never touches this package; it only ever sees the
// decoded slices.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Collection names. One row per user per name.
const (
	ColTransactions  = "transactions"
	ColCategories    = "categories"
	ColBudgets       = "budgets"
	ColSubscriptions = "subscriptions"
	ColGoals         = "goals"
	ColSettings      = "settings"
)

// SystemNamespace holds cross-user records (the user registry).
const SystemNamespace = "_system"

// Store is the key/value blob layer. Reads return the raw JSON array; writes
// replace it wholesale. Read-modify-write sequences are serialised by the
// per-store mutex, which is plenty for a single-user tool.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (creating if needed) the SQLite file at dbPath and runs
// migrations.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrateSchema(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// migrateSchema applies any pending migration files to the collections table.
// migrate.Close tears down whatever handle it was given, so the schema run
// gets a throwaway connection instead of the pool Open just created.
func migrateSchema(dbPath string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migration files: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		db.Close()
		return fmt.Errorf("wrap migration connection: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		db.Close()
		return fmt.Errorf("prepare migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Get returns the stored JSON array for a collection, or "[]" when the row
// does not exist yet.
func (s *Store) Get(ctx context.Context, userID, name string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM collections WHERE user_id = ? AND name = ?`,
		userID, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return []byte("[]"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get collection %s/%s: %w", userID, name, err)
	}
	return data, nil
}

// Put replaces a collection's JSON array.
func (s *Store) Put(ctx context.Context, userID, name string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO collections (user_id, name, data, updated_at)
		 VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (user_id, name)
		 DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`,
		userID, name, data)
	if err != nil {
		return fmt.Errorf("put collection %s/%s: %w", userID, name, err)
	}
	slog.DebugContext(ctx, "Collection saved", "user", userID, "collection", name, "bytes", len(data))
	return nil
}

// DeleteAll removes every collection row in a user's namespace. Used by the
// settings page's clear-data action.
func (s *Store) DeleteAll(ctx context.Context, userID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM collections WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("delete collections for %s: %w", userID, err)
	}
	n, _ := res.RowsAffected()
	slog.InfoContext(ctx, "User data cleared", "user", userID, "collections", n)
	return nil
}
