// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/termfolio/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for local settings and server aggregates.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single connection serializes writers; the TUI and the server are
	// both low-traffic.
	db.SetMaxOpenConns(1)
	store := &Store{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS analytics_totals (
			event TEXT PRIMARY KEY,
			count INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS analytics_commands (
			command TEXT PRIMARY KEY,
			count INTEGER NOT NULL,
			last_used_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_analytics_commands_count ON analytics_commands(count);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the raw value stored under key. ok is false when the key is absent.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Put stores value under key, replacing any previous value.
func (s *Store) Put(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, s.now().Format(time.RFC3339Nano))
	return err
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	return err
}

// RecordEvent increments the aggregate counter for event and, when command is
// non-empty, the per-command usage row.
func (s *Store) RecordEvent(ctx context.Context, event, command string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO analytics_totals (event, count) VALUES (?, 1)
		 ON CONFLICT(event) DO UPDATE SET count = count + 1`, event)
	if err != nil {
		return err
	}
	if command != "" {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO analytics_commands (command, count, last_used_at) VALUES (?, 1, ?)
			 ON CONFLICT(command) DO UPDATE SET count = count + 1, last_used_at = excluded.last_used_at`,
			command, s.now().Format(time.RFC3339Nano))
		if err != nil {
			return err
		}
	}
	err = tx.Commit()
	return err
}

// ListEventTotals returns all event aggregates ordered by event name.
func (s *Store) ListEventTotals(ctx context.Context) ([]model.EventTotal, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT event, count FROM analytics_totals ORDER BY event ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.EventTotal
	for rows.Next() {
		var total model.EventTotal
		if err := rows.Scan(&total.Event, &total.Count); err != nil {
			return nil, err
		}
		result = append(result, total)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListTopCommands returns the most used commands, highest count first.
func (s *Store) ListTopCommands(ctx context.Context, limit int) ([]model.CommandUsage, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT command, count, last_used_at FROM analytics_commands
		 ORDER BY count DESC, command ASC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.CommandUsage
	for rows.Next() {
		var usage model.CommandUsage
		var lastUsed string
		if err := rows.Scan(&usage.Command, &usage.Count, &lastUsed); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, lastUsed)
		if err != nil {
			return nil, err
		}
		usage.LastUsedAt = parsed
		result = append(result, usage)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
