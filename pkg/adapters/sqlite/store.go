// Package sqlite provides a HistoryStore backed by an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultTable is the table holding shown candidates.
const DefaultTable = "shown_candidates"

// HistoryStore implements ports.HistoryStore using SQLite.
// The schema is never created implicitly; call Provision first.
type HistoryStore struct {
	db    *sql.DB
	table string
}

type Option func(*HistoryStore)

// WithTable overrides the table name.
func WithTable(table string) Option {
	return func(s *HistoryStore) {
		s.table = table
	}
}

// Open opens (or creates) the database file at dbPath.
func Open(dbPath string, opts ...Option) (*HistoryStore, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &HistoryStore{db: db, table: DefaultTable}
	for _, opt := range opts {
		opt(store)
	}
	return store, nil
}

// Provisioned reports whether the history table exists.
func (s *HistoryStore) Provisioned(ctx context.Context) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, s.table,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check table: %w", err)
	}
	return n > 0, nil
}

// Provision creates the history table if it does not exist.
func (s *HistoryStore) Provision(ctx context.Context) error {
	query := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %[1]s (
		user_id INTEGER NOT NULL,
		candidate_id INTEGER NOT NULL,
		shown_at INTEGER NOT NULL,
		PRIMARY KEY (user_id, candidate_id)
	);
	CREATE INDEX IF NOT EXISTS idx_%[1]s_user ON %[1]s(user_id);
	`, s.table)

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// ReadHistory returns the ids shown to the user.
func (s *HistoryStore) ReadHistory(ctx context.Context, userID int64) ([]int64, error) {
	query := fmt.Sprintf(`SELECT candidate_id FROM %s WHERE user_id = ? ORDER BY candidate_id`, s.table)
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return ids, nil
}

// AppendHistory inserts ids in one transaction, ignoring ids already present.
func (s *HistoryStore) AppendHistory(ctx context.Context, userID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := fmt.Sprintf(`INSERT OR IGNORE INTO %s (user_id, candidate_id, shown_at) VALUES (?, ?, ?)`, s.table)
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare append: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, userID, id, now); err != nil {
			return fmt.Errorf("append candidate %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}

// ListUsers returns every user with a recorded history.
func (s *HistoryStore) ListUsers(ctx context.Context) ([]int64, error) {
	query := fmt.Sprintf(`SELECT DISTINCT user_id FROM %s ORDER BY user_id`, s.table)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, id)
	}
	return users, rows.Err()
}

// Ping verifies database connectivity.
func (s *HistoryStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *HistoryStore) Close() error {
	return s.db.Close()
}
