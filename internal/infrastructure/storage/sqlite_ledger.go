package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"github.com/nurefexc/rss-bridge-ntfy/internal/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS seen_entries (
	hash TEXT PRIMARY KEY,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`

// SQLiteLedger is the durable record of fingerprints already notified. The
// primary key rejects duplicate fingerprints even under concurrent use.
type SQLiteLedger struct {
	db *sql.DB
}

var _ ports.Ledger = (*SQLiteLedger)(nil)

// Open creates the ledger file and schema if absent and returns a handle
// meant to live for the process lifetime.
func Open(path string) (*SQLiteLedger, error) {
	if path == "" {
		return nil, errors.New("ledger path is required")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create ledger dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	_, _ = db.Exec("PRAGMA busy_timeout = 5000")
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init ledger schema: %w", err)
	}

	return &SQLiteLedger{db: db}, nil
}

// Has reports whether the fingerprint was already recorded.
func (l *SQLiteLedger) Has(ctx context.Context, fingerprint string) (bool, error) {
	query, args, err := sq.Select("1").
		From("seen_entries").
		Where(sq.Eq{"hash": fingerprint}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var one int
	err = l.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query seen entry: %w", err)
	}

	return true, nil
}

// Record marks a fingerprint as seen. A duplicate key is treated as already
// recorded, not an error.
func (l *SQLiteLedger) Record(ctx context.Context, fingerprint string) error {
	query, args, err := sq.Insert("seen_entries").
		Options("OR IGNORE").
		Columns("hash", "created_at").
		Values(fingerprint, time.Now().UTC().Format(time.RFC3339)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := l.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("record seen entry: %w", err)
	}

	return nil
}

// Close releases the storage handle.
func (l *SQLiteLedger) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}
