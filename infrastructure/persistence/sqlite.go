package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"flowboard/domain/core/aggregates"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS boards (
	key TEXT PRIMARY KEY,
	doc TEXT NOT NULL,
	revision INTEGER NOT NULL DEFAULT 1,
	updated_at TEXT NOT NULL
);
`

// SQLiteStore keeps one row per board
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens the database named by dsn (a path or a file: URI),
// creating parent directories and the schema.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	if path := sqlitePath(dsn); path != "" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("sqlite mkdir: %w", err)
			}
		}
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	// one writer; WAL lets readers proceed alongside it
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite %s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

func sqlitePath(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" {
		return ""
	}
	return path
}

// Load implements ports.DocumentStore
func (s *SQLiteStore) Load(ctx context.Context, key string) (*aggregates.DocumentState, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM boards WHERE key = ?`, key).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite load %s: %w", key, err)
	}
	return decode([]byte(doc))
}

// Save implements ports.DocumentStore
func (s *SQLiteStore) Save(ctx context.Context, key string, state aggregates.DocumentState) error {
	data, err := encode(state)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO boards (key, doc, revision, updated_at) VALUES (?, ?, 1, ?)
ON CONFLICT(key) DO UPDATE SET
	doc = excluded.doc,
	revision = boards.revision + 1,
	updated_at = excluded.updated_at`,
		key, string(data), s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("sqlite save %s: %w", key, err)
	}
	return nil
}

// Revision returns how many times key has been written, zero when absent
func (s *SQLiteStore) Revision(ctx context.Context, key string) (int, error) {
	var rev int
	err := s.db.QueryRowContext(ctx, `SELECT revision FROM boards WHERE key = ?`, key).Scan(&rev)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return rev, err
}

// Close implements ports.ClosableStore
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
