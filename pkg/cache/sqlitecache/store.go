package sqlitecache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	builder "github.com/goliatone/go-pagebuilder/components/builder"
)

// Store is a durable key/value cache backed by a single SQLite file.
type Store struct {
	conn *sql.DB
	ttl  time.Duration
	now  func() time.Time
}

var _ builder.CacheStore = (*Store)(nil)

// Options configures the store. A zero TTL keeps entries until overwritten.
type Options struct {
	TTL time.Duration
}

// Open opens (or creates) the SQLite file at path.
func Open(path string, opts Options) (*Store, error) {
	if path == "" {
		return nil, errors.New("sqlitecache: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("sqlitecache: create directory: %w", err)
	}
	conn, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlitecache: open: %w", err)
	}
	conn.SetMaxOpenConns(1)

	store := &Store{conn: conn, ttl: opts.TTL, now: time.Now}
	if err := store.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlitecache: migrate: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	_, err := s.conn.Exec(`CREATE TABLE IF NOT EXISTS cache_entries (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		expires_at INTEGER NOT NULL DEFAULT 0,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	return err
}

// Get returns the stored value. Expired entries read as missing.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		value     []byte
		expiresAt int64
	)
	err := s.conn.QueryRowContext(ctx,
		`SELECT value, expires_at FROM cache_entries WHERE key = ?`, key,
	).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sqlitecache: get %s: %w", key, err)
	}
	if expiresAt > 0 && s.now().UnixNano() >= expiresAt {
		return nil, false, nil
	}
	return value, true, nil
}

// Set upserts the value.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	var expiresAt int64
	if s.ttl > 0 {
		expiresAt = s.now().Add(s.ttl).UnixNano()
	}
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO cache_entries (key, value, expires_at, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at, updated_at = CURRENT_TIMESTAMP`,
		key, value, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("sqlitecache: set %s: %w", key, err)
	}
	return nil
}

// Delete removes the entry, if present.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("sqlitecache: delete %s: %w", key, err)
	}
	return nil
}
