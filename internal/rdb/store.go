// Package rdb is the record database engine behind the catalog: a SQLite
// file holding self-describing CBOR records, a compiler for a small filter
// language, and a pull-based cursor over matching records.
package rdb

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// ErrClosed is returned when an operation is attempted on a closed store.
var ErrClosed = errors.New("rdb: store is closed")

// Store is a handle to a record database file. A Store owns its underlying
// connection; cursors opened from it are valid only while it stays open.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if necessary) the record database at path with WAL
// mode enabled. The parent directory is created if it does not exist.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && path != ":memory:" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Single writer connection for SQLite.
	db.SetMaxOpenConns(1)

	return &Store{db: db, path: path}, nil
}

// Migrate runs all pending schema migrations.
func (s *Store) Migrate() error {
	if s.db == nil {
		return ErrClosed
	}
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.Up(s.db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Path returns the database file path the store was opened with.
func (s *Store) Path() string { return s.path }

// Insert appends one map-shaped record. Keys are free-form; values may be
// strings, unsigned integers, byte slices, or nested maps of the same.
func (s *Store) Insert(ctx context.Context, rec map[string]any) error {
	if s.db == nil {
		return ErrClosed
	}
	blob, err := Encode(rec)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	return s.InsertRaw(ctx, blob)
}

// InsertRaw appends one pre-encoded record blob. Callers that stage records
// outside this process (e.g. catalog distribution tooling) use this to
// avoid a decode/re-encode round trip.
func (s *Store) InsertRaw(ctx context.Context, blob []byte) error {
	if s.db == nil {
		return ErrClosed
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO records (data) VALUES (?)`, blob); err != nil {
		return fmt.Errorf("inserting record: %w", err)
	}
	return nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	if s.db == nil {
		return 0, ErrClosed
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return n, nil
}

// Close releases the underlying connection. Safe to call on a store whose
// open failed partway; subsequent operations report ErrClosed.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	if err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}
