package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	_ "modernc.org/sqlite"
)

const createTable = `CREATE TABLE IF NOT EXISTS snapshots (
	id         TEXT PRIMARY KEY,
	schema     INTEGER NOT NULL,
	created_at TEXT NOT NULL,
	data       BLOB NOT NULL
)`

// SQLiteStore keeps one msgpack-encoded snapshot in a SQLite database file.
// Thread-safe for concurrent access.
type SQLiteStore struct {
	mu   sync.Mutex
	path string
}

// NewSQLiteStore returns a store backed by the database at path. The file
// is created on the first Put.
func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) open(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", s.path, err)
	}
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating snapshot table: %w", err)
	}
	return db, nil
}

// Put replaces the stored snapshot with p.
func (s *SQLiteStore) Put(ctx context.Context, p *Payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := msgpack.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshots`); err != nil {
		return fmt.Errorf("clearing snapshots: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (id, schema, created_at, data) VALUES (?, ?, ?, ?)`,
		p.ID, int(p.Schema), p.CreatedAt.Format(time.RFC3339Nano), data,
	); err != nil {
		return fmt.Errorf("inserting snapshot: %w", err)
	}
	return tx.Commit()
}

// Get returns the stored snapshot.
func (s *SQLiteStore) Get(ctx context.Context) (*Payload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s does not exist", ErrSnapshotNotFound, s.path)
		}
		return nil, err
	}
	db, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var schema int
	var data []byte
	err = db.QueryRowContext(ctx,
		`SELECT schema, data FROM snapshots ORDER BY created_at DESC LIMIT 1`,
	).Scan(&schema, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s is empty", ErrSnapshotNotFound, s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	if schema != int(SchemaVersion) {
		return nil, fmt.Errorf("%w: found %d, want %d", ErrSchemaMismatch, schema, SchemaVersion)
	}

	var p Payload
	if err := msgpack.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return &p, nil
}

// Drop deletes the database file. It reports whether a file was removed.
func (s *SQLiteStore) Drop() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
