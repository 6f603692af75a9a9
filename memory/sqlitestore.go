package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

const artifactsSchema = `
CREATE TABLE IF NOT EXISTS artifacts (
	name       TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`

// SQLiteStore keeps the artifacts as rows of a single SQLite table. Each
// write runs in its own transaction. Across processes, an Update whose read
// was overtaken by another process's commit fails with a busy error rather
// than overwriting it.
type SQLiteStore struct {
	db    *sql.DB
	locks *artifactLocks
}

// OpenSQLite opens (creating if needed) the database at path. Use ":memory:"
// for a throwaway database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One connection: SQLite has a single writer and ":memory:" databases
	// are per-connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma %q: %w", p, err)
		}
	}
	if _, err := db.Exec(artifactsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create artifacts table: %w", err)
	}
	return &SQLiteStore{db: db, locks: newArtifactLocks()}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Get(ctx context.Context, a Artifact) (string, error) {
	if err := checkArtifact(a, "get"); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", &StorageError{Artifact: a, Op: "get", Err: err}
	}
	v, err := s.get(ctx, s.db, a)
	if err != nil {
		return "", &StorageError{Artifact: a, Op: "get", Err: err}
	}
	return v, nil
}

func (s *SQLiteStore) Set(ctx context.Context, a Artifact, value string) error {
	if err := checkArtifact(a, "set"); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return &StorageError{Artifact: a, Op: "set", Err: err}
	}
	unlock := s.locks.lock(a)
	defer unlock()

	if err := s.put(ctx, s.db, a, value); err != nil {
		return &StorageError{Artifact: a, Op: "set", Err: err}
	}
	return nil
}

func (s *SQLiteStore) Update(ctx context.Context, a Artifact, fn UpdateFunc) error {
	if err := checkArtifact(a, "update"); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return &StorageError{Artifact: a, Op: "update", Err: err}
	}
	unlock := s.locks.lock(a)
	defer unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &StorageError{Artifact: a, Op: "update", Err: err}
	}
	defer tx.Rollback()

	cur, err := s.get(ctx, tx, a)
	if err != nil {
		return &StorageError{Artifact: a, Op: "update", Err: err}
	}
	next, err := fn(cur)
	if err != nil {
		return err
	}
	if err := s.put(ctx, tx, a, next); err != nil {
		return &StorageError{Artifact: a, Op: "update", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return &StorageError{Artifact: a, Op: "update", Err: err}
	}
	return nil
}

func (s *SQLiteStore) Reset(ctx context.Context) error {
	unlock := s.locks.lockAll()
	defer unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM artifacts`); err != nil {
		return &StorageError{Op: "reset", Err: err}
	}
	return nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLiteStore) get(ctx context.Context, q querier, a Artifact) (string, error) {
	var v string
	err := q.QueryRowContext(ctx, `SELECT value FROM artifacts WHERE name = ?`, string(a)).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return a.Default(), nil
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (s *SQLiteStore) put(ctx context.Context, q querier, a Artifact, v string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO artifacts (name, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		string(a), v, time.Now().UTC().Format(time.RFC3339Nano))
	return err
}
