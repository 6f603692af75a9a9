package memory

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/petasbytes/go-astra/internal/fsops"
	"github.com/petasbytes/go-astra/internal/safety"
)

var fileNames = map[Artifact]string{
	ChatLog:        "chat_log.json",
	RollingSummary: "chat_summary.txt",
	SummaryHistory: "lt_summary_history.txt",
	LongTermMemory: "long_term_memory.txt",
	Personality:    "personality.txt",
}

// FileStore keeps each artifact in its own file under a directory.
// Writes replace the file atomically. Update is exclusive only within one
// process; processes sharing a directory can lose updates. Use the SQLite
// backend for that.
type FileStore struct {
	dir   string
	locks *artifactLocks
}

// NewFileStore opens (creating if needed) the directory at dir and seeds any
// missing artifact file with its default value.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create memory dir: %w", err)
	}
	abs, err := safety.ResolveRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve memory dir: %w", err)
	}

	s := &FileStore{dir: abs, locks: newArtifactLocks()}
	for _, a := range Artifacts() {
		_, err := fsops.ReadFile(s.dir, fileNames[a])
		if err == nil {
			continue
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, &StorageError{Artifact: a, Op: "open", Err: err}
		}
		if err := fsops.WriteFile(s.dir, fileNames[a], a.Default()); err != nil {
			return nil, &StorageError{Artifact: a, Op: "init", Err: err}
		}
	}
	return s, nil
}

// Dir returns the absolute directory holding the artifact files.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) Get(ctx context.Context, a Artifact) (string, error) {
	if err := checkArtifact(a, "get"); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", &StorageError{Artifact: a, Op: "get", Err: err}
	}
	return s.read(a)
}

func (s *FileStore) Set(ctx context.Context, a Artifact, value string) error {
	if err := checkArtifact(a, "set"); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return &StorageError{Artifact: a, Op: "set", Err: err}
	}
	unlock := s.locks.lock(a)
	defer unlock()
	return s.write(a, value)
}

func (s *FileStore) Update(ctx context.Context, a Artifact, fn UpdateFunc) error {
	if err := checkArtifact(a, "update"); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return &StorageError{Artifact: a, Op: "update", Err: err}
	}
	unlock := s.locks.lock(a)
	defer unlock()

	cur, err := s.read(a)
	if err != nil {
		return err
	}
	next, err := fn(cur)
	if err != nil {
		return err
	}
	return s.write(a, next)
}

func (s *FileStore) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &StorageError{Op: "reset", Err: err}
	}
	unlock := s.locks.lockAll()
	defer unlock()

	for _, a := range Artifacts() {
		if err := s.write(a, a.Default()); err != nil {
			return err
		}
	}
	return nil
}

func (s *FileStore) read(a Artifact) (string, error) {
	v, err := fsops.ReadFile(s.dir, fileNames[a])
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return a.Default(), nil
		}
		return "", &StorageError{Artifact: a, Op: "read", Err: err}
	}
	return v, nil
}

func (s *FileStore) write(a Artifact, v string) error {
	if err := fsops.WriteFile(s.dir, fileNames[a], v); err != nil {
		return &StorageError{Artifact: a, Op: "write", Err: err}
	}
	return nil
}
