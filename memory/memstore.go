package memory

import (
	"context"
	"sync"
)

// MemStore keeps artifacts in process memory. Nothing survives a restart;
// it backs tests and ephemeral sessions.
type MemStore struct {
	locks *artifactLocks

	mu     sync.RWMutex
	values map[Artifact]string
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{locks: newArtifactLocks(), values: make(map[Artifact]string)}
}

func (s *MemStore) Get(ctx context.Context, a Artifact) (string, error) {
	if err := checkArtifact(a, "get"); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", &StorageError{Artifact: a, Op: "get", Err: err}
	}
	return s.load(a), nil
}

func (s *MemStore) Set(ctx context.Context, a Artifact, value string) error {
	if err := checkArtifact(a, "set"); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return &StorageError{Artifact: a, Op: "set", Err: err}
	}
	unlock := s.locks.lock(a)
	defer unlock()
	s.store(a, value)
	return nil
}

func (s *MemStore) Update(ctx context.Context, a Artifact, fn UpdateFunc) error {
	if err := checkArtifact(a, "update"); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return &StorageError{Artifact: a, Op: "update", Err: err}
	}
	unlock := s.locks.lock(a)
	defer unlock()

	next, err := fn(s.load(a))
	if err != nil {
		return err
	}
	s.store(a, next)
	return nil
}

func (s *MemStore) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &StorageError{Op: "reset", Err: err}
	}
	unlock := s.locks.lockAll()
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[Artifact]string)
	return nil
}

func (s *MemStore) load(a Artifact) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.values[a]; ok {
		return v
	}
	return a.Default()
}

func (s *MemStore) store(a Artifact, v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[a] = v
}
