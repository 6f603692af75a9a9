package memory_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petasbytes/go-astra/memory"
)

type backend struct {
	name string
	open func(t *testing.T) memory.Store
}

func backends() []backend {
	return []backend{
		{"mem", func(t *testing.T) memory.Store { return memory.NewMemStore() }},
		{"file", func(t *testing.T) memory.Store {
			s, err := memory.NewFileStore(t.TempDir())
			require.NoError(t, err)
			return s
		}},
		{"sqlite", func(t *testing.T) memory.Store {
			s, err := memory.OpenSQLite(filepath.Join(t.TempDir(), "astra.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		}},
	}
}

func TestStore_DefaultsOnFirstUse(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			ctx := context.Background()
			for _, a := range memory.Artifacts() {
				v, err := s.Get(ctx, a)
				require.NoError(t, err)
				assert.Equal(t, a.Default(), v, "artifact %s", a)
			}
		})
	}
}

func TestStore_SetGetAndReset(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			ctx := context.Background()

			for _, a := range memory.Artifacts() {
				require.NoError(t, s.Set(ctx, a, "value of "+string(a)))
			}
			for _, a := range memory.Artifacts() {
				v, err := s.Get(ctx, a)
				require.NoError(t, err)
				assert.Equal(t, "value of "+string(a), v)
			}

			require.NoError(t, s.Reset(ctx))
			for _, a := range memory.Artifacts() {
				v, err := s.Get(ctx, a)
				require.NoError(t, err)
				assert.Equal(t, a.Default(), v, "artifact %s after reset", a)
			}
		})
	}
}

func TestStore_UpdateErrorLeavesValue(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			ctx := context.Background()
			require.NoError(t, s.Set(ctx, memory.RollingSummary, "keep me"))

			boom := errors.New("boom")
			err := s.Update(ctx, memory.RollingSummary, func(string) (string, error) { return "", boom })
			require.ErrorIs(t, err, boom)

			v, err := s.Get(ctx, memory.RollingSummary)
			require.NoError(t, err)
			assert.Equal(t, "keep me", v)
		})
	}
}

func TestStore_UpdateIsSerializedPerArtifact(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			ctx := context.Background()
			require.NoError(t, s.Set(ctx, memory.SummaryHistory, ""))

			const n = 20
			var wg sync.WaitGroup
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					err := s.Update(ctx, memory.SummaryHistory, func(cur string) (string, error) {
						return memory.AppendRecord(cur, fmt.Sprintf("record %d", i)), nil
					})
					assert.NoError(t, err)
				}(i)
			}
			wg.Wait()

			v, err := s.Get(ctx, memory.SummaryHistory)
			require.NoError(t, err)
			assert.Len(t, memory.SplitHistory(v), n, "no update may be lost")
		})
	}
}

func TestStore_UnknownArtifact(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			_, err := s.Get(context.Background(), memory.Artifact("nope"))
			var se *memory.StorageError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, "get", se.Op)
		})
	}
}

func TestStore_CanceledContext(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			err := s.Set(ctx, memory.Personality, "x")
			require.Error(t, err)
			assert.ErrorIs(t, err, context.Canceled)
		})
	}
}

func TestFileStore_UsesArtifactFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := memory.NewFileStore(dir)
	require.NoError(t, err)

	for _, name := range []string{"chat_log.json", "chat_summary.txt", "lt_summary_history.txt", "long_term_memory.txt", "personality.txt"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	require.NoError(t, s.Set(context.Background(), memory.LongTermMemory, "likes tea"))
	reopened, err := memory.NewFileStore(dir)
	require.NoError(t, err)
	v, err := reopened.Get(context.Background(), memory.LongTermMemory)
	require.NoError(t, err)
	assert.Equal(t, "likes tea", v, "value survives reopening")
}

func TestSQLiteStore_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "astra.db")
	s, err := memory.OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(context.Background(), memory.Personality, "dry wit"))
	require.NoError(t, s.Close())

	s, err = memory.OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()
	v, err := s.Get(context.Background(), memory.Personality)
	require.NoError(t, err)
	assert.Equal(t, "dry wit", v)
}
