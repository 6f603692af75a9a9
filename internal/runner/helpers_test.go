package runner_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/petasbytes/go-astra/internal/provider/providertest"
	"github.com/petasbytes/go-astra/internal/runner"
	"github.com/petasbytes/go-astra/memory"
)

var errTransport = errors.New("connection reset")

// recSink records what a session forwards.
type recSink struct {
	mu     sync.Mutex
	tokens []string
	done   int
	// failAt, when > 0, fails the Send of that 1-based token.
	failAt int
	onSend func()
}

func (s *recSink) Send(tok string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAt > 0 && len(s.tokens)+1 == s.failAt {
		return errTransport
	}
	s.tokens = append(s.tokens, tok)
	if s.onSend != nil {
		s.onSend()
	}
	return nil
}

func (s *recSink) Done() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done++
	return nil
}

type recSynth struct {
	got []string
	err error
}

func (s *recSynth) Synthesize(_ context.Context, text string) error {
	s.got = append(s.got, text)
	return s.err
}

func fixedNow() time.Time { return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC) }

func newRunner(t *testing.T, store memory.Store, model *providertest.Scripted, opts runner.Options) *runner.Runner {
	t.Helper()
	opts.Now = fixedNow
	if opts.Logger == nil {
		opts.Logger = zaptest.NewLogger(t)
	}
	return runner.New(store, model, opts)
}

func logTurns(t *testing.T, store memory.Store) []memory.Turn {
	t.Helper()
	turns, err := memory.NewConversationLog(store).All(context.Background())
	require.NoError(t, err)
	return turns
}

func get(t *testing.T, store memory.Store, a memory.Artifact) string {
	t.Helper()
	v, err := store.Get(context.Background(), a)
	require.NoError(t, err)
	return v
}
