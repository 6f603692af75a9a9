// Package providertest provides a scripted provider.Model for tests.
package providertest

import (
	"context"
	"errors"
	"sync"

	"github.com/petasbytes/go-astra/internal/provider"
)

// ErrScriptExhausted is returned when Invoke is called more times than
// replies were scripted.
var ErrScriptExhausted = errors.New("providertest: no scripted reply left")

// Reply is one scripted Invoke outcome.
type Reply struct {
	Text string
	Err  error
}

// Scripted replays canned completions and token streams and records every
// prompt it receives. It is safe for concurrent use.
type Scripted struct {
	mu sync.Mutex

	// Replies are consumed in order by Invoke.
	Replies []Reply
	// Tokens is emitted by every Stream call.
	Tokens []string
	// FailAfter, when > 0, breaks the stream with StreamErr after that many tokens.
	FailAfter int
	StreamErr error
	// OpenErr fails Stream before any token.
	OpenErr error
	// Gate, when set, is received from before each token is emitted.
	Gate chan struct{}

	Prompts       []string
	StreamPrompts []string
}

// Texts scripts successful Invoke replies.
func Texts(texts ...string) []Reply {
	out := make([]Reply, len(texts))
	for i, t := range texts {
		out[i] = Reply{Text: t}
	}
	return out
}

func (s *Scripted) Name() string { return "scripted" }

func (s *Scripted) Invoke(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Prompts = append(s.Prompts, prompt)
	if err := ctx.Err(); err != nil {
		return "", &provider.InvocationError{Provider: s.Name(), Op: "invoke", Err: err}
	}
	if len(s.Replies) == 0 {
		return "", &provider.InvocationError{Provider: s.Name(), Op: "invoke", Err: ErrScriptExhausted}
	}
	r := s.Replies[0]
	s.Replies = s.Replies[1:]
	if r.Err != nil {
		return "", &provider.InvocationError{Provider: s.Name(), Op: "invoke", Err: r.Err}
	}
	return r.Text, nil
}

func (s *Scripted) Stream(ctx context.Context, prompt string) (provider.Stream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.StreamPrompts = append(s.StreamPrompts, prompt)
	if s.OpenErr != nil {
		return nil, &provider.InvocationError{Provider: s.Name(), Op: "stream", Err: s.OpenErr}
	}
	err := s.StreamErr
	if s.FailAfter > 0 && err == nil {
		err = errors.New("stream broken")
	}
	return &stream{tokens: append([]string(nil), s.Tokens...), failAfter: s.FailAfter, failErr: err, gate: s.Gate}, nil
}

// InvokeCount returns how many times Invoke was called.
func (s *Scripted) InvokeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Prompts)
}

type stream struct {
	tokens    []string
	failAfter int
	failErr   error
	gate      chan struct{}

	i      int
	cur    string
	err    error
	closed bool
}

func (st *stream) Next() bool {
	if st.err != nil || st.closed {
		return false
	}
	if st.failAfter > 0 && st.i >= st.failAfter {
		st.err = &provider.InvocationError{Provider: "scripted", Op: "read", Err: st.failErr}
		return false
	}
	if st.i >= len(st.tokens) {
		return false
	}
	if st.gate != nil {
		<-st.gate
	}
	st.cur = st.tokens[st.i]
	st.i++
	return true
}

func (st *stream) Current() string { return st.cur }
func (st *stream) Err() error      { return st.err }
func (st *stream) Close() error {
	st.closed = true
	return nil
}
