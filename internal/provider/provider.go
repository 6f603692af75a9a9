// Package provider adapts language-model backends to the two calls the
// memory pipeline needs: a blocking completion and a token stream.
package provider

import (
	"context"
	"fmt"
	"strings"
)

// Model is a language-model collaborator.
type Model interface {
	// Name identifies the backend in logs and errors.
	Name() string
	// Invoke returns the complete reply to prompt.
	Invoke(ctx context.Context, prompt string) (string, error)
	// Stream starts generating a reply to prompt. The stream is finite,
	// ordered and cannot be restarted.
	Stream(ctx context.Context, prompt string) (Stream, error)
}

// Stream yields text fragments in generation order.
//
//	for s.Next() {
//		use(s.Current())
//	}
//	if err := s.Err(); err != nil { ... }
type Stream interface {
	Next() bool
	Current() string
	Err() error
	Close() error
}

// InvocationError reports a failed model call or a broken stream.
type InvocationError struct {
	Provider string
	Op       string // invoke, stream, or read
	Err      error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }

// Collect drains s and returns the concatenated fragments.
func Collect(s Stream) (string, error) {
	defer s.Close()
	var b strings.Builder
	for s.Next() {
		b.WriteString(s.Current())
	}
	return b.String(), s.Err()
}
