package memory

import (
	"context"
	"fmt"
)

// Artifact names one of the five persisted memory values.
type Artifact string

const (
	ChatLog        Artifact = "chat_log"
	RollingSummary Artifact = "chat_summary"
	SummaryHistory Artifact = "lt_summary_history"
	LongTermMemory Artifact = "long_term_memory"
	Personality    Artifact = "personality"
)

// DefaultPersonality is the profile used until one is configured.
const DefaultPersonality = "Supportive, strategic, emotionally aware, efficient, proactive, insightful, and structured."

// Artifacts lists every artifact in a stable order.
func Artifacts() []Artifact {
	return []Artifact{ChatLog, RollingSummary, SummaryHistory, LongTermMemory, Personality}
}

// Default returns the value an artifact holds before it is first written.
func (a Artifact) Default() string {
	switch a {
	case ChatLog:
		return "[]"
	case Personality:
		return DefaultPersonality
	default:
		return ""
	}
}

// Valid reports whether a is one of the known artifacts.
func (a Artifact) Valid() bool {
	for _, k := range Artifacts() {
		if a == k {
			return true
		}
	}
	return false
}

// UpdateFunc computes the next value of an artifact from its current value.
// Returning an error aborts the update and leaves the stored value untouched.
type UpdateFunc func(current string) (string, error)

// Store is durable get/set storage for the memory artifacts.
//
// Implementations must make Update mutually exclusive per artifact: the
// function observes the latest value and its result replaces it wholesale.
type Store interface {
	Get(ctx context.Context, a Artifact) (string, error)
	Set(ctx context.Context, a Artifact, value string) error
	Update(ctx context.Context, a Artifact, fn UpdateFunc) error
	// Reset writes every artifact's default value.
	Reset(ctx context.Context) error
}

// StorageError reports an artifact that could not be read or written.
type StorageError struct {
	Artifact Artifact
	Op       string
	Err      error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("memory: %s %s: %v", e.Op, e.Artifact, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func checkArtifact(a Artifact, op string) error {
	if !a.Valid() {
		return &StorageError{Artifact: a, Op: op, Err: fmt.Errorf("unknown artifact")}
	}
	return nil
}
