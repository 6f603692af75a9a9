package windowing

import (
	"unicode/utf8"

	"github.com/petasbytes/go-astra/memory"
)

// TokenCounter estimates token cost for prompt text and stored turns.
type TokenCounter interface {
	CountText(s string) int
	CountTurn(t memory.Turn) int
}

// HeuristicCounter is the default deterministic estimator.
// Rules:
// - text: one token per four runes, rounded up
// - turns: text estimate plus a fixed per-turn overhead for the role label
type HeuristicCounter struct{}

// Fixed per-turn overhead; changing this requires updating the guard test.
const turnOverhead = 2

const runesPerToken = 4

func (HeuristicCounter) CountText(s string) int {
	n := utf8.RuneCountInString(s)
	return (n + runesPerToken - 1) / runesPerToken
}

func (h HeuristicCounter) CountTurn(t memory.Turn) int {
	return h.CountText(t.Text) + turnOverhead
}
