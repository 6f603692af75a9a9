// Package windowing_test contains tests for the heuristic token counter.
// Tests focus on rune counting and deterministic overhead application.
package windowing_test

import (
	"strings"
	"testing"

	"github.com/petasbytes/go-astra/internal/windowing"
)

func TestHeuristicCounter_CountText_RoundsUpRunes(t *testing.T) {
	h := windowing.HeuristicCounter{}
	cases := map[string]int{
		"":                      0,
		"abc":                   1,
		"abcd":                  1,
		"abcde":                 2,
		strings.Repeat("ü", 8): 2, // multibyte runes count once
	}
	for in, want := range cases {
		if got := h.CountText(in); got != want {
			t.Fatalf("CountText(%q)=%d want=%d", in, got, want)
		}
	}
}

// Guard: changing the per-turn overhead must be deliberate.
func TestHeuristicCounter_TurnOverheadGuard(t *testing.T) {
	h := windowing.HeuristicCounter{}
	if got := h.CountTurn(U("")); got != 2 {
		t.Fatalf("per-turn overhead changed: got=%d want=2", got)
	}
	if got := h.CountTurn(A("abcdefgh")); got != 4 {
		t.Fatalf("got=%d want=4", got)
	}
}
