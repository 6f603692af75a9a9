package windowing_test

import (
	"testing"

	"github.com/petasbytes/go-astra/internal/windowing"
	"github.com/petasbytes/go-astra/memory"
)

func TestPrepareSummaryWindow_TakesTailAndPairs(t *testing.T) {
	turns := exchange(12) // 24 turns
	exs, stats := windowing.PrepareSummaryWindow(turns, 20, windowing.HeuristicCounter{})

	if stats.Considered != 20 || stats.IncludedPairs != 10 || stats.SkippedGroups != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(exs) != 10 {
		t.Fatalf("unexpected exchange count: %d", len(exs))
	}
	// window starts at turn 4 (u2)
	if exs[0].User.Text != "c" || exs[9].Agent.Text != "L" {
		t.Fatalf("unexpected window bounds: first=%+v last=%+v", exs[0], exs[9])
	}
	if stats.Tokens != 10*2*(1+2) {
		t.Fatalf("unexpected token estimate: %d", stats.Tokens)
	}
}

func TestPrepareSummaryWindow_SkipsMisaligned(t *testing.T) {
	turns := []memory.Turn{A("orphan"), U("q1"), A("r1"), U("q2"), A("r2")}
	exs, stats := windowing.PrepareSummaryWindow(turns, 20, nil)

	if len(exs) != 0 {
		t.Fatalf("expected no exchanges, got %+v", exs)
	}
	if stats.SkippedGroups != 3 || stats.Tokens != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestPrepareSummaryWindow_EmptyAndZeroSize(t *testing.T) {
	if exs, stats := windowing.PrepareSummaryWindow(nil, 20, nil); exs != nil || stats != (windowing.Stats{}) {
		t.Fatalf("expected empty result, got %+v %+v", exs, stats)
	}
	if exs, _ := windowing.PrepareSummaryWindow(exchange(2), 0, nil); exs != nil {
		t.Fatalf("expected empty window for size 0, got %+v", exs)
	}
}

func TestRenderExchanges(t *testing.T) {
	got := windowing.RenderExchanges([]windowing.Exchange{
		{User: U("hi"), Agent: A("hello")},
		{User: U("how are you"), Agent: A("fine")},
	})
	want := "User: hi\nAgent: hello\n\nUser: how are you\nAgent: fine"
	if got != want {
		t.Fatalf("got=%q want=%q", got, want)
	}
	if windowing.RenderExchanges(nil) != "" {
		t.Fatalf("expected empty rendering")
	}
}
