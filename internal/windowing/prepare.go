package windowing

import (
	"strings"

	"github.com/petasbytes/go-astra/memory"
)

// Exchange is one user turn and the agent reply that followed it.
type Exchange struct {
	User  memory.Turn
	Agent memory.Turn
}

// Stats summarizes the result of window preparation.
//
// Fields:
// - Considered: turns inside the tail window.
// - IncludedPairs: exchanges kept.
// - SkippedGroups: mismatched or dangling groups dropped.
// - Tokens: estimated tokens of the kept exchanges.
type Stats struct {
	Considered    int
	IncludedPairs int
	SkippedGroups int
	Tokens        int
}

// PrepareSummaryWindow takes the last size turns and returns the well-formed
// exchanges among them, oldest first.
//
// Rules:
// - The window is turns[len-size:], or all turns when fewer exist.
// - Pairing starts at the first turn of the window, never realigning.
// - size <= 0 yields an empty window.
func PrepareSummaryWindow(turns []memory.Turn, size int, c TokenCounter) ([]Exchange, Stats) {
	if size <= 0 || len(turns) == 0 {
		return nil, Stats{}
	}
	if len(turns) > size {
		turns = turns[len(turns)-size:]
	}

	stats := Stats{Considered: len(turns)}
	var out []Exchange
	for _, g := range GroupTurns(turns) {
		if g.Kind != GroupPair {
			stats.SkippedGroups++
			continue
		}
		ex := Exchange{User: turns[g.Start], Agent: turns[g.Start+1]}
		if c != nil {
			stats.Tokens += c.CountTurn(ex.User) + c.CountTurn(ex.Agent)
		}
		out = append(out, ex)
	}
	stats.IncludedPairs = len(out)
	return out, stats
}

// RenderExchanges renders each exchange as a "User:" line and an "Agent:"
// line, with a blank line between exchanges.
func RenderExchanges(exs []Exchange) string {
	parts := make([]string, 0, len(exs))
	for _, ex := range exs {
		parts = append(parts, "User: "+ex.User.Text+"\nAgent: "+ex.Agent.Text)
	}
	return strings.Join(parts, "\n\n")
}
