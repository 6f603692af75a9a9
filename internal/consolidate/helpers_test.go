package consolidate_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/petasbytes/go-astra/memory"
)

// seedLog stores turns as the chat log, bypassing ConversationLog so tests
// can build odd-length or malformed logs.
func seedLog(t *testing.T, store memory.Store, turns ...memory.Turn) {
	t.Helper()
	b, err := json.Marshal(turns)
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), memory.ChatLog, string(b)))
}

func exchanges(n int) []memory.Turn {
	var out []memory.Turn
	for i := 0; i < n; i++ {
		out = append(out,
			memory.Turn{Role: memory.RoleUser, Text: fmt.Sprintf("q%d", i)},
			memory.Turn{Role: memory.RoleAgent, Text: fmt.Sprintf("a%d", i)},
		)
	}
	return out
}

func seedHistory(t *testing.T, store memory.Store, records ...string) {
	t.Helper()
	require.NoError(t, store.Set(context.Background(), memory.SummaryHistory, memory.JoinHistory(records)))
}

func get(t *testing.T, store memory.Store, a memory.Artifact) string {
	t.Helper()
	v, err := store.Get(context.Background(), a)
	require.NoError(t, err)
	return v
}
