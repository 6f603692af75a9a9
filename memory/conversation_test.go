package memory_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petasbytes/go-astra/memory"
)

func fixedClock() func() time.Time {
	t0 := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	return func() time.Time { return t0 }
}

func TestConversationLog_EmptyOnFirstUse(t *testing.T) {
	log := memory.NewConversationLog(memory.NewMemStore())
	n, err := log.Len(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	all, err := log.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestConversationLog_AppendWritesPairWithSharedTimestamp(t *testing.T) {
	ctx := context.Background()
	log := memory.NewConversationLog(memory.NewMemStore()).WithClock(fixedClock())

	require.NoError(t, log.Append(ctx, "hi", "hello there"))

	turns, err := log.All(ctx)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, memory.Turn{Role: memory.RoleUser, Text: "hi", Timestamp: "2025-03-14T09:26:53Z"}, turns[0])
	assert.Equal(t, memory.Turn{Role: memory.RoleAgent, Text: "hello there", Timestamp: "2025-03-14T09:26:53Z"}, turns[1])
}

func TestConversationLog_AppendExchangeReportsLength(t *testing.T) {
	ctx := context.Background()
	log := memory.NewConversationLog(memory.NewMemStore())

	for want := 2; want <= 6; want += 2 {
		n, err := log.AppendExchange(ctx, "u", "a")
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}
}

func TestConversationLog_RecentRoundTrip(t *testing.T) {
	ctx := context.Background()
	log := memory.NewConversationLog(memory.NewMemStore())
	for i := 0; i < 5; i++ {
		require.NoError(t, log.Append(ctx, fmt.Sprintf("u%d", i), fmt.Sprintf("a%d", i)))
	}

	for _, k := range []int{0, 1, 3, 10, 11} {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			got, err := log.Recent(ctx, k)
			require.NoError(t, err)
			want := k
			if want > 10 {
				want = 10
			}
			require.Len(t, got, want)
			if want == 0 {
				return
			}
			all, _ := log.All(ctx)
			assert.Equal(t, all[len(all)-want:], got)
		})
	}

	last, err := log.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "u4", last[0].Text)
	assert.Equal(t, "a4", last[1].Text)
}

func TestConversationLog_ReadsLegacyRoles(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMemStore()
	require.NoError(t, store.Set(ctx, memory.ChatLog,
		`[{"role":"user","text":"q","timestamp":"t"},{"role":"ai","text":"a","timestamp":"t"},{"role":"assistant","text":"b","timestamp":"t"}]`))

	turns, err := memory.NewConversationLog(store).All(ctx)
	require.NoError(t, err)
	require.Len(t, turns, 3)
	assert.Equal(t, memory.RoleUser, turns[0].Role)
	assert.Equal(t, memory.RoleAgent, turns[1].Role)
	assert.Equal(t, memory.RoleAgent, turns[2].Role)
}

func TestConversationLog_CorruptLogIsStorageError(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMemStore()
	require.NoError(t, store.Set(ctx, memory.ChatLog, "{not json"))
	log := memory.NewConversationLog(store)

	_, err := log.All(ctx)
	var se *memory.StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, memory.ChatLog, se.Artifact)

	require.Error(t, log.Append(ctx, "u", "a"))
	raw, _ := store.Get(ctx, memory.ChatLog)
	assert.Equal(t, "{not json", raw, "append must not clobber an unreadable log")
}

func TestConversationLog_FileBackendPersistsJSON(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	fs, err := memory.NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, memory.NewConversationLog(fs).Append(ctx, "u", "a"))

	reopened, err := memory.NewFileStore(dir)
	require.NoError(t, err)
	n, err := memory.NewConversationLog(reopened).Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
