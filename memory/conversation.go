package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// NormalizeRole maps stored role spellings onto Role. Older logs wrote the
// agent side as "ai" or "assistant". Unknown roles are returned unchanged.
func NormalizeRole(r string) Role {
	switch strings.ToLower(strings.TrimSpace(r)) {
	case "user":
		return RoleUser
	case "agent", "ai", "assistant":
		return RoleAgent
	default:
		return Role(r)
	}
}

// Known reports whether r is user or agent.
func (r Role) Known() bool { return r == RoleUser || r == RoleAgent }

// Turn is one message of a conversation.
type Turn struct {
	Role      Role   `json:"role"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// ConversationLog is the append-only sequence of turns kept in the ChatLog
// artifact. Every append rewrites the whole sequence.
type ConversationLog struct {
	store Store
	now   func() time.Time
}

// NewConversationLog returns a log backed by store.
func NewConversationLog(store Store) *ConversationLog {
	return &ConversationLog{store: store, now: time.Now}
}

// WithClock replaces the clock used to stamp appended turns.
func (l *ConversationLog) WithClock(now func() time.Time) *ConversationLog {
	l.now = now
	return l
}

// Append records a user turn followed by an agent turn sharing one timestamp.
func (l *ConversationLog) Append(ctx context.Context, userText, agentText string) error {
	_, err := l.AppendExchange(ctx, userText, agentText)
	return err
}

// AppendExchange is Append that also reports the log length right after the
// write, as seen inside the chat-log critical section. Later reads may
// already include turns appended by concurrent requests.
func (l *ConversationLog) AppendExchange(ctx context.Context, userText, agentText string) (int, error) {
	ts := l.now().Format(time.RFC3339)
	var n int
	err := l.store.Update(ctx, ChatLog, func(cur string) (string, error) {
		turns, err := decodeTurns(cur)
		if err != nil {
			return "", err
		}
		turns = append(turns,
			Turn{Role: RoleUser, Text: userText, Timestamp: ts},
			Turn{Role: RoleAgent, Text: agentText, Timestamp: ts},
		)
		b, err := json.MarshalIndent(turns, "", "    ")
		if err != nil {
			return "", &StorageError{Artifact: ChatLog, Op: "encode", Err: err}
		}
		n = len(turns)
		return string(b), nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// All returns every turn in order.
func (l *ConversationLog) All(ctx context.Context) ([]Turn, error) {
	raw, err := l.store.Get(ctx, ChatLog)
	if err != nil {
		return nil, err
	}
	return decodeTurns(raw)
}

// Recent returns the last n turns in order. n <= 0 returns nothing.
func (l *ConversationLog) Recent(ctx context.Context, n int) ([]Turn, error) {
	if n <= 0 {
		return nil, nil
	}
	turns, err := l.All(ctx)
	if err != nil {
		return nil, err
	}
	if len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	return turns, nil
}

// Len returns the number of stored turns.
func (l *ConversationLog) Len(ctx context.Context) (int, error) {
	turns, err := l.All(ctx)
	if err != nil {
		return 0, err
	}
	return len(turns), nil
}

func decodeTurns(raw string) ([]Turn, error) {
	if strings.TrimSpace(raw) == "" {
		return []Turn{}, nil
	}
	var turns []Turn
	if err := json.Unmarshal([]byte(raw), &turns); err != nil {
		return nil, &StorageError{Artifact: ChatLog, Op: "decode", Err: fmt.Errorf("invalid chat log: %w", err)}
	}
	for i := range turns {
		turns[i].Role = NormalizeRole(string(turns[i].Role))
	}
	if turns == nil {
		turns = []Turn{}
	}
	return turns, nil
}
