// Package prompt assembles the single context string handed to the model
// for a new message.
package prompt

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/petasbytes/go-astra/internal/telemetry"
	"github.com/petasbytes/go-astra/internal/windowing"
	"github.com/petasbytes/go-astra/memory"
)

const (
	// DefaultRecentTurns is how many stored turns are quoted verbatim.
	DefaultRecentTurns = 6
	DefaultAgentName   = "Astra"

	// DateLayout renders the current date and time in the preamble.
	DateLayout = "2006-01-02 15:04:05"

	NoPersonality    = "No personality profile configured."
	NoLongTermMemory = "No long-term memory stored yet."
	NoSummary        = "Nothing major noted yet."
)

// Instructions fixes the reply formatting conventions.
const Instructions = `Based on everything above, respond like a close friend or trusted collaborator. Be concise, relaxed, and natural. Don't repeat yourself. Share one clear idea per message, unless asked for more. Use paragraph breaks for long replies.

If you're writing steps or instructions:
- Start each step with a numbered list (1., 2.) with a blank line before each
- Never glue steps together (each step should be on its own line)
- Use ### Ingredients and ### Instructions as headers
- Use • bullets for ingredients
- Keep formatting clean, with no repeated bold or asterisks`

// Options configures an Assembler. Zero values take the defaults.
type Options struct {
	AgentName   string
	RecentTurns int
	Now         func() time.Time
	Counter     windowing.TokenCounter
	Logger      *zap.Logger
}

// Assembler builds prompts from the stored memory artifacts.
type Assembler struct {
	store   memory.Store
	log     *memory.ConversationLog
	name    string
	recent  int
	now     func() time.Time
	counter windowing.TokenCounter
	logger  *zap.Logger
}

// New returns an Assembler reading from store.
func New(store memory.Store, opts Options) *Assembler {
	if opts.AgentName == "" {
		opts.AgentName = DefaultAgentName
	}
	if opts.RecentTurns <= 0 {
		opts.RecentTurns = DefaultRecentTurns
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Counter == nil {
		opts.Counter = windowing.HeuristicCounter{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Assembler{
		store:   store,
		log:     memory.NewConversationLog(store),
		name:    opts.AgentName,
		recent:  opts.RecentTurns,
		now:     opts.Now,
		counter: opts.Counter,
		logger:  opts.Logger,
	}
}

// Build returns the prompt for userInput. Artifacts that cannot be read
// fail the build.
func (a *Assembler) Build(ctx context.Context, userInput string) (string, error) {
	personality, err := a.read(ctx, memory.Personality)
	if err != nil {
		return "", err
	}
	longTerm, err := a.read(ctx, memory.LongTermMemory)
	if err != nil {
		return "", err
	}
	summary, err := a.read(ctx, memory.RollingSummary)
	if err != nil {
		return "", err
	}
	turns, err := a.log.Recent(ctx, a.recent)
	if err != nil {
		return "", fmt.Errorf("read recent turns: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Your name is %s. You're an intelligent, proactive, and supportive assistant with a personality described as:\n%s\n\n",
		a.name, orDefault(personality, NoPersonality))
	fmt.Fprintf(&b, "Today is %s.\n\n", a.now().Format(DateLayout))
	fmt.Fprintf(&b, "Here's what you recall from earlier interactions:\n%s\n\n", orDefault(longTerm, NoLongTermMemory))
	fmt.Fprintf(&b, "Here's a brief summary of what's been going on:\n%s\n\n", orDefault(summary, NoSummary))
	fmt.Fprintf(&b, "Here's how your recent conversation went:\n%s\n\n", RenderTurns(turns))
	b.WriteString(Instructions)
	b.WriteString("\n\nUser: ")
	b.WriteString(userInput)
	out := b.String()

	turnID, _ := telemetry.TurnIDFromContext(ctx)
	est := a.counter.CountText(out)
	telemetry.Emit("prompt_built", map[string]any{
		"turn_id":          turnID,
		"recent_turns":     len(turns),
		"has_long_term":    longTerm != "",
		"has_summary":      summary != "",
		"estimated_tokens": est,
	})
	telemetry.PersistPrompt(turnID, out)
	a.logger.Debug("prompt built", zap.String("turn_id", turnID), zap.Int("recent_turns", len(turns)), zap.Int("estimated_tokens", est))
	return out, nil
}

func (a *Assembler) read(ctx context.Context, art memory.Artifact) (string, error) {
	v, err := a.store.Get(ctx, art)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", art, err)
	}
	return strings.TrimSpace(v), nil
}

// RenderTurns renders turns as "User: ..." and "Agent: ..." lines in order.
// Turns with an unrecognized role are dropped.
func RenderTurns(turns []memory.Turn) string {
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		if !t.Role.Known() {
			continue
		}
		label := "User: "
		if t.Role == memory.RoleAgent {
			label = "Agent: "
		}
		lines = append(lines, label+t.Text)
	}
	return strings.Join(lines, "\n")
}

func orDefault(v, placeholder string) string {
	if v == "" {
		return placeholder
	}
	return v
}
