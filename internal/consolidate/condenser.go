package consolidate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/petasbytes/go-astra/internal/metrics"
	"github.com/petasbytes/go-astra/internal/provider"
	"github.com/petasbytes/go-astra/internal/telemetry"
	"github.com/petasbytes/go-astra/memory"
)

const (
	// DefaultCondenseBatch is how many history records one condensation consumes.
	DefaultCondenseBatch = 5

	CondenseInstruction = "Condense the following conversation summaries into a clear long-term memory:\n\n"
)

// ErrEmptyCompletion is returned when the model answers with only whitespace.
// Nothing is written in that case.
var ErrEmptyCompletion = errors.New("consolidate: model returned an empty completion")

// CondenserOptions configures a Condenser. Zero values take the defaults.
type CondenserOptions struct {
	Batch   int
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// Condenser rotates summary history into long-term memory.
type Condenser struct {
	store   memory.Store
	model   provider.Model
	batch   int
	logger  *zap.Logger
	metrics *metrics.Metrics

	// one condensation at a time, so a batch is never consumed twice
	mu sync.Mutex
}

func NewCondenser(store memory.Store, model provider.Model, opts CondenserOptions) *Condenser {
	if opts.Batch <= 0 {
		opts.Batch = DefaultCondenseBatch
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	return &Condenser{
		store:   store,
		model:   model,
		batch:   opts.Batch,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
}

// MaybeCondense condenses the newest batch of history records when at least
// a full batch has accumulated. It reports whether long-term memory was
// replaced.
func (c *Condenser) MaybeCondense(ctx context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := c.store.Get(ctx, memory.SummaryHistory)
	if err != nil {
		return false, fmt.Errorf("read summary history: %w", err)
	}
	records := memory.SplitHistory(raw)
	if len(records) < c.batch {
		return false, nil
	}
	snapshot := len(records)
	batch := records[snapshot-c.batch:]

	out, err := c.model.Invoke(ctx, CondenseInstruction+strings.Join(batch, "\n"))
	if err != nil {
		return false, fmt.Errorf("condense: %w", err)
	}
	longTerm := strings.TrimSpace(out)
	if longTerm == "" {
		return false, ErrEmptyCompletion
	}

	// Long-term memory is written before rotation. A failed rotation leaves
	// the batch in place to be condensed again. History that changed while
	// the model ran, as after a purge, is left alone and nothing is written.
	raw, err = c.store.Get(ctx, memory.SummaryHistory)
	if err != nil {
		return false, fmt.Errorf("read summary history: %w", err)
	}
	if !hasPrefix(memory.SplitHistory(raw), records) {
		c.logger.Warn("summary history changed during condensation, skipping")
		return false, nil
	}
	if err := c.store.Set(ctx, memory.LongTermMemory, longTerm); err != nil {
		return false, fmt.Errorf("write long-term memory: %w", err)
	}
	rotated := false
	err = c.store.Update(ctx, memory.SummaryHistory, func(cur string) (string, error) {
		recs := memory.SplitHistory(cur)
		if !hasPrefix(recs, records) {
			return cur, nil
		}
		rotated = true
		kept := append([]string(nil), recs[:snapshot-c.batch]...)
		kept = append(kept, recs[snapshot:]...)
		return memory.JoinHistory(kept), nil
	})
	if err != nil {
		return false, fmt.Errorf("rotate summary history: %w", err)
	}
	if !rotated {
		c.logger.Warn("summary history changed during condensation, keeping it")
		return false, nil
	}

	c.metrics.Condensations.Inc()
	turnID, _ := telemetry.TurnIDFromContext(ctx)
	telemetry.Emit("long_term_condensed", map[string]any{
		"turn_id":           turnID,
		"records_consumed":  c.batch,
		"records_remaining": snapshot - c.batch,
		"long_term_len":     len(longTerm),
	})
	c.logger.Info("long-term memory condensed", zap.Int("records_consumed", c.batch))
	return true, nil
}

func hasPrefix(s, prefix []string) bool {
	if len(s) < len(prefix) {
		return false
	}
	for i := range prefix {
		if s[i] != prefix[i] {
			return false
		}
	}
	return true
}
