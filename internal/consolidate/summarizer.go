package consolidate

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/petasbytes/go-astra/internal/metrics"
	"github.com/petasbytes/go-astra/internal/provider"
	"github.com/petasbytes/go-astra/internal/telemetry"
	"github.com/petasbytes/go-astra/internal/windowing"
	"github.com/petasbytes/go-astra/memory"
)

const (
	// DefaultSummarizeEvery is the log length interval, in turns, that
	// triggers a summary. Six turns is three exchanges.
	DefaultSummarizeEvery = 6
	// DefaultSummaryWindow is how many trailing turns a summary covers.
	DefaultSummaryWindow = 20

	SummarizeInstruction = "Summarize the key points clearly from this conversation:\n\n"
)

// SummarizerOptions configures a Summarizer. Zero values take the defaults.
type SummarizerOptions struct {
	Every   int
	Window  int
	Counter windowing.TokenCounter
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// Outcome reports which consolidation steps wrote memory.
type Outcome struct {
	Summarized bool
	Condensed  bool
}

// Summarizer maintains the rolling summary and the summary history.
type Summarizer struct {
	store     memory.Store
	log       *memory.ConversationLog
	model     provider.Model
	condenser *Condenser
	every     int
	window    int
	counter   windowing.TokenCounter
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// NewSummarizer returns a Summarizer that hands off to condenser after each
// written summary. condenser may be nil.
func NewSummarizer(store memory.Store, model provider.Model, condenser *Condenser, opts SummarizerOptions) *Summarizer {
	if opts.Every <= 0 {
		opts.Every = DefaultSummarizeEvery
	}
	if opts.Window <= 0 {
		opts.Window = DefaultSummaryWindow
	}
	if opts.Counter == nil {
		opts.Counter = windowing.HeuristicCounter{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	return &Summarizer{
		store:     store,
		log:       memory.NewConversationLog(store),
		model:     model,
		condenser: condenser,
		every:     opts.Every,
		window:    opts.Window,
		counter:   opts.Counter,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
	}
}

// MaybeSummarize reads the current log length and calls SummarizeAt with it.
func (s *Summarizer) MaybeSummarize(ctx context.Context) (Outcome, error) {
	n, err := s.log.Len(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("read chat log: %w", err)
	}
	return s.SummarizeAt(ctx, n)
}

// SummarizeAt runs after an exchange has been appended, where n is the log
// length that append produced. It summarizes only when n is a positive
// multiple of the interval, over the window ending at turn n, so turns
// appended concurrently since then neither hide the trigger nor leak in.
//
// A summarization failure is returned and leaves memory untouched. A
// condensation failure after a written summary is logged and counted but
// not returned.
func (s *Summarizer) SummarizeAt(ctx context.Context, n int) (Outcome, error) {
	var res Outcome
	if n <= 0 || n%s.every != 0 {
		return res, nil
	}

	turns, err := s.log.All(ctx)
	if err != nil {
		return res, fmt.Errorf("read chat log: %w", err)
	}
	if len(turns) < n {
		s.logger.Warn("chat log shrank before summarization, skipping",
			zap.Int("log_len", n), zap.Int("current_len", len(turns)))
		return res, nil
	}
	turns = turns[:n]
	exchanges, stats := windowing.PrepareSummaryWindow(turns, s.window, s.counter)
	turnID, _ := telemetry.TurnIDFromContext(ctx)
	telemetry.Emit("summary_window_prepared", map[string]any{
		"turn_id":          turnID,
		"log_len":          n,
		"considered":       stats.Considered,
		"included_pairs":   stats.IncludedPairs,
		"skipped_groups":   stats.SkippedGroups,
		"estimated_tokens": stats.Tokens,
	})
	if len(exchanges) == 0 {
		s.logger.Debug("no complete exchanges in summary window", zap.Int("log_len", n))
		return res, nil
	}

	out, err := s.model.Invoke(ctx, SummarizeInstruction+windowing.RenderExchanges(exchanges))
	if err != nil {
		return res, fmt.Errorf("summarize: %w", err)
	}
	summary := strings.TrimSpace(out)
	if summary == "" {
		return res, ErrEmptyCompletion
	}

	if err := s.store.Set(ctx, memory.RollingSummary, summary); err != nil {
		return res, fmt.Errorf("write rolling summary: %w", err)
	}
	err = s.store.Update(ctx, memory.SummaryHistory, func(cur string) (string, error) {
		return memory.AppendRecord(cur, summary), nil
	})
	if err != nil {
		return res, fmt.Errorf("append summary history: %w", err)
	}
	res.Summarized = true
	s.metrics.SummariesWritten.Inc()
	telemetry.Emit("summary_written", map[string]any{
		"turn_id":     turnID,
		"pairs":       stats.IncludedPairs,
		"summary_len": len(summary),
	})
	s.logger.Info("rolling summary written", zap.Int("log_len", n), zap.Int("pairs", stats.IncludedPairs))

	if s.condenser == nil {
		return res, nil
	}
	res.Condensed, err = s.condenser.MaybeCondense(ctx)
	if err != nil {
		s.metrics.ConsolidationFailures.WithLabelValues("condense").Inc()
		s.logger.Warn("long-term condensation skipped", zap.Error(err))
	}
	return res, nil
}
