package runner

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/petasbytes/go-astra/internal/consolidate"
	"github.com/petasbytes/go-astra/internal/format"
	"github.com/petasbytes/go-astra/internal/metrics"
	"github.com/petasbytes/go-astra/internal/prompt"
	"github.com/petasbytes/go-astra/internal/provider"
	"github.com/petasbytes/go-astra/internal/telemetry"
	"github.com/petasbytes/go-astra/memory"
)

// Synthesizer hands a finished reply to a speech collaborator.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) error
}

// Options configures a Runner. Zero values take the package defaults.
type Options struct {
	AgentName      string
	RecentTurns    int
	SummarizeEvery int
	SummaryWindow  int
	CondenseBatch  int

	Formatter   format.Pipeline
	Synthesizer Synthesizer
	Now         func() time.Time
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
}

// Runner serves the request operations over one store and one model.
type Runner struct {
	*Memory

	model      provider.Model
	log        *memory.ConversationLog
	prompts    *prompt.Assembler
	summarizer *consolidate.Summarizer
	formatter  format.Pipeline
	synth      Synthesizer
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

func New(store memory.Store, model provider.Model, opts Options) *Runner {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.Formatter == nil {
		opts.Formatter = format.Default()
	}
	logger := opts.Logger.With(zap.String("model", model.Name()))

	condenser := consolidate.NewCondenser(store, model, consolidate.CondenserOptions{
		Batch:   opts.CondenseBatch,
		Logger:  logger.Named("condense"),
		Metrics: opts.Metrics,
	})
	return &Runner{
		Memory: NewMemory(store, logger),
		model:  model,
		log:    memory.NewConversationLog(store).WithClock(opts.Now),
		prompts: prompt.New(store, prompt.Options{
			AgentName:   opts.AgentName,
			RecentTurns: opts.RecentTurns,
			Now:         opts.Now,
			Logger:      logger.Named("prompt"),
		}),
		summarizer: consolidate.NewSummarizer(store, model, condenser, consolidate.SummarizerOptions{
			Every:   opts.SummarizeEvery,
			Window:  opts.SummaryWindow,
			Logger:  logger.Named("summarize"),
			Metrics: opts.Metrics,
		}),
		formatter: opts.Formatter,
		synth:     opts.Synthesizer,
		logger:    logger,
		metrics:   opts.Metrics,
	}
}

// Metrics returns the counters the runner updates.
func (r *Runner) Metrics() *metrics.Metrics { return r.metrics }

// Stream runs a new streaming session for input. See Session.Run.
func (r *Runner) Stream(ctx context.Context, input string, sink Sink) (string, error) {
	return r.NewSession().Run(ctx, input, sink)
}

// Reply answers input without streaming. The complete reply is normalized
// before it is persisted and returned, then handed to the Synthesizer when
// one is configured.
func (r *Runner) Reply(ctx context.Context, input string) (string, error) {
	ctx, turnID := telemetry.EnsureTurnID(ctx)
	logger := r.logger.With(zap.String("turn_id", turnID))

	p, err := r.prompts.Build(ctx, input)
	if err != nil {
		return "", fmt.Errorf("build prompt: %w", err)
	}
	raw, err := r.model.Invoke(ctx, p)
	if err != nil {
		r.metrics.SessionsFailed.WithLabelValues("model").Inc()
		logger.Error("reply failed", zap.Error(err))
		return "", err
	}
	reply := r.formatter.Normalize(raw)
	if err := r.finalize(ctx, logger, input, reply); err != nil {
		return "", err
	}

	if r.synth != nil {
		if err := r.synth.Synthesize(ctx, reply); err != nil {
			logger.Warn("speech synthesis failed", zap.Error(err))
		}
	}
	return reply, nil
}

// finalize persists a completed exchange and runs consolidation.
// Consolidation failures are logged and never returned.
func (r *Runner) finalize(ctx context.Context, logger *zap.Logger, input, reply string) error {
	n, err := r.log.AppendExchange(ctx, input, reply)
	if err != nil {
		r.metrics.SessionsFailed.WithLabelValues("storage").Inc()
		logger.Error("append exchange failed", zap.Error(err))
		return fmt.Errorf("append exchange: %w", err)
	}
	r.metrics.TurnsPersisted.Inc()

	outcome, err := r.summarizer.SummarizeAt(ctx, n)
	if err != nil {
		r.metrics.ConsolidationFailures.WithLabelValues("summarize").Inc()
		logger.Warn("summarization skipped", zap.Error(err))
	}

	turnID, _ := telemetry.TurnIDFromContext(ctx)
	telemetry.Emit("turn_finalized", map[string]any{
		"turn_id":    turnID,
		"reply_len":  len(reply),
		"summarized": outcome.Summarized,
		"condensed":  outcome.Condensed,
	})
	telemetry.EmitLocalFeatures(ctx, input, reply)
	return nil
}
