package runner

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/petasbytes/go-astra/internal/telemetry"
)

var (
	// ErrSessionBusy is returned by Run while another Run on the same
	// session is in flight.
	ErrSessionBusy = errors.New("runner: session already streaming")
	// ErrSessionUsed is returned by Run on a session that already ran.
	ErrSessionUsed = errors.New("runner: session already finished")
)

// State is the lifecycle position of a Session.
type State int

const (
	StateInit State = iota
	StateStreaming
	StateFinalizing
	StateDone
	StateError
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateStreaming:
		return "streaming"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Session is one single-flight streaming request.
type Session struct {
	r *Runner

	mu      sync.Mutex
	state   State
	running bool
}

// NewSession returns a session in StateInit.
func (r *Runner) NewSession() *Session {
	return &Session{r: r}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Run builds the prompt for input, streams the model's reply into sink and
// finalizes the exchange once the stream completes. It returns the trimmed
// reply.
//
// Cancelling ctx while streaming detaches the caller: generation continues,
// forwarding stops, and the completed reply is still persisted. A model
// failure or a Sink failure aborts the session without persisting anything.
func (s *Session) Run(ctx context.Context, input string, sink Sink) (string, error) {
	s.mu.Lock()
	switch {
	case s.running:
		s.mu.Unlock()
		return "", ErrSessionBusy
	case s.state != StateInit:
		s.mu.Unlock()
		return "", ErrSessionUsed
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	r := s.r
	ctx, turnID := telemetry.EnsureTurnID(ctx)
	logger := r.logger.With(zap.String("turn_id", turnID))

	p, err := r.prompts.Build(ctx, input)
	if err != nil {
		return "", s.fail(ctx, logger, "prompt", err)
	}

	s.setState(StateStreaming)
	genCtx := context.WithoutCancel(ctx)
	stream, err := r.model.Stream(genCtx, p)
	if err != nil {
		return "", s.fail(ctx, logger, "model", err)
	}
	defer stream.Close()

	var acc strings.Builder
	detached := false
	for stream.Next() {
		tok := stream.Current()
		acc.WriteString(tok)
		if detached {
			continue
		}
		if ctx.Err() != nil {
			detached = true
			logger.Info("caller detached, finishing generation")
			continue
		}
		if err := sink.Send(tok); err != nil {
			return "", s.fail(ctx, logger, "sink", &SinkError{Err: err})
		}
		r.metrics.TokensStreamed.Inc()
	}
	if err := stream.Err(); err != nil {
		return "", s.fail(ctx, logger, "model", err)
	}

	s.setState(StateFinalizing)
	reply := strings.TrimSpace(acc.String())
	if err := r.finalize(genCtx, logger, input, reply); err != nil {
		s.setState(StateError)
		return "", err
	}
	s.setState(StateDone)

	if !detached {
		if err := sink.Done(); err != nil {
			logger.Warn("completion signal not delivered", zap.Error(err))
		}
	}
	return reply, nil
}

func (s *Session) fail(ctx context.Context, logger *zap.Logger, reason string, err error) error {
	s.setState(StateError)
	s.r.metrics.SessionsFailed.WithLabelValues(reason).Inc()
	turnID, _ := telemetry.TurnIDFromContext(ctx)
	telemetry.Emit("session_failed", map[string]any{
		"turn_id": turnID,
		"reason":  reason,
		"error":   err.Error(),
	})
	logger.Error("session failed", zap.String("reason", reason), zap.Error(err))
	return err
}
