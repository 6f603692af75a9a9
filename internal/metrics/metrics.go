package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "astra"

// Metrics holds the pipeline counters on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	TurnsPersisted        prometheus.Counter
	TokensStreamed        prometheus.Counter
	SessionsFailed        *prometheus.CounterVec // reason
	SummariesWritten      prometheus.Counter
	Condensations         prometheus.Counter
	ConsolidationFailures *prometheus.CounterVec // stage
}

// New registers a fresh set of counters.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		TurnsPersisted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_persisted_total",
			Help:      "Completed user/agent exchanges appended to the chat log.",
		}),
		TokensStreamed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_streamed_total",
			Help:      "Text fragments forwarded to callers.",
		}),
		SessionsFailed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_failed_total",
			Help:      "Streaming sessions that ended in error, by reason.",
		}, []string{"reason"}),
		SummariesWritten: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summaries_written_total",
			Help:      "Rolling summaries written.",
		}),
		Condensations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "long_term_condensations_total",
			Help:      "Long-term memory condensations.",
		}),
		ConsolidationFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "consolidation_failures_total",
			Help:      "Skipped summarization or condensation steps, by stage.",
		}, []string{"stage"}),
	}
}

// Registry exposes the registry, e.g. for an HTTP handler.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// WriteTextfile writes the text exposition format to path.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
