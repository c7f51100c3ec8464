package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/policyops/policy-rag/internal/core/domain"
)

// PipelineMetrics covers the ask path: retrieval through synthesis.
// Registered on the same registry as the worker metrics so one scrape
// endpoint serves both.
type PipelineMetrics struct {
	queryTotal       *prometheus.CounterVec
	queryDuration    *prometheus.HistogramVec
	stageErrors      *prometheus.CounterVec
	groundingFlagged prometheus.Counter
	rerankDegraded   prometheus.Counter
	tokensUsed       prometheus.Counter
}

func NewPipelineMetrics(registry *prometheus.Registry) *PipelineMetrics {
	queryTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "policyrag",
			Subsystem: "pipeline",
			Name:      "query_total",
			Help:      "Total answered questions by outcome.",
		},
		[]string{"outcome"},
	)
	queryDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "policyrag",
			Subsystem: "pipeline",
			Name:      "query_duration_seconds",
			Help:      "End-to-end question answering duration in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"outcome"},
	)
	stageErrors := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "policyrag",
			Subsystem: "pipeline",
			Name:      "stage_errors_total",
			Help:      "Pipeline failures by stage.",
		},
		[]string{"stage"},
	)
	groundingFlagged := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "policyrag",
			Subsystem: "pipeline",
			Name:      "grounding_flagged_total",
			Help:      "Answers where citation markers could not be resolved.",
		},
	)
	rerankDegraded := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "policyrag",
			Subsystem: "pipeline",
			Name:      "rerank_degraded_total",
			Help:      "Answers produced with the similarity-order fallback instead of the reranker.",
		},
	)
	tokensUsed := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "policyrag",
			Subsystem: "pipeline",
			Name:      "generation_tokens_total",
			Help:      "Total generation tokens consumed.",
		},
	)

	registry.MustRegister(queryTotal, queryDuration, stageErrors, groundingFlagged, rerankDegraded, tokensUsed)

	return &PipelineMetrics{
		queryTotal:       queryTotal,
		queryDuration:    queryDuration,
		stageErrors:      stageErrors,
		groundingFlagged: groundingFlagged,
		rerankDegraded:   rerankDegraded,
		tokensUsed:       tokensUsed,
	}
}

func (m *PipelineMetrics) ObserveQuery(answer *domain.Answer, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
		stage := string(domain.StageOf(err))
		if stage == "" {
			stage = "unknown"
		}
		m.stageErrors.WithLabelValues(stage).Inc()
	}

	m.queryTotal.WithLabelValues(outcome).Inc()
	m.queryDuration.WithLabelValues(outcome).Observe(duration.Seconds())

	if answer == nil {
		return
	}
	if answer.GroundingFlagged {
		m.groundingFlagged.Inc()
	}
	if answer.RerankDegraded {
		m.rerankDegraded.Inc()
	}
	if answer.Metrics.TokensUsed > 0 {
		m.tokensUsed.Add(float64(answer.Metrics.TokensUsed))
	}
}
