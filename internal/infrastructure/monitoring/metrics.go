// Package monitoring provides Prometheus metrics for the dialogue pipeline.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the pipeline's Prometheus collectors. A nil *Metrics is safe
// to use everywhere; all record methods are no-ops on nil.
type Metrics struct {
	queriesTotal     *prometheus.CounterVec
	classifierStage  *prometheus.CounterVec
	generationsTotal prometheus.Counter
	dedupHitsTotal   prometheus.Counter
	pipelineDuration prometheus.Histogram
}

// NewMetrics registers the pipeline collectors with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		queriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recipetalk",
			Name:      "queries_total",
			Help:      "Queries handled, labeled by classified intent.",
		}, []string{"intent"}),
		classifierStage: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recipetalk",
			Name:      "classifier_terminal_stage_total",
			Help:      "Which classification stage produced the verdict.",
		}, []string{"stage"}),
		generationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "recipetalk",
			Name:      "alternative_generations_total",
			Help:      "Alternative recipes generated via the completion provider.",
		}),
		dedupHitsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "recipetalk",
			Name:      "alternative_dedup_hits_total",
			Help:      "Alternative recipe requests served from the artifact store.",
		}),
		pipelineDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "recipetalk",
			Name:      "pipeline_duration_seconds",
			Help:      "End-to-end query handling latency.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// RecordQuery counts a handled query by intent.
func (m *Metrics) RecordQuery(intent string) {
	if m == nil {
		return
	}
	m.queriesTotal.WithLabelValues(intent).Inc()
}

// RecordClassifierStage counts the stage that produced the verdict.
func (m *Metrics) RecordClassifierStage(stage string) {
	if m == nil {
		return
	}
	m.classifierStage.WithLabelValues(stage).Inc()
}

// RecordGeneration counts a fresh alternative-recipe generation.
func (m *Metrics) RecordGeneration() {
	if m == nil {
		return
	}
	m.generationsTotal.Inc()
}

// RecordDedupHit counts an alternative request served from the store.
func (m *Metrics) RecordDedupHit() {
	if m == nil {
		return
	}
	m.dedupHitsTotal.Inc()
}

// RecordPipelineDuration observes end-to-end latency in seconds.
func (m *Metrics) RecordPipelineDuration(seconds float64) {
	if m == nil {
		return
	}
	m.pipelineDuration.Observe(seconds)
}
