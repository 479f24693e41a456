// Package metrics exposes Prometheus collectors for an evolution run.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Evaluation outcomes used as the "result" label.
const (
	ResultOK       = "ok"
	ResultTimeout  = "timeout"
	ResultFailed   = "failed"
	ResultCarried  = "carried"
	DecisionPass   = "promoted"
	DecisionReject = "rejected"
)

// MetricsRegistry holds all Prometheus metrics of an evolution run.
type MetricsRegistry struct {
	// Evaluation metrics
	Evaluations        *prometheus.CounterVec
	EvaluationDuration prometheus.Histogram

	// Generation metrics
	Generations        prometheus.Counter
	GenerationDuration prometheus.Histogram
	BestScore          prometheus.Gauge
	MeanScore          prometheus.Gauge
	Diversity          prometheus.Gauge

	// Promotion metrics
	Promotions *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewMetricsRegistry creates the collectors and registers them with a fresh
// registry, so several runs can live in one process.
func NewMetricsRegistry() *MetricsRegistry {
	registry := prometheus.NewRegistry()

	m := &MetricsRegistry{
		Evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "evolution_evaluations_total",
				Help: "Number of fitness evaluations by result",
			},
			[]string{"result"},
		),

		EvaluationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "evolution_evaluation_duration_seconds",
				Help:    "Duration of a single fitness evaluation in seconds",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
			},
		),

		Generations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "evolution_generations_total",
				Help: "Number of completed generations",
			},
		),

		GenerationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "evolution_generation_duration_seconds",
				Help:    "Wall time spent scoring one generation in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
			},
		),

		BestScore: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "evolution_best_score",
				Help: "Best fitness score of the latest generation",
			},
		),

		MeanScore: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "evolution_mean_score",
				Help: "Mean fitness score of the latest generation",
			},
		),

		Diversity: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "evolution_diversity_ratio",
				Help: "Fraction of distinct genomes in the latest generation (0.0 to 1.0)",
			},
		),

		Promotions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "evolution_promotions_total",
				Help: "Promotion pipeline decisions by outcome and gate",
			},
			[]string{"decision", "gate"},
		),

		gatherer: registry,
	}

	registry.MustRegister(
		m.Evaluations,
		m.EvaluationDuration,
		m.Generations,
		m.GenerationDuration,
		m.BestScore,
		m.MeanScore,
		m.Diversity,
		m.Promotions,
	)

	return m
}

// RecordEvaluation counts one evaluation outcome and its duration.
func (m *MetricsRegistry) RecordEvaluation(result string, duration time.Duration) {
	if m == nil {
		return
	}

	m.Evaluations.WithLabelValues(result).Inc()

	if result != ResultCarried {
		m.EvaluationDuration.Observe(duration.Seconds())
	}
}

// RecordGeneration updates the generation gauges.
func (m *MetricsRegistry) RecordGeneration(best, mean, diversity float64, duration time.Duration) {
	if m == nil {
		return
	}

	m.Generations.Inc()
	m.GenerationDuration.Observe(duration.Seconds())
	m.BestScore.Set(best)
	m.MeanScore.Set(mean)
	m.Diversity.Set(diversity)
}

// RecordPromotion counts one promotion decision. gate is empty for passes.
func (m *MetricsRegistry) RecordPromotion(decision, gate string) {
	if m == nil {
		return
	}

	m.Promotions.WithLabelValues(decision, gate).Inc()
}

// Gatherer returns the registry the collectors are registered with.
func (m *MetricsRegistry) Gatherer() prometheus.Gatherer {
	return m.gatherer
}

// WriteToTextfile writes the current values in the Prometheus text format.
func (m *MetricsRegistry) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.gatherer)
}
