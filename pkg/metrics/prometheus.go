package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics holds all Prometheus metrics
type PrometheusMetrics struct {
	// Evaluation metrics
	EvaluationsTotal *prometheus.CounterVec
	NonFiniteTotal   prometheus.Counter
	ScoreLatency     prometheus.Histogram

	// Population metrics
	PopulationsTotal prometheus.Counter
	BestScore        prometheus.Gauge

	// Baseline metrics
	BaselineRefreshTotal *prometheus.CounterVec
	BaselineLoss         prometheus.Gauge

	// Complexity cache metrics
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter
}

// NewPrometheusMetrics registers the scoring metrics with reg. Use
// prometheus.DefaultRegisterer for the process-wide registry.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)
	return &PrometheusMetrics{
		EvaluationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fitness_evaluations_total",
				Help: "Total number of candidate evaluations",
			},
			[]string{"mode"},
		),

		NonFiniteTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "fitness_non_finite_total",
				Help: "Total number of evaluations that produced a non-finite loss",
			},
		),

		ScoreLatency: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fitness_score_seconds",
				Help:    "Time to score a single candidate",
				Buckets: prometheus.ExponentialBuckets(1e-6, 4, 12),
			},
		),

		PopulationsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "fitness_populations_total",
				Help: "Total number of scored populations",
			},
		),

		BestScore: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "fitness_best_score",
				Help: "Best score of the last scored population",
			},
		),

		BaselineRefreshTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fitness_baseline_refresh_total",
				Help: "Total number of baseline refreshes",
			},
			[]string{"enabled"},
		),

		BaselineLoss: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "fitness_baseline_loss",
				Help: "Current baseline loss",
			},
		),

		CacheHitsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "fitness_complexity_cache_hits_total",
				Help: "Total number of complexity cache hits",
			},
		),

		CacheMissesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "fitness_complexity_cache_misses_total",
				Help: "Total number of complexity cache misses",
			},
		),
	}
}

// RecordEvaluation records one scored candidate
func (m *PrometheusMetrics) RecordEvaluation(mode string, finite bool, duration time.Duration) {
	m.EvaluationsTotal.WithLabelValues(mode).Inc()
	if !finite {
		m.NonFiniteTotal.Inc()
	}
	m.ScoreLatency.Observe(duration.Seconds())
}

// RecordPopulation records a completed population pass
func (m *PrometheusMetrics) RecordPopulation(bestScore float64) {
	m.PopulationsTotal.Inc()
	m.BestScore.Set(bestScore)
}

// RecordBaseline records a baseline refresh
func (m *PrometheusMetrics) RecordBaseline(loss float64, enabled bool) {
	label := "false"
	if enabled {
		label = "true"
	}
	m.BaselineRefreshTotal.WithLabelValues(label).Inc()
	m.BaselineLoss.Set(loss)
}

// RecordCacheHit records a cache hit
func (m *PrometheusMetrics) RecordCacheHit() {
	m.CacheHitsTotal.Inc()
}

// RecordCacheMiss records a cache miss
func (m *PrometheusMetrics) RecordCacheMiss() {
	m.CacheMissesTotal.Inc()
}
