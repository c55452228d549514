package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/snow-ghost/fitness/pkg/logging"
	"github.com/snow-ghost/fitness/pkg/metrics"
	"github.com/snow-ghost/fitness/pkg/tracing"
)

// Telemetry bundles the logger, metrics and tracer used by the scoring pool.
type Telemetry struct {
	logger   *logging.Logger
	metrics  *metrics.PrometheusMetrics
	tracer   *tracing.Tracer
	gatherer prometheus.Gatherer
}

// NewTelemetry registers metrics with reg, which also serves /metrics.
func NewTelemetry(logger *logging.Logger, tracer *tracing.Tracer, reg *prometheus.Registry) *Telemetry {
	return &Telemetry{
		logger:   logger,
		metrics:  metrics.NewPrometheusMetrics(reg),
		tracer:   tracer,
		gatherer: reg,
	}
}

// NewNop returns telemetry that logs nowhere, records into a private
// registry and traces with the global provider.
func NewNop() *Telemetry {
	tracer, _ := tracing.NewTracer(tracing.Config{ServiceName: "fitness"})
	return NewTelemetry(logging.NewNop(), tracer, prometheus.NewRegistry())
}

func (t *Telemetry) Logger() *logging.Logger { return t.logger }

func (t *Telemetry) Metrics() *metrics.PrometheusMetrics { return t.metrics }

// StartPopulation opens the span of a population pass.
func (t *Telemetry) StartPopulation(ctx context.Context, size int, batched bool) (context.Context, trace.Span) {
	return t.tracer.StartPopulationSpan(ctx, size, batched)
}

// LogBaseline records a baseline refresh.
func (t *Telemetry) LogBaseline(ctx context.Context, baseline float64, enabled bool, samples int) {
	_, span := t.tracer.StartBaselineSpan(ctx, samples)
	defer span.End()

	t.metrics.RecordBaseline(baseline, enabled)
	t.logger.LogBaseline(ctx, baseline, enabled, samples)
}

// LogCandidate records a single scored candidate.
func (t *Telemetry) LogCandidate(ctx context.Context, mode, expression string, complexity int, score, loss float64, finite bool, duration time.Duration) {
	t.metrics.RecordEvaluation(mode, finite, duration)
	t.logger.LogCandidate(ctx, expression, complexity, score, loss)
}

// LogPopulation records the end of a population pass.
func (t *Telemetry) LogPopulation(ctx context.Context, span trace.Span, size, nonFinite int, best float64, duration time.Duration) {
	t.metrics.RecordPopulation(best)
	tracing.RecordSpanScores(span, best, nonFinite)
	tracing.RecordSpanDuration(span, duration)
	t.logger.LogPopulation(ctx, size, nonFinite, best, duration)
}

// RecordCache records a complexity cache lookup.
func (t *Telemetry) RecordCache(hit bool) {
	if hit {
		t.metrics.RecordCacheHit()
	} else {
		t.metrics.RecordCacheMiss()
	}
}

// HealthHandler returns a simple health check
func (t *Telemetry) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok","service":"fitness-scorer"}`))
}

// MetricsHandler serves the registered metrics in Prometheus format
func (t *Telemetry) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(t.gatherer, promhttp.HandlerOpts{})
}
