// Package ports declares the interfaces the pipeline depends on. Concrete
// implementations live under infrastructure/.
package ports

import (
	"context"
	"time"

	"github.com/ahrav/go-tally/internal/domain"
)

// RunReader loads a newline-delimited stream of raw run records.
// Implementations must return a *domain.NotFoundError when the source
// does not exist and must never fail because of a single malformed
// record; such records are surfaced as synthetic error runs instead.
type RunReader interface {
	// Read returns the raw records at path in input order.
	Read(ctx context.Context, path string) ([]domain.RawRun, error)
}

// RunNormalizer maps an arbitrary raw record onto the canonical schema.
// Normalize is total: missing or malformed data degrades to defaults.
type RunNormalizer interface {
	Normalize(raw domain.RawRun) domain.CanonicalRun
}

// RunAggregator computes the summary document for a set of canonical runs.
// Each call owns its working state; the returned Summary is immutable.
type RunAggregator interface {
	Aggregate(runs []domain.CanonicalRun) domain.Summary
}

// MetricsCollector defines the interface for collecting operational metrics.
// Implementations should integrate with observability platforms like
// Prometheus, OpenTelemetry, or custom monitoring solutions.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	// The labels map provides additional context for the metric.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	// This is useful for tracking events like malformed lines or error runs.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	RecordGauge(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram.
	// This is useful for tracking distributions like per-run scores.
	RecordHistogram(metric string, value float64, labels map[string]string)
}

// Metric names recorded by the pipeline through MetricsCollector.
const (
	MetricRunsRead       = "runs_read"
	MetricMalformedLines = "malformed_lines"
	MetricRunsNormalized = "runs_normalized"
	MetricErrorRuns      = "error_runs"
	MetricStrategies     = "strategies"
	MetricTasks          = "tasks"
	MetricScore          = "score"
)
