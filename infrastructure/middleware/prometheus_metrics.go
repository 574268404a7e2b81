// Package middleware provides cross-cutting concerns for the pipeline:
// Prometheus metrics and OpenTelemetry stage spans.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-tally/internal/ports"
)

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)

// PrometheusMetrics implements the MetricsCollector interface using Prometheus.
// It tracks how many runs each invocation read, how many lines were
// malformed, the resulting label distribution and per-stage latency.
type PrometheusMetrics struct {
	runsRead       prometheus.Counter
	malformedLines prometheus.Counter
	runsNormalized *prometheus.CounterVec
	errorRuns      prometheus.Counter
	operations     *prometheus.CounterVec
	stageLatency   *prometheus.HistogramVec
	scores         *prometheus.HistogramVec
	groups         *prometheus.GaugeVec
}

// NewPrometheusMetrics creates a PrometheusMetrics instance whose metrics
// are registered with reg. Passing a fresh prometheus.NewRegistry keeps
// invocations and tests isolated from the global registry.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)
	return &PrometheusMetrics{
		runsRead: factory.NewCounter(prometheus.CounterOpts{
			Name: "tally_runs_read_total",
			Help: "Total number of run records decoded from input, including synthetic error records.",
		}),
		malformedLines: factory.NewCounter(prometheus.CounterOpts{
			Name: "tally_malformed_lines_total",
			Help: "Total number of input lines that failed to decode as JSON.",
		}),
		runsNormalized: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tally_runs_normalized_total",
				Help: "Total number of canonical runs produced, by resolved label.",
			},
			[]string{"label"},
		),
		errorRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "tally_error_runs_total",
			Help: "Total number of runs flagged with an error marker or failed status.",
		}),
		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tally_operations_total",
				Help: "Total number of other pipeline events.",
			},
			[]string{"operation", "stage"},
		),
		stageLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tally_stage_duration_seconds",
				Help:    "Execution time of pipeline stages.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		scores: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tally_score_value",
				Help:    "Distribution of clamped score values, by score key.",
				Buckets: []float64{0, 0.25, 0.5, 0.75, 1},
			},
			[]string{"key"},
		),
		groups: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tally_groups",
				Help: "Number of distinct groups in the last summary.",
			},
			[]string{"kind"},
		),
	}
}

// labelOr returns labels[key] or "unknown" when it is missing or empty.
func labelOr(labels map[string]string, key string) string {
	if v := labels[key]; v != "" {
		return v
	}
	return "unknown"
}

// RecordLatency implements the MetricsCollector interface by recording
// stage latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	_ map[string]string,
) {
	pm.stageLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case ports.MetricRunsRead:
		pm.runsRead.Add(value)
	case ports.MetricMalformedLines:
		pm.malformedLines.Add(value)
	case ports.MetricRunsNormalized:
		pm.runsNormalized.WithLabelValues(labelOr(labels, "label")).Add(value)
	case ports.MetricErrorRuns:
		pm.errorRuns.Add(value)
	default:
		pm.operations.WithLabelValues(metric, labelOr(labels, "stage")).Add(value)
	}
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, _ map[string]string,
) {
	pm.groups.WithLabelValues(metric).Set(value)
}

// RecordHistogram implements the MetricsCollector interface by recording
// values in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case ports.MetricScore:
		pm.scores.WithLabelValues(labelOr(labels, "key")).Observe(value)
	default:
		pm.stageLatency.WithLabelValues(metric).Observe(value)
	}
}
