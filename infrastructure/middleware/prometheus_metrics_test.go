package middleware

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-tally/internal/ports"
)

// newTestMetrics registers metrics on an isolated registry so tests never
// collide on duplicate registration.
func newTestMetrics(t *testing.T) (*PrometheusMetrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewPrometheusMetrics(reg), reg
}

// TestNewPrometheusMetrics verifies that a new PrometheusMetrics instance is
// created with all its internal metrics properly initialized.
func TestNewPrometheusMetrics(t *testing.T) {
	pm, _ := newTestMetrics(t)

	assert.NotNil(t, pm.runsRead, "runsRead should be initialized")
	assert.NotNil(t, pm.malformedLines, "malformedLines should be initialized")
	assert.NotNil(t, pm.runsNormalized, "runsNormalized should be initialized")
	assert.NotNil(t, pm.errorRuns, "errorRuns should be initialized")
	assert.NotNil(t, pm.stageLatency, "stageLatency should be initialized")
	assert.NotNil(t, pm.scores, "scores should be initialized")
	assert.NotNil(t, pm.groups, "groups should be initialized")

	var _ ports.MetricsCollector = pm
}

func TestNewPrometheusMetrics_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewPrometheusMetrics(prometheus.NewRegistry())
		NewPrometheusMetrics(prometheus.NewRegistry())
	}, "independent registries must not conflict")
}

func TestPrometheusMetrics_RecordCounter(t *testing.T) {
	tests := []struct {
		name   string
		metric string
		value  float64
		labels map[string]string
		read   func(pm *PrometheusMetrics) float64
	}{
		{
			name:   "runs read",
			metric: ports.MetricRunsRead,
			value:  12,
			read:   func(pm *PrometheusMetrics) float64 { return testutil.ToFloat64(pm.runsRead) },
		},
		{
			name:   "malformed lines",
			metric: ports.MetricMalformedLines,
			value:  2,
			read:   func(pm *PrometheusMetrics) float64 { return testutil.ToFloat64(pm.malformedLines) },
		},
		{
			name:   "normalized by label",
			metric: ports.MetricRunsNormalized,
			value:  3,
			labels: map[string]string{"label": "unsafe"},
			read: func(pm *PrometheusMetrics) float64 {
				return testutil.ToFloat64(pm.runsNormalized.WithLabelValues("unsafe"))
			},
		},
		{
			name:   "normalized without label",
			metric: ports.MetricRunsNormalized,
			value:  1,
			read: func(pm *PrometheusMetrics) float64 {
				return testutil.ToFloat64(pm.runsNormalized.WithLabelValues("unknown"))
			},
		},
		{
			name:   "error runs",
			metric: ports.MetricErrorRuns,
			value:  4,
			read:   func(pm *PrometheusMetrics) float64 { return testutil.ToFloat64(pm.errorRuns) },
		},
		{
			name:   "other events",
			metric: "summary_written",
			value:  1,
			labels: map[string]string{"stage": "write"},
			read: func(pm *PrometheusMetrics) float64 {
				return testutil.ToFloat64(pm.operations.WithLabelValues("summary_written", "write"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pm, _ := newTestMetrics(t)
			pm.RecordCounter(tt.metric, tt.value, tt.labels)
			pm.RecordCounter(tt.metric, tt.value, tt.labels)
			assert.Equal(t, 2*tt.value, tt.read(pm))
		})
	}
}

func TestPrometheusMetrics_RecordGauge(t *testing.T) {
	pm, _ := newTestMetrics(t)

	pm.RecordGauge(ports.MetricStrategies, 3, nil)
	pm.RecordGauge(ports.MetricStrategies, 2, nil)
	pm.RecordGauge(ports.MetricTasks, 5, nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(pm.groups.WithLabelValues(ports.MetricStrategies)))
	assert.Equal(t, 5.0, testutil.ToFloat64(pm.groups.WithLabelValues(ports.MetricTasks)))
}

func TestPrometheusMetrics_Histograms(t *testing.T) {
	pm, reg := newTestMetrics(t)

	pm.RecordLatency("read", 150*time.Millisecond, nil)
	pm.RecordHistogram(ports.MetricScore, 0.5, map[string]string{"key": "brand_safety"})
	pm.RecordHistogram(ports.MetricScore, 1, map[string]string{"key": "brand_safety"})

	assert.Equal(t, 1, testutil.CollectAndCount(pm.stageLatency))
	assert.Equal(t, 1, testutil.CollectAndCount(pm.scores))

	expected := `
# HELP tally_score_value Distribution of clamped score values, by score key.
# TYPE tally_score_value histogram
tally_score_value_bucket{key="brand_safety",le="0"} 0
tally_score_value_bucket{key="brand_safety",le="0.25"} 0
tally_score_value_bucket{key="brand_safety",le="0.5"} 1
tally_score_value_bucket{key="brand_safety",le="0.75"} 1
tally_score_value_bucket{key="brand_safety",le="1"} 2
tally_score_value_bucket{key="brand_safety",le="+Inf"} 2
tally_score_value_sum{key="brand_safety"} 1.5
tally_score_value_count{key="brand_safety"} 2
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "tally_score_value")
	require.NoError(t, err)
}
