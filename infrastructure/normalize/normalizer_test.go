package normalize

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"testing/quick"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ahrav/go-tally/internal/domain"
)

func newTestNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	n, err := NewNormalizer(DefaultConfig(), nil)
	require.NoError(t, err)
	return n
}

func TestNewNormalizer_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "empty task aliases", mutate: func(c *Config) { c.TaskKeys = nil }, wantErr: true},
		{name: "empty strategy aliases", mutate: func(c *Config) { c.StrategyKeys = []string{} }, wantErr: true},
		{name: "blank label alias", mutate: func(c *Config) { c.LabelKeys = []string{"label", ""} }, wantErr: true},
		{name: "no fallback keys is allowed", mutate: func(c *Config) { c.NestedLabelFallbackKeys = nil }},
		{name: "no top-level score keys is allowed", mutate: func(c *Config) { c.ScoreKeys = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			_, err := NewNormalizer(cfg, nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNormalize_Identifiers(t *testing.T) {
	tests := []struct {
		name         string
		raw          domain.RawRun
		wantTask     string
		wantStrategy string
	}{
		{
			name:         "primary keys",
			raw:          domain.RawRun{"task_id": "T1", "strategy_id": "A"},
			wantTask:     "T1",
			wantStrategy: "A",
		},
		{
			name:         "secondary aliases",
			raw:          domain.RawRun{"task": "T2", "strategy": "B"},
			wantTask:     "T2",
			wantStrategy: "B",
		},
		{
			name:         "tertiary aliases",
			raw:          domain.RawRun{"id": "T3", "strategy_name": "C"},
			wantTask:     "T3",
			wantStrategy: "C",
		},
		{
			name:         "empty and null values are skipped",
			raw:          domain.RawRun{"task_id": "", "task": nil, "id": "T4", "strategy_id": nil, "strategy": "D"},
			wantTask:     "T4",
			wantStrategy: "D",
		},
		{
			name:         "missing ids fall back to unknown",
			raw:          domain.RawRun{},
			wantTask:     "unknown",
			wantStrategy: "unknown",
		},
		{
			name:         "only empty values fall back to unknown",
			raw:          domain.RawRun{"task_id": "", "strategy_id": ""},
			wantTask:     "unknown",
			wantStrategy: "unknown",
		},
		{
			name:         "numeric ids keep their literal",
			raw:          domain.RawRun{"task_id": json.Number("7"), "strategy_id": json.Number("2.0")},
			wantTask:     "7",
			wantStrategy: "2.0",
		},
		{
			name:         "zero is a present value",
			raw:          domain.RawRun{"task_id": 0, "strategy_id": false},
			wantTask:     "0",
			wantStrategy: "false",
		},
	}

	n := newTestNormalizer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := n.Normalize(tt.raw)
			assert.Equal(t, tt.wantTask, run.TaskID)
			assert.Equal(t, tt.wantStrategy, run.StrategyID)
		})
	}
}

func TestNormalize_TextFields(t *testing.T) {
	n := newTestNormalizer(t)

	t.Run("primary keys", func(t *testing.T) {
		run := n.Normalize(domain.RawRun{"topic": "ads", "query": "q?", "final_answer": "a."})
		assert.Equal(t, "ads", run.Topic)
		assert.Equal(t, "q?", run.Query)
		assert.Equal(t, "a.", run.FinalAnswer)
	})

	t.Run("aliases", func(t *testing.T) {
		run := n.Normalize(domain.RawRun{"category": "ads", "prompt": "q?", "answer": "a."})
		assert.Equal(t, "ads", run.Topic)
		assert.Equal(t, "q?", run.Query)
		assert.Equal(t, "a.", run.FinalAnswer)

		run = n.Normalize(domain.RawRun{"final": "last"})
		assert.Equal(t, "last", run.FinalAnswer)
	})

	t.Run("defaults to empty", func(t *testing.T) {
		run := n.Normalize(domain.RawRun{})
		assert.Empty(t, run.Topic)
		assert.Empty(t, run.Query)
		assert.Empty(t, run.FinalAnswer)
	})
}

func TestNormalize_Label(t *testing.T) {
	tests := []struct {
		name string
		raw  domain.RawRun
		want domain.Label
	}{
		{"top-level label", domain.RawRun{"label": "safe"}, domain.LabelSafe},
		{"verdict alias", domain.RawRun{"verdict": "unsafe"}, domain.LabelUnsafe},
		{"safety_label alias", domain.RawRun{"safety_label": "Unknown"}, domain.LabelUnknown},
		{"result alias", domain.RawRun{"result": " UNSAFE "}, domain.LabelUnsafe},
		{"first present alias wins", domain.RawRun{"label": "safe", "verdict": "unsafe"}, domain.LabelSafe},
		{"empty alias is skipped", domain.RawRun{"label": "", "verdict": "unsafe"}, domain.LabelUnsafe},
		{
			name: "unrecognized first alias does not fall through to later aliases",
			raw:  domain.RawRun{"label": "maybe", "verdict": "safe"},
			want: domain.LabelUnknown,
		},
		{
			name: "non-string top-level falls back to nested labels",
			raw:  domain.RawRun{"label": 1, "labels": map[string]any{"verdict": "safe"}},
			want: domain.LabelSafe,
		},
		{
			name: "nested alias keys in order",
			raw:  domain.RawRun{"labels": map[string]any{"result": "unsafe", "label": "safe"}},
			want: domain.LabelSafe,
		},
		{
			name: "nested alias skips unrecognized values",
			raw:  domain.RawRun{"labels": map[string]any{"label": "??", "verdict": "unsafe"}},
			want: domain.LabelUnsafe,
		},
		{
			name: "nested fallback key",
			raw:  domain.RawRun{"labels": map[string]any{"brand_safety": "Safe"}},
			want: domain.LabelSafe,
		},
		{
			name: "nested fallback keys in declared order",
			raw:  domain.RawRun{"labels": map[string]any{"policy_risk": "unsafe", "brand_safety": "safe"}},
			want: domain.LabelSafe,
		},
		{
			name: "nested overall verdict",
			raw:  domain.RawRun{"labels": map[string]any{"overall": "unsafe"}},
			want: domain.LabelUnsafe,
		},
		{
			name: "nested final verdict",
			raw:  domain.RawRun{"labels": map[string]any{"final": " Safe "}},
			want: domain.LabelSafe,
		},
		{
			name: "lower-case look-alike is not a label",
			raw:  domain.RawRun{"label": "\u017fafe"},
			want: domain.LabelUnknown,
		},
		{
			name: "undeclared nested keys are ignored",
			raw:  domain.RawRun{"labels": map[string]any{"whatever": "unsafe"}},
			want: domain.LabelUnknown,
		},
		{
			name: "labels that is not an object",
			raw:  domain.RawRun{"labels": []any{"safe"}},
			want: domain.LabelUnknown,
		},
		{"missing label", domain.RawRun{"task_id": "T1"}, domain.LabelUnknown},
		{"synthetic error record", domain.RawRun{"error": "invalid_json_line_3", "raw": "{"}, domain.LabelUnknown},
	}

	n := newTestNormalizer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.raw).Label)
		})
	}
}

// randomCase upper-cases the letters of s selected by mask.
func randomCase(s string, mask uint16) string {
	var b strings.Builder
	for i, r := range s {
		if mask>>(uint(i)%16)&1 == 1 {
			r = unicode.ToUpper(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// TestNormalize_LabelSpellingProperty checks that every top-level alias,
// any casing and any surrounding whitespace yield the same canonical label.
func TestNormalize_LabelSpellingProperty(t *testing.T) {
	n := newTestNormalizer(t)

	property := func(aliasIdx, labelIdx uint8, mask uint16, lead, trail uint8) bool {
		key := DefaultLabelKeys[int(aliasIdx)%len(DefaultLabelKeys)]
		want := domain.Labels[int(labelIdx)%len(domain.Labels)]
		spelled := strings.Repeat(" ", int(lead%4)) + randomCase(string(want), mask) + strings.Repeat("\t", int(trail%3))

		return n.Normalize(domain.RawRun{key: spelled}).Label == want
	}
	require.NoError(t, quick.Check(property, nil))
}

func TestNormalize_Scores(t *testing.T) {
	tests := []struct {
		name string
		raw  domain.RawRun
		want map[string]float64
	}{
		{
			name: "nested scores pass through",
			raw:  domain.RawRun{"scores": map[string]any{"brand_safety": 0.42, "custom": json.Number("0.5")}},
			want: map[string]float64{"brand_safety": 0.42, "custom": 0.5},
		},
		{
			name: "clamps out of range values",
			raw:  domain.RawRun{"scores": map[string]any{"a": 1.5, "b": -0.3, "c": 0.42}},
			want: map[string]float64{"a": 1.0, "b": 0.0, "c": 0.42},
		},
		{
			name: "boundaries are kept",
			raw:  domain.RawRun{"scores": map[string]any{"a": 0.0, "b": 1.0}},
			want: map[string]float64{"a": 0.0, "b": 1.0},
		},
		{
			name: "integers are treated like floats",
			raw:  domain.RawRun{"scores": map[string]any{"a": 1, "b": int64(3), "c": json.Number("0"), "d": uint8(0)}},
			want: map[string]float64{"a": 1.0, "b": 1.0, "c": 0.0, "d": 0.0},
		},
		{
			name: "top-level well-known keys merge and overwrite",
			raw: domain.RawRun{
				"scores":          map[string]any{"brand_safety": 0.1, "evidence_quality": 0.7},
				"brand_safety":    0.9,
				"policy_risk":     json.Number("2"),
				"unrelated_score": 0.3,
			},
			want: map[string]float64{"brand_safety": 0.9, "evidence_quality": 0.7, "policy_risk": 1.0},
		},
		{
			name: "non-numeric values are omitted",
			raw: domain.RawRun{
				"scores":             map[string]any{"a": "0.5", "b": true, "c": nil, "d": map[string]any{}, "e": math.NaN()},
				"hallucination_risk": "high",
			},
			want: map[string]float64{},
		},
		{
			name: "huge literals clamp",
			raw:  domain.RawRun{"scores": map[string]any{"a": json.Number("1e400"), "b": json.Number("-1e400")}},
			want: map[string]float64{"a": 1.0, "b": 0.0},
		},
		{
			name: "infinities clamp",
			raw:  domain.RawRun{"scores": map[string]any{"a": math.Inf(1), "b": math.Inf(-1)}},
			want: map[string]float64{"a": 1.0, "b": 0.0},
		},
		{
			name: "scores that is not an object",
			raw:  domain.RawRun{"scores": []any{0.5}},
			want: map[string]float64{},
		},
	}

	n := newTestNormalizer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.raw).Scores)
		})
	}
}

func TestNormalize_ScoreRangeProperty(t *testing.T) {
	n := newTestNormalizer(t)

	property := func(a, b float64, c int32) bool {
		run := n.Normalize(domain.RawRun{
			"scores":       map[string]any{"a": a, "c": c},
			"brand_safety": b,
		})
		for _, v := range run.Scores {
			if v < 0 || v > 1 {
				return false
			}
		}
		return true
	}
	require.NoError(t, quick.Check(property, nil))
}

func TestNormalize_HasError(t *testing.T) {
	tests := []struct {
		name string
		raw  domain.RawRun
		want bool
	}{
		{"no markers", domain.RawRun{"label": "safe"}, false},
		{"error string", domain.RawRun{"error": "timeout"}, true},
		{"synthetic line marker", domain.RawRun{"error": "invalid_json_line_2", "raw": "x"}, true},
		{"error true", domain.RawRun{"error": true}, true},
		{"error object", domain.RawRun{"error": map[string]any{"code": json.Number("500")}}, true},
		{"error false", domain.RawRun{"error": false}, false},
		{"error null", domain.RawRun{"error": nil}, false},
		{"error empty string", domain.RawRun{"error": ""}, false},
		{"error zero", domain.RawRun{"error": json.Number("0")}, false},
		{"error empty list", domain.RawRun{"error": []any{}}, false},
		{"status error", domain.RawRun{"status": "error"}, true},
		{"status failed any case", domain.RawRun{"status": "FAILED"}, true},
		{"status ok", domain.RawRun{"status": "ok"}, false},
		{"status padded is not matched", domain.RawRun{"status": " failed"}, false},
		{"status non-string", domain.RawRun{"status": json.Number("1")}, false},
	}

	n := newTestNormalizer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.raw).HasError)
		})
	}
}

func TestNormalize_CustomAliases(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TaskKeys = []string{"case"}
	cfg.LabelKeys = []string{"outcome"}
	cfg.ErrorStatuses = []string{"Crashed"}

	n, err := NewNormalizer(cfg, nil)
	require.NoError(t, err)

	run := n.Normalize(domain.RawRun{"case": "X9", "task_id": "ignored", "outcome": "unsafe", "status": "crashed"})
	assert.Equal(t, "X9", run.TaskID)
	assert.Equal(t, domain.LabelUnsafe, run.Label)
	assert.True(t, run.HasError)
}

func TestNormalize_DiagnosesUnrecognizedLabel(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	n, err := NewNormalizer(DefaultConfig(), zap.New(core))
	require.NoError(t, err)

	run := n.Normalize(domain.RawRun{"task_id": "T1", "label": "unsaf"})
	assert.Equal(t, domain.LabelUnknown, run.Label)

	entries := logs.FilterMessage("unrecognized label").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "unsaf", fields["label"])
	assert.Equal(t, "unsafe", fields["closest"])
	assert.EqualValues(t, 1, fields["distance"])

	t.Run("explicit unknown is not diagnosed", func(t *testing.T) {
		n.Normalize(domain.RawRun{"label": "unknown"})
		assert.Len(t, logs.FilterMessage("unrecognized label").All(), 1)
	})
}

func TestClosestLabel(t *testing.T) {
	tests := []struct {
		input string
		want  domain.Label
		dist  int
	}{
		{"save", domain.LabelSafe, 1},
		{"UNSAFE!", domain.LabelUnsafe, 1},
		{"unknwn", domain.LabelUnknown, 1},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, dist := closestLabel(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.dist, dist)
		})
	}
}
