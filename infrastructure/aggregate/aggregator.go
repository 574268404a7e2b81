// Package aggregate computes per-strategy, per-task and overall safety
// statistics from canonical runs.
package aggregate

import (
	"go.uber.org/zap"

	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/ports"
)

var _ ports.RunAggregator = (*Aggregator)(nil)

// Aggregator groups canonical runs by strategy and by task in a single
// linear pass. Strategy buckets also average every score key; task buckets
// carry rate statistics only.
//
// Every call owns its working counters, so an Aggregator is stateless and
// safe for reuse.
type Aggregator struct {
	logger *zap.Logger
}

// NewAggregator creates an Aggregator. A nil logger disables diagnostics.
func NewAggregator(logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{logger: logger}
}

// bucket accumulates the counters of one group.
type bucket struct {
	runs   int
	labels map[domain.Label]int

	// Score accumulators are nil for buckets that do not average scores.
	scoreSums   map[string]float64
	scoreCounts map[string]int
}

func newBucket(withScores bool) *bucket {
	b := &bucket{labels: domain.NewLabelCounts()}
	if withScores {
		b.scoreSums = make(map[string]float64)
		b.scoreCounts = make(map[string]int)
	}
	return b
}

func (b *bucket) add(run domain.CanonicalRun) {
	b.runs++
	b.labels[run.Label]++
	if b.scoreSums == nil {
		return
	}
	for k, v := range run.Scores {
		b.scoreSums[k] += v
		b.scoreCounts[k]++
	}
}

func (b *bucket) summary() domain.GroupSummary {
	s := domain.GroupSummary{
		Runs:   b.runs,
		Labels: b.labels,
	}
	s.SafeRate, s.UnsafeRate, s.UnknownRate = domain.Rates(b.labels, b.runs)
	return s
}

// strategySummary is summary plus score averages. The average map is
// allocated even when no run carried a score.
func (b *bucket) strategySummary() domain.StrategySummary {
	s := domain.StrategySummary{
		GroupSummary: b.summary(),
		AvgScores:    make(map[string]float64, len(b.scoreSums)),
	}
	for k, sum := range b.scoreSums {
		s.AvgScores[k] = sum / float64(b.scoreCounts[k])
	}
	return s
}

// Aggregate computes the summary of runs. It never fails: runs that came
// from malformed input simply count as unknown and as error runs.
func (a *Aggregator) Aggregate(runs []domain.CanonicalRun) domain.Summary {
	overall := newBucket(false)
	strategies := make(map[string]*bucket)
	tasks := make(map[string]*bucket)
	var errorRuns int

	for _, run := range runs {
		overall.add(run)
		if run.HasError {
			errorRuns++
		}

		sb, ok := strategies[run.StrategyID]
		if !ok {
			sb = newBucket(true)
			strategies[run.StrategyID] = sb
		}
		sb.add(run)

		tb, ok := tasks[run.TaskID]
		if !ok {
			tb = newBucket(false)
			tasks[run.TaskID] = tb
		}
		tb.add(run)
	}

	all := overall.summary()
	summary := domain.Summary{
		Overall: domain.OverallSummary{
			Runs:        all.Runs,
			Labels:      all.Labels,
			UnsafeRate:  all.UnsafeRate,
			SafeRate:    all.SafeRate,
			UnknownRate: all.UnknownRate,
			ErrorRuns:   errorRuns,
		},
		Strategies: make(map[string]domain.StrategySummary, len(strategies)),
		Tasks:      make(map[string]domain.GroupSummary, len(tasks)),
	}
	for id, b := range strategies {
		summary.Strategies[id] = b.strategySummary()
	}
	for id, b := range tasks {
		summary.Tasks[id] = b.summary()
	}

	a.logger.Debug("runs aggregated",
		zap.Int("runs", all.Runs),
		zap.Int("strategies", len(strategies)),
		zap.Int("tasks", len(tasks)),
		zap.Int("error_runs", errorRuns))
	return summary
}
