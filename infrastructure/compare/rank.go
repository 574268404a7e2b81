// Package compare ranks strategies from a written summary and renders the
// Markdown comparison report.
package compare

import (
	"cmp"
	"slices"

	"github.com/ahrav/go-tally/internal/domain"
)

// Ranked is one leaderboard entry. Rank starts at 1.
type Ranked struct {
	Rank       int
	StrategyID string
	Summary    domain.StrategySummary
}

// Rank orders the strategies of s by higher safe rate, then lower unsafe
// rate, then more runs. Remaining ties fall back to ascending strategy id so
// the order is stable across invocations.
func Rank(s domain.Summary) []Ranked {
	ranked := make([]Ranked, 0, len(s.Strategies))
	for id, g := range s.Strategies {
		ranked = append(ranked, Ranked{StrategyID: id, Summary: g})
	}

	slices.SortFunc(ranked, func(a, b Ranked) int {
		if c := cmp.Compare(b.Summary.SafeRate, a.Summary.SafeRate); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Summary.UnsafeRate, b.Summary.UnsafeRate); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Summary.Runs, a.Summary.Runs); c != 0 {
			return c
		}
		return cmp.Compare(a.StrategyID, b.StrategyID)
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
