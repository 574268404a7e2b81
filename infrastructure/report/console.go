package report

import (
	"fmt"
	"io"
	"slices"

	"github.com/ahrav/go-tally/internal/domain"
)

// StrategyIDs returns the strategy ids of s in ascending order.
func StrategyIDs(s domain.Summary) []string {
	ids := make([]string, 0, len(s.Strategies))
	for id := range s.Strategies {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// TaskIDs returns the task ids of s in ascending order.
func TaskIDs(s domain.Summary) []string {
	ids := make([]string, 0, len(s.Tasks))
	for id := range s.Tasks {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// StrategyTable renders one row per strategy, sorted by strategy id.
func StrategyTable(s domain.Summary) string {
	t := NewTable(Console)
	header := []string{"strategy", "runs", "safe%", "unsafe%", "unk%"}
	for _, c := range ScoreColumns {
		header = append(header, c.Header)
	}
	t.Header(header...)

	for _, id := range StrategyIDs(s) {
		g := s.Strategies[id]
		row := []any{id, g.Runs, Pct(g.SafeRate), Pct(g.UnsafeRate), Pct(g.UnknownRate)}
		for _, c := range ScoreColumns {
			row = append(row, Score(g.AvgScores, c.Key))
		}
		t.Row(row...)
	}
	t.AlignRight(2, 3, 4, 5, 6, 7, 8, 9)
	return t.String()
}

// PrintSummary writes the console view of s: a totals line, the strategy
// table and the path the summary was written to.
func PrintSummary(w io.Writer, s domain.Summary, writtenTo string) error {
	if _, err := fmt.Fprintf(w, "Loaded runs: %d | unsafe_rate=%.3f | safe_rate=%.3f\n",
		s.Overall.Runs, s.Overall.UnsafeRate, s.Overall.SafeRate); err != nil {
		return fmt.Errorf("failed to print summary: %w", err)
	}
	if _, err := fmt.Fprintln(w, StrategyTable(s)); err != nil {
		return fmt.Errorf("failed to print strategy table: %w", err)
	}
	if _, err := fmt.Fprintf(w, "Wrote: %s\n", writtenTo); err != nil {
		return fmt.Errorf("failed to print output path: %w", err)
	}
	return nil
}
