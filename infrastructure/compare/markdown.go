package compare

import (
	"fmt"
	"strings"

	"github.com/ahrav/go-tally/infrastructure/report"
	"github.com/ahrav/go-tally/internal/domain"
)

// ReportTitle heads every rendered report.
const ReportTitle = "# Brand Creative Safety Agent: Strategy Comparison Report"

func pct(rate float64) string {
	return fmt.Sprintf("%0.1f%%", rate*100)
}

func code(id string) string {
	return "`" + id + "`"
}

// RenderMarkdown renders the comparison report for s: overall totals, the
// ranked strategy leaderboard and a per-task breakdown sorted by task id.
func RenderMarkdown(s domain.Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n\n", ReportTitle)
	fmt.Fprintf(&b, "- Total runs: **%d**\n", s.Overall.Runs)
	fmt.Fprintf(&b, "- Safe rate: **%s** | Unsafe rate: **%s** | Unknown rate: **%s**\n",
		pct(s.Overall.SafeRate), pct(s.Overall.UnsafeRate), pct(s.Overall.UnknownRate))

	b.WriteString("\n## Strategy leaderboard\n\n")
	leaders := report.NewTable(report.Markdown)
	header := []string{"Rank", "Strategy", "Runs", "Safe", "Unsafe", "Unknown"}
	for _, c := range report.ScoreColumns {
		header = append(header, "Avg "+c.Key)
	}
	leaders.Header(header...)
	for _, r := range Rank(s) {
		g := r.Summary
		row := []any{r.Rank, code(r.StrategyID), g.Runs, pct(g.SafeRate), pct(g.UnsafeRate), pct(g.UnknownRate)}
		for _, c := range report.ScoreColumns {
			row = append(row, report.Score(g.AvgScores, c.Key))
		}
		leaders.Row(row...)
	}
	leaders.AlignRight(1, 3, 4, 5, 6, 7, 8, 9, 10)
	b.WriteString(leaders.String())
	b.WriteString("\n")

	b.WriteString("\n## Task breakdown\n\n")
	tasks := report.NewTable(report.Markdown)
	tasks.Header("Task", "Runs", "Safe", "Unsafe", "Unknown")
	for _, id := range report.TaskIDs(s) {
		g := s.Tasks[id]
		tasks.Row(code(id), g.Runs, pct(g.SafeRate), pct(g.UnsafeRate), pct(g.UnknownRate))
	}
	tasks.AlignRight(2, 3, 4, 5)
	b.WriteString(tasks.String())
	b.WriteString("\n")

	return b.String()
}
