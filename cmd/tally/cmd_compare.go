package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ahrav/go-tally/infrastructure/compare"
	"github.com/ahrav/go-tally/internal/application"
)

func (a *app) compareCmd() *cobra.Command {
	var flags struct {
		summary string
		out     string
	}

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Rank strategies from a summary and write a Markdown report",
		Long: `Compare loads a summary written by "tally analyze", ranks strategies by
higher safe rate, lower unsafe rate and more runs, and writes a Markdown
leaderboard with a per-task breakdown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			summaryPath := firstNonEmpty(flags.summary, a.cfg.Paths.Summary)
			out := firstNonEmpty(flags.out, a.cfg.Paths.Report)

			s, err := compare.LoadSummary(summaryPath)
			if err != nil {
				return fmt.Errorf("%w (run tally analyze first)", err)
			}
			if err := compare.WriteReport(out, compare.RenderMarkdown(s)); err != nil {
				return err
			}

			a.logger.Info("report written",
				zap.String("summary", summaryPath),
				zap.String("path", out),
				zap.Int("strategies", len(s.Strategies)))
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote report: %s\n", out)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.summary, "summary", "", "Path to the summary JSON (default: "+application.DefaultSummaryPath+")")
	f.StringVar(&flags.out, "out", "", "Path to write the Markdown report (default: "+application.DefaultReportPath+")")
	return cmd
}
