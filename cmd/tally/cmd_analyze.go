package main

import (
	"github.com/spf13/cobra"

	"github.com/ahrav/go-tally/infrastructure/report"
	"github.com/ahrav/go-tally/internal/application"
)

func (a *app) analyzeCmd() *cobra.Command {
	var flags struct {
		runs  string
		out   string
		print bool
	}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Aggregate run records into a summary JSON document",
		Long: `Analyze reads run records, resolves each record's task, strategy, label and
scores, and writes per-strategy and per-task statistics as JSON.

Usage:
  tally analyze                                   # artifacts/runs.jsonl -> artifacts/summary.json
  tally analyze --runs in.jsonl --out out.json
  tally analyze --print                           # also print a table to stdout`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			runs := firstNonEmpty(flags.runs, a.cfg.Paths.Runs)
			out := firstNonEmpty(flags.out, a.cfg.Paths.Summary)

			p, err := application.NewPipelineFromConfig(a.cfg, a.metrics, a.logger)
			if err != nil {
				return err
			}
			summary, err := p.Run(cmd.Context(), runs, out)
			if err != nil {
				return err
			}
			if flags.print {
				return report.PrintSummary(cmd.OutOrStdout(), summary, out)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.runs, "runs", "", "Path to the runs JSONL file (default: "+application.DefaultRunsPath+")")
	f.StringVar(&flags.out, "out", "", "Path to write the summary JSON (default: "+application.DefaultSummaryPath+")")
	f.BoolVar(&flags.print, "print", false, "Print the summary table to stdout")
	return cmd
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
