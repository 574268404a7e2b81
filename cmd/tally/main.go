// tally turns newline-delimited agent run records into safety summaries
// and strategy comparison reports.
//
// Usage:
//
//	tally analyze [--runs artifacts/runs.jsonl] [--out artifacts/summary.json] [--print]
//	tally compare [--summary artifacts/summary.json] [--out artifacts/report.md]
package main

import (
	"context"
	"fmt"
	"io"
	"os"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run executes the command line in args and releases every resource the
// invocation acquired, whether or not the command succeeded.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := newApp()
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if cerr := a.close(ctx); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
