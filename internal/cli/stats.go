package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"

	"github.com/davidthor/logpushctl/pkg/logpush"
	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	var (
		environment   string
		scriptName    string
		outcome       string
		outputFormat  string
		backendType   string
		backendConfig []string
	)

	cmd := &cobra.Command{
		Use:   "stats <date>",
		Short: "Aggregate statistics for a date",
		Long: `Scan every log file of a date and report request counts by status class,
outcome, and worker, plus the error rate.

This reads the full day and is the slowest operation; expect it to take
longer than a bounded search.

Examples:
  logpushctl stats 20240101
  logpushctl stats 20240101 -e staging --script api-worker`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			engine, err := createEngine(backendType, backendConfig)
			if err != nil {
				return err
			}

			scope := logpush.Scope{Environment: environment, Date: args[0]}
			filter := logpush.FilterSpec{ScriptName: scriptName, Outcome: outcome}

			stats, err := engine.Aggregate(ctx, scope, filter)
			if err != nil {
				return err
			}

			switch outputFormat {
			case "json":
				return printJSON(stats)
			case "yaml":
				return printYAML(stats)
			default:
				printStatsTable(stats)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&environment, "environment", "e", "production", "Environment to aggregate")
	cmd.Flags().StringVar(&scriptName, "script", "", "Filter by worker script name")
	cmd.Flags().StringVar(&outcome, "outcome", "", "Filter by outcome")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table, json, yaml)")
	cmd.Flags().StringVar(&backendType, "backend", "", "Storage backend type")
	cmd.Flags().StringArrayVar(&backendConfig, "backend-config", nil, "Backend configuration (key=value)")

	return cmd
}

func printStatsTable(stats *logpush.Stats) {
	fmt.Printf("Environment: %s\n", stats.Environment)
	fmt.Printf("Date:        %s\n", stats.Date)
	fmt.Printf("Matched:     %d (of %d lines in %d files, %d malformed)\n",
		stats.TotalMatched, stats.TotalScanned, stats.FilesScanned, stats.MalformedLines)
	fmt.Printf("Errors:      %d (%.2f%%)\n\n", stats.ErrorCount, stats.ErrorRate)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "STATUS\tCOUNT")
	for _, bucket := range []string{"1xx", "2xx", "3xx", "4xx", "5xx", "none"} {
		if n := stats.ByStatusBucket[bucket]; n > 0 {
			fmt.Fprintf(w, "%s\t%d\n", bucket, n)
		}
	}
	fmt.Fprintln(w, "\nOUTCOME\tCOUNT")
	for _, outcome := range sortedKeys(stats.ByOutcome) {
		fmt.Fprintf(w, "%s\t%d\n", outcome, stats.ByOutcome[outcome])
	}
	fmt.Fprintln(w, "\nSCRIPT\tCOUNT")
	for _, script := range stats.TopScripts(10) {
		fmt.Fprintf(w, "%s\t%d\n", script, stats.ByScript[script])
	}
	w.Flush()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
