package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/davidthor/logpushctl/pkg/logpush"
	"github.com/spf13/cobra"
)

func newLatestCmd() *cobra.Command {
	var (
		environment   string
		scriptName    string
		limit         int
		detail        bool
		outputFormat  string
		backendType   string
		backendConfig []string
	)

	cmd := &cobra.Command{
		Use:   "latest",
		Short: "Show the most recent log entries",
		Long: `Show the most recent entries for an environment without naming a date.

The newest date folder is scanned first; if it holds fewer matches than
requested, older dates are scanned until the limit is met (bounded to one
week back).

Examples:
  logpushctl latest
  logpushctl latest -e staging -n 20
  logpushctl latest --script api-worker`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			engine, err := createEngine(backendType, backendConfig)
			if err != nil {
				return err
			}

			entries, err := engine.Latest(ctx, environment,
				logpush.FilterSpec{ScriptName: scriptName}, limit)
			if err != nil {
				return err
			}

			return printEntries(entries, outputFormat, detail)
		},
	}

	cmd.Flags().StringVarP(&environment, "environment", "e", "production", "Environment to query")
	cmd.Flags().StringVar(&scriptName, "script", "", "Filter by worker script name")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Number of entries to return")
	cmd.Flags().BoolVar(&detail, "detail", false, "Include exceptions and log lines")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table, json, yaml)")
	cmd.Flags().StringVar(&backendType, "backend", "", "Storage backend type")
	cmd.Flags().StringArrayVar(&backendConfig, "backend-config", nil, "Backend configuration (key=value)")

	return cmd
}
