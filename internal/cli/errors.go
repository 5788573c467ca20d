package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/davidthor/logpushctl/pkg/logpush"
	"github.com/spf13/cobra"
)

func newErrorsCmd() *cobra.Command {
	var (
		environment   string
		scriptName    string
		limit         int
		cursorToken   string
		outputFormat  string
		backendType   string
		backendConfig []string
	)

	cmd := &cobra.Command{
		Use:   "errors <date>",
		Short: "Show error entries for a date",
		Long: `Scan a date for failed invocations: exception outcomes, recorded
exceptions, and warn/error-level log lines. Always prints full detail.

Examples:
  logpushctl errors 20240101
  logpushctl errors 20240101 --script api-worker -n 20`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			engine, err := createEngine(backendType, backendConfig)
			if err != nil {
				return err
			}

			var cursor *logpush.Cursor
			if cursorToken != "" {
				decoded, err := logpush.DecodeCursor(cursorToken)
				if err != nil {
					return err
				}
				cursor = &decoded
			}

			scope := logpush.Scope{Environment: environment, Date: args[0]}
			filter := logpush.FilterSpec{ScriptName: scriptName, ErrorsOnly: true}

			result, err := engine.Execute(ctx, scope, filter, limit, cursor)
			if err != nil {
				return err
			}

			if err := printEntries(result.Entries, outputFormat, true); err != nil {
				return err
			}
			if result.NextCursor != nil {
				fmt.Fprintf(os.Stderr, "\nContinue with --cursor %s\n", result.NextCursor.Encode())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&environment, "environment", "e", "production", "Environment to search")
	cmd.Flags().StringVar(&scriptName, "script", "", "Filter by worker script name")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of entries to return")
	cmd.Flags().StringVar(&cursorToken, "cursor", "", "Cursor from a previous page")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table, json, yaml)")
	cmd.Flags().StringVar(&backendType, "backend", "", "Storage backend type")
	cmd.Flags().StringArrayVar(&backendConfig, "backend-config", nil, "Backend configuration (key=value)")

	return cmd
}
