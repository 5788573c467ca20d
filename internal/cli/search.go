package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/davidthor/logpushctl/pkg/logpush"
	"github.com/spf13/cobra"
)

func newSearchCmd() *cobra.Command {
	var (
		environment   string
		key           string
		scriptName    string
		statusCode    int
		statusGte     int
		statusLt      int
		outcome       string
		searchText    string
		limit         int
		cursorToken   string
		detail        bool
		outputFormat  string
		backendType   string
		backendConfig []string
	)

	cmd := &cobra.Command{
		Use:   "search <date>",
		Short: "Search logs with filters",
		Long: `Scan the logs of a date in order, returning at most --limit matching
entries and a cursor to resume the scan from.

All filters are combined with AND. Text search is a case-insensitive
substring match against the request URL and every log line.

Examples:
  logpushctl search 20240101 --status-gte 500                  # Server errors
  logpushctl search 20240101 --script api-worker --text "timeout"
  logpushctl search 20240101 -n 50 --cursor <token>            # Next page`,
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

			scope := logpush.Scope{
				Environment: environment,
				Date:        args[0],
				Key:         key,
			}
			filter := logpush.FilterSpec{
				ScriptName: scriptName,
				StatusCode: statusCode,
				StatusGte:  statusGte,
				StatusLt:   statusLt,
				Outcome:    outcome,
				SearchText: searchText,
			}

			result, err := engine.Execute(ctx, scope, filter, limit, cursor)
			if err != nil {
				return err
			}

			if err := printEntries(result.Entries, outputFormat, detail); err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, "\n%d entries, %d lines scanned across %d files",
				len(result.Entries), result.ScannedLines, result.FilesScanned)
			if result.MalformedLines > 0 {
				fmt.Fprintf(os.Stderr, " (%d malformed lines skipped)", result.MalformedLines)
			}
			fmt.Fprintln(os.Stderr)
			if result.NextCursor != nil {
				fmt.Fprintf(os.Stderr, "Continue with --cursor %s\n", result.NextCursor.Encode())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&environment, "environment", "e", "production", "Environment to search")
	cmd.Flags().StringVar(&key, "key", "", "Restrict the scan to one object key")
	cmd.Flags().StringVar(&scriptName, "script", "", "Filter by worker script name")
	cmd.Flags().IntVar(&statusCode, "status", 0, "Filter by exact HTTP status code")
	cmd.Flags().IntVar(&statusGte, "status-gte", 0, "Filter by status code >= value")
	cmd.Flags().IntVar(&statusLt, "status-lt", 0, "Filter by status code < value")
	cmd.Flags().StringVar(&outcome, "outcome", "", "Filter by outcome (ok, exception, ...)")
	cmd.Flags().StringVar(&searchText, "text", "", "Search in URLs and log messages")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of entries to return")
	cmd.Flags().StringVar(&cursorToken, "cursor", "", "Cursor from a previous page")
	cmd.Flags().BoolVar(&detail, "detail", false, "Include exceptions and log lines")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table, json, yaml)")
	cmd.Flags().StringVar(&backendType, "backend", "", "Storage backend type")
	cmd.Flags().StringArrayVar(&backendConfig, "backend-config", nil, "Backend configuration (key=value)")

	return cmd
}
