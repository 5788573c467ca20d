package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

func newReadCmd() *cobra.Command {
	var (
		limit         int
		detail        bool
		outputFormat  string
		backendType   string
		backendConfig []string
	)

	cmd := &cobra.Command{
		Use:   "read <key>",
		Short: "Read and parse one log file",
		Long: `Read a single log object by its full key and print its parsed entries.

Examples:
  logpushctl read production/20240101/20240101T000000Z_20240101T010000Z_abc.log.gz
  logpushctl read production/20240101/....log.gz -n 10 --detail`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			engine, err := createEngine(backendType, backendConfig)
			if err != nil {
				return err
			}

			entries, total, err := engine.ReadObject(ctx, args[0], limit)
			if err != nil {
				return err
			}

			if err := printEntries(entries, outputFormat, detail); err != nil {
				return err
			}
			if total > len(entries) {
				fmt.Fprintf(os.Stderr, "\nShowing %d of %d entries.\n", len(entries), total)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 100, "Maximum number of entries to print")
	cmd.Flags().BoolVar(&detail, "detail", false, "Include exceptions and log lines")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table, json, yaml)")
	cmd.Flags().StringVar(&backendType, "backend", "", "Storage backend type")
	cmd.Flags().StringArrayVar(&backendConfig, "backend-config", nil, "Backend configuration (key=value)")

	return cmd
}
