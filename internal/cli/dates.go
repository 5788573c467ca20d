package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newDatesCmd() *cobra.Command {
	var (
		environment   string
		limit         int
		outputFormat  string
		backendType   string
		backendConfig []string
	)

	cmd := &cobra.Command{
		Use:   "dates",
		Short: "List available date folders",
		Long: `List the date folders available in the bucket, newest first.

Examples:
  logpushctl dates                      # All environments
  logpushctl dates -e production        # One environment
  logpushctl dates -e staging -n 7      # Last week of staging`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := createEngine(backendType, backendConfig)
			if err != nil {
				return err
			}

			dates, err := engine.Catalog().ListDates(context.Background(), environment, limit)
			if err != nil {
				return err
			}

			switch outputFormat {
			case "json":
				return printJSON(dates)
			case "yaml":
				return printYAML(dates)
			default:
				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "DATE\tENVIRONMENT\tPREFIX")
				for _, d := range dates {
					fmt.Fprintf(w, "%s\t%s\t%s\n", d.Date, d.Environment, d.Prefix)
				}
				return w.Flush()
			}
		},
	}

	cmd.Flags().StringVarP(&environment, "environment", "e", "", "Filter by environment")
	cmd.Flags().IntVarP(&limit, "limit", "n", 30, "Maximum number of dates to return")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table, json, yaml)")
	cmd.Flags().StringVar(&backendType, "backend", "", "Storage backend type")
	cmd.Flags().StringArrayVar(&backendConfig, "backend-config", nil, "Backend configuration (key=value)")

	return cmd
}
