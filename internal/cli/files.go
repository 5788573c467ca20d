package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newFilesCmd() *cobra.Command {
	var (
		environment   string
		limit         int
		continuation  string
		outputFormat  string
		backendType   string
		backendConfig []string
	)

	cmd := &cobra.Command{
		Use:   "files <date>",
		Short: "List log files for a date",
		Long: `List the log objects stored for a date, in ascending key order.

Large days span multiple pages; pass the printed continuation token back via
--cursor to fetch the next page.

Examples:
  logpushctl files 20240101
  logpushctl files 20240101 -e staging -n 20
  logpushctl files 20240101 --cursor <token>`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := createEngine(backendType, backendConfig)
			if err != nil {
				return err
			}

			files, next, err := engine.Catalog().ListFiles(context.Background(), environment, args[0], limit, continuation)
			if err != nil {
				return err
			}

			switch outputFormat {
			case "json":
				return printJSON(map[string]interface{}{
					"files":       files,
					"count":       len(files),
					"next_cursor": next,
				})
			case "yaml":
				return printYAML(map[string]interface{}{
					"files":       files,
					"count":       len(files),
					"next_cursor": next,
				})
			default:
				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "KEY\tSIZE\tLAST MODIFIED")
				for _, f := range files {
					fmt.Fprintf(w, "%s\t%d\t%s\n", f.Key, f.Size, f.LastModified.Format(time.RFC3339))
				}
				if err := w.Flush(); err != nil {
					return err
				}
				if next != "" {
					fmt.Fprintf(os.Stderr, "\nMore files available. Continue with --cursor %s\n", next)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&environment, "environment", "e", "production", "Environment to list")
	cmd.Flags().IntVarP(&limit, "limit", "n", 100, "Maximum number of files to return")
	cmd.Flags().StringVar(&continuation, "cursor", "", "Continuation token from a previous page")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table, json, yaml)")
	cmd.Flags().StringVar(&backendType, "backend", "", "Storage backend type")
	cmd.Flags().StringArrayVar(&backendConfig, "backend-config", nil, "Backend configuration (key=value)")

	return cmd
}
