package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newEnvironmentsCmd() *cobra.Command {
	var (
		outputFormat  string
		backendType   string
		backendConfig []string
	)

	cmd := &cobra.Command{
		Use:     "environments",
		Aliases: []string{"envs"},
		Short:   "List environments in the bucket",
		Long: `List the top-level environment folders (e.g. production, staging) in the
logpush bucket.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := createEngine(backendType, backendConfig)
			if err != nil {
				return err
			}

			environments, err := engine.Catalog().ListEnvironments(context.Background())
			if err != nil {
				return err
			}

			switch outputFormat {
			case "json":
				return printJSON(environments)
			case "yaml":
				return printYAML(environments)
			default:
				for _, env := range environments {
					fmt.Println(env)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table, json, yaml)")
	cmd.Flags().StringVar(&backendType, "backend", "", "Storage backend type")
	cmd.Flags().StringArrayVar(&backendConfig, "backend-config", nil, "Backend configuration (key=value)")

	return cmd
}
