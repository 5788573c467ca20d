package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Keys recognized by `config set`. Anything else is rejected so a typo
// does not silently land in the config file.
var configKeys = map[string]string{
	"backend":           "Storage backend type (s3, gcs, azure, local)",
	"bucket":            "Bucket or container holding the logs",
	"endpoint":          "Custom S3 endpoint URL (R2, MinIO)",
	"region":            "S3 region",
	"account-id":        "Cloudflare account ID (derives the R2 endpoint)",
	"access-key-id":     "S3 access key ID",
	"secret-access-key": "S3 secret access key",
	"path":              "Root directory for the local backend",
}

// secretKeys are masked in `config list` output.
var secretKeys = map[string]bool{
	"secret-access-key": true,
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  `Get and set logpushctl configuration values stored in ~/.logpushctl/config.yaml.`,
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(newConfigListCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value in ~/.logpushctl/config.yaml.

Available keys:
` + configKeyHelp() + `

Examples:
  logpushctl config set backend s3
  logpushctl config set bucket worker-logs
  logpushctl config set account-id 0123456789abcdef`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := args[1]

			if _, ok := configKeys[key]; !ok {
				return fmt.Errorf("unknown configuration key %q\n\nAvailable keys:\n%s", key, configKeyHelp())
			}

			// Dashes in CLI, underscores in the config file
			viper.Set(normalizeConfigKey(key), value)
			if err := writeConfig(); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			fmt.Printf("Set %s = %s\n", key, value)
			return nil
		},
	}

	return cmd
}

func newConfigGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long: `Get a configuration value from ~/.logpushctl/config.yaml.

Examples:
  logpushctl config get bucket`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			value := viper.GetString(normalizeConfigKey(key))
			if value == "" {
				fmt.Printf("%s is not set\n", key)
			} else {
				fmt.Println(value)
			}
			return nil
		},
	}

	return cmd
}

func newConfigListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Long:  `List all configuration values from ~/.logpushctl/config.yaml.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("Configuration:")

			any := false
			for _, key := range sortedConfigKeys() {
				value := viper.GetString(normalizeConfigKey(key))
				if value == "" {
					continue
				}
				if secretKeys[key] {
					value = "********"
				}
				fmt.Printf("  %s = %s\n", key, value)
				any = true
			}
			if !any {
				fmt.Println("  (no values set)")
			}

			return nil
		},
	}

	return cmd
}

// writeConfig writes the current viper config to the config file.
func writeConfig() error {
	configPath := viper.ConfigFileUsed()
	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir := filepath.Join(home, ".logpushctl")
		if err := os.MkdirAll(configDir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
		configPath = filepath.Join(configDir, "config.yaml")
	}

	return viper.WriteConfigAs(configPath)
}

// normalizeConfigKey converts CLI-style keys (with dashes) to viper-style keys (with underscores).
func normalizeConfigKey(key string) string {
	return strings.ReplaceAll(key, "-", "_")
}

func sortedConfigKeys() []string {
	keys := make([]string, 0, len(configKeys))
	for k := range configKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func configKeyHelp() string {
	var b strings.Builder
	for _, key := range sortedConfigKeys() {
		fmt.Fprintf(&b, "  %-19s%s\n", key, configKeys[key])
	}
	return strings.TrimRight(b.String(), "\n")
}
