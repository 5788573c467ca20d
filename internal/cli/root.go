// Package cli implements the logpushctl CLI commands.
package cli

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	// Import storage backends to register them via init()
	_ "github.com/davidthor/logpushctl/pkg/storage/azure"
	_ "github.com/davidthor/logpushctl/pkg/storage/gcs"
	_ "github.com/davidthor/logpushctl/pkg/storage/local"
	_ "github.com/davidthor/logpushctl/pkg/storage/s3"
)

var (
	cfgFile string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "logpushctl",
	Short: "Query logpush archives in object storage",
	Long: `logpushctl retrieves and filters Workers trace-event logs stored as
gzipped NDJSON in an object-storage bucket, organized as
<environment>/<YYYYMMDD>/<file>.log.gz.

Queries are bounded and resumable: every search returns at most the requested
number of entries plus an opaque cursor to continue from, without the caller
knowing how records are sharded across files.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.logpushctl/config.yaml)")
	rootCmd.PersistentFlags().String("backend", "s3", "Storage backend type (s3, gcs, azure, local)")
	rootCmd.PersistentFlags().StringArray("backend-config", nil, "Backend configuration (key=value)")
	rootCmd.PersistentFlags().String("bucket", "", "Bucket or container holding the logpush archives")

	// Bind to viper
	_ = viper.BindPFlag("backend", rootCmd.PersistentFlags().Lookup("backend"))
	_ = viper.BindPFlag("bucket", rootCmd.PersistentFlags().Lookup("bucket"))
	viper.SetEnvPrefix("LOGPUSHCTL")
	viper.AutomaticEnv()

	// Add subcommands
	rootCmd.AddCommand(newEnvironmentsCmd())
	rootCmd.AddCommand(newDatesCmd())
	rootCmd.AddCommand(newFilesCmd())
	rootCmd.AddCommand(newReadCmd())
	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newErrorsCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newLatestCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in home directory
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home + "/.logpushctl")
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	// Read config file if it exists
	_ = viper.ReadInConfig()
}
