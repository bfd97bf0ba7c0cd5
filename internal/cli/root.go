package cli

import (
	"github.com/spf13/cobra"

	"github.com/christopherseaman/narko/internal/config"
	"github.com/christopherseaman/narko/internal/logger"
)

var (
	// Verbose enables debug logging.
	verbose bool

	// configFile overrides the config file location.
	configFile string

	logg = logger.Default(false)
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "narko",
	Short: "Import Markdown files into Notion",
	Long: `Narko converts Markdown files into Notion blocks and uploads them
through the Notion API.

It understands Obsidian-flavoured Markdown: callouts, highlights, math,
wiki links and file embeds. Local media referenced by a document is
uploaded alongside it.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string reported by the CLI.
func SetVersion(v string) {
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose debug output")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default narko.toml)")

	// Set up logging before any command executes.
	rootCmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		logg = logger.Default(verbose)
		return nil
	}
}

func loadConfig() (*config.Config, error) {
	return config.Load(configFile)
}
