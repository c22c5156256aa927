// Root command for the pagemark CLI.
package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
	flagEndpoint  string
	flagAPIKey    string
	flagJSON      bool
	flagVerbose   bool
)

// logger is built once in PersistentPreRunE and shared by all commands.
var logger = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:   "pagemark",
	Short: "Pagemark flags scam and misinformation content on web pages",
	Long: `Pagemark records flags (scam, misinformation, fake-profile, other)
against content on web pages, persists them to a PostgREST-compatible
store, and re-applies highlights when a page is rendered again.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if flagVerbose {
			log, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			logger = log
		}
		return loadConfig()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory for local state (default: $(CWD)/.pagemark-db)")
	rootCmd.PersistentFlags().StringVar(&flagEndpoint, "endpoint", "", "store endpoint URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagAPIKey, "api-key", "", "store API key (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose logging")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(flagCmd)
	rootCmd.AddCommand(flagLinkCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(unflagCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(whoamiCmd)
}
