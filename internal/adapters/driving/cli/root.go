// Package cli implements the wikidex command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/wikidex/internal/core/ports/driven"
	"github.com/custodia-labs/wikidex/internal/core/ports/driving"
	"github.com/custodia-labs/wikidex/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services the commands run against. Populated by Execute before any
// command runs; tests swap in mocks.
var (
	syncRunner driving.SyncRunner
	notifier   driven.Notifier
)

var (
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "wikidex",
	Short: "Keep a searchable document index in sync with a Redmine wiki",
	Long: `Wikidex imports a Redmine wiki into a searchable document index.
Pages are split into chunks, fingerprinted, and written to the index;
subsequent runs only touch chunks whose content changed.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")
}

// Execute wires the application services and runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
