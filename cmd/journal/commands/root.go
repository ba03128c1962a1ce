package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "journal",
	Short: "tradelog - trading journal performance backend",
	Long: `tradelog Unified CLI

Backend for the personal trading journal: stores trades and strategies,
computes performance reports, serves them over REST, and refreshes cached
reports on a schedule.

Usage:
  go run ./cmd/journal [command]

Examples:
  go run ./cmd/journal api
  go run ./cmd/journal analyze --user <id>
  go run ./cmd/journal scheduler
  go run ./cmd/journal status`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
