// Package main provides the bibclean CLI entry point.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/bibclean/internal/logger"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	logLevel    string
	logJSON     bool

	// log receives progress messages on stderr
	log = logger.New(nil)
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bibclean",
	Short: "Normalize BibTeX bibliographies",
	Long: `bibclean normalizes titles, author lists and journals of a BibTeX file,
derives canonical citation keys and propagates proceedings renames to
every entry that cross-references them.

Problems found in single entries never stop a run; they are written to a
remarks log next to the input. Commands output JSON by default.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogger,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Write log lines as JSON")
	rootCmd.Version = Version
}

func setupLogger(cmd *cobra.Command, args []string) error {
	level, err := logger.ParseLevel(logLevel)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	log = logger.New(&logger.Config{Level: level, Output: os.Stderr, JSON: logJSON})
	return nil
}
