package cli

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/ea-events/internal/config"
	"github.com/pfrederiksen/ea-events/internal/logger"
)

var (
	flagConfig    string
	flagLogLevel  string
	flagDataDir   string
	flagOutputDir string
)

// NewRootCmd creates the root command with its subcommands attached.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ea-events",
		Short: "Scrape, normalize and act on Events & Adventures listings",
		Long: `A batch CLI that scrapes a members-only events calendar, normalizes
every event detail page into a typed record, stores the collection, and
writes a primary CSV plus per-category and per-range CSV directories.

A second pass ('actions') computes signup, waitlist and cancel candidates
from the stored records and commits the ones you confirm.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default is $HOME/.ea-events.yaml)")
	cmd.PersistentFlags().StringVarP(&flagLogLevel, "loglevel", "l", "", "log level: debug, info, warn, error, fatal")
	cmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "directory for the event store (default ~/.ea-events)")
	cmd.PersistentFlags().StringVar(&flagOutputDir, "output-dir", "", "directory for CSV output (default ./output)")

	cmd.AddCommand(newScrapeCmd())
	cmd.AddCommand(newActionsCmd())
	cmd.AddCommand(newMarkCmd())

	return cmd
}

// loadConfig resolves configuration with command-line flags taking
// precedence over the file and environment.
func loadConfig() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, err
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	if flagOutputDir != "" {
		cfg.OutputDir = flagOutputDir
	}
	return cfg, logger.New(cfg.LogLevel), nil
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
