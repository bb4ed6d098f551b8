package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/caskkit/internal/config"
	"github.com/blackwell-systems/caskkit/internal/logging"
)

var (
	cfgFile   string
	dbPath    string
	logLevel  string
	logFormat string

	cfg        *config.Config
	restoreLog func()

	// RootCmd is the root command for caskkit
	RootCmd = &cobra.Command{
		Use:   "caskkit",
		Short: "Author, check and ship Homebrew cask descriptors",
		Long: `caskkit parses, validates and renders Homebrew cask files, bumps them to
new upstream versions, and drives the host's brew for install, uninstall
and zap. Descriptors may be written as Ruby casks (.rb), YAML or JSON.

Every recorded release is archived, so superseded descriptors stay
restorable, and install/uninstall/zap operations are logged to a local
history database.

Examples:
  # Audit a cask
  caskkit validate Casks/clearvox.rb

  # Show the rendered download URL
  caskkit url Casks/clearvox.rb

  # Check upstream for a newer release
  caskkit livecheck Casks/clearvox.rb

  # Bump to a new version, computing the checksum
  caskkit bump Casks/clearvox.rb 1.1.0 --fetch --write --record

  # Preview the full-uninstall cleanup
  caskkit zap Casks/clearvox.rb --dry-run`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if restoreLog != nil {
				restoreLog()
				restoreLog = nil
			}
		},
	}
)

func init() {
	// Global flags
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/caskkit/config.yaml)")
	RootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "history database path (default: <data_dir>/caskkit.db)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	RootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: console or json (overrides config)")

	// Enable cobra's built-in suggestion feature for unknown subcommands
	RootCmd.SuggestionsMinimumDistance = 2
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}

// setup loads configuration and installs the global logger before any
// subcommand runs.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := loadConfig()
	if err != nil {
		return err
	}
	cfg = loaded

	opts := logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format}
	if logLevel != "" {
		opts.Level = logLevel
	}
	if logFormat != "" {
		opts.Format = logFormat
	}
	restore, err := logging.Setup(opts)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	restoreLog = restore
	return nil
}
