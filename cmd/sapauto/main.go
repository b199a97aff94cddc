package main

import (
	"fmt"
	"os"

	"github.com/awnumar/memguard"
	"github.com/spf13/cobra"
	"github.com/systmms/sapauto/cmd/sapauto/commands"
	"github.com/systmms/sapauto/internal/config"
	saerrors "github.com/systmms/sapauto/internal/errors"
	"github.com/systmms/sapauto/internal/logging"
	"github.com/systmms/sapauto/internal/metrics"
	"github.com/systmms/sapauto/internal/vault"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	memguard.CatchInterrupt()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", saerrors.SimplifyError(err))
		memguard.SafeExit(1)
	}
	memguard.Purge()
}

func run() error {
	// Global flags
	var (
		configFile      string
		authDir         string
		keyStore        string
		noColor         bool
		debug           bool
		nonInteractive  bool
		metricsTextfile string
	)

	cfg := &config.Config{}

	rootCmd := &cobra.Command{
		Use:   "sapauto",
		Short: "SAP GUI automation - credentials and run configuration",
		Long: `sapauto keeps the SAP logon credentials encrypted on disk and manages the
layered run configuration (global, per transaction code, loop and sequence)
used by the automation scripts.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger := logging.New(debug, noColor)

			cfg.Path = configFile
			cfg.Logger = logger
			cfg.NonInteractive = nonInteractive
			cfg.AuthDir = authDir
			cfg.KeyStore = keyStore
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if metricsTextfile == "" {
				return nil
			}
			if err := metrics.WriteTextfile(metricsTextfile); err != nil {
				return fmt.Errorf("failed to write metrics: %w", err)
			}
			cfg.Logger.Debug("Wrote metrics to %s", metricsTextfile)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", config.DefaultPath, "Config file path")
	rootCmd.PersistentFlags().StringVar(&authDir, "auth-dir", vault.DefaultDir(), "Directory holding encrypted credentials")
	rootCmd.PersistentFlags().StringVar(&keyStore, "key-store", config.KeyStoreFile, "Where encryption keys are kept (file|keyring)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false, "Never prompt; fail instead")
	rootCmd.PersistentFlags().StringVar(&metricsTextfile, "metrics-textfile", "", "Write operation counters to this file in Prometheus text format")

	rootCmd.AddCommand(
		commands.NewInitCommand(cfg),
		commands.NewConfigCommand(cfg),
		commands.NewCredentialsCommand(cfg),
		commands.NewDoctorCommand(cfg),
		commands.NewCompletionCommand(cfg),
	)

	return rootCmd.Execute()
}
