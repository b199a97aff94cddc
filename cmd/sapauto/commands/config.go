package commands

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
	"github.com/systmms/sapauto/internal/config"
	saerrors "github.com/systmms/sapauto/internal/errors"
)

// NewConfigCommand groups the commands that inspect and edit sapauto.toml.
func NewConfigCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and edit the run configuration",
		Long: `Inspect and edit the layered run configuration.

Sections:
  global          instance_id, reports_dir, default_tcode, date_format, ...
  tcode.<CODE>    variant, layout, column_name, date_range_start, ...
  loop            tcode, iterations, delay_seconds and loop parameters
  sequence        steps (comma separated), iterations, delay_seconds, ...
  build           free-form build metadata

Other sections already in the file are preserved when it is saved and can
be edited with set and unset by name.`,
	}

	cmd.AddCommand(
		newConfigShowCommand(cfg),
		newConfigGetCommand(cfg),
		newConfigSetCommand(cfg),
		newConfigUnsetCommand(cfg),
		newConfigInstanceIDCommand(cfg),
		newConfigReportsDirCommand(cfg),
		newConfigMigrateCommand(cfg),
	)

	return cmd
}

func newConfigShowCommand(cfg *config.Config) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show [section]",
		Short: "Print the configuration or one section",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return err
			}

			if len(args) == 1 {
				values, ok := cfg.Definition.Section(args[0])
				if !ok {
					return saerrors.UserError{
						Message:    fmt.Sprintf("Section %q is not configured", args[0]),
						Suggestion: "Run 'sapauto config show' to list the configured sections",
					}
				}
				if output == formatTOML {
					output = formatText
				}
				return writeValues(cmd.OutOrStdout(), output, values)
			}

			return writeSections(cmd.OutOrStdout(), output, cfg.Definition)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", formatTOML, "Output format (toml|yaml|json)")

	return cmd
}

func newConfigGetCommand(cfg *config.Config) *cobra.Command {
	var (
		loop   bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "get [tcode]",
		Short: "Print the effective parameters for a transaction code",
		Long: `Print the effective parameter set for a transaction code.

The tcode key comes from the loop section with --loop and from the global
default otherwise. A [tcode.<CODE>] section wins outright; without one, loop
runs use the loop parameters with any "<CODE>_" prefix stripped.

Without an argument the global default_tcode is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return err
			}

			tcode := cfg.Definition.DefaultTcode()
			if len(args) == 1 {
				tcode = args[0]
			}
			if tcode == "" {
				return saerrors.UserError{
					Message:    "No transaction code given",
					Suggestion: "Pass a tcode or set one with 'sapauto config set global default_tcode <CODE>'",
				}
			}

			values, ok := cfg.Definition.GetTcodeConfig(tcode, loop)
			if !ok {
				return saerrors.UserError{
					Message:    fmt.Sprintf("No configuration found for %s", tcode),
					Suggestion: fmt.Sprintf("Run 'sapauto config set tcode.%s variant <NAME>'", tcode),
				}
			}
			return writeValues(cmd.OutOrStdout(), output, values)
		},
	}

	cmd.Flags().BoolVar(&loop, "loop", false, "Resolve as a loop run")
	cmd.Flags().StringVarP(&output, "output", "o", formatText, "Output format (text|yaml|json)")

	return cmd
}

func newConfigSetCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "set <section> <key> <value>",
		Short: "Set a value, creating the section if needed",
		Example: `  sapauto config set global default_tcode VT11
  sapauto config set tcode.VT11 variant MYVARIANT
  sapauto config set loop iterations 5
  sapauto config set sequence steps VT11,VL06O
  sapauto config set custom_extra foo baz`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return err
			}
			if err := cfg.Definition.SetValue(args[0], args[1], args[2]); err != nil {
				return err
			}
			if err := cfg.Save(); err != nil {
				return err
			}
			cfg.Logger.Info("Set %s.%s", args[0], args[1])
			return nil
		},
	}
}

func newConfigUnsetCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "unset <section> [key]",
		Short: "Remove a value, or a whole section when no key is given",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return err
			}

			if len(args) == 1 {
				if err := cfg.Definition.RemoveSection(args[0]); err != nil {
					return err
				}
			} else if err := cfg.Definition.UnsetValue(args[0], args[1]); err != nil {
				return err
			}

			if err := cfg.Save(); err != nil {
				return err
			}
			cfg.Logger.Info("Removed %s", strings.Join(args, "."))
			return nil
		},
	}
}

// newAccessorCommand prints a global value, or sets it when an argument is
// given.
func newAccessorCommand(cfg *config.Config, use, short string, get func(*config.Definition) string, set func(*config.Definition, string)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [value]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return err
			}
			if len(args) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), get(cfg.Definition))
				return err
			}

			set(cfg.Definition, args[0])
			if err := cfg.Save(); err != nil {
				return err
			}
			cfg.Logger.Info("Set %s to %s", use, args[0])
			return nil
		},
	}
}

func newConfigInstanceIDCommand(cfg *config.Config) *cobra.Command {
	return newAccessorCommand(cfg, "instance-id", "Show or set the credential instance id",
		(*config.Definition).InstanceID, (*config.Definition).SetInstanceID)
}

func newConfigReportsDirCommand(cfg *config.Config) *cobra.Command {
	return newAccessorCommand(cfg, "reports-dir", "Show or set the reports directory",
		(*config.Definition).ReportsDir, (*config.Definition).SetReportsDir)
}

func newConfigMigrateCommand(cfg *config.Config) *cobra.Command {
	var noBackup bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Rewrite a legacy [sap_config] file in the layered format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			original, err := os.ReadFile(cfg.Path)
			if err != nil {
				return saerrors.UserError{
					Message:    fmt.Sprintf("Cannot read %s", cfg.Path),
					Suggestion: "Run 'sapauto init' to create a configuration",
					Err:        err,
				}
			}
			if err := cfg.Load(); err != nil {
				return err
			}
			if cfg.Definition.Format() != config.FormatLegacy {
				cfg.Logger.Info("%s already uses the layered format", cfg.Path)
				return nil
			}

			if !noBackup {
				backup := cfg.Path + ".bak"
				if err := atomic.WriteFile(backup, bytes.NewReader(original)); err != nil {
					return fmt.Errorf("failed to write backup: %w", err)
				}
				cfg.Logger.Info("Saved the legacy file as %s", backup)
			}

			if err := cfg.Save(); err != nil {
				return err
			}
			cfg.Logger.Info("Migrated %s to the layered format", cfg.Path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noBackup, "no-backup", false, "Do not keep a .bak copy of the legacy file")

	return cmd
}
