package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/systmms/sapauto/internal/config"
	saerrors "github.com/systmms/sapauto/internal/errors"
)

func NewInitCommand(cfg *config.Config) *cobra.Command {
	var (
		instanceID   string
		reportsDir   string
		defaultTcode string
		force        bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new sapauto configuration",
		Long: `Create a sapauto.toml file with a [global] section holding the instance id,
the reports directory and optionally a default transaction code.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(cfg.Path); err == nil && !force {
				return saerrors.UserError{
					Message:    fmt.Sprintf("%s already exists", cfg.Path),
					Suggestion: "Use 'sapauto config set' to change it, or --force to start over",
				}
			}

			def := config.Default()
			if instanceID != "" {
				def.SetInstanceID(instanceID)
			}
			if reportsDir != "" {
				def.SetReportsDir(reportsDir)
			}
			if defaultTcode != "" {
				if err := def.SetValue(config.SectionGlobal, config.KeyDefaultTcode, defaultTcode); err != nil {
					return err
				}
			}

			cfg.Definition = def
			if err := cfg.Save(); err != nil {
				return err
			}

			cfg.Logger.Info("Created %s for instance %q", cfg.Path, def.InstanceID())
			cfg.Logger.Info("Next steps:")
			cfg.Logger.Info("  1. Run 'sapauto config set tcode.<CODE> variant <NAME>' to add transaction codes")
			cfg.Logger.Info("  2. Run 'sapauto credentials set' to store your SAP logon")
			cfg.Logger.Info("  3. Run 'sapauto doctor' to verify the setup")

			return nil
		},
	}

	cmd.Flags().StringVar(&instanceID, "instance-id", "", "Instance id namespacing the stored credentials (default \"rs\")")
	cmd.Flags().StringVar(&reportsDir, "reports-dir", "", "Directory where exported reports are written")
	cmd.Flags().StringVar(&defaultTcode, "default-tcode", "", "Transaction code used when none is given")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration")

	return cmd
}
