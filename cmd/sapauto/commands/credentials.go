package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/systmms/sapauto/internal/config"
	saerrors "github.com/systmms/sapauto/internal/errors"
	"github.com/systmms/sapauto/internal/logging"
	"github.com/systmms/sapauto/internal/secure"
	"github.com/systmms/sapauto/internal/terminal"
	"github.com/systmms/sapauto/internal/vault"
)

// NewCredentialsCommand groups the commands that manage the encrypted SAP
// logon of the configured instance.
func NewCredentialsCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "credentials",
		Aliases: []string{"creds"},
		Short:   "Manage the encrypted SAP logon",
		Long: `Manage the SAP username and password stored for the configured instance id.

The pair is encrypted with AES-256-GCM under a per-instance key. The key is
kept next to the credentials (--key-store file) or in the OS keychain
(--key-store keyring).`,
	}

	cmd.AddCommand(
		newCredentialsSetCommand(cfg),
		newCredentialsCheckCommand(cfg),
		newCredentialsEnsureCommand(cfg),
		newCredentialsResetCommand(cfg),
	)

	return cmd
}

func newCredentialsSetCommand(cfg *config.Config) *cobra.Command {
	var (
		username      string
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store a username and password",
		Example: `  sapauto credentials set
  sapauto credentials set --username jdoe --password-stdin < pass.txt
  SAPAUTO_PASSWORD=... sapauto credentials set --username jdoe --non-interactive`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadStore(cfg)
			if err != nil {
				return err
			}

			current := ""
			if existing, ok := store.Load(); ok {
				current = existing.Username
				existing.Destroy()
			}
			return promptAndSave(cmd, cfg, store, username, current, passwordStdin)
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "SAP username")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")

	return cmd
}

func newCredentialsCheckCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify that stored credentials can be decrypted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadStore(cfg)
			if err != nil {
				return err
			}

			creds, ok := store.Load()
			if !ok {
				return noCredentialsError(store)
			}
			defer creds.Destroy()

			cfg.Logger.Info("Credentials for instance %q decrypt correctly (user %s)", store.InstanceID, creds.Username)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), creds.Username)
			return err
		},
	}
}

func newCredentialsEnsureCommand(cfg *config.Config) *cobra.Command {
	var (
		username      string
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:   "ensure",
		Short: "Use stored credentials, prompting for new ones if they are unusable",
		Long: `Load the stored credentials. When they are missing, were written with another
key, or fail to decrypt, ask for the username and password again and store them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadStore(cfg)
			if err != nil {
				return err
			}

			if creds, ok := store.Load(); ok {
				defer creds.Destroy()
				cfg.Logger.Info("Using stored credentials for %s", creds.Username)
				return nil
			}

			if store.Exists() {
				cfg.Logger.Warn("Stored credentials for instance %q could not be decrypted", store.InstanceID)
			}
			return promptAndSave(cmd, cfg, store, username, "", passwordStdin)
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "SAP username")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")

	return cmd
}

func promptAndSave(cmd *cobra.Command, cfg *config.Config, store *vault.Store, username, current string, passwordStdin bool) error {
	prompter := prompterFor(cmd)
	interactive := canPrompt(cfg, prompter)

	if username == "" {
		if !interactive {
			return nonInteractiveError("a username")
		}
		var err error
		if username, err = prompter.ReadUsername(current); err != nil {
			return err
		}
	}

	password, err := readPassword(prompter, interactive, passwordStdin)
	if err != nil {
		return err
	}
	defer password.Destroy()

	plain, err := password.Reveal()
	if err != nil {
		return err
	}
	if err := store.Save(username, plain); err != nil {
		return err
	}

	cfg.Logger.Debug("Saved password %s for %s", logging.Secret(plain), username)
	cfg.Logger.Info("Stored credentials for %s (instance %q, key: %s)", username, store.InstanceID, store.KeyLocation())
	return nil
}

func readPassword(p *terminal.Prompter, interactive, fromStdin bool) (*secure.SecureBuffer, error) {
	if !fromStdin && !interactive && os.Getenv(terminal.PasswordEnvVar) == "" {
		return nil, nonInteractiveError("a password")
	}
	return p.ResolvePassword(fromStdin, true)
}

func noCredentialsError(store *vault.Store) error {
	if !store.Exists() {
		return saerrors.UserError{
			Message:    fmt.Sprintf("No credentials stored for instance %q", store.InstanceID),
			Suggestion: "Run 'sapauto credentials set'",
		}
	}
	return saerrors.UserError{
		Message:    fmt.Sprintf("Stored credentials for instance %q cannot be decrypted", store.InstanceID),
		Details:    fmt.Sprintf("file %s, key %s", store.AuthFile(), store.KeyLocation()),
		Suggestion: "Run 'sapauto credentials set' to store them again, or 'sapauto credentials reset' to start over",
	}
}
