package commands

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/systmms/sapauto/internal/config"
	saerrors "github.com/systmms/sapauto/internal/errors"
	"github.com/systmms/sapauto/internal/terminal"
	"github.com/systmms/sapauto/internal/vault"
)

// prompterFor reads from the real terminal unless the command's input was
// redirected with SetIn.
func prompterFor(cmd *cobra.Command) *terminal.Prompter {
	if in := cmd.InOrStdin(); in != os.Stdin {
		return terminal.NewScripted(in, cmd.ErrOrStderr())
	}
	return terminal.New()
}

// canPrompt reports whether the command may ask the user for input.
func canPrompt(cfg *config.Config, p *terminal.Prompter) bool {
	return !cfg.NonInteractive && p.IsInteractive()
}

// loadStore loads the configuration and opens the credential store of its
// instance id.
func loadStore(cfg *config.Config) (*vault.Store, error) {
	if err := cfg.Load(); err != nil {
		return nil, err
	}
	return cfg.CredentialStore()
}

func nonInteractiveError(what string) error {
	return saerrors.UserError{
		Message:    "Cannot prompt for " + what,
		Details:    "running non-interactively or stdin is not a terminal",
		Suggestion: "Pass --username and --password-stdin, or set " + terminal.PasswordEnvVar,
	}
}
