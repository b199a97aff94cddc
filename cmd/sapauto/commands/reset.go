package commands

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"github.com/systmms/sapauto/internal/config"
	saerrors "github.com/systmms/sapauto/internal/errors"
	"github.com/systmms/sapauto/internal/vault"
)

func newCredentialsResetCommand(cfg *config.Config) *cobra.Command {
	var (
		force  bool
		passes int
	)

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Securely delete the stored credentials and key",
		Long: `Overwrite the encrypted credential file with random data, remove it, and
delete the instance key from the key store.

Modern SSDs with wear leveling may still retain data. Use full disk
encryption for stronger guarantees.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if passes < 1 || passes > 10 {
				return saerrors.UserError{
					Message:    "Invalid number of passes",
					Suggestion: "Passes must be between 1 and 10",
				}
			}

			store, err := loadStore(cfg)
			if err != nil {
				return err
			}

			if !force {
				prompter := prompterFor(cmd)
				if !canPrompt(cfg, prompter) {
					return saerrors.UserError{
						Message:    "Refusing to delete credentials without confirmation",
						Suggestion: "Pass --force",
					}
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "This deletes %s and the key at %s.\n", store.AuthFile(), store.KeyLocation())
				ok, err := prompter.Confirm("⚠️  This operation is IRREVERSIBLE. Continue?")
				if err != nil {
					return err
				}
				if !ok {
					cfg.Logger.Info("Operation cancelled")
					return nil
				}
			}

			return resetStore(cfg, store, passes)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete without confirmation")
	cmd.Flags().IntVarP(&passes, "passes", "n", 3, "Number of overwrite passes")

	return cmd
}

func resetStore(cfg *config.Config, store *vault.Store, passes int) error {
	removed := false

	if err := shredFile(store.AuthFile(), passes); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to shred %s: %w", store.AuthFile(), err)
		}
	} else {
		removed = true
		cfg.Logger.Debug("Shredded %s", store.AuthFile())
	}

	if files, ok := store.Keys.(vault.FileKeyStore); ok {
		keyFile := files.Location(store.InstanceID)
		if err := shredFile(keyFile, passes); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to shred %s: %w", keyFile, err)
		}
	}
	if err := store.Keys.Delete(store.InstanceID); err != nil {
		return err
	}

	if removed {
		cfg.Logger.Info("Deleted credentials and key for instance %q", store.InstanceID)
	} else {
		cfg.Logger.Info("No credentials were stored for instance %q; key removed if present", store.InstanceID)
	}
	return nil
}

// shredFile overwrites path with random data passes times before removing
// it.
func shredFile(path string, passes int) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	size := info.Size()
	if size == 0 {
		return os.Remove(path)
	}

	file, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	if err := overwritePasses(file, size, passes); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	return os.Remove(path)
}

func overwritePasses(file *os.File, size int64, passes int) error {
	for pass := 1; pass <= passes; pass++ {
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			return err
		}
		if err := overwriteWithRandom(file, size); err != nil {
			return err
		}
		if err := file.Sync(); err != nil {
			return err
		}
	}
	return nil
}

func overwriteWithRandom(w io.Writer, size int64) error {
	const bufSize = 64 * 1024

	buf := make([]byte, bufSize)
	remaining := size

	for remaining > 0 {
		n := bufSize
		if remaining < int64(bufSize) {
			n = int(remaining)
		}
		if _, err := rand.Read(buf[:n]); err != nil {
			return err
		}
		if _, err := w.Write(buf[:n]); err != nil {
			return err
		}
		remaining -= int64(n)
	}

	return nil
}
