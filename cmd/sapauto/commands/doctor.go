package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/systmms/sapauto/internal/config"
	"github.com/systmms/sapauto/internal/vault"
)

// Check statuses, worst last.
const (
	statusOK      = "ok"
	statusWarning = "warning"
	statusError   = "error"
)

// CheckResult is one row of the doctor report.
type CheckResult struct {
	Name        string
	Target      string
	Status      string
	Message     string
	Suggestions []string
}

func NewDoctorCommand(cfg *config.Config) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and stored credentials",
		Long: `Verify that sapauto is ready to run.

This command checks:
- Configuration file validity and format
- Reports directory
- Encryption key for the configured instance id
- Stored credentials decrypt with that key`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			results := runChecks(cfg)
			displayCheckResults(cmd.OutOrStdout(), results, verbose)

			failed := 0
			for _, r := range results {
				if r.Status == statusError {
					failed++
				}
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\nSummary: %d/%d checks passed\n", len(results)-failed, len(results))
			if failed > 0 {
				return fmt.Errorf("%d check(s) failed", failed)
			}

			cfg.Logger.Info("All checks passed")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show suggestions for every problem")

	return cmd
}

func runChecks(cfg *config.Config) []CheckResult {
	results := []CheckResult{checkConfig(cfg)}
	if cfg.Definition == nil {
		return results
	}

	results = append(results, checkReportsDir(cfg.Definition.ReportsDir()))

	store, err := cfg.CredentialStore()
	if err != nil {
		return append(results, CheckResult{
			Name:    "key store",
			Target:  cfg.KeyStore,
			Status:  statusError,
			Message: err.Error(),
		})
	}
	return append(results, checkKey(store), checkCredentials(store))
}

func checkConfig(cfg *config.Config) CheckResult {
	result := CheckResult{Name: "config", Target: cfg.Path}

	_, statErr := os.Stat(cfg.Path)
	if err := cfg.Load(); err != nil {
		result.Status = statusError
		result.Message = err.Error()
		result.Suggestions = []string{"Fix the reported line, or move the file away and run 'sapauto init'"}
		return result
	}

	switch {
	case statErr != nil:
		result.Status = statusWarning
		result.Message = "not found, using defaults"
		result.Suggestions = []string{"Run 'sapauto init' to create it"}
	case cfg.Definition.Format() == config.FormatLegacy:
		result.Status = statusWarning
		result.Message = "legacy [sap_config] format"
		result.Suggestions = []string{"Run 'sapauto config migrate'"}
	default:
		result.Status = statusOK
		result.Message = fmt.Sprintf("instance %q, %d tcode section(s)", cfg.Definition.InstanceID(), len(cfg.Definition.TcodeNames()))
	}
	return result
}

func checkReportsDir(dir string) CheckResult {
	result := CheckResult{Name: "reports dir", Target: dir}

	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		result.Status = statusWarning
		result.Message = "does not exist yet"
		result.Suggestions = []string{fmt.Sprintf("Create it with: mkdir -p %q", dir)}
	case err != nil:
		result.Status = statusError
		result.Message = err.Error()
	case !info.IsDir():
		result.Status = statusError
		result.Message = "not a directory"
		result.Suggestions = []string{"Run 'sapauto config reports-dir <DIR>'"}
	default:
		result.Status = statusOK
		result.Message = "exists"
	}
	return result
}

func checkKey(store *vault.Store) CheckResult {
	result := CheckResult{Name: "key", Target: store.KeyLocation()}

	_, err := store.Keys.Key(store.InstanceID)
	switch {
	case errors.Is(err, vault.ErrKeyNotFound):
		result.Status = statusWarning
		result.Message = "not created yet"
		result.Suggestions = []string{"Run 'sapauto credentials set'; the key is created on first save"}
	case err != nil:
		result.Status = statusError
		result.Message = err.Error()
		result.Suggestions = []string{"Run 'sapauto credentials reset' and store the credentials again"}
	default:
		result.Status = statusOK
		result.Message = fmt.Sprintf("%s key present", store.Keys.Name())
	}
	return result
}

func checkCredentials(store *vault.Store) CheckResult {
	result := CheckResult{Name: "credentials", Target: store.AuthFile()}

	if !store.Exists() {
		result.Status = statusWarning
		result.Message = "none stored"
		result.Suggestions = []string{"Run 'sapauto credentials set'"}
		return result
	}

	creds, ok := store.Load()
	if !ok {
		result.Status = statusError
		result.Message = "cannot be decrypted"
		result.Suggestions = []string{
			"Run 'sapauto credentials set' to store them again",
			"Check that --key-store matches the store used when they were saved",
		}
		return result
	}
	defer creds.Destroy()

	result.Status = statusOK
	result.Message = "user " + creds.Username
	return result
}

// displayCheckResults shows the checks in a formatted table
func displayCheckResults(out io.Writer, results []CheckResult, verbose bool) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintf(w, "CHECK\tTARGET\tSTATUS\tMESSAGE\n")
	_, _ = fmt.Fprintf(w, "-----\t------\t------\t-------\n")

	for _, result := range results {
		status := result.Status
		switch result.Status {
		case statusOK:
			status = "✓ " + status
		case statusWarning:
			status = "⚠ " + status
		case statusError:
			status = "✗ " + status
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", result.Name, result.Target, status, result.Message)
	}

	_ = w.Flush()

	for _, result := range results {
		if len(result.Suggestions) == 0 || (result.Status != statusError && !verbose) {
			continue
		}
		_, _ = fmt.Fprintf(out, "\n%s suggestions:\n", result.Name)
		for _, suggestion := range result.Suggestions {
			_, _ = fmt.Fprintf(out, "  • %s\n", suggestion)
		}
	}
}
