package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/sapauto/internal/config"
	"github.com/systmms/sapauto/internal/vault"
	"github.com/systmms/sapauto/tests/testutil"
)

func findCheck(t *testing.T, results []CheckResult, name string) CheckResult {
	t.Helper()

	for _, r := range results {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("check %q not found in %+v", name, results)
	return CheckResult{}
}

func TestDoctor_AllHealthy(t *testing.T) {
	t.Parallel()

	reports := t.TempDir()
	cfg, _ := newTestConfig(t, testutil.NewTestConfig(t).WithGlobal(config.KeyReportsDir, reports).Write())
	require.NoError(t, vault.SaveCredentials(cfg.AuthDir, config.DefaultInstanceID, "jdoe", "pw"))

	res := testutil.ExecuteCommand(t, NewDoctorCommand(cfg), "")
	require.NoError(t, res.Err)
	assert.Contains(t, res.Stdout, "CHECK")
	assert.Contains(t, res.Stdout, "user jdoe")
	assert.Contains(t, res.Stdout, "Summary: 4/4 checks passed")
}

func TestDoctor_FreshSetupOnlyWarns(t *testing.T) {
	t.Parallel()

	cfg, _ := newTestConfig(t, filepath.Join(t.TempDir(), "sapauto.toml"))

	results := runChecks(cfg)
	require.Len(t, results, 4)
	assert.Equal(t, statusWarning, findCheck(t, results, "config").Status)
	assert.Equal(t, statusWarning, findCheck(t, results, "key").Status)
	assert.Equal(t, statusWarning, findCheck(t, results, "credentials").Status)
}

func TestDoctor_Failures(t *testing.T) {
	t.Parallel()

	t.Run("broken_config", func(t *testing.T) {
		t.Parallel()

		cfg, _ := newTestConfig(t, testutil.WriteRaw(t, "[global\n"))
		res := testutil.ExecuteCommand(t, NewDoctorCommand(cfg), "")
		testutil.AssertErrorContains(t, res.Err, "1 check(s) failed")
		assert.Contains(t, res.Stdout, "config suggestions")
	})

	t.Run("wrong_key", func(t *testing.T) {
		t.Parallel()

		cfg, _ := newTestConfig(t, testutil.NewTestConfig(t).WithGlobal(config.KeyReportsDir, t.TempDir()).Write())
		require.NoError(t, vault.SaveCredentials(cfg.AuthDir, config.DefaultInstanceID, "jdoe", "pw"))
		keyFile := filepath.Join(cfg.AuthDir, vault.KeyFileName(config.DefaultInstanceID))
		require.NoError(t, os.WriteFile(keyFile, make([]byte, vault.KeySize), 0o600))

		results := runChecks(cfg)
		assert.Equal(t, statusOK, findCheck(t, results, "key").Status)
		assert.Equal(t, statusError, findCheck(t, results, "credentials").Status)
	})

	t.Run("truncated_key", func(t *testing.T) {
		t.Parallel()

		cfg, _ := newTestConfig(t, testutil.NewTestConfig(t).Write())
		keyFile := filepath.Join(cfg.AuthDir, vault.KeyFileName(config.DefaultInstanceID))
		require.NoError(t, os.WriteFile(keyFile, []byte("short"), 0o600))

		assert.Equal(t, statusError, findCheck(t, runChecks(cfg), "key").Status)
	})

	t.Run("reports_dir_is_file", func(t *testing.T) {
		t.Parallel()

		file := filepath.Join(t.TempDir(), "reports")
		require.NoError(t, os.WriteFile(file, nil, 0o644))

		assert.Equal(t, statusError, checkReportsDir(file).Status)
	})

	t.Run("unknown_key_store", func(t *testing.T) {
		t.Parallel()

		cfg, _ := newTestConfig(t, testutil.NewTestConfig(t).Write())
		cfg.KeyStore = "floppy"

		assert.Equal(t, statusError, findCheck(t, runChecks(cfg), "key store").Status)
	})
}

func TestDisplayCheckResults_Verbose(t *testing.T) {
	t.Parallel()

	results := []CheckResult{
		{Name: "key", Target: "/k", Status: statusWarning, Message: "not created yet", Suggestions: []string{"Run set"}},
	}

	var quiet, verbose bytes.Buffer
	displayCheckResults(&quiet, results, false)
	displayCheckResults(&verbose, results, true)

	assert.Contains(t, quiet.String(), "⚠ warning")
	assert.NotContains(t, quiet.String(), "Run set")
	assert.Contains(t, verbose.String(), "• Run set")
}

func TestCompletionCommand(t *testing.T) {
	t.Parallel()

	root := NewConfigCommand(&config.Config{})
	root.AddCommand(NewCompletionCommand(&config.Config{}))

	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		res := testutil.ExecuteCommand(t, root, "", "completion", shell)
		require.NoError(t, res.Err, shell)
		assert.NotEmpty(t, res.Stdout, shell)
	}

	res := testutil.ExecuteCommand(t, root, "", "completion", "tcsh")
	assert.Error(t, res.Err)
}
