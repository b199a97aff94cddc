package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/sapauto/internal/config"
	"github.com/systmms/sapauto/tests/testutil"
)

func TestInitCommand_CreatesConfig(t *testing.T) {
	t.Parallel()

	configPath := filepath.Join(t.TempDir(), "sapauto.toml")
	cfg, logger := newTestConfig(t, configPath)

	res := testutil.ExecuteCommand(t, NewInitCommand(cfg), "",
		"--instance-id", "qa", "--reports-dir", "/data/reports", "--default-tcode", "VT11")
	require.NoError(t, res.Err)

	testutil.AssertFileContainsAll(t, configPath, []string{
		"[global]",
		`instance_id = "qa"`,
		`reports_dir = "/data/reports"`,
		`default_tcode = "VT11"`,
	})
	logger.AssertContains(t, "Next steps")

	def, err := config.Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "qa", def.InstanceID())
}

func TestInitCommand_Defaults(t *testing.T) {
	t.Parallel()

	configPath := filepath.Join(t.TempDir(), "nested", "sapauto.toml")
	cfg, _ := newTestConfig(t, configPath)

	res := testutil.ExecuteCommand(t, NewInitCommand(cfg), "")
	require.NoError(t, res.Err)

	def, err := config.Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultInstanceID, def.InstanceID())
	assert.Empty(t, def.DefaultTcode())
}

func TestInitCommand_ExistingConfigError(t *testing.T) {
	t.Parallel()

	configPath := filepath.Join(t.TempDir(), "sapauto.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("[custom]\nx = \"1\"\n"), 0o644))
	cfg, _ := newTestConfig(t, configPath)

	res := testutil.ExecuteCommand(t, NewInitCommand(cfg), "")
	testutil.AssertErrorContains(t, res.Err, "already exists")

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[custom]")

	res = testutil.ExecuteCommand(t, NewInitCommand(cfg), "", "--force")
	require.NoError(t, res.Err)
	testutil.AssertFileContainsAll(t, configPath, []string{"[global]"})
}
