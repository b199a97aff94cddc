package commands

import (
	"testing"

	"github.com/systmms/sapauto/internal/config"
	"github.com/systmms/sapauto/tests/testutil"
)

// newTestConfig returns a runtime config pointing at path with credentials
// kept in a temporary directory.
func newTestConfig(t *testing.T, path string) (*config.Config, *testutil.TestLogger) {
	t.Helper()

	logger := testutil.NewTestLogger(t, true)
	return &config.Config{
		Path:    path,
		Logger:  logger.Logger(),
		AuthDir: t.TempDir(),
	}, logger
}
