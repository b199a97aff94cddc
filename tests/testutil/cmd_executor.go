package testutil

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// CommandResult is the outcome of running a cobra command in-process.
type CommandResult struct {
	Stdout string
	Stderr string
	Err    error
}

// ExecuteCommand runs cmd with args, feeding stdin as its input. Prompts
// read from stdin line by line, passwords included.
//
// Example usage:
//
//	res := ExecuteCommand(t, commands.NewConfigCommand(cfg), "", "get", "VT11")
//	require.NoError(t, res.Err)
func ExecuteCommand(t *testing.T, cmd *cobra.Command, stdin string, args ...string) CommandResult {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.Execute()
	return CommandResult{Stdout: stdout.String(), Stderr: stderr.String(), Err: err}
}
