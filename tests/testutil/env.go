package testutil

import (
	"testing"
)

// SetupTestEnv sets environment variables for the duration of a test.
//
// The original environment is restored automatically when the test
// completes. Tests using it cannot run in parallel.
//
// Example usage:
//
//	SetupTestEnv(t, map[string]string{
//	    "SAPAUTO_PASSWORD": "s3cret",
//	})
func SetupTestEnv(t *testing.T, vars map[string]string) {
	t.Helper()

	for key, value := range vars {
		t.Setenv(key, value)
	}
}
