package testutil

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

// AssertSecretRedacted verifies that a secret value does not appear in a
// string and that the [REDACTED] marker does.
func AssertSecretRedacted(t *testing.T, output, secretValue string) {
	t.Helper()

	assert.NotContains(t, output, secretValue,
		"Secret value %q should be redacted, but appears in output", secretValue)
	assert.Contains(t, output, "[REDACTED]",
		"Expected [REDACTED] marker when secret is used")
}

// AssertFileContainsAll verifies that a file exists and contains every
// substring.
func AssertFileContainsAll(t *testing.T, path string, substrings []string) {
	t.Helper()

	data, err := os.ReadFile(path)
	if !assert.NoError(t, err, "Failed to read file %s", path) {
		return
	}
	for _, substr := range substrings {
		assert.Contains(t, string(data), substr, "File %s should contain %q", path, substr)
	}
}

// AssertNoSecretLeak verifies that none of the secrets appear in output.
func AssertNoSecretLeak(t *testing.T, output string, secrets []string) {
	t.Helper()

	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		assert.NotContains(t, output, secret, "Secret %q leaked into output", secret)
	}
}

// AssertErrorContains verifies that err is non-nil and mentions substr.
func AssertErrorContains(t *testing.T, err error, substr string) {
	t.Helper()

	if assert.Error(t, err, "Expected an error to occur") {
		assert.Contains(t, err.Error(), substr, "Error message should contain %q", substr)
	}
}
