package config

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultReportsDir(t *testing.T) {
	orig := userHomeDir
	t.Cleanup(func() { userHomeDir = orig })

	userHomeDir = func() (string, error) { return "/home/sap", nil }
	assert.Equal(t, filepath.Join("/home/sap", "Documents", "Reports"), DefaultReportsDir())

	userHomeDir = func() (string, error) { return "", errors.New("no home") }
	assert.Equal(t, ".", DefaultReportsDir())

	def := Default()
	assert.Equal(t, ".", def.ReportsDir())
	assert.Equal(t, FormatDefault, def.Format())
}
