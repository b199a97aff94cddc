// Package testutil provides test utilities and helpers for sapauto tests.
//
// This package contains shared test infrastructure including a configuration
// builder, a capturing logger, environment helpers and a cobra command
// runner.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/systmms/sapauto/internal/config"
)

// TestConfigBuilder provides a fluent API for building test configurations.
//
// Example usage:
//
//	path := NewTestConfig(t).
//	    WithGlobal("default_tcode", "VT11").
//	    WithTcode("VT11", map[string]string{"variant": "MYVARIANT"}).
//	    WithLoop(map[string]string{"tcode": "VT11", "iterations": "5"}).
//	    Write()
type TestConfigBuilder struct {
	def     *config.Definition
	tempDir string
	t       *testing.T
}

// NewTestConfig creates a builder starting from config.Default().
func NewTestConfig(t *testing.T) *TestConfigBuilder {
	t.Helper()

	return &TestConfigBuilder{
		def:     config.Default(),
		tempDir: t.TempDir(),
		t:       t,
	}
}

func (b *TestConfigBuilder) set(section string, values map[string]string) *TestConfigBuilder {
	b.t.Helper()

	for key, value := range values {
		if err := b.def.SetValue(section, key, value); err != nil {
			b.t.Fatalf("Failed to set %s.%s: %v", section, key, err)
		}
	}
	return b
}

// WithGlobal sets one key of the global section.
func (b *TestConfigBuilder) WithGlobal(key, value string) *TestConfigBuilder {
	return b.set(config.SectionGlobal, map[string]string{key: value})
}

// WithTcode adds or extends a [tcode.<code>] section.
func (b *TestConfigBuilder) WithTcode(code string, values map[string]string) *TestConfigBuilder {
	if len(values) == 0 {
		return b.set(config.SectionTcode+"."+code, map[string]string{config.KeyVariant: ""})
	}
	return b.set(config.SectionTcode+"."+code, values)
}

// WithLoop sets values of the loop section.
func (b *TestConfigBuilder) WithLoop(values map[string]string) *TestConfigBuilder {
	return b.set(config.SectionLoop, values)
}

// WithSequence sets values of the sequence section.
func (b *TestConfigBuilder) WithSequence(values map[string]string) *TestConfigBuilder {
	return b.set(config.SectionSequence, values)
}

// WithForeign adds a section sapauto does not interpret.
func (b *TestConfigBuilder) WithForeign(name string, values map[string]string) *TestConfigBuilder {
	b.t.Helper()

	if b.def.Foreign == nil {
		b.def.Foreign = make(map[string]map[string]string)
	}
	b.def.Foreign[name] = values
	return b
}

// Build returns the in-memory definition.
func (b *TestConfigBuilder) Build() *config.Definition {
	b.t.Helper()

	return b.def
}

// Write saves the configuration as sapauto.toml in a temporary directory
// and returns its path.
func (b *TestConfigBuilder) Write() string {
	b.t.Helper()

	path := filepath.Join(b.tempDir, config.DefaultPath)
	if err := b.def.Save(path); err != nil {
		b.t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

// WriteRaw writes content verbatim to a temporary sapauto.toml and returns
// its path. Use it for legacy or malformed files.
func WriteRaw(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), config.DefaultPath)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write raw config: %v", err)
	}
	return path
}
