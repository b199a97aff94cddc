package testutil

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/systmms/sapauto/internal/logging"
)

// TestLogger captures the output of a logging.Logger for validation in
// tests.
//
// Example usage:
//
//	logger := NewTestLogger(t, true)
//	cfg := &config.Config{Logger: logger.Logger()}
//	...
//	logger.AssertRedacted(t, "password123")
type TestLogger struct {
	buffer syncBuffer
	logger *logging.Logger
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func (s *syncBuffer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf.Reset()
}

// NewTestLogger creates a colourless logger writing to memory. Debug
// messages are captured when debug is true.
func NewTestLogger(t *testing.T, debug bool) *TestLogger {
	t.Helper()

	l := &TestLogger{}
	l.logger = logging.NewWithWriter(&l.buffer, debug, true)
	return l
}

// Logger returns the logger to hand to the code under test.
func (l *TestLogger) Logger() *logging.Logger {
	return l.logger
}

// GetOutput returns everything logged since creation or the last Clear.
func (l *TestLogger) GetOutput() string {
	return l.buffer.String()
}

// Clear discards the captured output.
func (l *TestLogger) Clear() {
	l.buffer.Reset()
}

// AssertContains asserts that the log output contains substr.
func (l *TestLogger) AssertContains(t *testing.T, substr string) {
	t.Helper()

	assert.Contains(t, l.GetOutput(), substr, "Expected log output to contain %q", substr)
}

// AssertNotContains asserts that the log output does NOT contain substr.
func (l *TestLogger) AssertNotContains(t *testing.T, substr string) {
	t.Helper()

	assert.NotContains(t, l.GetOutput(), substr, "Expected log output to NOT contain %q", substr)
}

// AssertRedacted asserts that secretValue never reached the log while the
// [REDACTED] marker did.
func (l *TestLogger) AssertRedacted(t *testing.T, secretValue string) {
	t.Helper()

	AssertSecretRedacted(t, l.GetOutput(), secretValue)
}

// AssertLogCount asserts that a log level appears count times.
//
// Level markers:
//   - Info: "✓"
//   - Warn: "⚠"
//   - Error: "✗"
//   - Debug: "[DEBUG]"
func (l *TestLogger) AssertLogCount(t *testing.T, level string, count int) {
	t.Helper()

	var marker string
	switch level {
	case "info":
		marker = "✓"
	case "warn":
		marker = "⚠"
	case "error":
		marker = "✗"
	case "debug":
		marker = "[DEBUG]"
	default:
		t.Fatalf("Unknown log level: %s", level)
	}

	actual := strings.Count(l.GetOutput(), marker)
	assert.Equal(t, count, actual, "Expected %d %s log messages, got %d", count, level, actual)
}

// Lines returns the non-empty log lines.
func (l *TestLogger) Lines() []string {
	var result []string
	for _, line := range strings.Split(l.GetOutput(), "\n") {
		if strings.TrimSpace(line) != "" {
			result = append(result, line)
		}
	}
	return result
}
