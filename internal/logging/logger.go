// Package logging prints the CLI's status lines to stderr. Passwords and
// key material reach the logger only wrapped in Secret.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Logger writes one status line per call, prefixed with a glyph that marks
// success, warning or failure. Commands share a single Logger built from
// the --debug and --no-color flags.
type Logger struct {
	debug   bool
	noColor bool
	out     io.Writer
}

// New returns a Logger on stderr, keeping stdout free for command output
// such as `config show`.
func New(debug, noColor bool) *Logger {
	return NewWithWriter(os.Stderr, debug, noColor)
}

// NewWithWriter returns a Logger on w. Tests use it to capture output.
func NewWithWriter(w io.Writer, debug, noColor bool) *Logger {
	return &Logger{
		debug:   debug,
		noColor: noColor,
		out:     w,
	}
}

// Info reports a completed step, e.g. a saved config or stored credentials.
func (l *Logger) Info(format string, args ...interface{}) {
	l.emit("\033[32m✓\033[0m", "✓", format, args...)
}

// Warn reports something the run can continue past, such as a legacy
// [sap_config] file.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.emit("\033[33m⚠\033[0m", "⚠", format, args...)
}

// Error reports a failed step.
func (l *Logger) Error(format string, args ...interface{}) {
	l.emit("\033[31m✗\033[0m", "✗", format, args...)
}

// Debug is printed only with --debug. Vault and config paths log here.
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.debug {
		return
	}
	l.emit("\033[36m[DEBUG]\033[0m", "[DEBUG]", format, args...)
}

// IsDebug reports whether --debug was given.
func (l *Logger) IsDebug() bool {
	return l.debug
}

func (l *Logger) emit(colored, plain, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	prefix := colored
	if l.noColor {
		prefix = plain
	}
	fmt.Fprintf(l.out, "%s %s\n", prefix, msg)
}

// Secret wraps a password or key so that every fmt verb prints a placeholder.
type Secret string

func (s Secret) String() string {
	return "[REDACTED]"
}

// GoString covers %#v.
func (s Secret) GoString() string {
	return "[REDACTED]"
}

// Redact masks each known secret inside s. Values of three characters or
// fewer are left alone.
func Redact(s string, secrets []string) string {
	result := s
	for _, secret := range secrets {
		if len(secret) > 3 {
			result = strings.ReplaceAll(result, secret, "[REDACTED]")
		}
	}
	return result
}
