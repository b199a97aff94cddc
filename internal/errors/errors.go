package errors

import (
	"errors"
	"fmt"
	"strings"
)

// UserError represents an error that should be shown to the user with helpful context
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  💡 Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration load, validation or save failure.
// Err carries the underlying parse diagnostic or OS error when there is one.
type ConfigError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
	Err        error
}

func (e ConfigError) Error() string {
	msg := "Configuration error"
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	msg += ": " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

func (e ConfigError) Unwrap() error {
	return e.Err
}

// CryptoError represents a failure to encrypt, decrypt or manage key material.
// Messages never distinguish a wrong key from tampered data.
type CryptoError struct {
	Op      string
	Message string
	Err     error
}

func (e CryptoError) Error() string {
	msg := "crypto error"
	if e.Op != "" {
		msg += " during " + e.Op
	}
	msg += ": " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e CryptoError) Unwrap() error {
	return e.Err
}

// KeyStoreError enhances key store errors with context
func KeyStoreError(store string, operation string, err error) error {
	return UserError{
		Message:    fmt.Sprintf("%s key store error during %s", store, operation),
		Suggestion: getKeyStoreSuggestion(store, err),
		Err:        err,
	}
}

// getKeyStoreSuggestion returns helpful suggestions based on key store and error
func getKeyStoreSuggestion(store string, err error) string {
	errStr := err.Error()

	switch store {
	case "keyring":
		if strings.Contains(errStr, "secret not found") {
			return "No key is stored for this instance yet. Run 'sapauto credentials set' to create one"
		}
		if strings.Contains(errStr, "org.freedesktop.secrets") || strings.Contains(errStr, "dbus") {
			return "Start a Secret Service provider (gnome-keyring, KWallet) or use --key-store file"
		}
		if strings.Contains(errStr, "data passed to Set was too big") {
			return "The platform keychain rejected the key. Use --key-store file"
		}

	case "file":
		if strings.Contains(errStr, "invalid key length") {
			return "The key file is corrupt. Run 'sapauto credentials reset' and store credentials again"
		}
	}

	if strings.Contains(errStr, "permission denied") {
		return "Check permissions on the credential directory (see --auth-dir)"
	}

	return ""
}

// SimplifyError simplifies complex error messages for users
func SimplifyError(err error) error {
	if err == nil {
		return nil
	}

	// Already a user-friendly error
	var userErr UserError
	if errors.As(err, &userErr) {
		return err
	}
	var cfgErr ConfigError
	if errors.As(err, &cfgErr) {
		return err
	}
	var cryptoErr CryptoError
	if errors.As(err, &cryptoErr) {
		return err
	}

	// Unwrap to get the root cause
	rootErr := err
	for {
		unwrapped := errors.Unwrap(rootErr)
		if unwrapped == nil {
			break
		}
		rootErr = unwrapped
	}

	errStr := rootErr.Error()

	if strings.Contains(errStr, "toml:") {
		return ConfigError{
			Message:    "Invalid TOML format",
			Suggestion: "Check for unquoted values, duplicate keys and unterminated strings",
			Err:        rootErr,
		}
	}

	if strings.Contains(errStr, "permission denied") {
		return UserError{
			Message:    "Permission denied",
			Suggestion: "Check file permissions or run with appropriate privileges",
			Err:        err,
		}
	}

	if strings.Contains(errStr, "no such file or directory") {
		return UserError{
			Message:    "File or directory not found",
			Suggestion: "Verify the path exists and is spelled correctly",
			Err:        err,
		}
	}

	// Return original error if we can't simplify it
	return err
}
