package config

import (
	"fmt"

	saerrors "github.com/systmms/sapauto/internal/errors"
	"github.com/systmms/sapauto/internal/logging"
	"github.com/systmms/sapauto/internal/vault"
)

// DefaultPath is the configuration file used when --config is not given.
const DefaultPath = "sapauto.toml"

// Key store names accepted by --key-store.
const (
	KeyStoreFile    = "file"
	KeyStoreKeyring = "keyring"
)

// Config holds the runtime configuration
type Config struct {
	Path           string
	Logger         *logging.Logger
	NonInteractive bool
	AuthDir        string
	KeyStore       string
	Definition     *Definition
}

// Load reads the configuration file, falling back to defaults when it does
// not exist yet.
func (c *Config) Load() error {
	def, err := Load(c.path())
	if err != nil {
		return err
	}
	if def.Format() == FormatLegacy && c.Logger != nil {
		c.Logger.Warn("%s uses the legacy [%s] format; it will be rewritten as layered sections on save", c.path(), LegacySection)
	}
	c.Definition = def
	return nil
}

// Save writes the loaded definition back to the configuration file.
func (c *Config) Save() error {
	if c.Definition == nil {
		return saerrors.ConfigError{Message: "no configuration loaded"}
	}
	if err := c.Definition.Save(c.path()); err != nil {
		return err
	}
	if c.Logger != nil {
		c.Logger.Debug("Saved configuration to %s", c.path())
	}
	return nil
}

func (c *Config) path() string {
	if c.Path == "" {
		return DefaultPath
	}
	return c.Path
}

// CredentialStore returns the vault for the configured instance id, using
// the selected key store.
func (c *Config) CredentialStore() (*vault.Store, error) {
	if c.Definition == nil {
		return nil, saerrors.ConfigError{Message: "no configuration loaded"}
	}

	dir := c.AuthDir
	if dir == "" {
		dir = vault.DefaultDir()
	}

	var keys vault.KeyStore
	switch c.KeyStore {
	case "", KeyStoreFile:
		keys = vault.FileKeyStore{Dir: dir}
	case KeyStoreKeyring:
		keys = vault.NewKeyringKeyStore(vault.DefaultKeyringService)
	default:
		return nil, saerrors.ConfigError{
			Field:      "key-store",
			Value:      c.KeyStore,
			Message:    fmt.Sprintf("unsupported key store %q", c.KeyStore),
			Suggestion: "Use --key-store file or --key-store keyring",
		}
	}

	store := vault.NewStore(dir, c.Definition.InstanceID(), keys)
	store.Logger = c.Logger
	return store, nil
}
