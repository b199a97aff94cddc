package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	saerrors "github.com/systmms/sapauto/internal/errors"
	"github.com/systmms/sapauto/internal/logging"
	"github.com/systmms/sapauto/internal/metrics"
	"github.com/systmms/sapauto/internal/secure"
)

// ErrIncompatibleFormat is returned for a decrypted payload that is not
// "username\npassword".
var ErrIncompatibleFormat = errors.New("credential payload has no username/password separator")

// AuthFileName returns the credential file name for an instance id.
func AuthFileName(instanceID string) string {
	return fmt.Sprintf("cryptauth_%s.txt", instanceID)
}

// KeyFileName returns the key file name for an instance id.
func KeyFileName(instanceID string) string {
	return fmt.Sprintf("cryptauth_%s_key.bin", instanceID)
}

var userHomeDir = os.UserHomeDir

// DefaultDir is the profile subdirectory credential and key files live in.
func DefaultDir() string {
	home, err := userHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".sapauto")
}

// Credentials is a decrypted username/password pair. The password stays in
// a memguard enclave until Password is called.
type Credentials struct {
	Username string
	password *secure.SecureBuffer
}

// NewCredentials wraps a username and password.
func NewCredentials(username, password string) (*Credentials, error) {
	buf, err := secure.NewSecureString(password)
	if err != nil {
		return nil, err
	}
	return &Credentials{Username: username, password: buf}, nil
}

// Password reveals the password.
func (c *Credentials) Password() (string, error) {
	if c.password == nil {
		return "", nil
	}
	return c.password.Reveal()
}

// Destroy wipes the protected password.
func (c *Credentials) Destroy() {
	if c.password != nil {
		c.password.Destroy()
	}
}

func (c *Credentials) String() string {
	return fmt.Sprintf("%s/%s", c.Username, logging.Secret(""))
}

func serialize(username, password string) (string, error) {
	if strings.ContainsAny(username, "\r\n") {
		return "", saerrors.UserError{
			Message:    "Username must not contain line breaks",
			Suggestion: "Enter the user name on a single line",
		}
	}
	return username + "\n" + password, nil
}

func parse(plaintext string) (*Credentials, error) {
	username, password, ok := strings.Cut(plaintext, "\n")
	if !ok {
		return nil, ErrIncompatibleFormat
	}
	return NewCredentials(username, password)
}

func writeCredentialFile(path string, key []byte, username, password string) error {
	plaintext, err := serialize(username, password)
	if err != nil {
		return err
	}
	blob, err := Encrypt(plaintext, key)
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(path, strings.NewReader(blob)); err != nil {
		return saerrors.CryptoError{Op: "save credentials", Message: "write credential file", Err: err}
	}
	return nil
}

func readCredentialFile(path string, key []byte) (*Credentials, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	plaintext, err := Decrypt(string(blob), key)
	if err != nil {
		return nil, err
	}
	return parse(plaintext)
}

// SaveCredentials encrypts username and password with the instance's file
// key under dir, creating dir and the key as needed. An existing credential
// file is overwritten.
func SaveCredentials(dir, instanceID, username, password string) error {
	return NewStore(dir, instanceID, nil).Save(username, password)
}

// LoadCredentials decrypts authFile with the key in keyFile. It reports
// false when either file is missing or unreadable, or when decryption fails
// for any reason; the caller should then prompt for credentials.
func LoadCredentials(authFile, keyFile string) (*Credentials, bool) {
	creds, err := loadCredentials(authFile, keyFile)
	if err != nil {
		metrics.VaultOp("load_credentials", metrics.ResultFallback)
		return nil, false
	}
	metrics.VaultOp("load_credentials", metrics.ResultSuccess)
	return creds, true
}

func loadCredentials(authFile, keyFile string) (*Credentials, error) {
	key, err := readKeyFile(keyFile)
	if err != nil {
		return nil, err
	}
	return readCredentialFile(authFile, key)
}

// Store binds a credential directory, an instance id and a key backend.
type Store struct {
	Dir        string
	InstanceID string
	Keys       KeyStore
	Logger     *logging.Logger
}

// NewStore creates a store. A nil keys uses a FileKeyStore rooted at dir.
func NewStore(dir, instanceID string, keys KeyStore) *Store {
	if keys == nil {
		keys = FileKeyStore{Dir: dir}
	}
	return &Store{Dir: dir, InstanceID: instanceID, Keys: keys}
}

// AuthFile is the path of the encrypted credential file.
func (s *Store) AuthFile() string {
	return filepath.Join(s.Dir, AuthFileName(s.InstanceID))
}

// KeyLocation describes where the key lives.
func (s *Store) KeyLocation() string {
	return s.Keys.Location(s.InstanceID)
}

// Exists reports whether a credential file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.AuthFile())
	return err == nil
}

// Save encrypts and writes the credential file, creating the key first if
// this instance has none.
func (s *Store) Save(username, password string) (err error) {
	defer func() { metrics.VaultOp("save_credentials", metrics.Result(err)) }()

	if err := os.MkdirAll(s.Dir, 0o700); err != nil {
		return saerrors.CryptoError{Op: "save credentials", Message: "create credential directory", Err: err}
	}

	key, err := s.Keys.LoadOrCreate(s.InstanceID)
	if err != nil {
		return err
	}

	if err := writeCredentialFile(s.AuthFile(), key, username, password); err != nil {
		return err
	}
	s.debug("Stored credentials for %q in %s (key: %s)", username, s.AuthFile(), s.KeyLocation())
	return nil
}

// Load returns the stored credentials, or false if they cannot be
// recovered. The reason is logged at debug level.
func (s *Store) Load() (*Credentials, bool) {
	creds, err := s.load()
	if err != nil {
		metrics.VaultOp("load_credentials", metrics.ResultFallback)
		switch {
		case errors.Is(err, fs.ErrNotExist), errors.Is(err, ErrKeyNotFound):
			s.debug("No stored credentials for instance %q", s.InstanceID)
		default:
			s.debug("Stored credentials for instance %q are unusable: %v", s.InstanceID, err)
		}
		return nil, false
	}
	metrics.VaultOp("load_credentials", metrics.ResultSuccess)
	return creds, true
}

func (s *Store) load() (*Credentials, error) {
	if !s.Exists() {
		return nil, fs.ErrNotExist
	}
	key, err := s.Keys.Key(s.InstanceID)
	if err != nil {
		return nil, err
	}
	return readCredentialFile(s.AuthFile(), key)
}

func (s *Store) debug(format string, args ...interface{}) {
	if s.Logger != nil {
		s.Logger.Debug(format, args...)
	}
}
