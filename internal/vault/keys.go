package vault

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"github.com/zalando/go-keyring"

	saerrors "github.com/systmms/sapauto/internal/errors"
	"github.com/systmms/sapauto/internal/metrics"
)

// ErrKeyNotFound is returned when no key has been stored for an instance yet.
var ErrKeyNotFound = errors.New("encryption key not found")

// KeyStore persists one encryption key per instance id.
type KeyStore interface {
	// Name identifies the backend ("file" or "keyring").
	Name() string
	// Key returns the stored key, or ErrKeyNotFound.
	Key(instanceID string) ([]byte, error)
	// LoadOrCreate returns the stored key, generating and storing one first
	// if none exists.
	LoadOrCreate(instanceID string) ([]byte, error)
	// Location describes where the key lives, for diagnostics.
	Location(instanceID string) string
	// Delete removes the key. Deleting a missing key is not an error.
	Delete(instanceID string) error
}

// LoadOrCreateKey reads the key at path, or generates 32 random bytes and
// writes them there, creating parent directories as needed.
func LoadOrCreateKey(path string) (key []byte, err error) {
	defer func() { metrics.VaultOp("load_or_create_key", metrics.Result(err)) }()

	key, err = readKeyFile(path)
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, ErrKeyNotFound) {
		return nil, err
	}

	key, err = generateKey()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, saerrors.CryptoError{Op: "create key", Message: "create key directory", Err: err}
	}
	if err := atomic.WriteFile(path, bytes.NewReader(key)); err != nil {
		return nil, saerrors.CryptoError{Op: "create key", Message: "write key file", Err: err}
	}

	return key, nil
}

func readKeyFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrKeyNotFound
		}
		return nil, saerrors.CryptoError{Op: "load key", Message: "read key file", Err: err}
	}
	if len(data) != KeySize {
		return nil, saerrors.CryptoError{
			Op:      "load key",
			Message: fmt.Sprintf("key file %s holds %d bytes, want %d", path, len(data), KeySize),
			Err:     ErrInvalidKeyLength,
		}
	}
	return data, nil
}

func generateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, saerrors.CryptoError{Op: "create key", Message: "generate key", Err: err}
	}
	return key, nil
}

// FileKeyStore keeps keys as raw bytes in cryptauth_{id}_key.bin under Dir.
type FileKeyStore struct {
	Dir string
}

func (f FileKeyStore) Name() string { return "file" }

func (f FileKeyStore) Location(instanceID string) string {
	return filepath.Join(f.Dir, KeyFileName(instanceID))
}

func (f FileKeyStore) Key(instanceID string) ([]byte, error) {
	return readKeyFile(f.Location(instanceID))
}

func (f FileKeyStore) LoadOrCreate(instanceID string) ([]byte, error) {
	return LoadOrCreateKey(f.Location(instanceID))
}

func (f FileKeyStore) Delete(instanceID string) error {
	if err := os.Remove(f.Location(instanceID)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// KeyringClient abstracts the OS keychain so it can be faked in tests.
type KeyringClient interface {
	Get(service, user string) (string, error)
	Set(service, user, password string) error
	Delete(service, user string) error
}

type osKeyring struct{}

func (osKeyring) Get(service, user string) (string, error) { return keyring.Get(service, user) }
func (osKeyring) Set(service, user, password string) error { return keyring.Set(service, user, password) }
func (osKeyring) Delete(service, user string) error { return keyring.Delete(service, user) }

// DefaultKeyringService is the keychain service name keys are stored under.
const DefaultKeyringService = "sapauto"

// KeyringKeyStore keeps keys base64-encoded in the OS keychain (macOS
// Keychain, Secret Service, Windows Credential Manager).
type KeyringKeyStore struct {
	service string
	client  KeyringClient
}

// NewKeyringKeyStore creates a key store backed by the platform keychain.
func NewKeyringKeyStore(service string) *KeyringKeyStore {
	return NewKeyringKeyStoreWithClient(service, osKeyring{})
}

// NewKeyringKeyStoreWithClient creates a keyring key store with a custom client.
func NewKeyringKeyStoreWithClient(service string, client KeyringClient) *KeyringKeyStore {
	if service == "" {
		service = DefaultKeyringService
	}
	return &KeyringKeyStore{service: service, client: client}
}

func (k *KeyringKeyStore) Name() string { return "keyring" }

func (k *KeyringKeyStore) account(instanceID string) string {
	return fmt.Sprintf("cryptauth_%s_key", instanceID)
}

func (k *KeyringKeyStore) Location(instanceID string) string {
	return fmt.Sprintf("keyring:%s/%s", k.service, k.account(instanceID))
}

func (k *KeyringKeyStore) Key(instanceID string) ([]byte, error) {
	encoded, err := k.client.Get(k.service, k.account(instanceID))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, saerrors.KeyStoreError(k.Name(), "load", err)
	}

	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(key) != KeySize {
		return nil, saerrors.CryptoError{
			Op:      "load key",
			Message: "keychain entry " + k.Location(instanceID) + " is not a valid key",
			Err:     ErrInvalidKeyLength,
		}
	}
	return key, nil
}

func (k *KeyringKeyStore) LoadOrCreate(instanceID string) (key []byte, err error) {
	defer func() { metrics.VaultOp("load_or_create_key", metrics.Result(err)) }()

	key, err = k.Key(instanceID)
	if err == nil || !errors.Is(err, ErrKeyNotFound) {
		return key, err
	}

	key, err = generateKey()
	if err != nil {
		return nil, err
	}
	if err := k.client.Set(k.service, k.account(instanceID), base64.StdEncoding.EncodeToString(key)); err != nil {
		return nil, saerrors.KeyStoreError(k.Name(), "store", err)
	}
	return key, nil
}

func (k *KeyringKeyStore) Delete(instanceID string) error {
	if err := k.client.Delete(k.service, k.account(instanceID)); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return saerrors.KeyStoreError(k.Name(), "delete", err)
	}
	return nil
}

var (
	_ KeyStore = FileKeyStore{}
	_ KeyStore = (*KeyringKeyStore)(nil)
)
