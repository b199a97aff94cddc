package fakes

import (
	"sync"

	"github.com/zalando/go-keyring"

	"github.com/systmms/sapauto/internal/vault"
)

// FakeKeyringClient is a test double for vault.KeyringClient
type FakeKeyringClient struct {
	mu sync.Mutex

	// Secrets is a map of service -> user -> value
	Secrets map[string]map[string]string

	// GetErr, SetErr and DeleteErr override the matching call when set
	GetErr    error
	SetErr    error
	DeleteErr error

	// SetCalls counts successful Set invocations
	SetCalls int
}

// NewFakeKeyringClient creates an empty fake keyring
func NewFakeKeyringClient() *FakeKeyringClient {
	return &FakeKeyringClient{Secrets: make(map[string]map[string]string)}
}

// SetSecret seeds a value without counting it as a Set call
func (f *FakeKeyringClient) SetSecret(service, user, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.put(service, user, value)
}

func (f *FakeKeyringClient) put(service, user, value string) {
	if f.Secrets == nil {
		f.Secrets = make(map[string]map[string]string)
	}
	if f.Secrets[service] == nil {
		f.Secrets[service] = make(map[string]string)
	}
	f.Secrets[service][user] = value
}

// Get returns the stored value or keyring.ErrNotFound
func (f *FakeKeyringClient) Get(service, user string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.GetErr != nil {
		return "", f.GetErr
	}
	if users, ok := f.Secrets[service]; ok {
		if value, ok := users[user]; ok {
			return value, nil
		}
	}
	return "", keyring.ErrNotFound
}

// Set stores a value
func (f *FakeKeyringClient) Set(service, user, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.SetErr != nil {
		return f.SetErr
	}
	f.put(service, user, password)
	f.SetCalls++
	return nil
}

// Delete removes a value or returns keyring.ErrNotFound
func (f *FakeKeyringClient) Delete(service, user string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	if users, ok := f.Secrets[service]; ok {
		if _, ok := users[user]; ok {
			delete(users, user)
			return nil
		}
	}
	return keyring.ErrNotFound
}

// Ensure FakeKeyringClient implements vault.KeyringClient
var _ vault.KeyringClient = (*FakeKeyringClient)(nil)
