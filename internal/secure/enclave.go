package secure

import (
	"sync"

	"github.com/awnumar/memguard"
)

// SecureBuffer keeps a secret encrypted in a memguard enclave until it is
// needed. Empty input is represented without an enclave since memguard
// refuses zero-length enclaves.
type SecureBuffer struct {
	enclave   *memguard.Enclave
	mu        sync.RWMutex
	destroyed bool
}

// NewSecureBuffer copies data into a protected enclave. memguard wipes the
// slice it is handed, so the caller's data is left untouched and should be
// zeroed by the caller if it is sensitive.
func NewSecureBuffer(data []byte) (*SecureBuffer, error) {
	if len(data) == 0 {
		return &SecureBuffer{}, nil
	}

	src := make([]byte, len(data))
	copy(src, data)

	return &SecureBuffer{enclave: memguard.NewEnclave(src)}, nil
}

// NewSecureString is NewSecureBuffer for string secrets.
func NewSecureString(s string) (*SecureBuffer, error) {
	return NewSecureBuffer([]byte(s))
}

// Open decrypts the enclave into a locked buffer. The caller MUST call
// Destroy on the returned buffer.
//
//	locked, err := buf.Open()
//	if err != nil {
//	    return err
//	}
//	defer locked.Destroy()
func (s *SecureBuffer) Open() (*memguard.LockedBuffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.destroyed || s.enclave == nil {
		return memguard.NewBufferFromBytes([]byte{}), nil
	}

	return s.enclave.Open()
}

// Reveal returns a plain copy of the protected bytes as a string.
func (s *SecureBuffer) Reveal() (string, error) {
	locked, err := s.Open()
	if err != nil {
		return "", err
	}
	defer locked.Destroy()

	return string(locked.Bytes()), nil
}

// Destroy marks the buffer unusable. It is idempotent; memguard.Purge at
// exit wipes any remaining enclave keys.
func (s *SecureBuffer) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destroyed {
		return
	}

	s.enclave = nil
	s.destroyed = true
}
