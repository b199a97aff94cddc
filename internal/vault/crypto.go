package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	saerrors "github.com/systmms/sapauto/internal/errors"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32
	// NonceSize is the GCM nonce length in bytes.
	NonceSize = 12
)

var (
	ErrInvalidKeyLength = errors.New("invalid key length")
	ErrMalformedBlob    = errors.New("malformed base64")
	ErrInvalidData      = errors.New("invalid encrypted data")
	ErrDecryptionFailed = errors.New("decryption failed")
	ErrInvalidUTF8      = errors.New("invalid UTF-8")
)

func newAEAD(op string, key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, saerrors.CryptoError{
			Op:      op,
			Message: fmt.Sprintf("key must be %d bytes, got %d", KeySize, len(key)),
			Err:     ErrInvalidKeyLength,
		}
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, saerrors.CryptoError{Op: op, Message: "aes cipher", Err: err}
	}
	aead, err := cipher.NewGCMWithNonceSize(block, NonceSize)
	if err != nil {
		return nil, saerrors.CryptoError{Op: op, Message: "gcm", Err: err}
	}
	return aead, nil
}

// Encrypt seals plaintext under key with a fresh random nonce and returns
// base64(nonce || ciphertext || tag).
func Encrypt(plaintext string, key []byte) (string, error) {
	aead, err := newAEAD("encrypt", key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", saerrors.CryptoError{Op: "encrypt", Message: "generate nonce", Err: err}
	}

	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. A wrong key and tampered data produce the same
// ErrDecryptionFailed.
func Decrypt(blob string, key []byte) (string, error) {
	aead, err := newAEAD("decrypt", key)
	if err != nil {
		return "", err
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(blob))
	if err != nil {
		return "", saerrors.CryptoError{
			Op:      "decrypt",
			Message: err.Error(),
			Err:     ErrMalformedBlob,
		}
	}

	if len(data) < NonceSize {
		return "", saerrors.CryptoError{Op: "decrypt", Message: ErrInvalidData.Error(), Err: ErrInvalidData}
	}

	nonce, ciphertext := data[:NonceSize], data[NonceSize:]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", saerrors.CryptoError{Op: "decrypt", Message: ErrDecryptionFailed.Error(), Err: ErrDecryptionFailed}
	}

	if !utf8.Valid(plaintext) {
		return "", saerrors.CryptoError{Op: "decrypt", Message: ErrInvalidUTF8.Error(), Err: ErrInvalidUTF8}
	}

	return string(plaintext), nil
}
