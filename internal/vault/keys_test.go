package vault_test

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	saerrors "github.com/systmms/sapauto/internal/errors"
	"github.com/systmms/sapauto/internal/vault"
	"github.com/systmms/sapauto/tests/fakes"
)

func TestLoadOrCreateKey_CreatesWithParents(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "dir", vault.KeyFileName("rs"))

	key, err := vault.LoadOrCreateKey(path)
	require.NoError(t, err)
	assert.Len(t, key, vault.KeySize)

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, key, onDisk)
}

func TestLoadOrCreateKey_ReusesExisting(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), vault.KeyFileName("rs"))

	first, err := vault.LoadOrCreateKey(path)
	require.NoError(t, err)
	second, err := vault.LoadOrCreateKey(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestLoadOrCreateKey_RejectsWrongLength(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), vault.KeyFileName("rs"))
	require.NoError(t, os.WriteFile(path, []byte("too short"), 0o600))

	_, err := vault.LoadOrCreateKey(path)
	requireCryptoError(t, err, vault.ErrInvalidKeyLength)

	// the bad file must not be replaced
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "too short", string(data))
}

func TestFileKeyStore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ks := vault.FileKeyStore{Dir: dir}

	assert.Equal(t, "file", ks.Name())
	assert.Equal(t, filepath.Join(dir, "cryptauth_rs_key.bin"), ks.Location("rs"))

	_, err := ks.Key("rs")
	assert.ErrorIs(t, err, vault.ErrKeyNotFound)

	created, err := ks.LoadOrCreate("rs")
	require.NoError(t, err)

	loaded, err := ks.Key("rs")
	require.NoError(t, err)
	assert.Equal(t, created, loaded)

	other, err := ks.LoadOrCreate("qa")
	require.NoError(t, err)
	assert.NotEqual(t, created, other, "instances must not share keys")

	require.NoError(t, ks.Delete("rs"))
	require.NoError(t, ks.Delete("rs"), "deleting a missing key is not an error")
	_, err = ks.Key("rs")
	assert.ErrorIs(t, err, vault.ErrKeyNotFound)
}

func TestKeyringKeyStore(t *testing.T) {
	t.Parallel()

	fake := fakes.NewFakeKeyringClient()
	ks := vault.NewKeyringKeyStoreWithClient("", fake)

	assert.Equal(t, "keyring", ks.Name())
	assert.Equal(t, "keyring:sapauto/cryptauth_rs_key", ks.Location("rs"))

	_, err := ks.Key("rs")
	assert.ErrorIs(t, err, vault.ErrKeyNotFound)

	created, err := ks.LoadOrCreate("rs")
	require.NoError(t, err)
	assert.Len(t, created, vault.KeySize)
	assert.Equal(t, 1, fake.SetCalls)

	again, err := ks.LoadOrCreate("rs")
	require.NoError(t, err)
	assert.Equal(t, created, again)
	assert.Equal(t, 1, fake.SetCalls, "existing key must be reused")

	stored := fake.Secrets["sapauto"]["cryptauth_rs_key"]
	decoded, err := base64.StdEncoding.DecodeString(stored)
	require.NoError(t, err)
	assert.Equal(t, created, decoded)

	require.NoError(t, ks.Delete("rs"))
	require.NoError(t, ks.Delete("rs"))
}

func TestKeyringKeyStore_Errors(t *testing.T) {
	t.Parallel()

	t.Run("corrupt_entry", func(t *testing.T) {
		t.Parallel()
		fake := fakes.NewFakeKeyringClient()
		fake.SetSecret("sapauto", "cryptauth_rs_key", "bm90IGEga2V5")
		ks := vault.NewKeyringKeyStoreWithClient("sapauto", fake)

		_, err := ks.Key("rs")
		requireCryptoError(t, err, vault.ErrInvalidKeyLength)
	})

	t.Run("backend_unavailable", func(t *testing.T) {
		t.Parallel()
		fake := fakes.NewFakeKeyringClient()
		fake.GetErr = errors.New("dbus: connection refused")
		ks := vault.NewKeyringKeyStoreWithClient("sapauto", fake)

		_, err := ks.LoadOrCreate("rs")
		var userErr saerrors.UserError
		require.ErrorAs(t, err, &userErr)
		assert.Contains(t, userErr.Suggestion, "--key-store file")
		assert.Zero(t, fake.SetCalls)
	})

	t.Run("set_fails", func(t *testing.T) {
		t.Parallel()
		fake := fakes.NewFakeKeyringClient()
		fake.SetErr = errors.New("data passed to Set was too big")
		ks := vault.NewKeyringKeyStoreWithClient("sapauto", fake)

		_, err := ks.LoadOrCreate("rs")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "keyring key store error during store")
	})
}
