package keymgr

import (
	"bytes"
	"crypto/ed25519"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_CreateGet(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "keys")
	s := NewStore(dir)

	created, err := s.Create("Local_DID")
	require.NoError(t, err)
	assert.Equal(t, "local_did", created.Name)
	assert.Equal(t, VerificationMethodID(created.DID), created.KeyID)

	got, err := s.Get("local_did")
	require.NoError(t, err)
	assert.Equal(t, created, got)

	priv, err := got.PrivateKey()
	require.NoError(t, err)
	assert.Equal(t, created.DID, DIDKeyFromPublicKey(priv.Public().(ed25519.PublicKey)))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())

		info, err = os.Stat(filepath.Join(dir, "local_did.json"))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}
}

func TestStore_CreateExisting(t *testing.T) {
	s := NewStore(t.TempDir())

	first, err := s.Create("issuer")
	require.NoError(t, err)

	_, err = s.Create("issuer")
	assert.ErrorIs(t, err, ErrKeyExists)

	// The original key is untouched
	got, err := s.Get("issuer")
	require.NoError(t, err)
	assert.Equal(t, first.DID, got.DID)
}

func TestStore_GetMissing(t *testing.T) {
	_, err := NewStore(t.TempDir()).Get("nobody")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestStore_InvalidNames(t *testing.T) {
	s := NewStore(t.TempDir())
	for _, name := range []string{"", "  ", "../escape", "has space", "-leading", "a/b"} {
		t.Run(name, func(t *testing.T) {
			_, err := s.Create(name)
			assert.Error(t, err)
		})
	}
}

func TestStore_ImportIsDeterministic(t *testing.T) {
	seed := make([]byte, 32)
	seed[0] = 7

	a, err := NewStore(t.TempDir()).Import("a", seed)
	require.NoError(t, err)
	b, err := NewStore(t.TempDir()).Import("a", seed)
	require.NoError(t, err)

	assert.Equal(t, a.DID, b.DID)

	_, err = NewStore(t.TempDir()).Import("short", seed[:16])
	assert.Error(t, err)
}

func TestStore_List(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	keys, err := NewStore(filepath.Join(dir, "absent")).List()
	require.NoError(t, err)
	assert.Empty(t, keys)

	_, err = s.Create("zeta")
	require.NoError(t, err)
	_, err = s.Create("alpha")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))

	keys, err = s.List()
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Equal(t, "alpha", keys[0].Name)
	assert.Equal(t, "zeta", keys[1].Name)
}

func TestStore_ListSkipsUnreadableFiles(t *testing.T) {
	dir := t.TempDir()
	var logs bytes.Buffer
	s := NewStore(dir, WithStoreLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	_, err := s.Create("good")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "old.json"), []byte(`{"version":0,"name":"old"}`), 0o600))

	keys, err := s.List()
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, "good", keys[0].Name)

	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "file=broken.json")
	assert.Contains(t, logs.String(), "file=old.json")
}
