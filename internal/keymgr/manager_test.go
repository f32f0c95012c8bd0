package keymgr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkedtrust/claimsign/internal/jsonld"
	"github.com/linkedtrust/claimsign/internal/ldsign"
	"github.com/linkedtrust/claimsign/internal/model"
)

func testManager(t *testing.T) (*Manager, *Store) {
	t.Helper()
	loader, err := jsonld.NewLoader()
	require.NoError(t, err)

	store := NewStore(t.TempDir())
	m := NewManager(store, ldsign.NewSigner(loader), model.CryptosuiteEdDSAJCS, "assertionMethod", nil)
	return m, store
}

func TestManager_SignWithDID(t *testing.T) {
	m, store := testManager(t)
	record, err := store.Create("local_did")
	require.NoError(t, err)

	doc := model.ClaimDocument{
		"@context": []interface{}{jsonld.CredentialsV1URL},
		"issuer":   record.DID,
	}
	before := doc.Clone()

	signed, err := m.SignWithDID(context.Background(), doc, "local_did")
	require.NoError(t, err)
	assert.Equal(t, before, doc)

	proof, ok := signed.Proof()
	require.True(t, ok)
	assert.Equal(t, record.KeyID, proof["verificationMethod"])

	require.NoError(t, m.Verify(signed))
}

func TestManager_UnknownKey(t *testing.T) {
	m, _ := testManager(t)

	_, err := m.SignWithDID(context.Background(), model.ClaimDocument{}, "missing")

	var signErr *SigningError
	require.True(t, errors.As(err, &signErr))
	assert.Equal(t, "missing", signErr.Name)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestManager_CanceledContext(t *testing.T) {
	m, store := testManager(t)
	_, err := store.Create("local_did")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = m.SignWithDID(ctx, model.ClaimDocument{}, "local_did")
	assert.ErrorIs(t, err, context.Canceled)
}
