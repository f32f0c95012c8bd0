// Package keymgr manages named signing identities and signs claims with them.
package keymgr

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/linkedtrust/claimsign/internal/ldsign"
	"github.com/linkedtrust/claimsign/internal/model"
)

// SigningError wraps any failure of a sign-with-DID call
type SigningError struct {
	Name string
	Err  error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("sign with %s: %v", e.Name, e.Err)
}

func (e *SigningError) Unwrap() error { return e.Err }

// Manager signs claims with keys from a Store
type Manager struct {
	store        *Store
	signer       *ldsign.Signer
	cryptosuite  string
	proofPurpose string
	logger       *slog.Logger
}

// NewManager creates a manager that signs with the given cryptosuite and purpose
func NewManager(store *Store, signer *ldsign.Signer, cryptosuite, proofPurpose string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Manager{
		store:        store,
		signer:       signer,
		cryptosuite:  cryptosuite,
		proofPurpose: proofPurpose,
		logger:       logger,
	}
}

// SignWithDID signs doc with the identity stored under name.
// doc is read, never modified.
func (m *Manager) SignWithDID(ctx context.Context, doc model.ClaimDocument, name string) (model.SignedClaim, error) {
	if err := ctx.Err(); err != nil {
		return nil, &SigningError{Name: name, Err: err}
	}

	record, err := m.store.Get(name)
	if err != nil {
		return nil, &SigningError{Name: name, Err: err}
	}

	key, err := record.PrivateKey()
	if err != nil {
		return nil, &SigningError{Name: name, Err: err}
	}

	m.logger.Debug("signing claim", "key", record.Name, "did", record.DID, "cryptosuite", m.cryptosuite)

	signed, err := m.signer.Sign(doc, key, ldsign.Options{
		Cryptosuite:        m.cryptosuite,
		ProofPurpose:       m.proofPurpose,
		VerificationMethod: record.KeyID,
	})
	if err != nil {
		return nil, &SigningError{Name: name, Err: err}
	}
	return signed, nil
}

// Verify checks a signed claim whose verification method is a did:key
func (m *Manager) Verify(signed model.SignedClaim) error {
	return m.signer.Verify(signed, ResolveVerificationMethod)
}
