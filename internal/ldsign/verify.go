package ldsign

import (
	"crypto/ed25519"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"

	"github.com/linkedtrust/claimsign/internal/model"
)

// KeyResolver maps a verification method id to its Ed25519 public key
type KeyResolver func(verificationMethod string) (ed25519.PublicKey, error)

// Verify checks the proof attached to signed
func (s *Signer) Verify(signed model.SignedClaim, resolve KeyResolver) error {
	proofMap, ok := signed.Proof()
	if !ok {
		return fmt.Errorf("%w: no proof object", ErrInvalidProof)
	}
	proof := model.ProofFromMap(proofMap)

	if proof.Type != model.DataIntegrityProofType {
		return fmt.Errorf("%w: type %q", ErrInvalidProof, proof.Type)
	}
	if !Supported(proof.Cryptosuite) {
		return fmt.Errorf("%w: %q", ErrUnsupportedCryptosuite, proof.Cryptosuite)
	}
	if !strings.HasPrefix(proof.ProofValue, "z") {
		return fmt.Errorf("%w: proofValue must be multibase base58btc", ErrInvalidProof)
	}

	sig, err := base58.Decode(strings.TrimPrefix(proof.ProofValue, "z"))
	if err != nil {
		return fmt.Errorf("%w: decode proofValue: %v", ErrInvalidProof, err)
	}
	if len(sig) != ed25519.SignatureSize {
		return fmt.Errorf("%w: signature is %d bytes", ErrInvalidProof, len(sig))
	}

	pub, err := resolve(proof.VerificationMethod)
	if err != nil {
		return fmt.Errorf("resolve verification method: %w", err)
	}

	hash, err := s.hashData(signed.Unsigned(), proofMap)
	if err != nil {
		return err
	}

	if !ed25519.Verify(pub, hash, sig) {
		return ErrSignatureMismatch
	}
	return nil
}
