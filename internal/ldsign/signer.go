// Package ldsign creates and checks W3C Data Integrity proofs over claims.
//
// Two Ed25519 cryptosuites are supported: eddsa-rdfc-2022 (URDNA2015
// canonicalization, needs a JSON-LD document loader) and eddsa-jcs-2022
// (RFC 8785 canonicalization). Both sign
// SHA-256(canonical proof config) || SHA-256(canonical document).
package ldsign

import (
	"crypto/ed25519"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"github.com/piprate/json-gold/ld"

	"github.com/linkedtrust/claimsign/internal/jsonld"
	"github.com/linkedtrust/claimsign/internal/model"
)

var (
	// ErrUnsupportedCryptosuite is returned for an unknown cryptosuite name
	ErrUnsupportedCryptosuite = errors.New("unsupported cryptosuite")
	// ErrInvalidProof is returned when a proof object is missing or malformed
	ErrInvalidProof = errors.New("invalid proof")
	// ErrSignatureMismatch is returned when a proof does not verify
	ErrSignatureMismatch = errors.New("signature does not match")
)

// Options are the per-signature proof parameters
type Options struct {
	Cryptosuite        string
	ProofPurpose       string
	VerificationMethod string
}

// Signer attaches Data Integrity proofs
type Signer struct {
	loader ld.DocumentLoader
	now    func() time.Time
	newID  func() string
}

// NewSigner creates a signer. loader serves contexts for eddsa-rdfc-2022.
func NewSigner(loader ld.DocumentLoader) *Signer {
	return &Signer{
		loader: loader,
		now:    time.Now,
		newID:  func() string { return "urn:uuid:" + uuid.NewString() },
	}
}

// Supported reports whether name is a cryptosuite this package implements
func Supported(name string) bool {
	return name == model.CryptosuiteEdDSARDFC || name == model.CryptosuiteEdDSAJCS
}

// Sign returns a copy of doc with a proof attached. doc is not modified.
func (s *Signer) Sign(doc model.ClaimDocument, key ed25519.PrivateKey, opts Options) (model.SignedClaim, error) {
	if !Supported(opts.Cryptosuite) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCryptosuite, opts.Cryptosuite)
	}
	if len(key) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("private key must be %d bytes, got %d", ed25519.PrivateKeySize, len(key))
	}
	if opts.VerificationMethod == "" {
		return nil, errors.New("verification method is required")
	}
	if opts.ProofPurpose == "" {
		opts.ProofPurpose = "assertionMethod"
	}

	unsigned := doc.Clone()
	delete(unsigned, model.ProofKey)

	proof := model.Proof{
		ID:                 s.newID(),
		Type:               model.DataIntegrityProofType,
		Cryptosuite:        opts.Cryptosuite,
		Created:            s.now().UTC().Truncate(time.Second).Format(time.RFC3339),
		VerificationMethod: opts.VerificationMethod,
		ProofPurpose:       opts.ProofPurpose,
	}

	hash, err := s.hashData(unsigned, proof.Map())
	if err != nil {
		return nil, err
	}

	sig := ed25519.Sign(key, hash)
	proof.ProofValue = "z" + base58.Encode(sig)

	signed := model.SignedClaim(unsigned)
	signed[model.ProofKey] = proof.Map()
	return signed, nil
}

// hashData canonicalizes the proof config and the document per cryptosuite
func (s *Signer) hashData(doc model.ClaimDocument, proofConfig map[string]interface{}) ([]byte, error) {
	config := make(map[string]interface{}, len(proofConfig)+1)
	for k, v := range proofConfig {
		if k == "proofValue" {
			continue
		}
		config[k] = v
	}
	raw, _ := doc.RawContext()
	config[model.ContextKey] = withDataIntegrityContext(raw)

	suite, _ := config["cryptosuite"].(string)

	var canonicalConfig, canonicalDoc []byte
	var err error
	switch suite {
	case model.CryptosuiteEdDSARDFC:
		if canonicalConfig, err = jsonld.Canonicalize(config, s.loader); err != nil {
			return nil, fmt.Errorf("canonicalize proof config: %w", err)
		}
		if canonicalDoc, err = jsonld.Canonicalize(map[string]interface{}(doc), s.loader); err != nil {
			return nil, fmt.Errorf("canonicalize document: %w", err)
		}
	case model.CryptosuiteEdDSAJCS:
		if canonicalConfig, err = jsonld.CanonicalizeJCS(config); err != nil {
			return nil, fmt.Errorf("canonicalize proof config: %w", err)
		}
		if canonicalDoc, err = jsonld.CanonicalizeJCS(map[string]interface{}(doc)); err != nil {
			return nil, fmt.Errorf("canonicalize document: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCryptosuite, suite)
	}

	configHash := sha256.Sum256(canonicalConfig)
	docHash := sha256.Sum256(canonicalDoc)

	out := make([]byte, 0, len(configHash)+len(docHash))
	out = append(out, configHash[:]...)
	out = append(out, docHash[:]...)
	return out, nil
}

// withDataIntegrityContext returns the document context with the
// data-integrity vocabulary appended, so proof terms always expand
func withDataIntegrityContext(raw interface{}) []interface{} {
	var entries []interface{}
	switch v := raw.(type) {
	case nil:
	case []interface{}:
		entries = append(entries, v...)
	default:
		entries = append(entries, v)
	}

	for _, e := range entries {
		if s, ok := e.(string); ok && s == jsonld.DataIntegrityV2URL {
			return entries
		}
	}
	return append(entries, jsonld.DataIntegrityV2URL)
}
