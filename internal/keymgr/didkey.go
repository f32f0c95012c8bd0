package keymgr

import (
	"bytes"
	"crypto/ed25519"
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

const didKeyPrefix = "did:key:"

// ed25519-pub multicodec, varint encoded
var ed25519Multicodec = []byte{0xed, 0x01}

// ErrNotDIDKey is returned for identifiers that are not Ed25519 did:key values
var ErrNotDIDKey = errors.New("not an ed25519 did:key")

// PublicKeyMultibase encodes pub as multibase base58btc with the multicodec prefix
func PublicKeyMultibase(pub ed25519.PublicKey) string {
	buf := make([]byte, 0, len(ed25519Multicodec)+len(pub))
	buf = append(buf, ed25519Multicodec...)
	buf = append(buf, pub...)
	return "z" + base58.Encode(buf)
}

// DIDKeyFromPublicKey returns the did:key identifier for pub
func DIDKeyFromPublicKey(pub ed25519.PublicKey) string {
	return didKeyPrefix + PublicKeyMultibase(pub)
}

// VerificationMethodID returns the key's verification method, did:key:z...#z...
func VerificationMethodID(did string) string {
	return did + "#" + strings.TrimPrefix(did, didKeyPrefix)
}

// PublicKeyFromDIDKey decodes an Ed25519 did:key identifier
func PublicKeyFromDIDKey(did string) (ed25519.PublicKey, error) {
	if !strings.HasPrefix(did, didKeyPrefix+"z") {
		return nil, fmt.Errorf("%w: %q", ErrNotDIDKey, did)
	}

	raw, err := base58.Decode(strings.TrimPrefix(did, didKeyPrefix+"z"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotDIDKey, err)
	}
	if !bytes.HasPrefix(raw, ed25519Multicodec) {
		return nil, fmt.Errorf("%w: unexpected multicodec", ErrNotDIDKey)
	}

	pub := raw[len(ed25519Multicodec):]
	if len(pub) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: key is %d bytes", ErrNotDIDKey, len(pub))
	}
	return ed25519.PublicKey(pub), nil
}

// ResolveVerificationMethod resolves a did:key verification method id.
// The fragment, when present, must match the key's multibase value.
func ResolveVerificationMethod(vm string) (ed25519.PublicKey, error) {
	did, fragment, hasFragment := strings.Cut(vm, "#")

	pub, err := PublicKeyFromDIDKey(did)
	if err != nil {
		return nil, err
	}
	if hasFragment && fragment != strings.TrimPrefix(did, didKeyPrefix) {
		return nil, fmt.Errorf("%w: fragment %q does not name the key", ErrNotDIDKey, fragment)
	}
	return pub, nil
}
