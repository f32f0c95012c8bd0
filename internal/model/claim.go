package model

// ContextKey is the JSON-LD keyword holding a claim's vocabulary references
const ContextKey = "@context"

// ProofKey is where a signer attaches the proof to a signed claim
const ProofKey = "proof"

// ClaimDocument is a verifiable claim as parsed from JSON.
// It is owned by one invocation and passed by reference, so the
// context resolver and the signer see the same map.
type ClaimDocument map[string]interface{}

// RawContext returns the raw @context value and whether it was present
func (d ClaimDocument) RawContext() (interface{}, bool) {
	v, ok := d[ContextKey]
	return v, ok
}

// Clone returns a deep copy of the document.
// Only JSON-compatible values (maps, slices, scalars) are copied deeply.
func (d ClaimDocument) Clone() ClaimDocument {
	if d == nil {
		return nil
	}
	return ClaimDocument(cloneMap(d))
}

// SignedClaim is the signer's output: the claim document plus a proof.
// The CLI treats it as opaque JSON.
type SignedClaim map[string]interface{}

// Proof returns the attached proof object, if any
func (s SignedClaim) Proof() (map[string]interface{}, bool) {
	p, ok := s[ProofKey].(map[string]interface{})
	return p, ok
}

// Unsigned returns a copy of the claim with the proof removed
func (s SignedClaim) Unsigned() ClaimDocument {
	doc := ClaimDocument(cloneMap(s))
	delete(doc, ProofKey)
	return doc
}

func cloneMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return cloneMap(t)
	case ClaimDocument:
		return cloneMap(t)
	case InlineContext:
		return cloneMap(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
