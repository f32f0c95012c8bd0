package model

// Proof is a W3C Data Integrity proof attached to a signed claim
type Proof struct {
	ID                 string `json:"id,omitempty"`
	Type               string `json:"type"`                 // Always DataIntegrityProof
	Cryptosuite        string `json:"cryptosuite"`          // eddsa-rdfc-2022, eddsa-jcs-2022
	Created            string `json:"created"`              // RFC 3339, UTC
	VerificationMethod string `json:"verificationMethod"`   // did:key:z...#z...
	ProofPurpose       string `json:"proofPurpose"`         // assertionMethod by default
	ProofValue         string `json:"proofValue,omitempty"` // Multibase base58btc signature
}

// DataIntegrityProofType is the proof type for all supported cryptosuites
const DataIntegrityProofType = "DataIntegrityProof"

// Cryptosuite identifiers
const (
	CryptosuiteEdDSARDFC = "eddsa-rdfc-2022" // URDNA2015 canonicalization
	CryptosuiteEdDSAJCS  = "eddsa-jcs-2022"  // RFC 8785 canonicalization
)

// Map converts the proof to a generic JSON object
func (p Proof) Map() map[string]interface{} {
	m := map[string]interface{}{
		"type":               p.Type,
		"cryptosuite":        p.Cryptosuite,
		"created":            p.Created,
		"verificationMethod": p.VerificationMethod,
		"proofPurpose":       p.ProofPurpose,
	}
	if p.ID != "" {
		m["id"] = p.ID
	}
	if p.ProofValue != "" {
		m["proofValue"] = p.ProofValue
	}
	return m
}

// ProofFromMap reads a proof object back from generic JSON
func ProofFromMap(m map[string]interface{}) Proof {
	str := func(key string) string {
		s, _ := m[key].(string)
		return s
	}
	return Proof{
		ID:                 str("id"),
		Type:               str("type"),
		Cryptosuite:        str("cryptosuite"),
		Created:            str("created"),
		VerificationMethod: str("verificationMethod"),
		ProofPurpose:       str("proofPurpose"),
		ProofValue:         str("proofValue"),
	}
}
