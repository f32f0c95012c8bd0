// Package claimtpl builds skeleton linked claims ready for signing.
package claimtpl

import (
	"time"

	"github.com/linkedtrust/claimsign/internal/jsonld"
	"github.com/linkedtrust/claimsign/internal/model"
)

// Params fill in a claim skeleton. Empty fields are left out.
type Params struct {
	// LinkedClaimContext is the context reference added after credentials v1,
	// usually a local file resolved before signing
	LinkedClaimContext string
	Issuer             string
	IssuanceDate       time.Time
	Subject            string
	Claim              string
	Object             string
	Statement          string

	SourceURI     string
	HowKnown      string
	Aspect        string
	EffectiveDate time.Time
	// Stars is a 0..5 rating; it also sets the -1..1 score
	Stars      *float64
	Confidence *float64
}

// New returns a claim document built from p. Subject, object and source are
// normalized to URIs; stars and confidence are clamped to their ranges.
func New(p Params) (model.ClaimDocument, error) {
	contexts := []interface{}{jsonld.CredentialsV1URL}
	if p.LinkedClaimContext != "" {
		contexts = append(contexts, p.LinkedClaimContext)
	}

	issued := p.IssuanceDate
	if issued.IsZero() {
		issued = time.Now()
	}

	doc := model.ClaimDocument{
		model.ContextKey: contexts,
		"type":           []interface{}{"VerifiableCredential", "LinkedClaim"},
		"issuanceDate":   formatDate(issued),
	}
	if p.Issuer != "" {
		doc["issuer"] = p.Issuer
	}

	subject := map[string]interface{}{}
	for _, f := range []struct{ key, name, value string }{
		{"id", "subject", p.Subject},
		{"object", "object", p.Object},
		{"sourceURI", "source", p.SourceURI},
	} {
		if f.value == "" {
			continue
		}
		uri, err := normalizeField(f.name, f.value)
		if err != nil {
			return nil, err
		}
		subject[f.key] = uri
	}

	for key, value := range map[string]string{
		"claim":     p.Claim,
		"statement": p.Statement,
		"aspect":    p.Aspect,
	} {
		if value != "" {
			subject[key] = SanitizeText(value)
		}
	}

	if p.HowKnown != "" {
		subject["howKnown"] = string(MapHowKnown(p.HowKnown))
	}
	if !p.EffectiveDate.IsZero() {
		subject["effectiveDate"] = formatDate(p.EffectiveDate)
	}
	if p.Stars != nil {
		stars := RoundStars(Clamp(*p.Stars, MinStars, MaxStars))
		score, err := StarsToScore(stars)
		if err != nil {
			return nil, err
		}
		subject["stars"] = stars
		subject["score"] = score
	}
	if p.Confidence != nil {
		subject["confidence"] = Clamp(*p.Confidence, MinConfidence, MaxConfidence)
	}
	doc["credentialSubject"] = subject

	return doc, nil
}

func formatDate(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}
