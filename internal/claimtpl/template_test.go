package claimtpl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkedtrust/claimsign/internal/jsonld"
	"github.com/linkedtrust/claimsign/internal/model"
)

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain text", "plain text"},
		{"Café Müller", "Cafe Muller"},
		{"naïve façade", "naive facade"},
		{"ﬁne", "fine"},
		{"emoji 👍 gone", "emoji  gone"},
		{"日本語", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeText(tt.in))
		})
	}
}

func TestNew(t *testing.T) {
	issued := time.Date(2026, 5, 4, 10, 30, 15, 999, time.FixedZone("X", 3600))

	doc, err := New(Params{
		LinkedClaimContext: "./contexts/linked-claim.jsonld",
		Issuer:             "did:key:z6Mkexample",
		IssuanceDate:       issued,
		Subject:            "https://example.org/people/ana",
		Claim:              "rated",
		Statement:          "Très bien",
	})
	require.NoError(t, err)

	assert.Equal(t, model.ClaimDocument{
		"@context":     []interface{}{jsonld.CredentialsV1URL, "./contexts/linked-claim.jsonld"},
		"type":         []interface{}{"VerifiableCredential", "LinkedClaim"},
		"issuer":       "did:key:z6Mkexample",
		"issuanceDate": "2026-05-04T09:30:15Z",
		"credentialSubject": map[string]interface{}{
			"id":        "https://example.org/people/ana",
			"claim":     "rated",
			"statement": "Tres bien",
		},
	}, doc)
}

func TestNew_Minimal(t *testing.T) {
	doc, err := New(Params{})
	require.NoError(t, err)

	assert.Equal(t, []interface{}{jsonld.CredentialsV1URL}, doc["@context"])
	assert.NotContains(t, doc, "issuer")
	assert.Equal(t, map[string]interface{}{}, doc["credentialSubject"])

	_, err = time.Parse(time.RFC3339, doc["issuanceDate"].(string))
	assert.NoError(t, err)
}

func ptr(v float64) *float64 { return &v }

func TestNew_RatingFields(t *testing.T) {
	doc, err := New(Params{
		Subject:       "example.org/projects/bridge",
		Claim:         "rated",
		Aspect:        "quality:durability",
		SourceURI:     "news.example.com/article/7",
		HowKnown:      "I read it in an article",
		EffectiveDate: time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC),
		Stars:         ptr(4.3),
		Confidence:    ptr(1.7),
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{
		"id":            "https://example.org/projects/bridge",
		"claim":         "rated",
		"aspect":        "quality:durability",
		"sourceURI":     "https://news.example.com/article/7",
		"howKnown":      "WEB_DOCUMENT",
		"effectiveDate": "2025-03-01T08:00:00Z",
		"stars":         4.5,
		"score":         0.8,
		"confidence":    1.0,
	}, doc["credentialSubject"])
}

func TestNew_StarsClamped(t *testing.T) {
	doc, err := New(Params{Stars: ptr(-3), Confidence: ptr(-0.2)})
	require.NoError(t, err)

	subject := doc["credentialSubject"].(map[string]interface{})
	assert.Equal(t, 0.0, subject["stars"])
	assert.Equal(t, -1.0, subject["score"])
	assert.Equal(t, 0.0, subject["confidence"])
}

func TestNew_InvalidURI(t *testing.T) {
	tests := []struct {
		name   string
		params Params
	}{
		{"subject", Params{Subject: "not a uri"}},
		{"object", Params{Object: "nothing here"}},
		{"source", Params{SourceURI: "bridge.notarealtld"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.params)
			assert.ErrorIs(t, err, ErrInvalidURI)
		})
	}
}
