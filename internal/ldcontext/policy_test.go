package ldcontext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubstringPolicy(t *testing.T) {
	p := DefaultPolicy()

	assert.True(t, p.Trusted("https://www.w3.org/2018/credentials/v1"))
	assert.True(t, p.Trusted("https://w3.org/ns/did/v1"))
	assert.False(t, p.Trusted("https://w3id.org/security/v2"))
	assert.False(t, p.Trusted("./contexts/linked-claim.jsonld"))

	// Plain substring matching, as the reference behaviour does
	assert.True(t, p.Trusted("./w3.org-mirror/ctx.json"))

	assert.False(t, SubstringPolicy{""}.Trusted("anything"))
}

func TestDomainPolicy(t *testing.T) {
	p := DomainPolicy{"w3id.org", "W3.org"}

	tests := []struct {
		ref     string
		trusted bool
	}{
		{"https://w3id.org/security/data-integrity/v2", true},
		{"https://www.w3.org/2018/credentials/v1", true},
		{"http://w3id.org/security/v2", true},
		{"https://w3id.org.evil.test/ctx", false},
		{"https://notw3id.org/ctx", false},
		{"ftp://w3id.org/ctx", false},
		{"./w3id.org/ctx.json", false},
		{"w3id.org", false},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			assert.Equal(t, tt.trusted, p.Trusted(tt.ref))
		})
	}

	assert.False(t, DomainPolicy(nil).Trusted("https://w3id.org/x"))
}

func TestNewPolicy(t *testing.T) {
	both := NewPolicy([]string{"w3.org"}, []string{"w3id.org"})
	assert.True(t, both.Trusted("https://www.w3.org/2018/credentials/v1"))
	assert.True(t, both.Trusted("https://w3id.org/security/v2"))
	assert.False(t, both.Trusted("https://example.com/ctx"))

	onlyDomains := NewPolicy(nil, []string{"w3id.org"})
	assert.False(t, onlyDomains.Trusted("https://www.w3.org/2018/credentials/v1"))

	none := NewPolicy(nil, nil)
	assert.False(t, none.Trusted("https://www.w3.org/2018/credentials/v1"))
}
