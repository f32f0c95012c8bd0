package ldcontext

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// TrustPolicy decides whether a string context reference is a known
// remote vocabulary the signer resolves by itself
type TrustPolicy interface {
	Trusted(ref string) bool
}

// PolicyFunc adapts a plain predicate to TrustPolicy
type PolicyFunc func(ref string) bool

// Trusted calls f(ref)
func (f PolicyFunc) Trusted(ref string) bool { return f(ref) }

// SubstringPolicy trusts any reference containing one of its entries
type SubstringPolicy []string

// Trusted reports whether ref contains any configured substring
func (p SubstringPolicy) Trusted(ref string) bool {
	for _, s := range p {
		if s != "" && strings.Contains(ref, s) {
			return true
		}
	}
	return false
}

// DomainPolicy trusts http(s) URLs whose registrable domain is listed.
// Entries are registrable domains such as "w3.org" or "w3id.org".
type DomainPolicy []string

// Trusted reports whether ref is an http(s) URL under a listed domain
func (p DomainPolicy) Trusted(ref string) bool {
	if len(p) == 0 {
		return false
	}

	parsed, err := url.Parse(ref)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return false
	}

	host := strings.ToLower(strings.TrimSuffix(parsed.Hostname(), "."))
	if host == "" {
		return false
	}

	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return false
	}

	for _, d := range p {
		if strings.EqualFold(strings.TrimSpace(d), domain) {
			return true
		}
	}
	return false
}

// AnyOf trusts a reference accepted by at least one policy
func AnyOf(policies ...TrustPolicy) TrustPolicy {
	return PolicyFunc(func(ref string) bool {
		for _, p := range policies {
			if p != nil && p.Trusted(ref) {
				return true
			}
		}
		return false
	})
}

// DefaultPolicy trusts any reference mentioning w3.org
func DefaultPolicy() TrustPolicy {
	return SubstringPolicy{"w3.org"}
}

// NewPolicy builds the policy used by the CLI from configuration lists.
// With both lists empty nothing is trusted and every string is loaded locally.
func NewPolicy(substrings, domains []string) TrustPolicy {
	switch {
	case len(domains) == 0:
		return SubstringPolicy(substrings)
	case len(substrings) == 0:
		return DomainPolicy(domains)
	default:
		return AnyOf(SubstringPolicy(substrings), DomainPolicy(domains))
	}
}
