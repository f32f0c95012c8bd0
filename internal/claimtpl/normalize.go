package claimtpl

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// ErrInvalidURI is returned for a subject, object or source that is not a URI
// and does not look like a bare domain either
var ErrInvalidURI = errors.New("invalid URI")

var (
	schemePattern     = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:\S+$`)
	domainLikePattern = regexp.MustCompile(`^([a-zA-Z0-9-]+\.)*[a-zA-Z0-9-]+\.[a-zA-Z]{2,}(/.*)?$`)
)

// IsValidURI reports whether s has a scheme and, for http and https, a host
func IsValidURI(s string) bool {
	if !schemePattern.MatchString(s) {
		return false
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		u, err := url.Parse(s)
		return err == nil && u.Host != ""
	}
	return true
}

// NormalizeURI returns s unchanged when it is already a URI. A bare domain
// under a listed public suffix, optionally followed by a path, gets https://
// prepended.
func NormalizeURI(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if IsValidURI(s) {
		return s, true
	}
	if !domainLikePattern.MatchString(s) {
		return "", false
	}

	host := s
	if i := strings.IndexByte(host, '/'); i >= 0 {
		host = host[:i]
	}
	// unlisted suffixes come back as the bare last label
	if suffix, icann := publicsuffix.PublicSuffix(strings.ToLower(host)); !icann && !strings.Contains(suffix, ".") {
		return "", false
	}

	withScheme := "https://" + s
	if !IsValidURI(withScheme) {
		return "", false
	}
	return withScheme, true
}

func normalizeField(field, value string) (string, error) {
	uri, ok := NormalizeURI(value)
	if !ok {
		return "", fmt.Errorf("%s %q: %w", field, value, ErrInvalidURI)
	}
	return uri, nil
}

// Rating bounds
const (
	MinStars      = 0.0
	MaxStars      = 5.0
	MinConfidence = 0.0
	MaxConfidence = 1.0
)

// Clamp bounds v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// RoundStars rounds to the nearest half star
func RoundStars(stars float64) float64 {
	return math.Round(stars*2) / 2
}

// StarsToScore maps a 0..5 star rating onto -1..1, 2.5 stars being neutral
func StarsToScore(stars float64) (float64, error) {
	if math.IsNaN(stars) || stars < MinStars || stars > MaxStars {
		return 0, fmt.Errorf("stars must be between %g and %g, got %g", MinStars, MaxStars, stars)
	}
	return (stars - 2.5) / 2.5, nil
}

// HowKnown says how the issuer came to know what the claim states
type HowKnown string

const (
	FirstHand        HowKnown = "FIRST_HAND"
	SecondHand       HowKnown = "SECOND_HAND"
	WebDocument      HowKnown = "WEB_DOCUMENT"
	VerifiedLogin    HowKnown = "VERIFIED_LOGIN"
	Blockchain       HowKnown = "BLOCKCHAIN"
	SignedDocument   HowKnown = "SIGNED_DOCUMENT"
	PhysicalDocument HowKnown = "PHYSICAL_DOCUMENT"
	Integration      HowKnown = "INTEGRATION"
	Research         HowKnown = "RESEARCH"
	Opinion          HowKnown = "OPINION"
	Other            HowKnown = "OTHER"
)

var howKnownValues = []HowKnown{
	FirstHand, SecondHand, WebDocument, VerifiedLogin, Blockchain,
	SignedDocument, PhysicalDocument, Integration, Research, Opinion, Other,
}

// checked in order, first match wins
var howKnownPhrases = []struct {
	phrase string
	value  HowKnown
}{
	{"witnessed", FirstHand},
	{"saw it", FirstHand},
	{"direct", FirstHand},
	{"online", WebDocument},
	{"website", WebDocument},
	{"article", WebDocument},
	{"told", SecondHand},
	{"heard", SecondHand},
	{"verified", VerifiedLogin},
	{"logged in", VerifiedLogin},
}

// MapHowKnown accepts either a HowKnown value such as "web_document" or a
// plain phrase such as "I read it online". Unrecognised input maps to Other.
func MapHowKnown(s string) HowKnown {
	s = strings.TrimSpace(s)
	for _, v := range howKnownValues {
		if strings.EqualFold(s, string(v)) {
			return v
		}
	}

	lower := strings.ToLower(s)
	for _, p := range howKnownPhrases {
		if strings.Contains(lower, p.phrase) {
			return p.value
		}
	}
	return Other
}
