package claimtpl

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// SanitizeText folds s to plain ASCII: accented letters lose their marks,
// anything without an ASCII decomposition is dropped
func SanitizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFKD.String(s) {
		if r <= unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	return b.String()
}
