// Package slug derives URL and filesystem safe identifiers from free text.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fallback is returned when nothing usable survives sanitizing.
const Fallback = "page"

// Sanitize converts s into a slug made only of [a-z0-9-].
// Accents are stripped first ("é" becomes "e"), then any run of other
// characters becomes a single hyphen. Leading and trailing hyphens are
// removed. An empty result yields Fallback.
func Sanitize(s string) string {
	s = strings.ToLower(strings.TrimSpace(fold(s)))

	var b strings.Builder
	b.Grow(len(s))
	pendingHyphen := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		// '-' and everything outside the class collapse into one separator
		pendingHyphen = true
	}

	if b.Len() == 0 {
		return Fallback
	}
	return b.String()
}

// fold removes combining marks after canonical decomposition.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
