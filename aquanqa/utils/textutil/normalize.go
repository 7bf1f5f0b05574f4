// Text normalization shared by the matchers and the response cache.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldChain = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases, strips punctuation and collapses whitespace.
// Matching works on this form; the original casing is preserved elsewhere
// for logging.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Fold removes diacritics ("cómo" -> "como"). Cache keys fold so accent
// variants of the same question share one entry.
func Fold(s string) string {
	out, _, err := transform.String(foldChain, s)
	if err != nil {
		return s
	}
	return out
}

// Canonical is the cache-key form of a question.
func Canonical(s string) string {
	return Fold(Normalize(s))
}

// Tokenize splits a normalized string into terms.
func Tokenize(s string) []string {
	return strings.Fields(s)
}

// HasLetter reports whether s contains at least one letter.
func HasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
