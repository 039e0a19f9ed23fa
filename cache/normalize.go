package cache

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases, trims and strips diacritics. It is the only
// transform applied before embedding, so accent and casing variants of the
// same question ("Itália" / "italia") land in the same neighborhood.
func Normalize(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return ""
	}
	out, _, err := transform.String(stripDiacritics, s)
	if err != nil {
		return s
	}
	return out
}
