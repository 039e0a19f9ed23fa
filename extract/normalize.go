package extract

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.Und)

var languageTags = map[string]string{
	"português": "pt-BR",
	"portugues": "pt-BR",
	"portuguese": "pt-BR",
	"english":   "en-US",
	"inglês":    "en-US",
	"ingles":    "en-US",
}

var currencyCodes = map[string]string{
	"brl": "BRL", "real": "BRL",
	"usd": "USD", "dólar": "USD", "dolar": "USD",
	"eur": "EUR", "euro": "EUR",
}

// NormalizePlace canonicalizes a place mention. Known aliases map to their
// canonical spelling, anything else is title-cased.
func NormalizePlace(s string) string {
	lower := strings.ToLower(strings.TrimSpace(s))
	switch lower {
	case "brasil", "brazil":
		return "Brazil"
	case "sp", "sao paulo", "são paulo":
		return "São Paulo"
	}
	return titleCaser.String(lower)
}

// NormalizeLanguage maps a spoken-language mention to a canonical BCP-47 tag.
// Unknown languages pass through untouched.
func NormalizeLanguage(s string) string {
	if tag, ok := languageTags[strings.ToLower(strings.TrimSpace(s))]; ok {
		return tag
	}
	return s
}

// NormalizeTimezone upper-cases a timezone mention and prefixes bare UTC
// offsets ("+3" becomes "UTC+3").
func NormalizeTimezone(s string) string {
	tz := strings.ToUpper(strings.TrimSpace(s))
	if strings.HasPrefix(tz, "+") || strings.HasPrefix(tz, "-") {
		tz = "UTC" + tz
	}
	return tz
}

// NormalizeCurrency maps a currency mention to its ISO code. Unknown values
// are upper-cased as a best effort.
func NormalizeCurrency(s string) string {
	if code, ok := currencyCodes[strings.ToLower(strings.TrimSpace(s))]; ok {
		return code
	}
	return strings.ToUpper(s)
}
