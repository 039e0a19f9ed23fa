package engine

import (
	"regexp"

	"github.com/mementohq/memento-go-sdk/cache"
)

// Queries matching any of these patterns are answered fresh every time:
// they depend on per-user identity or on facts that may have just changed,
// so even a signature-gated cache hit would risk leaking a stale or
// cross-user answer.
var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:my|meu|minha)\b.*\bname\b`),
	regexp.MustCompile(`\bqual\s+e?\s*o?\s*meu\s+nome\b`),
	regexp.MustCompile(`\bonde\s+eu\s+moro\b`),
	regexp.MustCompile(`\bwhere\s+do\s+i\s+live\b`),
	regexp.MustCompile(`\b(?:mudei|me\s+mudei|agora|na\s+verdade|corrigindo)\b`),
	regexp.MustCompile(`\b(?:locale|idioma|language|timezone|fuso)\b`),
}

// isSensitive reports whether the cache must be bypassed for this query.
// Matching runs on the same normalized form the cache indexes, so accents
// and case differences do not dodge the check.
func isSensitive(query string) bool {
	norm := cache.Normalize(query)
	for _, p := range sensitivePatterns {
		if p.MatchString(norm) {
			return true
		}
	}
	return false
}
