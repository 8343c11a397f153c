// Package match resolves catalog minifig names against externally scraped
// price records using a four-strategy cascade: exact normalized match,
// base-name bucket match, weighted full-pool similarity, and an edit-distance
// fallback for short names.
package match

import (
	"regexp"
	"strings"
)

var (
	nonAlnum     = regexp.MustCompile(`[^a-z0-9\s]`)
	multiSpace   = regexp.MustCompile(`\s+`)
	trailingDash = regexp.MustCompile(`\s*-\s*$`)
)

// Normalize lowercases, strips everything outside [a-z0-9 ] and collapses
// whitespace. Idempotent and insensitive to input casing.
func Normalize(name string) string {
	n := strings.ToLower(name)
	n = nonAlnum.ReplaceAllString(n, "")
	n = multiSpace.ReplaceAllString(n, " ")
	return strings.TrimSpace(n)
}

// BaseName extracts the character name before any variant details: the
// substring preceding the first ',' or '(', with a trailing dash trimmed,
// then normalized. BaseName(BaseName(x)) == BaseName(x).
func BaseName(name string) string {
	base := name
	if i := strings.IndexAny(name, ",("); i >= 0 {
		base = name[:i]
	}
	base = trailingDash.ReplaceAllString(strings.TrimSpace(base), "")
	return Normalize(base)
}

// tokenSet returns the whitespace-split tokens of length > 1 from the
// normalized form of name.
func tokenSet(name string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(Normalize(name)) {
		if len(w) > 1 {
			set[w] = struct{}{}
		}
	}
	return set
}
