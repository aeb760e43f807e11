package models

import (
	"regexp"
	"strings"
)

var (
	stripPattern      = regexp.MustCompile(`[^a-z0-9\s]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Fingerprint derives the deterministic cache lookup key for a (title, artist) pair.
//
// Each half is lowercased, trimmed, stripped of characters outside [a-z0-9\s],
// and internal whitespace runs collapse to a single hyphen; the halves are
// joined with an underscore. Pairs that normalize identically intentionally
// collide to the same cache entry.
//
// Diacritics are NOT transliterated: "Déjà Vu" normalizes to "dj-vu", not
// "deja-vu", so accent variants of the same title do not collide. Known
// limitation, preserved for cache-key stability.
func Fingerprint(title, artist string) string {
	return normalizeKey(title) + "_" + normalizeKey(artist)
}

func normalizeKey(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = stripPattern.ReplaceAllString(s, "")
	return whitespacePattern.ReplaceAllString(s, "-")
}
