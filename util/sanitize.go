package util

import (
	"strings"
	"unicode"
)

// SanitizeString trims whitespace and removes control characters from s.
func SanitizeString(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// SafeUsername normalizes a username into a filesystem-safe identifier:
// trimmed, lower-cased, spaces collapsed to underscores, and every rune
// outside [a-z0-9._-] dropped. Leading and trailing separator runes are
// stripped so the result never hides as "." or "..".
//
// Returns "" if nothing safe remains; callers must treat that as invalid.
func SafeUsername(s string) string {
	s = strings.ToLower(SanitizeString(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "._-")
}
