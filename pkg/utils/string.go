package utils

import "unicode/utf8"

// shortHashLen is the abbreviated commit hash length shown to users.
const shortHashLen = 8

// Truncate shortens s to at most maxLen runes and marks the cut with "...".
// It never splits a multi-byte character.
func Truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}

	runes := []rune(s)
	return string(runes[:maxLen]) + "..."
}

// ShortHash abbreviates a commit hash for display.
func ShortHash(hash string) string {
	if len(hash) <= shortHashLen {
		return hash
	}
	return hash[:shortHashLen]
}
