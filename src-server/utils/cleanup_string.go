package utils

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// strips spaces, collapses inner whitespace, NFC-normalizes
func CleanupString(s string) string {
	s = norm.NFC.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// drops the emoji variation selector so "✔️" and "✔" compare equal
func CleanupEmoji(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "\uFE0F", "")
}
