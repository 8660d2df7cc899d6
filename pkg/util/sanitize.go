package util

import (
	"regexp"
	"strings"
	"unicode"
)

var extensionRegex = regexp.MustCompile(`^\.[a-z0-9]{1,8}$`)

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

// SanitizeExtension normalizes a file extension taken from an untrusted
// filename. It lowercases the extension and rejects anything that is not a
// short dot-prefixed alphanumeric suffix, so path separators and traversal
// sequences can never survive. Returns "" when the extension is unusable.
func SanitizeExtension(ext string) string {
	ext = strings.ToLower(SanitizeString(ext))
	if !extensionRegex.MatchString(ext) {
		return ""
	}
	return ext
}
