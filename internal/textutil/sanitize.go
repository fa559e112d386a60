package textutil

import (
	"strings"
	"unicode"
)

// SanitizeFileName makes name safe to create on Linux, macOS, and Windows
// shares. Separators, colons, and asterisks become dashes; other reserved
// punctuation and control characters are dropped; each whitespace rune
// becomes an underscore. Leading dots are trimmed so results are never
// hidden files.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '*':
			b.WriteByte('-')
		case strings.ContainsRune(`?"<>|`, r), unicode.IsControl(r):
		case unicode.IsSpace(r):
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimLeft(b.String(), ".")
}

// SanitizeToken reduces value to a lowercase token for scratch directory
// names. Letters and digits of any script survive; dashes and underscores are
// kept; everything else becomes an underscore. Empty results are "unknown".
func SanitizeToken(value string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(value) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "_-")
	if out == "" {
		return "unknown"
	}
	return out
}
