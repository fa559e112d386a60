package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// SafeTitle reduces a display title to a file-name stem. Letters, digits,
// combining marks, and spaces survive; trailing space is dropped and the
// remaining spaces become underscores. Input is NFC-normalized first so
// precomposed accents count as letters.
func SafeTitle(title string) string {
	title = norm.NFC.String(title)
	var b strings.Builder
	for _, r := range title {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsMark(r), r == ' ':
			b.WriteRune(r)
		}
	}
	out := strings.TrimRight(b.String(), " ")
	return strings.ReplaceAll(out, " ", "_")
}
