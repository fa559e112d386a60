package captions

import "strings"

var filterPathReplacer = strings.NewReplacer(
	`\`, "/",
	":", `\:`,
	"'", `'\''`,
	"[", `\[`,
	"]", `\]`,
)

// EscapeFilterPath escapes a file path for embedding inside a single-quoted
// ffmpeg filter argument. Backslashes become forward slashes before any
// escape characters are introduced.
func EscapeFilterPath(path string) string {
	return filterPathReplacer.Replace(path)
}

// EscapeFilterValue escapes a free-form filter option value (such as a
// force_style string) for use inside single quotes.
func EscapeFilterValue(value string) string {
	return strings.ReplaceAll(value, "'", `'\''`)
}
