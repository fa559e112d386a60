package language

import (
	"errors"
	"fmt"
	"strings"

	xlang "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// ErrUnknownLanguage marks a code that is neither curated nor a valid BCP 47
// language subtag.
var ErrUnknownLanguage = errors.New("unknown language")

type entry struct {
	code2   string   // ISO 639-1 (2-letter)
	code3   string   // ISO 639-2 primary (3-letter)
	alt3    string   // ISO 639-2 alternate (e.g. "fre" vs "fra")
	display string   // Human-readable name
	words   []string // Full word forms (e.g. "english")
	export  bool     // offered as an export target
}

var languages = []entry{
	{"en", "eng", "", "English", []string{"english"}, true},
	{"th", "tha", "", "Thai", []string{"thai"}, true},
	{"ja", "jpn", "", "Japanese", []string{"japanese"}, true},
	{"ko", "kor", "", "Korean", []string{"korean"}, true},
	{"zh", "zho", "chi", "Chinese", []string{"chinese"}, true},
	{"es", "spa", "", "Spanish", []string{"spanish"}, true},
	{"fr", "fra", "fre", "French", []string{"french"}, true},
	{"de", "deu", "ger", "German", []string{"german"}, true},
	{"it", "ita", "", "Italian", []string{"italian"}, true},
	{"pt", "por", "", "Portuguese", []string{"portuguese"}, true},
	{"ru", "rus", "", "Russian", []string{"russian"}, true},
	{"id", "ind", "", "Indonesian", []string{"indonesian"}, true},
	{"vi", "vie", "", "Vietnamese", []string{"vietnamese"}, true},
	{"ar", "ara", "", "Arabic", []string{"arabic"}, false},
	{"hi", "hin", "", "Hindi", []string{"hindi"}, false},
	{"nl", "nld", "dut", "Dutch", []string{"dutch"}, false},
	{"pl", "pol", "", "Polish", []string{"polish"}, false},
	{"sv", "swe", "", "Swedish", []string{"swedish"}, false},
	{"da", "dan", "", "Danish", []string{"danish"}, false},
	{"no", "nor", "", "Norwegian", []string{"norwegian"}, false},
	{"fi", "fin", "", "Finnish", []string{"finnish"}, false},
}

// Index maps built at init time.
var (
	byCode2 map[string]*entry
	byCode3 map[string]*entry
	byWord  map[string]*entry
)

func init() {
	byCode2 = make(map[string]*entry, len(languages))
	byCode3 = make(map[string]*entry, len(languages)*2)
	byWord = make(map[string]*entry, len(languages))
	for i := range languages {
		e := &languages[i]
		byCode2[e.code2] = e
		byCode3[e.code3] = e
		if e.alt3 != "" {
			byCode3[e.alt3] = e
		}
		for _, w := range e.words {
			byWord[w] = e
		}
	}
}

func lookup(code string) *entry {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	if e, ok := byCode2[code]; ok {
		return e
	}
	if e, ok := byCode3[code]; ok {
		return e
	}
	if e, ok := byWord[code]; ok {
		return e
	}
	return nil
}

// parseBase resolves a code outside the curated table through x/text.
func parseBase(code string) (xlang.Base, bool) {
	tag, err := xlang.Parse(code)
	if err != nil {
		return xlang.Base{}, false
	}
	base, confidence := tag.Base()
	if confidence == xlang.No || base.String() == "und" {
		return xlang.Base{}, false
	}
	return base, true
}

// Supported returns the ISO 639-1 codes offered as export targets, in menu
// order.
func Supported() []string {
	out := make([]string, 0, len(languages))
	for _, e := range languages {
		if e.export {
			out = append(out, e.code2)
		}
	}
	return out
}

// Normalize resolves a code, 3-letter code, or English word to its ISO 639-1
// form. Codes unknown to both the curated table and x/text are rejected.
func Normalize(code string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(code))
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty code", ErrUnknownLanguage)
	}
	if e := lookup(trimmed); e != nil {
		return e.code2, nil
	}
	if base, ok := parseBase(trimmed); ok {
		return base.String(), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLanguage, code)
}

// ToISO2 converts any recognized language code or word to ISO 639-1 (2-letter).
// Returns empty string for unrecognized input.
// If the input is already a 2-letter code (even if unknown), it passes through.
func ToISO2(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if e := lookup(code); e != nil {
		return e.code2
	}
	if len(code) == 2 {
		return code
	}
	return ""
}

// ToISO3 converts any recognized language code to ISO 639-2 (3-letter).
// Returns "und" for unrecognized 2-letter codes, passes through 3-letter codes.
func ToISO3(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return "und"
	}
	if e := lookup(code); e != nil {
		return e.code3
	}
	if len(code) == 3 {
		return code
	}
	if base, ok := parseBase(code); ok {
		return base.ISO3()
	}
	return "und"
}

// DisplayName returns a human-readable language name for any recognized code.
// Returns "Unknown" for empty input, or the uppercased code for unrecognized input.
func DisplayName(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "Unknown"
	}
	if e := lookup(trimmed); e != nil {
		return e.display
	}
	if base, ok := parseBase(strings.ToLower(trimmed)); ok {
		if name := display.English.Languages().Name(base); name != "" {
			return name
		}
	}
	return strings.ToUpper(trimmed)
}

// NormalizeList deduplicates and normalizes a list of language codes to ISO 639-1.
func NormalizeList(languages []string) []string {
	if len(languages) == 0 {
		return nil
	}
	normalized := make([]string, 0, len(languages))
	seen := make(map[string]struct{}, len(languages))
	for _, lang := range languages {
		trimmed := strings.ToLower(strings.TrimSpace(lang))
		if trimmed == "" {
			continue
		}
		if len(trimmed) > 2 {
			if mapped := ToISO2(trimmed); mapped != "" {
				trimmed = mapped
			}
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		normalized = append(normalized, trimmed)
	}
	return normalized
}
