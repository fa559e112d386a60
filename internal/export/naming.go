package export

import (
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"

	"reelsmith/internal/language"
	"reelsmith/internal/textutil"
)

const (
	suffixMin = 10000
	suffixMax = 99999
	// maxNameAttempts bounds how often a colliding suffix is redrawn.
	maxNameAttempts = 8
)

// DefaultTitle is used when a task has no title.
func DefaultTitle(lang string) string {
	return "Video_" + language.DisplayName(lang)
}

// OutputBase returns the file stem {SafeTitle}_{LanguageName}_{suffix}.
func OutputBase(title, lang string, suffix int) string {
	stem := textutil.SafeTitle(title)
	if stem == "" {
		stem = "Video"
	}
	name := textutil.SafeTitle(language.DisplayName(lang))
	return fmt.Sprintf("%s_%s_%d", stem, name, suffix)
}

func randomSuffix() int {
	return suffixMin + rand.IntN(suffixMax-suffixMin+1)
}

// reserveBase picks a stem whose .mp4 does not exist yet in dir.
func reserveBase(dir, title, lang string, suffix func() int) (string, error) {
	for range maxNameAttempts {
		base := OutputBase(title, lang, suffix())
		_, err := os.Stat(filepath.Join(dir, base+".mp4"))
		if errors.Is(err, fs.ErrNotExist) {
			return base, nil
		}
		if err != nil {
			return "", fmt.Errorf("check output name: %w", err)
		}
	}
	return "", fmt.Errorf("no free output name for %q after %d attempts", title, maxNameAttempts)
}
