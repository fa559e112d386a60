package main

import (
	"fmt"
	"os"
	"strings"

	"reelsmith/internal/config"
	"reelsmith/internal/language"
)

// parseAssignment splits "lang=value" and normalizes the language.
func parseAssignment(flag, raw string) (string, string, error) {
	lang, value, ok := strings.Cut(raw, "=")
	if !ok || strings.TrimSpace(lang) == "" {
		return "", "", fmt.Errorf("--%s expects LANG=VALUE, got %q", flag, raw)
	}
	code, err := language.Normalize(lang)
	if err != nil {
		return "", "", fmt.Errorf("--%s: %w", flag, err)
	}
	return code, strings.TrimSpace(value), nil
}

// readScripts loads "lang=path" script files in flag order. A repeated
// language replaces the earlier script.
func readScripts(files, inline []string) ([]string, map[string]string, error) {
	var order []string
	scripts := make(map[string]string)
	add := func(lang, text string) {
		if _, seen := scripts[lang]; !seen {
			order = append(order, lang)
		}
		scripts[lang] = text
	}
	for _, raw := range files {
		lang, path, err := parseAssignment("script", raw)
		if err != nil {
			return nil, nil, err
		}
		expanded, err := config.ExpandPath(path)
		if err != nil {
			return nil, nil, err
		}
		data, err := os.ReadFile(expanded)
		if err != nil {
			return nil, nil, fmt.Errorf("read script for %s: %w", lang, err)
		}
		add(lang, string(data))
	}
	for _, raw := range inline {
		lang, text, err := parseAssignment("text", raw)
		if err != nil {
			return nil, nil, err
		}
		add(lang, text)
	}
	return order, scripts, nil
}

// parseTitles maps "lang=title" flags by normalized language.
func parseTitles(values []string) (map[string]string, error) {
	titles := make(map[string]string, len(values))
	for _, raw := range values {
		lang, title, err := parseAssignment("title", raw)
		if err != nil {
			return nil, err
		}
		titles[lang] = title
	}
	return titles, nil
}
