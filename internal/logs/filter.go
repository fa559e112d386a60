package logs

import (
	"encoding/json"
	"strings"

	"reelsmith/internal/logging"
)

// Filter selects log lines by the structured fields export jobs attach.
// Empty fields match everything.
type Filter struct {
	// JobID matches by prefix so short IDs from `jobs list` work.
	JobID    string
	BatchID  string
	Language string
	// MinLevel drops lines below debug, info, warn, or error.
	MinLevel string
}

var levelRank = map[string]int{"debug": 0, "info": 1, "warn": 2, "error": 3}

// Empty reports whether the filter passes every line.
func (f Filter) Empty() bool {
	return f.JobID == "" && f.BatchID == "" && f.Language == "" && f.MinLevel == ""
}

// Match reports whether line satisfies the filter. Lines that are not JSON
// objects only pass an empty filter.
func (f Filter) Match(line string) bool {
	if f.Empty() {
		return true
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		return false
	}
	field := func(key string) string {
		value, _ := record[key].(string)
		return value
	}
	if f.JobID != "" && !strings.HasPrefix(field(logging.FieldJobID), f.JobID) {
		return false
	}
	if f.BatchID != "" && !strings.HasPrefix(field("batch_id"), f.BatchID) {
		return false
	}
	if f.Language != "" && !strings.EqualFold(field(logging.FieldLanguage), f.Language) {
		return false
	}
	if f.MinLevel != "" {
		want, ok := levelRank[strings.ToLower(f.MinLevel)]
		got, known := levelRank[strings.ToLower(field("level"))]
		if ok && (!known || got < want) {
			return false
		}
	}
	return true
}

// ValidLevel reports whether level is accepted by MinLevel.
func ValidLevel(level string) bool {
	_, ok := levelRank[strings.ToLower(strings.TrimSpace(level))]
	return ok
}

func (f Filter) apply(lines []string) []string {
	if f.Empty() {
		return lines
	}
	kept := lines[:0]
	for _, line := range lines {
		if f.Match(line) {
			kept = append(kept, line)
		}
	}
	return kept
}
