package subtitles

import (
	"fmt"
	"math"
	"strings"
)

// Segment is one timed caption. Start is strictly before End.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Duration returns End-Start.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// Validate reports whether the segment has usable timing.
func (s Segment) Validate() error {
	if math.IsNaN(s.Start) || math.IsNaN(s.End) || math.IsInf(s.Start, 0) || math.IsInf(s.End, 0) {
		return fmt.Errorf("segment timing not finite (%v -> %v)", s.Start, s.End)
	}
	if s.Start < 0 {
		return fmt.Errorf("segment start %.3f is negative", s.Start)
	}
	if s.Start >= s.End {
		return fmt.Errorf("segment start %.3f not before end %.3f", s.Start, s.End)
	}
	return nil
}

// Clean trims segment text and drops segments that are empty after trimming.
// The input slice is not modified.
func Clean(segments []Segment) []Segment {
	out := make([]Segment, 0, len(segments))
	for _, seg := range segments {
		seg.Text = strings.TrimSpace(seg.Text)
		if seg.Text == "" {
			continue
		}
		out = append(out, seg)
	}
	return out
}

// PlainText joins segment text with single spaces.
func PlainText(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// Bounds returns the first start and last end across segments.
func Bounds(segments []Segment) (float64, float64) {
	if len(segments) == 0 {
		return 0, 0
	}
	first := math.Inf(1)
	var last float64
	for _, seg := range segments {
		first = math.Min(first, seg.Start)
		last = math.Max(last, seg.End)
	}
	return first, last
}

// Granularity selects whether captions follow sentences or single words.
type Granularity string

const (
	GranularitySentence Granularity = "sentence"
	GranularityWord     Granularity = "word"
)

// ParseGranularity accepts "sentence" or "word"; empty selects sentence.
func ParseGranularity(value string) (Granularity, error) {
	switch Granularity(strings.ToLower(strings.TrimSpace(value))) {
	case "", GranularitySentence:
		return GranularitySentence, nil
	case GranularityWord:
		return GranularityWord, nil
	default:
		return "", fmt.Errorf("unknown caption granularity %q", value)
	}
}
