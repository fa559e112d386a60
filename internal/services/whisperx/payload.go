package whisperx

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"reelsmith/internal/subtitles"
	"reelsmith/internal/timeline"
)

// Word represents a single word with timing from WhisperX output. Words the
// aligner could not place carry no timing.
type Word struct {
	Word  string   `json:"word"`
	Start *float64 `json:"start"`
	End   *float64 `json:"end"`
}

// Segment represents a transcribed segment from WhisperX JSON output.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Words []Word  `json:"words"`
}

type payload struct {
	Segments []Segment `json:"segments"`
}

// LoadSegments loads segments from a WhisperX JSON file.
func LoadSegments(jsonPath string) ([]Segment, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, err
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse whisperx json: %w", err)
	}
	return p.Segments, nil
}

// SentenceCaptions converts WhisperX segments to caption segments, dropping
// blank text and unusable timing.
func SentenceCaptions(segments []Segment) []subtitles.Segment {
	out := make([]subtitles.Segment, 0, len(segments))
	for _, seg := range segments {
		caption := subtitles.Segment{Start: seg.Start, End: seg.End, Text: strings.TrimSpace(seg.Text)}
		if caption.Text == "" || caption.Validate() != nil {
			continue
		}
		out = append(out, caption)
	}
	return out
}

// WordCaptions flattens aligned words across segments, one caption per word,
// then applies the word gap rule.
func WordCaptions(segments []Segment) []subtitles.Segment {
	var words []subtitles.Segment
	for _, seg := range segments {
		for _, w := range seg.Words {
			if w.Start == nil || w.End == nil {
				continue
			}
			caption := subtitles.Segment{Start: *w.Start, End: *w.End, Text: strings.TrimSpace(w.Word)}
			if caption.Text == "" || caption.Validate() != nil {
				continue
			}
			words = append(words, caption)
		}
	}
	return timeline.EnforceWordGaps(words)
}
