package timeline

import (
	"math"
	"testing"

	"reelsmith/internal/subtitles"
)

func TestEnforceWordGapsClamps(t *testing.T) {
	words := []subtitles.Segment{{Start: 0, End: 1.0, Text: "one"}, {Start: 0.95, End: 1.5, Text: "two"}}
	got := EnforceWordGaps(words)
	if math.Abs(got[0].End-0.9) > 1e-9 {
		t.Fatalf("first end = %v, want 0.9", got[0].End)
	}
	if got[1] != words[1] {
		t.Fatalf("last word changed: %+v", got[1])
	}
	if words[0].End != 1.0 {
		t.Fatal("input slice was modified")
	}
}

func TestEnforceWordGapsTightPair(t *testing.T) {
	// 0.5 ends inside the 50ms guard before 0.52, so it is pulled to 0.47.
	got := EnforceWordGaps([]subtitles.Segment{{Start: 0, End: 0.5}, {Start: 0.52, End: 1.0}})
	if math.Abs(got[0].End-0.47) > 1e-9 {
		t.Fatalf("first end = %v, want 0.47", got[0].End)
	}
	if got[0].End > got[1].Start {
		t.Fatal("captions overlap")
	}
}

func TestEnforceWordGapsLeavesSpacedWords(t *testing.T) {
	words := []subtitles.Segment{{Start: 0, End: 0.4}, {Start: 0.5, End: 0.9}, {Start: 1.2, End: 1.6}}
	got := EnforceWordGaps(words)
	for i := range words {
		if got[i] != words[i] {
			t.Fatalf("word %d changed: %+v -> %+v", i, words[i], got[i])
		}
	}
}

func TestEnforceWordGapsMinimumDuration(t *testing.T) {
	// Next word starts only 0.12s later, so the floor of 0.1s wins.
	got := EnforceWordGaps([]subtitles.Segment{{Start: 1.0, End: 1.5}, {Start: 1.12, End: 1.4}})
	if math.Abs(got[0].End-1.1) > 1e-9 {
		t.Fatalf("first end = %v, want 1.1", got[0].End)
	}
}

func TestEnforceWordGapsProperties(t *testing.T) {
	// Words at least 0.15s apart never overlap and always last 0.1s.
	var words []subtitles.Segment
	start := 0.0
	for i := 0; i < 200; i++ {
		step := 0.15 + float64(i%7)*0.07
		words = append(words, subtitles.Segment{Start: start, End: start + 0.6 + float64(i%3)*0.2})
		start += step
	}
	got := EnforceWordGaps(words)
	for i := 0; i < len(got)-1; i++ {
		if got[i].End > got[i+1].Start+1e-9 {
			t.Fatalf("word %d overlaps next: %+v %+v", i, got[i], got[i+1])
		}
		if got[i].End-got[i].Start < MinWordSeconds-1e-9 {
			t.Fatalf("word %d shorter than minimum: %+v", i, got[i])
		}
	}
	if EnforceWordGaps(nil) == nil {
		t.Fatal("expected empty non-nil slice")
	}
}
