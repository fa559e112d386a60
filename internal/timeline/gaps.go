package timeline

import (
	"math"

	"reelsmith/internal/subtitles"
)

const (
	// WordGapSeconds separates consecutive word captions.
	WordGapSeconds = 0.05
	// MinWordSeconds is the shortest a clamped word caption may be shown.
	MinWordSeconds = 0.1
)

// EnforceWordGaps returns a copy of words where each word ends at least
// WordGapSeconds before the next one starts, but never sooner than
// MinWordSeconds after its own start. The last word is unchanged.
func EnforceWordGaps(words []subtitles.Segment) []subtitles.Segment {
	out := make([]subtitles.Segment, len(words))
	copy(out, words)
	for i := 0; i < len(out)-1; i++ {
		limit := out[i+1].Start - WordGapSeconds
		if out[i].End > limit {
			out[i].End = math.Max(out[i].Start+MinWordSeconds, limit)
		}
	}
	return out
}
