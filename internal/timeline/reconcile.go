package timeline

import (
	"fmt"
	"math"
	"strings"

	"reelsmith/internal/services"
)

// Mode selects how a single source video is fitted to narration.
type Mode int

const (
	// ModeFitAudio makes the output exactly as long as the narration.
	ModeFitAudio Mode = iota
	// ModeKeepVideoLength keeps the source length; narration may end early.
	ModeKeepVideoLength
)

func (m Mode) String() string {
	if m == ModeKeepVideoLength {
		return "keep_video_length"
	}
	return "fit_audio"
}

// Op is the reconciliation decision.
type Op string

const (
	OpTrim         Op = "trim"
	OpLoopThenTrim Op = "loop_then_trim"
	OpNoTrim       Op = "no_trim"
)

// Plan describes how to cut the video against the audio.
type Plan struct {
	Op Op
	// CutSeconds is where the output ends; zero for OpNoTrim.
	CutSeconds float64
	// StreamCopy is true when video frames can be copied without re-encoding.
	StreamCopy bool
	// LoopVideo requests an infinite input loop on the video.
	LoopVideo bool
	// OutputSeconds is the expected output length.
	OutputSeconds float64
	// AudioShortfall is how long the video runs past the narration in
	// ModeKeepVideoLength. Without background music this is silent.
	AudioShortfall float64
}

// Reconcile decides between trimming and looping. Both durations must be
// positive and finite.
func Reconcile(videoSeconds, audioSeconds float64, mode Mode) (Plan, error) {
	if err := checkDuration("video duration", videoSeconds); err != nil {
		return Plan{}, err
	}
	if err := checkDuration("audio duration", audioSeconds); err != nil {
		return Plan{}, err
	}

	if mode == ModeKeepVideoLength {
		return Plan{
			Op:             OpNoTrim,
			StreamCopy:     true,
			OutputSeconds:  videoSeconds,
			AudioShortfall: math.Max(0, videoSeconds-audioSeconds),
		}, nil
	}
	if videoSeconds >= audioSeconds {
		return Plan{
			Op:            OpTrim,
			CutSeconds:    audioSeconds,
			StreamCopy:    true,
			OutputSeconds: audioSeconds,
		}, nil
	}
	return Plan{
		Op:            OpLoopThenTrim,
		CutSeconds:    audioSeconds,
		LoopVideo:     true,
		OutputSeconds: audioSeconds,
	}, nil
}

func checkDuration(name string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: %s is not finite", services.ErrInvalidTimelineInput, name)
	}
	if value <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %.3f", services.ErrInvalidTimelineInput, name, value)
	}
	return nil
}

// ParseMode accepts "fit_audio" (or "trim") and "keep_video_length" (or "keep").
func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "fit_audio", "fit", "trim":
		return ModeFitAudio, nil
	case "keep_video_length", "keep", "keep_video":
		return ModeKeepVideoLength, nil
	default:
		return ModeFitAudio, fmt.Errorf("unknown audio mode %q", value)
	}
}
