package dub

import (
	"fmt"
	"strings"

	"reelsmith/internal/subtitles"
)

// Mode selects the dubbing flow.
type Mode int

const (
	// ModeSubtitleOnly keeps the original audio and burns translated captions.
	ModeSubtitleOnly Mode = iota
	// ModeFullDub replaces the audio with synthesized speech.
	ModeFullDub
)

func (m Mode) String() string {
	if m == ModeFullDub {
		return "full_dub"
	}
	return "subtitle_only"
}

// ParseMode accepts "subtitle", "subtitle_only", "dub", or "full_dub".
func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "subtitle", "subtitles", "subtitle_only", "":
		return ModeSubtitleOnly, nil
	case "dub", "dubbing", "full_dub":
		return ModeFullDub, nil
	default:
		return ModeSubtitleOnly, fmt.Errorf("unknown dub mode %q", value)
	}
}

// StepKind tags a pipeline step.
type StepKind int

const (
	StepExtractAudio StepKind = iota
	StepTranscribe
	StepTranslateSegments
	StepTranslateFullText
	StepResynthesize
	StepConditionalLetterbox
	StepReconcileAndMerge
	StepRetranscribeSynthesized
	StepBurnCaptions
	StepFinalize
)

var stepNames = [...]string{
	StepExtractAudio:            "extract_audio",
	StepTranscribe:              "transcribe",
	StepTranslateSegments:       "translate_segments",
	StepTranslateFullText:       "translate_full_text",
	StepResynthesize:            "resynthesize",
	StepConditionalLetterbox:    "conditional_letterbox",
	StepReconcileAndMerge:       "reconcile_and_merge",
	StepRetranscribeSynthesized: "retranscribe_synthesized",
	StepBurnCaptions:            "burn_captions",
	StepFinalize:                "finalize",
}

func (k StepKind) String() string {
	if int(k) >= 0 && int(k) < len(stepNames) {
		return stepNames[k]
	}
	return fmt.Sprintf("step(%d)", int(k))
}

// Step is one unit of work. Granularity is only read by the transcription
// steps.
type Step struct {
	Kind        StepKind
	Granularity subtitles.Granularity
}

func (s Step) String() string {
	if s.Granularity != "" {
		return s.Kind.String() + "(" + string(s.Granularity) + ")"
	}
	return s.Kind.String()
}

// Steps returns the step list for job. skipCaptions drops caption burning
// and whatever only feeds it: the retranscription for FullDub, and for
// SubtitleOnly the extraction, transcription and translation too.
func Steps(job Job, skipCaptions bool) []Step {
	granularity := job.Granularity
	if granularity == "" {
		granularity = subtitles.GranularitySentence
	}
	if job.Mode == ModeFullDub {
		steps := []Step{
			{Kind: StepExtractAudio},
			{Kind: StepTranscribe, Granularity: subtitles.GranularitySentence},
			{Kind: StepTranslateFullText},
			{Kind: StepResynthesize},
			{Kind: StepConditionalLetterbox},
			{Kind: StepReconcileAndMerge},
		}
		if job.Captions && !skipCaptions {
			steps = append(steps,
				Step{Kind: StepRetranscribeSynthesized, Granularity: granularity},
				Step{Kind: StepBurnCaptions},
			)
		}
		return append(steps, Step{Kind: StepFinalize})
	}

	if skipCaptions {
		return []Step{{Kind: StepConditionalLetterbox}, {Kind: StepFinalize}}
	}
	return []Step{
		{Kind: StepExtractAudio},
		{Kind: StepTranscribe, Granularity: granularity},
		{Kind: StepTranslateSegments},
		{Kind: StepConditionalLetterbox},
		{Kind: StepBurnCaptions},
		{Kind: StepFinalize},
	}
}
