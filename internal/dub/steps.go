package dub

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"reelsmith/internal/captions"
	"reelsmith/internal/compose"
	"reelsmith/internal/fileutil"
	"reelsmith/internal/logging"
	"reelsmith/internal/services"
	"reelsmith/internal/services/gemini"
	"reelsmith/internal/subtitles"
	"reelsmith/internal/timeline"
)

// exec interprets a single step against pc.
func (p *Pipeline) exec(ctx context.Context, pc *PipelineContext, step Step) error {
	switch step.Kind {
	case StepExtractAudio:
		audio := pc.Artifact("source_audio.wav")
		if err := p.compositor.ExtractAudio(ctx, pc.Job.Source, audio); err != nil {
			return err
		}
		pc.Audio = audio
		return nil

	case StepTranscribe:
		segments, err := p.transcriber.Transcribe(ctx, pc.Audio, step.Granularity, pc.Job.SourceLanguage)
		if err != nil {
			return err
		}
		if len(segments) == 0 {
			return services.Wrap(services.ErrExternalService, "dub", "transcribe", "no speech detected in source", nil)
		}
		pc.Segments = segments
		return nil

	case StepTranslateSegments:
		p.translateSegments(ctx, pc)
		return nil

	case StepTranslateFullText:
		text, err := p.translator.Translate(ctx, subtitles.PlainText(pc.Segments), pc.Job.TargetLanguage)
		if err != nil {
			return err
		}
		pc.Transcript = text
		return nil

	case StepResynthesize:
		pcm, err := p.synthesizer.Synthesize(ctx, pc.Transcript, pc.Job.Voice, pc.Job.Speed, pc.Job.StyleHint)
		if err != nil {
			return err
		}
		speech := pc.Artifact("speech.wav")
		if err := gemini.WriteWAV(speech, pcm); err != nil {
			return fmt.Errorf("write speech: %w", err)
		}
		pc.Speech = speech
		return nil

	case StepConditionalLetterbox:
		video, geom, err := p.compositor.LetterboxIfLandscape(ctx, pc.Video, pc.Artifact("letterboxed.mp4"))
		if err != nil {
			return err
		}
		pc.Video = video
		pc.Letterbox = geom
		return nil

	case StepReconcileAndMerge:
		merged := pc.Artifact("dubbed.mp4")
		plan, err := p.compositor.Merge(ctx, compose.MergeRequest{
			Video:       pc.Video,
			Audio:       pc.Speech,
			Output:      merged,
			Mode:        timeline.ModeFitAudio,
			MusicPath:   pc.Job.MusicPath,
			MusicVolume: p.cfg.Render.MusicVolume,
		})
		if err != nil {
			return err
		}
		pc.Video = merged
		pc.Plan = plan
		return nil

	case StepRetranscribeSynthesized:
		segments, err := p.transcriber.Transcribe(ctx, pc.Speech, step.Granularity, pc.Job.TargetLanguage)
		if err != nil {
			return err
		}
		pc.Segments = segments
		if len(segments) == 0 {
			pc.CaptionsSkipped = "no speech recognized in synthesized audio"
			logging.WarnWithContext(logging.WithContext(ctx, p.logger), "retranscription found no speech; output left without captions", "captions_skipped",
				logging.String(logging.FieldImpact, "dubbed video has no captions"),
			)
		}
		return nil

	case StepBurnCaptions:
		return p.burnCaptions(ctx, pc)

	case StepFinalize:
		return finalize(pc)

	default:
		return fmt.Errorf("unknown step %s", step.Kind)
	}
}

// translateSegments translates captions one at a time, keeping the original
// text for any segment whose translation fails.
func (p *Pipeline) translateSegments(ctx context.Context, pc *PipelineContext) {
	logger := logging.WithContext(ctx, p.logger)
	translated := make([]subtitles.Segment, len(pc.Segments))
	for i, seg := range pc.Segments {
		translated[i] = seg
		if ctx.Err() != nil {
			continue
		}
		text, err := p.translator.Translate(ctx, seg.Text, pc.Job.TargetLanguage)
		if err != nil || text == "" {
			pc.FailedSegments++
			logger.Debug("segment translation failed; keeping original",
				logging.Int("segment", i+1),
				logging.Error(err),
			)
			continue
		}
		translated[i].Text = text
	}
	if pc.FailedSegments > 0 {
		logging.WarnWithContext(logger, "some captions kept their original text", "translation_degraded",
			logging.Int("failed_segments", pc.FailedSegments),
			logging.Int("segments", len(pc.Segments)),
			logging.String(logging.FieldImpact, "mixed-language captions"),
		)
	}
	pc.Segments = translated
}

func (p *Pipeline) burnCaptions(ctx context.Context, pc *PipelineContext) error {
	if len(pc.Segments) == 0 {
		return nil
	}
	srt := pc.Artifact("captions.srt")
	if err := subtitles.WriteFile(srt, pc.Segments); err != nil {
		return fmt.Errorf("write captions: %w", err)
	}
	height := p.compositor.Canvas().Height
	if pc.Letterbox.Height > 0 {
		height = pc.Letterbox.Height
	}
	captioned := pc.Artifact("captioned.mp4")
	err := p.compositor.BurnCaptions(ctx, compose.BurnRequest{
		Source:    pc.Video,
		Subtitles: srt,
		Output:    captioned,
		Style:     captions.TranslateOrDefault(p.style, height, logging.WithContext(ctx, p.logger)),
	})
	if err != nil {
		return err
	}
	pc.Video = captioned
	pc.CaptionsBurned = true
	pc.CaptionsSkipped = ""
	return nil
}

// finalize places the latest video at the job output. The source itself is
// copied, never moved.
func finalize(pc *PipelineContext) error {
	if err := os.MkdirAll(filepath.Dir(pc.Job.Output), 0o755); err != nil {
		return services.Wrap(services.ErrValidation, "dub", "finalize", "create output dir", err)
	}
	if pc.Video == pc.Job.Source {
		if err := fileutil.CopyFile(pc.Video, pc.Job.Output); err != nil {
			return services.Wrap(services.ErrAssetUnreadable, "dub", "finalize", "copy source", err)
		}
		return nil
	}
	if err := fileutil.MoveFile(pc.Video, pc.Job.Output); err != nil {
		return services.Wrap(services.ErrValidation, "dub", "finalize", "move output", err)
	}
	pc.Video = pc.Job.Output
	return nil
}
