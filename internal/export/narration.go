package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"reelsmith/internal/captions"
	"reelsmith/internal/compose"
	"reelsmith/internal/fileutil"
	"reelsmith/internal/jobstore"
	"reelsmith/internal/language"
	"reelsmith/internal/logging"
	"reelsmith/internal/services"
	"reelsmith/internal/services/gemini"
	"reelsmith/internal/subtitles"
	"reelsmith/internal/timeline"
)

// Task is one language's script.
type Task struct {
	Language string
	Script   string
	Title    string
}

// NarrationBatch voices each task over a shared background. Exactly one of
// Video or Folder is set.
type NarrationBatch struct {
	Tasks []Task
	// Video is a single background clip fitted to each narration by Mode.
	Video string
	Mode  timeline.Mode
	// Folder holds images and clips sequenced into a slideshow per language.
	Folder      string
	Granularity subtitles.Granularity
	Cover       *Cover
}

// narrationPlan is a validated task with its reserved output names.
type narrationPlan struct {
	task   Task
	base   string
	output string
}

// RunNarration exports one narrated video per task. Tasks with an empty
// script are skipped; a batch with none left is rejected.
func (r *Runner) RunNarration(ctx context.Context, batch NarrationBatch) (Report, error) {
	tasks, err := normalizeTasks(batch.Tasks)
	if err != nil {
		return Report{}, err
	}
	var assets []timeline.MediaAsset
	switch {
	case batch.Video != "" && batch.Folder != "":
		return Report{}, services.Wrap(services.ErrValidation, "export", "narration", "choose a background video or a media folder, not both", nil)
	case batch.Video != "":
		if err := requireFile(batch.Video); err != nil {
			return Report{}, services.Wrap(services.ErrAssetUnreadable, "export", "narration", "background video", err)
		}
	case batch.Folder != "":
		assets, err = timeline.ScanFolder(batch.Folder)
		if err != nil {
			return Report{}, err
		}
		if len(assets) == 0 {
			return Report{}, services.Wrap(services.ErrInvalidTimelineInput, "export", "narration", "no supported media in "+batch.Folder, nil)
		}
	default:
		return Report{}, services.Wrap(services.ErrValidation, "export", "narration", "background video or media folder required", nil)
	}
	if batch.Granularity == "" {
		batch.Granularity = subtitles.Granularity(r.cfg.Captions.Mode)
	}

	specs := make([]jobSpec, 0, len(tasks))
	for _, task := range tasks {
		base, err := reserveBase(r.cfg.Paths.ExportDir, task.Title, task.Language, r.suffix)
		if err != nil {
			return Report{}, err
		}
		plan := narrationPlan{task: task, base: base, output: filepath.Join(r.cfg.Paths.ExportDir, base+".mp4")}
		specs = append(specs, jobSpec{
			kind:     jobstore.KindNarration,
			language: task.Language,
			title:    task.Title,
			output:   plan.output,
			run: func(ctx context.Context, _ string) (string, error) {
				return r.narrate(ctx, batch, assets, plan)
			},
		})
	}
	return r.execute(ctx, specs)
}

func normalizeTasks(in []Task) ([]Task, error) {
	tasks := make([]Task, 0, len(in))
	for _, task := range in {
		task.Script = strings.TrimSpace(task.Script)
		if task.Script == "" {
			continue
		}
		code, err := language.Normalize(task.Language)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "export", "narration", "task language", err)
		}
		task.Language = code
		task.Title = strings.TrimSpace(task.Title)
		if task.Title == "" {
			task.Title = DefaultTitle(code)
		}
		tasks = append(tasks, task)
	}
	if len(tasks) == 0 {
		return nil, services.Wrap(services.ErrValidation, "export", "narration", "enter a script for at least one language", nil)
	}
	return tasks, nil
}

// narrate produces plan.output and, when requested, its cover.
func (r *Runner) narrate(ctx context.Context, batch NarrationBatch, assets []timeline.MediaAsset, plan narrationPlan) (string, error) {
	task := plan.task
	dir, cleanup, err := r.jobDir(jobstore.KindNarration, task.Language)
	if err != nil {
		return "", err
	}
	defer cleanup()
	logger := logging.WithContext(ctx, r.logger)

	r.setStage(ctx, "synthesize")
	pcm, err := r.synthesizer.Synthesize(ctx, task.Script, r.cfg.Dub.Voice, r.cfg.Dub.Speed, r.cfg.Dub.StyleHint)
	if err != nil {
		return "", err
	}
	speech := filepath.Join(dir, "speech.wav")
	if err := gemini.WriteWAV(speech, pcm); err != nil {
		return "", fmt.Errorf("write speech: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	r.setStage(ctx, "background")
	background := batch.Video
	mode := batch.Mode
	if len(assets) > 0 {
		background = filepath.Join(dir, "slideshow.mp4")
		if _, err := r.compositor.Slideshow(ctx, compose.SlideshowRequest{
			Assets:            assets,
			TargetSeconds:     gemini.PCMSeconds(pcm),
			TransitionSeconds: -1,
			Output:            background,
		}); err != nil {
			return "", err
		}
		mode = timeline.ModeFitAudio
	}
	current := filepath.Join(dir, "merged.mp4")
	if _, err := r.compositor.Merge(ctx, compose.MergeRequest{
		Video:       background,
		Audio:       speech,
		Output:      current,
		Mode:        mode,
		MusicPath:   r.cfg.Export.MusicPath,
		MusicVolume: r.cfg.Render.MusicVolume,
	}); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if r.cfg.SkipCaptions(task.Language) {
		logger.Info("captions skipped by language policy", logging.String(logging.FieldEventType, "captions_skipped"))
	} else {
		r.setStage(ctx, "transcribe")
		segments, err := r.transcriber.Transcribe(ctx, speech, batch.Granularity, task.Language)
		if err != nil {
			return "", err
		}
		if len(segments) == 0 {
			logging.WarnWithContext(logger, "no speech detected in narration", "captions_skipped",
				logging.String(logging.FieldImpact, "video exported without captions"),
			)
		} else {
			r.setStage(ctx, "burn_captions")
			srt := filepath.Join(dir, "captions.srt")
			if err := subtitles.WriteFile(srt, segments); err != nil {
				return "", err
			}
			captioned := filepath.Join(dir, "captioned.mp4")
			style := captions.TranslateOrDefault(r.style, r.compositor.Canvas().Height, logger)
			if err := r.compositor.BurnCaptions(ctx, compose.BurnRequest{Source: current, Subtitles: srt, Output: captioned, Style: style}); err != nil {
				return "", err
			}
			current = captioned
		}
	}

	if logo := r.cfg.Export.LogoPath; logo != "" {
		r.setStage(ctx, "overlay_logo")
		stamped := filepath.Join(dir, "logo.mp4")
		if err := r.compositor.OverlayLogo(ctx, compose.LogoRequest{Video: current, Logo: logo, Output: stamped}); err != nil {
			return "", err
		}
		current = stamped
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	r.setStage(ctx, "finalize")
	if err := fileutil.MoveFile(current, plan.output); err != nil {
		return "", services.Wrap(services.ErrCompositionFailed, "export", "finalize", plan.output, err)
	}
	return r.coverFor(ctx, batch.Cover, task.Language, task.Title, plan.output, dir, plan.base), nil
}

func requireFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}
