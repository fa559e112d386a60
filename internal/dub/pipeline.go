package dub

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"reelsmith/internal/captions"
	"reelsmith/internal/compose"
	"reelsmith/internal/config"
	"reelsmith/internal/logging"
	"reelsmith/internal/services"
	"reelsmith/internal/subtitles"
	"reelsmith/internal/timeline"
)

// Transcriber turns speech into captions.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string, granularity subtitles.Granularity, languageHint string) ([]subtitles.Segment, error)
}

// Translator renders text in another language.
type Translator interface {
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}

// Synthesizer produces 24 kHz mono PCM speech.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice string, speed float64, styleHint string) ([]byte, error)
}

// Observer is told when each step starts.
type Observer func(ctx context.Context, step Step)

// Job describes one source video and one target language.
type Job struct {
	ID             string
	Source         string
	Output         string
	TargetLanguage string
	// SourceLanguage hints the first transcription; empty means detect.
	SourceLanguage string
	Mode           Mode
	Granularity    subtitles.Granularity
	// Captions requests captions of the synthesized speech in FullDub.
	Captions  bool
	Voice     string
	Speed     float64
	StyleHint string
	// MusicPath is mixed under the new narration in FullDub when set.
	MusicPath string
}

// Result summarizes a finished job.
type Result struct {
	Output          string
	Steps           []Step
	Letterboxed     bool
	Plan            timeline.Plan
	Captions        int
	CaptionsBurned  bool
	CaptionsSkipped string
	FailedSegments  int
	Elapsed         time.Duration
}

// Pipeline runs dub jobs. It is safe for concurrent use; each Run owns its
// own PipelineContext.
type Pipeline struct {
	compositor  *compose.Compositor
	transcriber Transcriber
	translator  Translator
	synthesizer Synthesizer
	cfg         *config.Config
	style       captions.Style
	logger      *slog.Logger
	observer    Observer
}

// Option customizes the pipeline.
type Option func(*Pipeline)

// WithObserver installs a step observer.
func WithObserver(observer Observer) Option {
	return func(p *Pipeline) {
		p.observer = observer
	}
}

// New builds a pipeline from its collaborators.
func New(cfg *config.Config, compositor *compose.Compositor, transcriber Transcriber, translator Translator, synthesizer Synthesizer, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	p := &Pipeline{
		compositor:  compositor,
		transcriber: transcriber,
		translator:  translator,
		synthesizer: synthesizer,
		cfg:         cfg,
		style:       captions.StyleFromConfig(cfg.Captions),
		logger:      logging.NewComponentLogger(logger, "dub"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// JobFromConfig fills voice, speed, style, and caption settings from cfg.
func JobFromConfig(cfg *config.Config, source, output, target string, mode Mode) Job {
	return Job{
		Source:         source,
		Output:         output,
		TargetLanguage: target,
		SourceLanguage: cfg.Dub.SourceLanguage,
		Mode:           mode,
		Granularity:    subtitles.Granularity(cfg.Captions.Mode),
		Captions:       cfg.Dub.BurnCaptions,
		Voice:          cfg.Dub.Voice,
		Speed:          cfg.Dub.Speed,
		StyleHint:      cfg.Dub.StyleHint,
	}
}

// Run executes job step by step. Every intermediate file is removed before
// Run returns, whatever the outcome.
func (p *Pipeline) Run(ctx context.Context, job Job) (Result, error) {
	started := time.Now()
	if err := validateJob(job); err != nil {
		return Result{}, err
	}
	ctx = services.WithLanguage(ctx, job.TargetLanguage)
	if job.ID != "" {
		ctx = services.WithJobID(ctx, job.ID)
	}
	logger := logging.WithContext(ctx, p.logger)

	pc, err := newPipelineContext(p.cfg.Paths.WorkDir, job)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if cerr := pc.Close(); cerr != nil {
			logging.WarnWithContext(logger, "dub cleanup incomplete", "dub_cleanup",
				logging.Error(cerr),
				logging.String("dir", pc.Dir),
				logging.String(logging.FieldImpact, "temporary files left in work dir"),
			)
		}
	}()

	skip := p.cfg.SkipCaptions(job.TargetLanguage)
	steps := Steps(job, skip)
	if skip {
		pc.CaptionsSkipped = "language policy"
	}
	logger.Info("dub job started",
		logging.String(logging.FieldEventType, "dub_start"),
		logging.String("mode", job.Mode.String()),
		logging.String("source", job.Source),
		logging.Int("steps", len(steps)),
		logging.Bool("skip_captions", skip),
	)

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		stepCtx := services.WithStage(ctx, step.Kind.String())
		if p.observer != nil {
			p.observer(stepCtx, step)
		}
		stepStarted := time.Now()
		if err := p.exec(stepCtx, pc, step); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Result{}, ctxErr
			}
			details := services.Details(err)
			logging.ErrorWithContext(logging.WithContext(stepCtx, p.logger), "dub step failed", "dub_step_failed",
				logging.String("step", step.String()),
				logging.String("error_kind", string(details.Kind)),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, stepHint(step.Kind)),
			)
			return Result{}, err
		}
		// An in-flight step cannot be interrupted; its result is dropped.
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		logger.Debug("dub step complete",
			logging.String("step", step.String()),
			logging.Duration("elapsed", time.Since(stepStarted)),
		)
	}

	res := Result{
		Output:          job.Output,
		Steps:           steps,
		Letterboxed:     pc.Letterbox.Applied,
		Plan:            pc.Plan,
		Captions:        len(pc.Segments),
		CaptionsBurned:  pc.CaptionsBurned,
		CaptionsSkipped: pc.CaptionsSkipped,
		FailedSegments:  pc.FailedSegments,
		Elapsed:         time.Since(started),
	}
	logger.Info("dub job complete",
		logging.String(logging.FieldEventType, "dub_complete"),
		logging.String("output", res.Output),
		logging.Bool("captions_burned", res.CaptionsBurned),
		logging.Int("failed_segments", res.FailedSegments),
		logging.Duration("elapsed", res.Elapsed),
	)
	return res, nil
}

func validateJob(job Job) error {
	var problems []string
	if strings.TrimSpace(job.Source) == "" {
		problems = append(problems, "source required")
	}
	if strings.TrimSpace(job.Output) == "" {
		problems = append(problems, "output required")
	}
	if strings.TrimSpace(job.TargetLanguage) == "" {
		problems = append(problems, "target language required")
	}
	if len(problems) > 0 {
		return services.Wrap(services.ErrValidation, "dub", "job", strings.Join(problems, "; "), nil)
	}
	if job.Source == job.Output {
		return services.Wrap(services.ErrValidation, "dub", "job", "output must differ from source", nil)
	}
	return nil
}

func stepHint(kind StepKind) string {
	switch kind {
	case StepTranscribe, StepRetranscribeSynthesized:
		return "check the whisperx installation (uvx whisperx --help)"
	case StepTranslateFullText, StepResynthesize:
		return "check gemini.api_key and network access"
	case StepFinalize:
		return "check export directory permissions"
	default:
		return "inspect the ffmpeg diagnostics above"
	}
}

// IsCanceled reports whether err came from cancellation.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
