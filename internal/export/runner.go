package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"reelsmith/internal/captions"
	"reelsmith/internal/compose"
	"reelsmith/internal/config"
	"reelsmith/internal/dub"
	"reelsmith/internal/jobstore"
	"reelsmith/internal/language"
	"reelsmith/internal/logging"
	"reelsmith/internal/services"
	"reelsmith/internal/staging"
	"reelsmith/internal/textutil"
)

// Outcome is the result of one job in a batch.
type Outcome struct {
	JobID    string
	Kind     jobstore.Kind
	Language string
	Title    string
	Output   string
	Cover    string
	Err      error
	Elapsed  time.Duration
}

// Succeeded reports whether the job produced its output.
func (o Outcome) Succeeded() bool {
	return o.Err == nil
}

// Report summarizes a finished batch.
type Report struct {
	BatchID  string
	Manifest string
	Outcomes []Outcome
}

// Failed counts jobs that did not produce output.
func (r Report) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if !o.Succeeded() {
			n++
		}
	}
	return n
}

// Runner executes export batches.
type Runner struct {
	cfg         *config.Config
	compositor  *compose.Compositor
	dub         *dub.Pipeline
	transcriber dub.Transcriber
	translator  dub.Translator
	synthesizer dub.Synthesizer
	style       captions.Style
	store       *jobstore.Store
	logger      *slog.Logger
	suffix      func() int
	now         func() time.Time
}

// Option customizes the runner.
type Option func(*Runner)

// WithStore records every job's lifecycle in store.
func WithStore(store *jobstore.Store) Option {
	return func(r *Runner) {
		r.store = store
	}
}

// WithSuffixSource replaces the random output-name suffix.
func WithSuffixSource(fn func() int) Option {
	return func(r *Runner) {
		if fn != nil {
			r.suffix = fn
		}
	}
}

// WithClock replaces the clock used for manifest timestamps.
func WithClock(fn func() time.Time) Option {
	return func(r *Runner) {
		if fn != nil {
			r.now = fn
		}
	}
}

// New builds a runner. The dub pipeline it uses for dub batches shares the
// same collaborators.
func New(cfg *config.Config, compositor *compose.Compositor, transcriber dub.Transcriber, translator dub.Translator, synthesizer dub.Synthesizer, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Runner{
		cfg:         cfg,
		compositor:  compositor,
		transcriber: transcriber,
		translator:  translator,
		synthesizer: synthesizer,
		style:       captions.StyleFromConfig(cfg.Captions),
		logger:      logging.NewComponentLogger(logger, "export"),
		suffix:      randomSuffix,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.dub = dub.New(cfg, compositor, transcriber, translator, synthesizer, logger, dub.WithObserver(r.observeDubStep))
	return r
}

// jobSpec is one unit of batch work. run returns the cover path, if any.
type jobSpec struct {
	kind     jobstore.Kind
	language string
	title    string
	output   string
	run      func(ctx context.Context, jobID string) (string, error)
}

// execute runs specs under the export lock and writes the manifest.
func (r *Runner) execute(ctx context.Context, specs []jobSpec) (Report, error) {
	exportDir := r.cfg.Paths.ExportDir
	lock, err := lockExportDir(ctx, exportDir)
	if err != nil {
		return Report{}, err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("release export lock failed", logging.Error(err))
		}
	}()

	batchID := uuid.NewString()
	logger := r.logger.With(logging.String("batch_id", batchID))
	if r.store != nil {
		if n, err := r.store.ResetInterrupted(ctx); err != nil {
			logger.Warn("reset interrupted jobs failed", logging.Error(err))
		} else if n > 0 {
			logger.Info("marked interrupted jobs failed", logging.Int("count", int(n)))
		}
	}
	if cleaned := staging.CleanStale(ctx, r.cfg.Paths.WorkDir, staging.DefaultStaleAge, logger); len(cleaned.Removed) > 0 {
		logger.Info("removed stale scratch directories", logging.Int("count", len(cleaned.Removed)))
	}

	concurrency := r.cfg.Export.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	logger.Info("export batch started",
		logging.String(logging.FieldEventType, "batch_start"),
		logging.Int("jobs", len(specs)),
		logging.Int("concurrency", concurrency),
	)

	outcomes := make([]Outcome, len(specs))
	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, spec := range specs {
		g.Go(func() error {
			outcomes[i] = r.runJob(ctx, batchID, spec)
			return nil
		})
	}
	_ = g.Wait()

	manifest := Manifest{
		ProjectName: r.cfg.Export.ProjectName,
		CreatedAt:   r.now().UTC().Format(time.RFC3339),
	}
	for _, o := range outcomes {
		if o.Succeeded() && o.Kind != jobstore.KindCover {
			manifest.Videos = append(manifest.Videos, NewManifestEntry(language.DisplayName(o.Language), o.Title, o.Output))
		}
	}
	manifestName := strings.TrimSpace(r.cfg.Export.ManifestName)
	if manifestName == "" {
		manifestName = DefaultManifestName
	}
	report := Report{BatchID: batchID, Outcomes: outcomes}
	manifestPath := filepath.Join(exportDir, manifestName)
	if err := WriteManifest(manifestPath, manifest); err != nil {
		return report, err
	}
	report.Manifest = manifestPath

	logger.Info("export batch complete",
		logging.String(logging.FieldEventType, "batch_complete"),
		logging.Int("succeeded", len(outcomes)-report.Failed()),
		logging.Int("failed", report.Failed()),
		logging.String("manifest", manifestPath),
	)
	return report, ctx.Err()
}

func (r *Runner) runJob(ctx context.Context, batchID string, spec jobSpec) Outcome {
	started := time.Now()
	out := Outcome{Kind: spec.kind, Language: spec.language, Title: spec.title, Output: spec.output}

	jobID := uuid.NewString()
	tracked := false
	if r.store != nil {
		job, err := r.store.Create(context.WithoutCancel(ctx), jobstore.NewJob{BatchID: batchID, Kind: spec.kind, Language: spec.language, Title: spec.title})
		if err != nil {
			r.logger.Warn("record job failed", logging.Error(err), logging.String(logging.FieldLanguage, spec.language))
		} else {
			jobID = job.ID
			tracked = true
		}
	}
	out.JobID = jobID
	ctx = services.WithJobID(ctx, jobID)
	ctx = services.WithLanguage(ctx, spec.language)
	logger := logging.WithContext(ctx, r.logger)

	if err := ctx.Err(); err != nil {
		out.Err = err
		r.recordFailure(ctx, logger, tracked, jobID, err)
		return out
	}
	r.persist(ctx, logger, tracked, "start", func(pctx context.Context) error { return r.store.Start(pctx, jobID) })

	logger.Info("export job started",
		logging.String(logging.FieldEventType, "job_start"),
		logging.String("kind", string(spec.kind)),
		logging.String("title", spec.title),
	)
	cover, err := spec.run(ctx, jobID)
	out.Elapsed = time.Since(started)
	if err != nil {
		out.Err = err
		r.recordFailure(ctx, logger, tracked, jobID, err)
		return out
	}
	out.Cover = cover
	r.persist(ctx, logger, tracked, "complete", func(pctx context.Context) error {
		return r.store.Complete(pctx, jobID, spec.output, cover)
	})
	logger.Info("export job complete",
		logging.String(logging.FieldEventType, "job_complete"),
		logging.String("output", spec.output),
		logging.String("cover", cover),
		logging.Duration("elapsed", out.Elapsed),
	)
	return out
}

func (r *Runner) recordFailure(ctx context.Context, logger *slog.Logger, tracked bool, jobID string, err error) {
	details := services.Details(err)
	attrs := []logging.Attr{
		logging.String("error_kind", string(details.Kind)),
		logging.Error(err),
		logging.String(logging.FieldImpact, "language skipped; other jobs continue"),
	}
	if details.Diagnostics != "" {
		attrs = append(attrs, logging.String("diagnostics", details.Diagnostics))
	}
	if dub.IsCanceled(err) {
		logger.Warn("export job canceled", logging.Args(append(attrs, logging.String(logging.FieldEventType, "job_canceled"))...)...)
	} else {
		logging.ErrorWithContext(logger, "export job failed", "job_failed", attrs...)
	}
	r.persist(ctx, logger, tracked, "fail", func(pctx context.Context) error { return r.store.Fail(pctx, jobID, err) })
}

// persist applies a store update that must survive cancellation of ctx.
func (r *Runner) persist(ctx context.Context, logger *slog.Logger, tracked bool, what string, update func(context.Context) error) {
	if r.store == nil || !tracked {
		return
	}
	if err := update(context.WithoutCancel(ctx)); err != nil {
		logger.Warn("job history update failed", logging.String("update", what), logging.Error(err))
	}
}

// setStage records progress for the job carried by ctx.
func (r *Runner) setStage(ctx context.Context, stage string) {
	if r.store == nil {
		return
	}
	jobID, ok := services.JobIDFromContext(ctx)
	if !ok {
		return
	}
	logger := logging.WithContext(ctx, r.logger)
	logger.Debug("job stage", logging.String(logging.FieldStage, stage))
	if err := r.store.SetStage(context.WithoutCancel(ctx), jobID, stage); err != nil && !errors.Is(err, jobstore.ErrNotFound) {
		logger.Warn("job history update failed", logging.String("update", "stage"), logging.Error(err))
	}
}

func (r *Runner) observeDubStep(ctx context.Context, step dub.Step) {
	r.setStage(ctx, step.Kind.String())
}

// jobDir creates the job's private scratch namespace.
func (r *Runner) jobDir(kind jobstore.Kind, lang string) (string, func(), error) {
	name := fmt.Sprintf("%s-%s-%s", kind, textutil.SanitizeToken(lang), uuid.NewString())
	dir := filepath.Join(r.cfg.Paths.WorkDir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("create job dir: %w", err)
	}
	return dir, func() {
		if err := os.RemoveAll(dir); err != nil {
			r.logger.Warn("job cleanup incomplete", logging.String("dir", dir), logging.Error(err))
		}
	}, nil
}
