package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reelsmith/internal/compose"
	"reelsmith/internal/config"
	"reelsmith/internal/export"
	"reelsmith/internal/jobstore"
	"reelsmith/internal/language"
	"reelsmith/internal/logging"
	"reelsmith/internal/notifications"
	"reelsmith/internal/preflight"
	"reelsmith/internal/publish"
)

// batchFlags are shared by every export command.
type batchFlags struct {
	skipPreflight bool
	noPublish     bool
	jsonOutput    bool
}

func (f *batchFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.skipPreflight, "skip-preflight", false, "Skip directory, binary, and Gemini checks")
	cmd.Flags().BoolVar(&f.noPublish, "no-publish", false, "Do not upload results even when publishing is enabled")
	cmd.Flags().BoolVar(&f.jsonOutput, "json", false, "Output the batch report as JSON")
}

// app is one command's wired runtime.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	store      *jobstore.Store
	compositor *compose.Compositor
	runner     *export.Runner
	publisher  *publish.Publisher
	notifier   notifications.Service
}

func (c *commandContext) openApp(ctx context.Context, publishEnabled bool) (*app, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	store, err := jobstore.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open job store: %w", err)
	}
	deps := c.newCollaborators(cfg, logger)
	compositor := compose.New(cfg, deps.transcoder, deps.prober, logger)
	runner := export.New(cfg, compositor, deps.transcriber, deps.translator, deps.synthesizer, logger, export.WithStore(store))

	a := &app{cfg: cfg, logger: logger, store: store, compositor: compositor, runner: runner, notifier: notifications.NewService(cfg.Notify)}
	if publishEnabled {
		publisher, err := publish.NewFromConfig(ctx, cfg.Publish, logger)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		a.publisher = publisher
	}
	return a, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// runBatch wires the runtime, gates on preflight, runs the batch, prints its
// report, and publishes the results when configured.
func (c *commandContext) runBatch(cmd *cobra.Command, flags batchFlags, run func(context.Context, *app) (export.Report, error)) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := c.openApp(ctx, !flags.noPublish)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if !flags.skipPreflight {
		if failed := preflight.Failed(preflight.RunAll(ctx, a.cfg)); len(failed) > 0 {
			colorize := shouldColorize(out)
			for _, r := range failed {
				fmt.Fprintln(out, renderStatusLine(r.Name, statusError, r.Detail, colorize))
			}
			return fmt.Errorf("preflight failed: %d check(s) did not pass", len(failed))
		}
	}

	started := time.Now()
	report, runErr := run(ctx, a)
	if report.BatchID != "" {
		if flags.jsonOutput {
			if err := writeJSON(cmd, reportView(report)); err != nil {
				return err
			}
		} else {
			printReport(out, report, useTable(out))
		}
	}
	if runErr != nil {
		a.notifyError(ctx, runErr, batchKind(report)+" batch")
		return runErr
	}

	if a.publisher != nil && report.Manifest != "" {
		uploads, err := a.publisher.PublishReport(ctx, report)
		if err != nil {
			err = fmt.Errorf("publish batch: %w", err)
			a.notifyError(ctx, err, "publish")
			return err
		}
		if !flags.jsonOutput {
			fmt.Fprintf(out, "Published %d file(s) to s3://%s\n", len(uploads), a.cfg.Publish.Bucket)
			for _, u := range uploads {
				fmt.Fprintf(out, "  %s\n", u.Key)
			}
		}
	}

	a.notifyCompleted(ctx, report, time.Since(started))
	if failed := report.Failed(); failed > 0 {
		return fmt.Errorf("%d of %d job(s) failed", failed, len(report.Outcomes))
	}
	return nil
}

func (a *app) notifyCompleted(ctx context.Context, report export.Report, elapsed time.Duration) {
	summary := notifications.BatchSummary{
		Kind:      batchKind(report),
		BatchID:   report.BatchID,
		Succeeded: len(report.Outcomes) - report.Failed(),
		Failed:    report.Failed(),
		Duration:  elapsed,
	}
	for _, o := range report.Outcomes {
		if !o.Succeeded() {
			summary.FailedLanguages = append(summary.FailedLanguages, language.DisplayName(o.Language))
		}
	}
	if err := a.notifier.NotifyBatchCompleted(context.WithoutCancel(ctx), summary); err != nil {
		a.logger.Warn("batch notification failed", logging.Error(err), logging.String(logging.FieldImpact, "no completion alert sent"))
	}
}

func (a *app) notifyError(ctx context.Context, cause error, label string) {
	if err := a.notifier.NotifyError(context.WithoutCancel(ctx), cause, label); err != nil {
		a.logger.Warn("error notification failed", logging.Error(err))
	}
}

// batchKind names the batch after its first job.
func batchKind(report export.Report) string {
	if len(report.Outcomes) == 0 {
		return "export"
	}
	return string(report.Outcomes[0].Kind)
}

type outcomeView struct {
	JobID    string `json:"job_id"`
	Kind     string `json:"kind"`
	Language string `json:"language"`
	Title    string `json:"title"`
	Status   string `json:"status"`
	Output   string `json:"output,omitempty"`
	Cover    string `json:"cover,omitempty"`
	Error    string `json:"error,omitempty"`
	Elapsed  string `json:"elapsed"`
}

type batchReportView struct {
	BatchID  string        `json:"batch_id"`
	Manifest string        `json:"manifest"`
	Jobs     []outcomeView `json:"jobs"`
}

func reportView(report export.Report) batchReportView {
	view := batchReportView{BatchID: report.BatchID, Manifest: report.Manifest, Jobs: make([]outcomeView, 0, len(report.Outcomes))}
	for _, o := range report.Outcomes {
		v := outcomeView{
			JobID:    o.JobID,
			Kind:     string(o.Kind),
			Language: o.Language,
			Title:    o.Title,
			Status:   outcomeStatus(o),
			Cover:    o.Cover,
			Elapsed:  o.Elapsed.Round(time.Millisecond).String(),
		}
		if o.Succeeded() {
			v.Output = o.Output
		} else {
			v.Error = o.Err.Error()
		}
		view.Jobs = append(view.Jobs, v)
	}
	return view
}

func outcomeStatus(o export.Outcome) string {
	if o.Succeeded() {
		return string(jobstore.StatusCompleted)
	}
	return string(jobstore.FailureStatus(o.Err))
}

func printReport(out io.Writer, report export.Report, table bool) {
	rows := make([][]string, 0, len(report.Outcomes))
	for _, o := range report.Outcomes {
		result := filepath.Base(o.Output)
		if !o.Succeeded() {
			result = o.Err.Error()
		} else if o.Cover != "" && o.Cover != o.Output {
			result += " + " + filepath.Base(o.Cover)
		}
		rows = append(rows, []string{
			language.DisplayName(o.Language),
			string(o.Kind),
			outcomeStatus(o),
			formatDuration(o.Elapsed),
			result,
		})
	}
	headers := []string{"Language", "Kind", "Status", "Elapsed", "Result"}
	if table {
		fmt.Fprintln(out, renderTable(headers, rows, []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft}))
	} else {
		printPlain(out, rows)
	}
	succeeded := len(report.Outcomes) - report.Failed()
	fmt.Fprintf(out, "Batch %s: %d succeeded, %d failed\n", shortID(report.BatchID), succeeded, report.Failed())
	if report.Manifest != "" {
		fmt.Fprintf(out, "Manifest: %s\n", report.Manifest)
	}
}

func printPlain(out io.Writer, rows [][]string) {
	for _, row := range rows {
		fmt.Fprintln(out, strings.Join(row, "\t"))
	}
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(100 * time.Millisecond).String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
