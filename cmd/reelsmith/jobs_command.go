package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reelsmith/internal/jobstore"
	"reelsmith/internal/language"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and prune export job history",
	}
	jobsCmd.AddCommand(newJobsListCommand(ctx))
	jobsCmd.AddCommand(newJobsShowCommand(ctx))
	jobsCmd.AddCommand(newJobsPruneCommand(ctx))
	return jobsCmd
}

func (c *commandContext) withStore(cmd *cobra.Command, fn func(context.Context, *jobstore.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := jobstore.Open(cfg)
	if err != nil {
		return fmt.Errorf("open job store: %w", err)
	}
	defer store.Close()
	runCtx := cmd.Context()
	if runCtx == nil {
		runCtx = context.Background()
	}
	return fn(runCtx, store)
}

func newJobsListCommand(ctx *commandContext) *cobra.Command {
	var (
		batchID    string
		statuses   []string
		limit      int
		jsonOutput bool
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recent jobs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := jobstore.Filter{BatchID: strings.TrimSpace(batchID), Limit: limit}
			for _, raw := range statuses {
				status, ok := jobstore.ParseStatus(raw)
				if !ok {
					return fmt.Errorf("unknown status %q", raw)
				}
				filter.Statuses = append(filter.Statuses, status)
			}
			return ctx.withStore(cmd, func(runCtx context.Context, store *jobstore.Store) error {
				jobs, err := store.List(runCtx, filter)
				if err != nil {
					return err
				}
				if jsonOutput {
					views := make([]jobView, 0, len(jobs))
					for _, job := range jobs {
						views = append(views, newJobView(job))
					}
					return writeJSON(cmd, views)
				}
				out := cmd.OutOrStdout()
				if len(jobs) == 0 {
					fmt.Fprintln(out, "No jobs recorded")
					return nil
				}
				rows := buildJobRows(jobs, time.Now())
				if useTable(out) {
					headers := []string{"ID", "Batch", "Kind", "Language", "Title", "Status", "Stage", "Elapsed"}
					fmt.Fprintln(out, renderTable(headers, rows, []columnAlignment{
						alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight,
					}))
				} else {
					printPlain(out, rows)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&batchID, "batch", "", "Only jobs from this batch")
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Only jobs in these statuses (pending, running, completed, failed, canceled)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum jobs to show (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newJobsShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "show <job-id>",
		Short: "Show one job; an unambiguous ID prefix is accepted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd, func(runCtx context.Context, store *jobstore.Store) error {
				job, err := store.Get(runCtx, strings.TrimSpace(args[0]))
				if err != nil {
					if errors.Is(err, jobstore.ErrNotFound) {
						return fmt.Errorf("job %s not found", args[0])
					}
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, newJobView(job))
				}
				printJobDetail(cmd.OutOrStdout(), job, time.Now())
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newJobsPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete finished jobs older than a cutoff",
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan < 0 {
				return fmt.Errorf("--older-than must not be negative")
			}
			return ctx.withStore(cmd, func(runCtx context.Context, store *jobstore.Store) error {
				removed, err := store.Prune(runCtx, time.Now().Add(-olderThan))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d job(s)\n", removed)
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Age of finished jobs to delete")
	return cmd
}

type jobView struct {
	ID           string     `json:"id"`
	BatchID      string     `json:"batch_id"`
	Kind         string     `json:"kind"`
	Language     string     `json:"language"`
	Title        string     `json:"title"`
	Status       string     `json:"status"`
	Stage        string     `json:"stage,omitempty"`
	OutputPath   string     `json:"output_path,omitempty"`
	CoverPath    string     `json:"cover_path,omitempty"`
	ErrorKind    string     `json:"error_kind,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

func newJobView(job *jobstore.Job) jobView {
	return jobView{
		ID:           job.ID,
		BatchID:      job.BatchID,
		Kind:         string(job.Kind),
		Language:     job.Language,
		Title:        job.Title,
		Status:       string(job.Status),
		Stage:        job.Stage,
		OutputPath:   job.OutputPath,
		CoverPath:    job.CoverPath,
		ErrorKind:    job.ErrorKind,
		ErrorMessage: job.ErrorMessage,
		CreatedAt:    job.CreatedAt,
		FinishedAt:   job.FinishedAt,
	}
}

func buildJobRows(jobs []*jobstore.Job, now time.Time) [][]string {
	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		stage := job.Stage
		if stage == "" {
			stage = "-"
		}
		rows = append(rows, []string{
			shortID(job.ID),
			shortID(job.BatchID),
			string(job.Kind),
			language.DisplayName(job.Language),
			job.Title,
			string(job.Status),
			stage,
			formatDuration(job.Elapsed(now)),
		})
	}
	return rows
}

func printJobDetail(out io.Writer, job *jobstore.Job, now time.Time) {
	line := func(label, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		fmt.Fprintf(out, "%-10s %s\n", label+":", value)
	}
	line("ID", job.ID)
	line("Batch", job.BatchID)
	line("Kind", string(job.Kind))
	line("Language", fmt.Sprintf("%s (%s)", language.DisplayName(job.Language), job.Language))
	line("Title", job.Title)
	line("Status", string(job.Status))
	line("Stage", job.Stage)
	line("Output", job.OutputPath)
	line("Cover", job.CoverPath)
	line("Created", job.CreatedAt.Local().Format(time.DateTime))
	if job.FinishedAt != nil {
		line("Finished", job.FinishedAt.Local().Format(time.DateTime))
	}
	line("Elapsed", formatDuration(job.Elapsed(now)))
	line("Error", strings.TrimSpace(job.ErrorKind+" "+job.ErrorMessage))
}
