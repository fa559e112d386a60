package jobstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"reelsmith/internal/services"
)

// ErrNotFound is returned when a job id has no row.
var ErrNotFound = errors.New("job not found")

// NewJob describes a job to record.
type NewJob struct {
	BatchID  string
	Kind     Kind
	Language string
	Title    string
}

// Create inserts a pending job with a fresh id.
func (s *Store) Create(ctx context.Context, spec NewJob) (*Job, error) {
	if strings.TrimSpace(spec.BatchID) == "" {
		return nil, errors.New("create job: batch id required")
	}
	if strings.TrimSpace(spec.Language) == "" {
		return nil, errors.New("create job: language required")
	}
	now := s.now()
	job := &Job{
		ID:        uuid.NewString(),
		BatchID:   spec.BatchID,
		Kind:      spec.Kind,
		Language:  spec.Language,
		Title:     spec.Title,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.execWithRetry(ctx,
		`INSERT INTO jobs (id, batch_id, kind, language, title, status, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.BatchID, string(job.Kind), job.Language, nullableString(job.Title),
		string(job.Status), formatTime(now), formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	return job, nil
}

// Start marks a job running.
func (s *Store) Start(ctx context.Context, id string) error {
	return s.transition(ctx, id, StatusRunning, `status = ?, updated_at = ?`, string(StatusRunning), formatTime(s.now()))
}

// SetStage records the pipeline step a running job is in.
func (s *Store) SetStage(ctx context.Context, id, stage string) error {
	res, err := s.execWithRetry(ctx,
		`UPDATE jobs SET stage = ?, updated_at = ? WHERE id = ?`,
		nullableString(stage), formatTime(s.now()), id,
	)
	if err != nil {
		return fmt.Errorf("set stage: %w", err)
	}
	return requireRow(res, id)
}

// Complete marks a job completed with its outputs.
func (s *Store) Complete(ctx context.Context, id, outputPath, coverPath string) error {
	now := formatTime(s.now())
	return s.transition(ctx, id, StatusCompleted,
		`status = ?, output_path = ?, cover_path = ?, error_kind = NULL, error_message = NULL, updated_at = ?, finished_at = ?`,
		string(StatusCompleted), nullableString(outputPath), nullableString(coverPath), now, now,
	)
}

// Fail records a job failure. Cancellation is stored as canceled.
func (s *Store) Fail(ctx context.Context, id string, jobErr error) error {
	status := FailureStatus(jobErr)
	details := services.Details(jobErr)
	message := details.Message
	if message == "" {
		message = "unknown failure"
	}
	now := formatTime(s.now())
	return s.transition(ctx, id, status,
		`status = ?, error_kind = ?, error_message = ?, updated_at = ?, finished_at = ?`,
		string(status), string(details.Kind), message, now, now,
	)
}

func (s *Store) transition(ctx context.Context, id string, to Status, set string, args ...any) error {
	args = append(args, id)
	res, err := s.execWithRetry(ctx, `UPDATE jobs SET `+set+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("mark job %s: %w", to, err)
	}
	return requireRow(res, id)
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Get fetches a job by id. A short unique prefix is accepted.
func (s *Store) Get(ctx context.Context, id string) (*Job, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrNotFound)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = ? OR id LIKE ? ORDER BY created_at LIMIT 2`,
		id, id+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	defer rows.Close()

	var found []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		if job.ID == id {
			return job, nil
		}
		found = append(found, job)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("job id prefix %q is ambiguous", id)
	}
}

// List returns jobs newest first.
func (s *Store) List(ctx context.Context, filter Filter) ([]*Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs`
	var (
		where []string
		args  []any
	)
	if filter.BatchID != "" {
		where = append(where, "batch_id = ?")
		args = append(args, filter.BatchID)
	}
	if len(filter.Statuses) > 0 {
		where = append(where, "status IN ("+makePlaceholders(len(filter.Statuses))+")")
		for _, status := range filter.Statuses {
			args = append(args, string(status))
		}
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// Stats returns a count of jobs grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("job stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// ResetInterrupted fails jobs left pending or running by a process that
// exited mid-batch. It returns how many rows changed.
func (s *Store) ResetInterrupted(ctx context.Context) (int64, error) {
	now := formatTime(s.now())
	res, err := s.execWithRetry(ctx,
		`UPDATE jobs SET status = ?, error_kind = ?, error_message = ?, updated_at = ?, finished_at = ?
         WHERE status IN (?, ?)`,
		string(StatusFailed), string(services.KindUnknown), InterruptedReason, now, now,
		string(StatusPending), string(StatusRunning),
	)
	if err != nil {
		return 0, fmt.Errorf("reset interrupted jobs: %w", err)
	}
	return res.RowsAffected()
}

// Prune removes terminal jobs finished before cutoff.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.execWithRetry(ctx,
		`DELETE FROM jobs WHERE status IN (?, ?, ?) AND finished_at IS NOT NULL AND finished_at < ?`,
		string(StatusCompleted), string(StatusFailed), string(StatusCanceled), formatTime(cutoff),
	)
	if err != nil {
		return 0, fmt.Errorf("prune jobs: %w", err)
	}
	return res.RowsAffected()
}
