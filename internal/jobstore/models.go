package jobstore

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Status represents the lifecycle of a job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCanceled  Status = "canceled"
)

var allStatuses = []Status{
	StatusPending,
	StatusRunning,
	StatusCompleted,
	StatusFailed,
	StatusCanceled,
}

// AllStatuses returns every known status in lifecycle order.
func AllStatuses() []Status {
	return append([]Status(nil), allStatuses...)
}

// ParseStatus converts user input into a Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	for _, status := range allStatuses {
		if status == normalized {
			return status, true
		}
	}
	return "", false
}

// IsTerminal reports whether the status is final.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCanceled
}

// Kind names what a job produces.
type Kind string

const (
	KindNarration Kind = "narration"
	KindDub       Kind = "dub"
	KindCover     Kind = "cover"
)

// InterruptedReason is recorded on jobs found running when a new batch starts.
const InterruptedReason = "interrupted before completion"

// Job is one persisted history row.
type Job struct {
	ID           string
	BatchID      string
	Kind         Kind
	Language     string
	Title        string
	Status       Status
	Stage        string
	OutputPath   string
	CoverPath    string
	ErrorKind    string
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	FinishedAt   *time.Time
}

// Elapsed returns how long the job ran, or has been running.
func (j Job) Elapsed(now time.Time) time.Duration {
	end := now
	if j.FinishedAt != nil {
		end = *j.FinishedAt
	}
	if j.CreatedAt.IsZero() || end.Before(j.CreatedAt) {
		return 0
	}
	return end.Sub(j.CreatedAt)
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	BatchID  string
	Statuses []Status
	Limit    int
}

// FailureStatus maps a job error to the status to persist.
func FailureStatus(err error) Status {
	if errors.Is(err, context.Canceled) {
		return StatusCanceled
	}
	return StatusFailed
}
