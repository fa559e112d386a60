package dub

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"reelsmith/internal/compose"
	"reelsmith/internal/subtitles"
	"reelsmith/internal/textutil"
	"reelsmith/internal/timeline"
)

// PipelineContext accumulates one job's intermediate state. It owns every
// path handed out by Artifact and removes them on Close.
type PipelineContext struct {
	Job Job
	Dir string

	// Audio is the extracted source speech.
	Audio string
	// Segments are the current captions: transcribed, then translated or
	// retranscribed.
	Segments []subtitles.Segment
	// Transcript is the translated full text for FullDub.
	Transcript string
	// Speech is the synthesized narration WAV.
	Speech string
	// Video is the latest picture: the source until a step replaces it.
	Video string

	Letterbox       compose.LetterboxGeometry
	Plan            timeline.Plan
	CaptionsBurned  bool
	CaptionsSkipped string
	FailedSegments  int

	artifacts []string
}

func newPipelineContext(workDir string, job Job) (*PipelineContext, error) {
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure work dir: %w", err)
	}
	prefix := "dub-" + textutil.SanitizeToken(job.TargetLanguage) + "-"
	dir, err := os.MkdirTemp(workDir, prefix)
	if err != nil {
		return nil, fmt.Errorf("create job dir: %w", err)
	}
	return &PipelineContext{Job: job, Dir: dir, Video: job.Source}, nil
}

// Artifact registers and returns a path inside the job directory.
func (pc *PipelineContext) Artifact(name string) string {
	path := filepath.Join(pc.Dir, name)
	pc.artifacts = append(pc.artifacts, path)
	return path
}

// Artifacts lists every registered path in creation order.
func (pc *PipelineContext) Artifacts() []string {
	return append([]string(nil), pc.artifacts...)
}

// Close removes every registered artifact and the job directory.
func (pc *PipelineContext) Close() error {
	var errs []error
	for _, path := range pc.artifacts {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	if strings.TrimSpace(pc.Dir) != "" {
		if err := os.RemoveAll(pc.Dir); err != nil {
			errs = append(errs, err)
		}
	}
	pc.artifacts = nil
	return errors.Join(errs...)
}
