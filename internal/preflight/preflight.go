package preflight

import (
	"context"
	"strings"

	"reelsmith/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Optional paths are only checked when configured.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	var results []Result

	// Work and export directories (always checked)
	results = append(results,
		CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir),
		CheckDirectoryAccess("Export directory", cfg.Paths.ExportDir),
	)

	// Assets referenced by every export
	for _, file := range []struct{ name, path string }{
		{"Cover font", cfg.Paths.FontFile},
		{"Logo", cfg.Export.LogoPath},
		{"Background music", cfg.Export.MusicPath},
	} {
		if strings.TrimSpace(file.path) != "" {
			results = append(results, CheckFileReadable(file.name, file.path))
		}
	}

	// Binaries
	for _, status := range CheckSystemDeps(cfg) {
		if !status.Available && !status.Blocking() {
			continue
		}
		detail := status.Path
		if !status.Available {
			detail = status.Detail
		}
		results = append(results, Result{Name: status.Name, Passed: status.Available, Detail: detail})
	}

	// Gemini
	results = append(results, CheckGemini(ctx, cfg.Gemini))
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
