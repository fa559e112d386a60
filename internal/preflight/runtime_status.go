package preflight

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"reelsmith/internal/config"
)

// CheckPublishFromConfig evaluates S3 publish settings without contacting AWS.
func CheckPublishFromConfig(cfg *config.Config) Result {
	const name = "S3 publish"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if !cfg.Publish.Enabled {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	if strings.TrimSpace(cfg.Publish.Bucket) == "" {
		return Result{Name: name, Detail: "Missing bucket"}
	}
	detail := "s3://" + cfg.Publish.Bucket
	if prefix := strings.Trim(cfg.Publish.Prefix, "/"); prefix != "" {
		detail += "/" + prefix
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// FFmpegVersion reports the first line of "ffmpeg -version" for status UIs.
// It returns an empty string when the binary cannot be run.
func FFmpegVersion(binary string) string {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	if _, err := exec.LookPath(binary); err != nil {
		return ""
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, binary, "-hide_banner", "-version")
	output, err := cmd.Output()
	if err != nil {
		return ""
	}
	return parseVersionLine(string(output))
}

// parseVersionLine extracts "ffmpeg version X" from -version output.
func parseVersionLine(output string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(output), "\n")
	fields := strings.Fields(line)
	if len(fields) >= 3 && fields[1] == "version" {
		return strings.Join(fields[:3], " ")
	}
	return strings.TrimSpace(line)
}
