package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelsmith/internal/config"
	"reelsmith/internal/services"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestConsoleHandlerHeader(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newConsoleHandler(&buf, slog.LevelInfo, false))
	logger = NewComponentLogger(logger, "dub")

	ctx := services.WithJobID(context.Background(), "0123456789abcdef")
	ctx = services.WithLanguage(ctx, "es")
	WithContext(ctx, logger).Info("step complete", String("step", "transcribe"), Float64("seconds", 1.5))

	line := buf.String()
	for _, want := range []string{"INFO ", "[job=01234567 lang=es] dub: step complete", "step=transcribe", "seconds=1.5"} {
		if !strings.Contains(line, want) {
			t.Fatalf("console line %q missing %q", line, want)
		}
	}
	if strings.Contains(line, "job_id=") {
		t.Fatalf("job id should be lifted into the header: %q", line)
	}
}

func TestConsoleHandlerQuotesAndGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newConsoleHandler(&buf, slog.LevelDebug, false)).WithGroup("probe")
	logger.Debug("", String("path", "my clip.mp4"), Error(errors.New("boom")))

	line := buf.String()
	if !strings.Contains(line, "(no message)") {
		t.Fatalf("expected placeholder message: %q", line)
	}
	if !strings.Contains(line, `probe.path="my clip.mp4"`) {
		t.Fatalf("expected grouped quoted path: %q", line)
	}
	if !strings.Contains(line, "probe.error=boom") {
		t.Fatalf("expected grouped error: %q", line)
	}
}

func TestWithContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(newJSONHandler(&buf, slog.LevelInfo, false))

	ctx := services.WithJobID(context.Background(), "job-7")
	ctx = services.WithStage(ctx, "burn_captions")
	ctx = services.WithRequestID(ctx, "req-1")
	WithContext(ctx, base).Info("hello")

	out := buf.String()
	for _, want := range []string{`"job_id":"job-7"`, `"stage":"burn_captions"`, `"correlation_id":"req-1"`, `"level":"info"`, `"ts":`} {
		if !strings.Contains(out, want) {
			t.Fatalf("json output %s missing %s", out, want)
		}
	}
}

func TestWithContextWithoutFieldsReturnsSameLogger(t *testing.T) {
	logger := NewNop()
	if got := WithContext(context.Background(), logger); got != logger {
		t.Fatal("expected logger to be returned unchanged")
	}
	if WithContext(context.Background(), nil) == nil {
		t.Fatal("expected nop logger for nil input")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newJSONHandler(&buf, slog.LevelInfo, false))
	WarnWithContext(logger, "margin above half height", "caption_margin", String(FieldImpact, "captions sit high"))

	out := buf.String()
	if !strings.Contains(out, `"event_type":"caption_margin"`) {
		t.Fatalf("missing event type: %s", out)
	}
	if !strings.Contains(out, `"error_hint":"check logs for details"`) {
		t.Fatalf("missing default hint: %s", out)
	}
	if strings.Count(out, `"impact"`) != 1 || !strings.Contains(out, "captions sit high") {
		t.Fatalf("caller impact should win over default: %s", out)
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")
	cfg.Logging.Format = "console"

	logger, err := NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	logger.Info("written", String(FieldEventType, "test"))

	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"written"`) {
		t.Fatalf("unexpected log file contents: %s", data)
	}
}

func TestNewFileHandler(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch", "export.log")
	handler, closer, err := NewFileHandler(path, "debug")
	if err != nil {
		t.Fatalf("NewFileHandler: %v", err)
	}
	slog.New(handler).Debug("detail")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), `"level":"debug"`) {
		t.Fatalf("unexpected contents: %s", data)
	}
}
