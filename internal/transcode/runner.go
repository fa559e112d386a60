package transcode

import (
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"reelsmith/internal/logging"
)

// Result is the outcome of one transcode run.
type Result struct {
	OK          bool
	Diagnostics string
}

// Runner executes transcode requests.
type Runner interface {
	Run(ctx context.Context, req Request) Result
}

// CommandRunner runs a process and returns its combined output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Executor runs requests through the ffmpeg binary.
type Executor struct {
	binary        string
	logger        *slog.Logger
	commandRunner CommandRunner
}

// NewExecutor builds an executor for the given ffmpeg binary.
func NewExecutor(binary string, logger *slog.Logger) *Executor {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Executor{
		binary:        binary,
		logger:        logging.NewComponentLogger(logger, "transcode"),
		commandRunner: defaultCommandRunner,
	}
}

// WithCommandRunner swaps the process runner (for testing).
func (e *Executor) WithCommandRunner(runner CommandRunner) {
	if runner != nil {
		e.commandRunner = runner
	}
}

// Binary returns the ffmpeg executable in use.
func (e *Executor) Binary() string {
	return e.binary
}

// Run serializes and executes req. It never retries.
func (e *Executor) Run(ctx context.Context, req Request) Result {
	logger := logging.WithContext(ctx, e.logger)
	args, err := req.Args()
	if err != nil {
		return Result{Diagnostics: err.Error()}
	}
	if err := ctx.Err(); err != nil {
		return Result{Diagnostics: err.Error()}
	}

	started := time.Now()
	logger.Debug("transcode started",
		logging.String("operation", req.Operation),
		logging.String("output", req.Output),
		logging.String("args", strings.Join(args, " ")),
	)
	output, err := e.commandRunner(ctx, e.binary, args...)
	diagnostics := strings.TrimSpace(string(output))
	if err != nil {
		if diagnostics == "" {
			diagnostics = err.Error()
		} else {
			diagnostics = err.Error() + ": " + diagnostics
		}
		logger.Warn("transcode failed",
			logging.String("operation", req.Operation),
			logging.String(logging.FieldEventType, "transcode_failed"),
			logging.String(logging.FieldErrorHint, "inspect ffmpeg diagnostics"),
			logging.String("diagnostics", lastLine(diagnostics)),
		)
		return Result{Diagnostics: diagnostics}
	}
	logger.Debug("transcode completed",
		logging.String("operation", req.Operation),
		logging.Duration("elapsed", time.Since(started)),
	)
	return Result{OK: true, Diagnostics: diagnostics}
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	return cmd.CombinedOutput()
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.LastIndexByte(s, '\n'); idx >= 0 {
		return s[idx+1:]
	}
	return s
}
