package compose

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"reelsmith/internal/config"
	"reelsmith/internal/logging"
	"reelsmith/internal/services"
	"reelsmith/internal/transcode"
)

// Prober reports media properties.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
	Dimensions(ctx context.Context, path string) (int, int, error)
}

// Canvas is the normalized output geometry.
type Canvas struct {
	Width  int
	Height int
	FPS    int
}

// Encoder holds the re-encode settings.
type Encoder struct {
	VideoCodec   string
	Preset       string
	CRF          int
	AudioCodec   string
	AudioBitrate string
}

// Compositor issues composition requests against a transcode runner.
type Compositor struct {
	runner  transcode.Runner
	prober  Prober
	canvas  Canvas
	encoder Encoder
	render  config.Render
	workDir string
	logger  *slog.Logger
}

// New builds a compositor from render settings.
func New(cfg *config.Config, runner transcode.Runner, prober Prober, logger *slog.Logger) *Compositor {
	if logger == nil {
		logger = logging.NewNop()
	}
	render := cfg.Render
	return &Compositor{
		runner:  runner,
		prober:  prober,
		canvas:  Canvas{Width: render.Width, Height: render.Height, FPS: render.FPS},
		encoder: Encoder{VideoCodec: render.VideoCodec, Preset: render.Preset, CRF: render.CRF, AudioCodec: render.AudioCodec, AudioBitrate: render.AudioBitrate},
		render:  render,
		workDir: cfg.Paths.WorkDir,
		logger:  logging.NewComponentLogger(logger, "compose"),
	}
}

// Canvas returns the configured output geometry.
func (c *Compositor) Canvas() Canvas {
	return c.canvas
}

// run executes req and converts a failed result into a CompositionError. A
// partial destination is removed on failure.
func (c *Compositor) run(ctx context.Context, req transcode.Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	res := c.runner.Run(ctx, req)
	if res.OK {
		return nil
	}
	if req.Output != "" {
		_ = os.Remove(req.Output)
	}
	if err := ctx.Err(); err != nil {
		return services.NewCompositionError(req.Operation, res.Diagnostics, err)
	}
	return services.NewCompositionError(req.Operation, res.Diagnostics, nil)
}

// scratch creates a private transient directory and returns its cleanup.
func (c *Compositor) scratch(prefix string) (string, func(), error) {
	if c.workDir != "" {
		if err := os.MkdirAll(c.workDir, 0o755); err != nil {
			return "", nil, fmt.Errorf("ensure work dir: %w", err)
		}
	}
	dir, err := os.MkdirTemp(c.workDir, prefix+"-*")
	if err != nil {
		return "", nil, fmt.Errorf("create scratch dir: %w", err)
	}
	cleanup := func() {
		if err := os.RemoveAll(dir); err != nil {
			c.logger.Warn("scratch cleanup failed", logging.String("dir", dir), logging.Error(err))
		}
	}
	return dir, cleanup, nil
}

func (e Encoder) videoOptions() []string {
	opts := []string{"-c:v", e.VideoCodec}
	if e.Preset != "" {
		opts = append(opts, "-preset", e.Preset)
	}
	opts = append(opts, "-crf", strconv.Itoa(e.CRF), "-pix_fmt", "yuv420p")
	return opts
}

func (e Encoder) audioOptions() []string {
	opts := []string{"-c:a", e.AudioCodec}
	if e.AudioBitrate != "" {
		opts = append(opts, "-b:a", e.AudioBitrate)
	}
	return opts
}

func requirePath(op, name, path string) error {
	if path == "" {
		return services.Wrap(services.ErrValidation, "compose", op, name+" path required", nil)
	}
	return nil
}

func requireFile(op, name, path string) error {
	if err := requirePath(op, name, path); err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		return services.Wrap(services.ErrAssetUnreadable, "compose", op, name+" "+path, err)
	}
	return nil
}

// requireFiles checks name/path pairs in order.
func requireFiles(op string, pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if err := requireFile(op, pairs[i], pairs[i+1]); err != nil {
			return err
		}
	}
	return nil
}

// IsCompositionFailure reports whether err came from a failed transcode run.
func IsCompositionFailure(err error) bool {
	return errors.Is(err, services.ErrCompositionFailed)
}
