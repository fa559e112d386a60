package compose

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"reelsmith/internal/captions"
	"reelsmith/internal/logging"
	"reelsmith/internal/services"
	"reelsmith/internal/subtitles"
)

// DefaultPreviewText is burned when a preview names no text.
const DefaultPreviewText = "Subtitle Preview"

// PreviewRequest asks for one frame of Source with a sample caption on it.
type PreviewRequest struct {
	Source     string
	Output     string
	FrameRatio float64
	Text       string
	Style      captions.Style
}

// PreviewCaptions extracts a frame at FrameRatio and burns a single caption
// onto it with Style, so placement can be checked without rendering a video.
func (c *Compositor) PreviewCaptions(ctx context.Context, req PreviewRequest) error {
	const op = "preview captions"
	if err := requireFile(op, "video", req.Source); err != nil {
		return err
	}
	if err := requirePath(op, "output", req.Output); err != nil {
		return err
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		text = DefaultPreviewText
	}
	_, height, err := c.prober.Dimensions(ctx, req.Source)
	if err != nil {
		return err
	}
	style, err := captions.ImageStyle(req.Style, height, logging.WithContext(ctx, c.logger))
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "compose", op, "caption style", err)
	}

	dir, cleanup, err := c.scratch("preview")
	if err != nil {
		return err
	}
	defer cleanup()

	frame := filepath.Join(dir, "frame.jpg")
	if err := c.ExtractFrame(ctx, req.Source, frame, req.FrameRatio); err != nil {
		return err
	}
	srt := filepath.Join(dir, "preview.srt")
	if err := subtitles.WriteFile(srt, []subtitles.Segment{{Start: 0, End: 5, Text: text}}); err != nil {
		return fmt.Errorf("write preview captions: %w", err)
	}
	return c.BurnCaptionsOnImage(ctx, BurnRequest{Source: frame, Subtitles: srt, Output: req.Output, Style: style})
}
