package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"reelsmith/internal/captions"
	"reelsmith/internal/compose"
	"reelsmith/internal/config"
	"reelsmith/internal/export"
	"reelsmith/internal/logging"
	"reelsmith/internal/textlayout"
)

// runMedia wires the runtime for a single-file media command.
func (c *commandContext) runMedia(cmd *cobra.Command, run func(context.Context, *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := c.openApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := run(ctx, a); err != nil {
		logging.ErrorWithContext(a.logger, "media command failed", "media_failed",
			logging.String("command", cmd.Name()),
			logging.Error(err),
		)
		return err
	}
	return nil
}

// mediaOutput expands output, or names a file in the export directory after
// the first input when output is empty.
func mediaOutput(cfg *config.Config, output, input, suffix, ext string) (string, error) {
	if strings.TrimSpace(output) != "" {
		return config.ExpandPath(strings.TrimSpace(output))
	}
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(cfg.Paths.ExportDir, stem+suffix+ext), nil
}

func expandInputs(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		expanded, err := config.ExpandPath(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out = append(out, expanded)
	}
	return out, nil
}

func rejectOverwrite(output string, inputs ...string) error {
	for _, in := range inputs {
		if filepath.Clean(in) == filepath.Clean(output) {
			return fmt.Errorf("output %s would overwrite an input", output)
		}
	}
	return nil
}

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	var (
		output string
		ratio  float64
		text   string
		margin int
		size   int
		color  string
	)

	cmd := &cobra.Command{
		Use:   "preview <video>",
		Short: "Render one frame with a sample caption to check caption placement",
		Example: `  reelsmith preview day.mp4
  reelsmith preview day.mp4 --margin 200 --text "Sawasdee" -o check.jpg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if ratio < 0 || ratio > 1 {
				return fmt.Errorf("--frame must be between 0 and 1, got %v", ratio)
			}
			if color != "" {
				if _, err := textlayout.ParseHexColor(color); err != nil {
					return err
				}
			}
			return ctx.runMedia(cmd, func(runCtx context.Context, a *app) error {
				inputs, err := expandInputs(args)
				if err != nil {
					return err
				}
				out, err := mediaOutput(a.cfg, output, inputs[0], "_caption_preview", ".jpg")
				if err != nil {
					return err
				}
				if err := rejectOverwrite(out, inputs...); err != nil {
					return err
				}
				style := captions.StyleFromConfig(a.cfg.Captions)
				if cmd.Flags().Changed("margin") {
					if margin < 0 {
						return errors.New("--margin must not be negative")
					}
					style.MarginFromBottomPx = &margin
				}
				if size > 0 {
					style.FontSizePx = size
				}
				if color != "" {
					style.PrimaryColorHex = strings.ToUpper(color)
				}
				if err := a.compositor.PreviewCaptions(runCtx, compose.PreviewRequest{
					Source:     inputs[0],
					Output:     out,
					FrameRatio: ratio,
					Text:       text,
					Style:      style,
				}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Caption preview written to %s\n", out)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Preview image path (default: <video>_caption_preview.jpg in the export directory)")
	cmd.Flags().Float64Var(&ratio, "frame", export.DefaultFrameRatio, "Position of the frame as a fraction of the video duration")
	cmd.Flags().StringVar(&text, "text", compose.DefaultPreviewText, "Sample caption text")
	cmd.Flags().IntVar(&margin, "margin", 0, "Caption distance from the bottom in pixels (default from captions.margin_v)")
	cmd.Flags().IntVar(&size, "size", 0, "Caption font size (default from captions.font_size)")
	cmd.Flags().StringVar(&color, "color", "", "Caption color as #RRGGBB (default from captions.primary_color)")
	return cmd
}

func newInsertCommand(ctx *commandContext) *cobra.Command {
	var (
		output   string
		start    float64
		duration float64
		fade     float64
	)

	cmd := &cobra.Command{
		Use:     "insert <video> <media>",
		Short:   "Show an image or clip full screen over part of a video",
		Example: `  reelsmith insert day.mp4 map.png --at 4 --duration 3 --fade 0.5`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if duration <= 0 {
				return errors.New("--duration must be positive")
			}
			if start < 0 || fade < 0 {
				return errors.New("--at and --fade must not be negative")
			}
			return ctx.runMedia(cmd, func(runCtx context.Context, a *app) error {
				inputs, err := expandInputs(args)
				if err != nil {
					return err
				}
				out, err := mediaOutput(a.cfg, output, inputs[0], "_insert", ".mp4")
				if err != nil {
					return err
				}
				if err := rejectOverwrite(out, inputs...); err != nil {
					return err
				}
				span, err := a.compositor.InsertSegment(runCtx, compose.InsertRequest{
					Base:            inputs[0],
					Media:           inputs[1],
					Output:          out,
					StartSeconds:    start,
					DurationSeconds: duration,
					FadeSeconds:     fade,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Inserted %s at %.2fs for %.2fs (fade %.2fs): %s\n",
					filepath.Base(inputs[1]), span.Start, span.Duration, span.Fade, out)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (default: <video>_insert.mp4 in the export directory)")
	cmd.Flags().Float64Var(&start, "at", 0, "Insert start in seconds")
	cmd.Flags().Float64Var(&duration, "duration", 0, "Insert length in seconds; clipped to the end of the video")
	cmd.Flags().Float64Var(&fade, "fade", 0.5, "Fade in and out length in seconds; at most half the insert")
	_ = cmd.MarkFlagRequired("duration")
	return cmd
}

func newJoinCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:     "join <clip> <clip>...",
		Short:   "Concatenate clips that share codec settings without re-encoding",
		Example: `  reelsmith join intro.mp4 Video_English_12345.mp4 -o final.mp4`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.runMedia(cmd, func(runCtx context.Context, a *app) error {
				clips, err := expandInputs(args)
				if err != nil {
					return err
				}
				out, err := mediaOutput(a.cfg, output, clips[0], "_joined", ".mp4")
				if err != nil {
					return err
				}
				if err := rejectOverwrite(out, clips...); err != nil {
					return err
				}
				if err := a.compositor.Concat(runCtx, clips, out); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Joined %d clips: %s\n", len(clips), out)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (default: <first clip>_joined.mp4 in the export directory)")
	return cmd
}
