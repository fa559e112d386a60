package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"reelsmith/internal/config"
	"reelsmith/internal/export"
)

func newCoverCommand(ctx *commandContext) *cobra.Command {
	var (
		languages []string
		imagePath string
		videoPath string
		ratio     float64
		text      coverStyleFlags
		batch     batchFlags
	)

	cmd := &cobra.Command{
		Use:     "cover <topic>",
		Short:   "Render translated cover images without producing video",
		Example: `  reelsmith cover "Beach day" --image beach.jpg --lang en --lang th
  reelsmith cover "Beach day" --video day.mp4 --size 96 --position 540,400 --anchor middle`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			topic := strings.TrimSpace(strings.Join(args, " "))
			if topic == "" {
				return errors.New("cover topic is required")
			}
			if imagePath == "" && videoPath == "" {
				return errors.New("provide --image or --video")
			}
			if ratio < 0 || ratio > 1 {
				return fmt.Errorf("--frame must be between 0 and 1, got %v", ratio)
			}
			image, err := config.ExpandPath(imagePath)
			if err != nil {
				return err
			}
			video, err := config.ExpandPath(videoPath)
			if err != nil {
				return err
			}
			return ctx.runBatch(cmd, batch, func(runCtx context.Context, a *app) (export.Report, error) {
				langs := languages
				if len(langs) == 0 {
					langs = a.cfg.Export.Languages
				}
				style, err := text.style(a.cfg)
				if err != nil {
					return export.Report{}, err
				}
				return a.runner.RunCovers(runCtx, export.CoverBatch{
					Topic:      topic,
					Languages:  langs,
					BaseImage:  image,
					Video:      video,
					FrameRatio: ratio,
					Style:      style,
				})
			})
		},
	}

	cmd.Flags().StringSliceVarP(&languages, "lang", "l", nil, "Target language (repeatable; default from export.languages)")
	cmd.Flags().StringVar(&imagePath, "image", "", "Base image to draw on")
	cmd.Flags().StringVar(&videoPath, "video", "", "Video to take the base frame from")
	cmd.Flags().Float64Var(&ratio, "frame", export.DefaultFrameRatio, "Position of the base frame as a fraction of the video duration")
	text.register(cmd, "")
	batch.register(cmd)
	return cmd
}
