package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"reelsmith/internal/config"
	"reelsmith/internal/export"
	"reelsmith/internal/subtitles"
	"reelsmith/internal/timeline"
)

// coverFlags select an optional cover image per exported video.
type coverFlags struct {
	enabled bool
	topic   string
	image   string
	ratio   float64
	text    coverStyleFlags
}

func (f *coverFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.enabled, "cover", false, "Render a cover image next to each video (default from export.cover_enabled)")
	cmd.Flags().StringVar(&f.topic, "cover-topic", "", "Cover text, translated per language (defaults to the video title)")
	cmd.Flags().StringVar(&f.image, "cover-image", "", "Base image for covers (defaults to a frame of the exported video)")
	cmd.Flags().Float64Var(&f.ratio, "cover-frame", export.DefaultFrameRatio, "Position of the cover frame as a fraction of the video duration")
	f.text.register(cmd, "cover-")
}

// build returns the cover request, or nil when covers are off.
func (f *coverFlags) build(cfg *config.Config) (*export.Cover, error) {
	if !f.enabled && !cfg.Export.CoverEnabled && f.topic == "" && f.image == "" {
		return nil, nil
	}
	if f.ratio < 0 || f.ratio > 1 {
		return nil, fmt.Errorf("--cover-frame must be between 0 and 1, got %v", f.ratio)
	}
	image, err := config.ExpandPath(f.image)
	if err != nil {
		return nil, err
	}
	style, err := f.text.style(cfg)
	if err != nil {
		return nil, err
	}
	return &export.Cover{Topic: f.topic, BaseImage: image, FrameRatio: f.ratio, Style: style}, nil
}

func newNarrateCommand(ctx *commandContext) *cobra.Command {
	var (
		scriptFiles []string
		scriptText  []string
		titleFlags  []string
		videoPath   string
		folderPath  string
		modeFlag    string
		captionFlag string
		covers      coverFlags
		batch       batchFlags
	)

	cmd := &cobra.Command{
		Use:   "narrate",
		Short: "Voice per-language scripts over a background video or media folder",
		Example: `  reelsmith narrate --script en=trip_en.txt --script th=trip_th.txt --video beach.mp4
  reelsmith narrate --text "ja=こんにちは" --folder ./photos --captions word --cover`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			order, scripts, err := readScripts(scriptFiles, scriptText)
			if err != nil {
				return err
			}
			if len(order) == 0 {
				return errors.New("provide at least one --script or --text")
			}
			titles, err := parseTitles(titleFlags)
			if err != nil {
				return err
			}
			mode, err := timeline.ParseMode(modeFlag)
			if err != nil {
				return err
			}
			var granularity subtitles.Granularity
			if captionFlag != "" {
				if granularity, err = subtitles.ParseGranularity(captionFlag); err != nil {
					return err
				}
			}
			video, err := config.ExpandPath(videoPath)
			if err != nil {
				return err
			}
			folder, err := config.ExpandPath(folderPath)
			if err != nil {
				return err
			}

			tasks := make([]export.Task, 0, len(order))
			for _, lang := range order {
				tasks = append(tasks, export.Task{Language: lang, Script: scripts[lang], Title: titles[lang]})
			}

			return ctx.runBatch(cmd, batch, func(runCtx context.Context, a *app) (export.Report, error) {
				cover, err := covers.build(a.cfg)
				if err != nil {
					return export.Report{}, err
				}
				return a.runner.RunNarration(runCtx, export.NarrationBatch{
					Tasks:       tasks,
					Video:       video,
					Mode:        mode,
					Folder:      folder,
					Granularity: granularity,
					Cover:       cover,
				})
			})
		},
	}

	cmd.Flags().StringArrayVar(&scriptFiles, "script", nil, "Script file for a language as LANG=PATH (repeatable)")
	cmd.Flags().StringArrayVar(&scriptText, "text", nil, "Inline script for a language as LANG=TEXT (repeatable)")
	cmd.Flags().StringArrayVar(&titleFlags, "title", nil, "Video title for a language as LANG=TITLE (repeatable)")
	cmd.Flags().StringVar(&videoPath, "video", "", "Background video")
	cmd.Flags().StringVar(&folderPath, "folder", "", "Folder of images and clips sequenced into a slideshow")
	cmd.Flags().StringVar(&modeFlag, "mode", "fit_audio", "Background fit: fit_audio or keep_video_length")
	cmd.Flags().StringVar(&captionFlag, "captions", "", "Caption granularity: sentence or word (default from captions.mode)")
	covers.register(cmd)
	batch.register(cmd)
	return cmd
}
