package main

import (
	"context"

	"github.com/spf13/cobra"

	"reelsmith/internal/config"
	"reelsmith/internal/dub"
	"reelsmith/internal/export"
)

func newDubCommand(ctx *commandContext) *cobra.Command {
	var (
		languages []string
		title     string
		modeFlag  string
		covers    coverFlags
		batch     batchFlags
	)

	cmd := &cobra.Command{
		Use:   "dub <source-video>",
		Short: "Subtitle or fully dub a video into several languages",
		Example: `  reelsmith dub talk.mp4 --lang th --lang ja
  reelsmith dub talk.mp4 --mode full_dub --lang es --title "Street Food"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := dub.ParseMode(modeFlag)
			if err != nil {
				return err
			}
			source, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			return ctx.runBatch(cmd, batch, func(runCtx context.Context, a *app) (export.Report, error) {
				langs := languages
				if len(langs) == 0 {
					langs = a.cfg.Export.Languages
				}
				cover, err := covers.build(a.cfg)
				if err != nil {
					return export.Report{}, err
				}
				return a.runner.RunDub(runCtx, export.DubBatch{
					Source:    source,
					Title:     title,
					Mode:      mode,
					Languages: langs,
					Cover:     cover,
				})
			})
		},
	}

	cmd.Flags().StringSliceVarP(&languages, "lang", "l", nil, "Target language (repeatable; default from export.languages)")
	cmd.Flags().StringVar(&title, "title", "", "Title used for output names")
	cmd.Flags().StringVar(&modeFlag, "mode", "subtitle_only", "subtitle_only or full_dub")
	covers.register(cmd)
	batch.register(cmd)
	return cmd
}
