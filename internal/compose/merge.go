package compose

import (
	"context"
	"strconv"

	"reelsmith/internal/logging"
	"reelsmith/internal/services"
	"reelsmith/internal/timeline"
	"reelsmith/internal/transcode"
)

// MergeRequest puts narration under a video.
type MergeRequest struct {
	Video  string
	Audio  string
	Output string
	Mode   timeline.Mode
	// MusicPath, when set, is looped under the narration at MusicVolume.
	MusicPath   string
	MusicVolume float64
}

// Merge probes both inputs, reconciles their lengths, and muxes the result.
func (c *Compositor) Merge(ctx context.Context, req MergeRequest) (timeline.Plan, error) {
	const op = "merge audio video"
	if err := requireFiles(op, "video", req.Video, "audio", req.Audio); err != nil {
		return timeline.Plan{}, err
	}
	if err := requirePath(op, "output", req.Output); err != nil {
		return timeline.Plan{}, err
	}
	videoSeconds, err := c.prober.Duration(ctx, req.Video)
	if err != nil {
		return timeline.Plan{}, err
	}
	audioSeconds, err := c.prober.Duration(ctx, req.Audio)
	if err != nil {
		return timeline.Plan{}, err
	}
	plan, err := timeline.Reconcile(videoSeconds, audioSeconds, req.Mode)
	if err != nil {
		return timeline.Plan{}, services.Wrap(services.ErrInvalidTimelineInput, "compose", op, req.Video, err)
	}

	// Without music nothing is looped, so narration longer than the video
	// runs to its end instead of being cut.
	if plan.Op == timeline.OpNoTrim && req.MusicPath == "" && audioSeconds > plan.OutputSeconds {
		plan.OutputSeconds = audioSeconds
	}

	logger := logging.WithContext(ctx, c.logger)
	if plan.Op == timeline.OpNoTrim && plan.AudioShortfall > 0 && req.MusicPath == "" {
		logging.WarnWithContext(logger, "narration ends before video; remainder is silent", "silent_tail",
			logging.Float64("silent_seconds", plan.AudioShortfall),
			logging.String(logging.FieldErrorHint, "add background music or use fit-audio mode"),
		)
	}
	logger.Info("merging narration",
		logging.String("op", string(plan.Op)),
		logging.Float64("video_seconds", videoSeconds),
		logging.Float64("audio_seconds", audioSeconds),
		logging.Float64("output_seconds", plan.OutputSeconds),
		logging.Bool("music", req.MusicPath != ""),
	)

	if err := c.run(ctx, c.mergeRequest(req, plan)); err != nil {
		return plan, err
	}
	return plan, nil
}

func (c *Compositor) mergeRequest(req MergeRequest, plan timeline.Plan) transcode.Request {
	video := transcode.Input{Path: req.Video}
	if plan.LoopVideo {
		video = transcode.Looped(req.Video)
	}
	r := transcode.Request{
		Operation: "merge audio video (" + string(plan.Op) + ")",
		Inputs:    []transcode.Input{video, {Path: req.Audio}},
		Output:    req.Output,
	}

	if plan.StreamCopy {
		r.OutputOptions = append(r.OutputOptions, "-c:v", "copy")
	} else {
		r.OutputOptions = append(r.OutputOptions, c.encoder.videoOptions()...)
	}
	r.OutputOptions = append(r.OutputOptions, c.encoder.audioOptions()...)

	if req.MusicPath != "" {
		volume := req.MusicVolume
		if volume <= 0 {
			volume = c.render.MusicVolume
		}
		r.Inputs = append(r.Inputs, transcode.Looped(req.MusicPath))
		r.Graph = transcode.Graph{
			{
				Inputs:  []string{"2:a"},
				Chain:   transcode.Chain{transcode.Positional("volume", strconv.FormatFloat(volume, 'f', -1, 64))},
				Outputs: []string{"music"},
			},
			{
				Inputs:  []string{"1:a", "music"},
				Chain:   transcode.Chain{transcode.NewFilter("amix", "inputs", "2", "duration", "longest")},
				Outputs: []string{"aout"},
			},
		}
		r.Maps = []string{"0:v:0", transcode.Label("aout")}
	} else {
		r.Maps = []string{"0:v:0", "1:a:0"}
	}

	// Music loops forever and looped video never ends, so the cut is explicit.
	r.OutputOptions = append(r.OutputOptions, "-t", transcode.Seconds(plan.OutputSeconds))
	return r
}
