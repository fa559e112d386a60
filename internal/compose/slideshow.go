package compose

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"reelsmith/internal/fileutil"
	"reelsmith/internal/logging"
	"reelsmith/internal/timeline"
	"reelsmith/internal/transcode"
)

// SlideshowRequest sequences folder media to cover TargetSeconds.
type SlideshowRequest struct {
	Assets            []timeline.MediaAsset
	TargetSeconds     float64
	ImageSeconds      float64
	TransitionSeconds float64
	Output            string
}

// Slideshow schedules slots, normalizes each to the canvas, and joins them
// with crossfades. The result is exactly TargetSeconds long.
func (c *Compositor) Slideshow(ctx context.Context, req SlideshowRequest) (timeline.Schedule, error) {
	const op = "build slideshow"
	if err := requirePath(op, "output", req.Output); err != nil {
		return timeline.Schedule{}, err
	}
	nominal := req.ImageSeconds
	if nominal <= 0 {
		nominal = c.render.ImageDurationSeconds
	}
	transition := req.TransitionSeconds
	if transition < 0 {
		transition = c.render.TransitionSeconds
	}

	logger := logging.WithContext(ctx, c.logger)
	assets := timeline.FillDurations(ctx, c.prober, req.Assets, logger)
	slots, sched, err := timeline.ScheduleSlots(assets, req.TargetSeconds, nominal, transition)
	if err != nil {
		return timeline.Schedule{}, err
	}
	logger.Info("building slideshow",
		logging.Int("slots", sched.Count),
		logging.Int("assets", len(assets)),
		logging.Float64("display_seconds", sched.DisplaySeconds),
		logging.Float64("transition_seconds", sched.TransitionSeconds),
	)

	dir, cleanup, err := c.scratch("slideshow")
	if err != nil {
		return timeline.Schedule{}, err
	}
	defer cleanup()

	clips := make([]string, 0, len(slots))
	for _, slot := range slots {
		if err := ctx.Err(); err != nil {
			return timeline.Schedule{}, err
		}
		clip := filepath.Join(dir, fmt.Sprintf("clip_%04d.mp4", slot.Order))
		if err := c.run(ctx, slotRequest(slot, c.canvas, c.encoder, clip)); err != nil {
			return timeline.Schedule{}, fmt.Errorf("slot %d (%s): %w", slot.Order, slot.Asset.Path, err)
		}
		clips = append(clips, clip)
	}

	if len(clips) == 1 {
		if err := fileutil.CopyFile(clips[0], req.Output); err != nil {
			return timeline.Schedule{}, fmt.Errorf("copy single slot: %w", err)
		}
		return sched, nil
	}
	if err := c.run(ctx, crossfadeRequest(clips, sched, c.canvas, c.encoder, req.Output)); err != nil {
		return timeline.Schedule{}, err
	}
	return sched, nil
}

// NormalizeChain scales media to fit the canvas, centers it on black, and
// fixes pixel format. Video slots are also resampled to the canvas rate.
func NormalizeChain(canvas Canvas, kind timeline.AssetKind) transcode.Chain {
	w, h := strconv.Itoa(canvas.Width), strconv.Itoa(canvas.Height)
	chain := transcode.Chain{
		transcode.Positional("scale", w, h).With(transcode.Arg{Key: "force_original_aspect_ratio", Value: "decrease"}),
		transcode.Positional("pad", w, h, "(ow-iw)/2", "(oh-ih)/2"),
		transcode.Positional("setsar", "1"),
		transcode.Positional("format", "yuv420p"),
	}
	if kind == timeline.AssetVideo {
		chain = append(chain, transcode.Positional("fps", strconv.Itoa(canvas.FPS)))
	}
	return chain
}

func slotRequest(slot timeline.Slot, canvas Canvas, enc Encoder, output string) transcode.Request {
	r := transcode.Request{
		Operation:   fmt.Sprintf("normalize slot %d", slot.Order),
		VideoFilter: NormalizeChain(canvas, slot.Asset.Kind),
		Output:      output,
	}
	if slot.Asset.Kind == timeline.AssetImage {
		r.Inputs = []transcode.Input{transcode.StillImage(slot.Asset.Path, slot.DisplaySeconds, canvas.FPS)}
	} else {
		in := transcode.Input{Path: slot.Asset.Path}
		if slot.NeedsLoop() {
			in = transcode.Looped(slot.Asset.Path)
		}
		r.Inputs = []transcode.Input{in}
		r.OutputOptions = append(r.OutputOptions, "-t", transcode.Seconds(slot.DisplaySeconds))
	}
	r.OutputOptions = append(r.OutputOptions, enc.videoOptions()...)
	r.OutputOptions = append(r.OutputOptions, "-r", strconv.Itoa(canvas.FPS), "-an")
	return r
}

// CrossfadeGraph chains xfade filters over n inputs; the last output is
// labelled vfinal.
func CrossfadeGraph(n int, transition float64, offsets []float64) transcode.Graph {
	graph := make(transcode.Graph, 0, n-1)
	prev := "0:v"
	for i := 1; i < n; i++ {
		next := fmt.Sprintf("vout%d", i)
		if i == n-1 {
			next = "vfinal"
		}
		graph = append(graph, transcode.Node{
			Inputs: []string{prev, fmt.Sprintf("%d:v", i)},
			Chain: transcode.Chain{transcode.NewFilter("xfade",
				"transition", "fade",
				"duration", strconv.FormatFloat(transition, 'f', -1, 64),
				"offset", strconv.FormatFloat(offsets[i-1], 'f', 3, 64),
			)},
			Outputs: []string{next},
		})
		prev = next
	}
	return graph
}

func crossfadeRequest(clips []string, sched timeline.Schedule, canvas Canvas, enc Encoder, output string) transcode.Request {
	inputs := make([]transcode.Input, len(clips))
	for i, clip := range clips {
		inputs[i] = transcode.Input{Path: clip}
	}
	opts := append(enc.videoOptions(), "-r", strconv.Itoa(canvas.FPS))
	return transcode.Request{
		Operation:     "crossfade slots",
		Inputs:        inputs,
		Graph:         CrossfadeGraph(len(clips), sched.TransitionSeconds, sched.Offsets),
		Maps:          []string{transcode.Label("vfinal")},
		OutputOptions: opts,
		Output:        output,
	}
}
