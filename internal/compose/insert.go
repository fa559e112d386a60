package compose

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"reelsmith/internal/logging"
	"reelsmith/internal/services"
	"reelsmith/internal/timeline"
	"reelsmith/internal/transcode"
)

// InsertRequest splices full-screen media into a base video.
type InsertRequest struct {
	Base            string
	Media           string
	Output          string
	StartSeconds    float64
	DurationSeconds float64
	FadeSeconds     float64
}

// InsertSpan is the resolved timing of an insert.
type InsertSpan struct {
	Start    float64
	Duration float64
	Fade     float64
	// HasBefore and HasAfter report whether base video remains on each side.
	HasBefore bool
	HasAfter  bool
}

// ResolveInsert clamps the insert to the base duration and the fade to half
// the inserted span.
func ResolveInsert(baseSeconds, start, duration, fade float64) (InsertSpan, error) {
	for name, v := range map[string]float64{"start": start, "duration": duration, "fade": fade, "base duration": baseSeconds} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return InsertSpan{}, fmt.Errorf("%w: insert %s %.3f", services.ErrInvalidTimelineInput, name, v)
		}
	}
	if duration <= 0 {
		return InsertSpan{}, fmt.Errorf("%w: insert duration must be positive", services.ErrInvalidTimelineInput)
	}
	if start >= baseSeconds {
		return InsertSpan{}, fmt.Errorf("%w: insert starts at %.3fs past base end %.3fs", services.ErrInvalidTimelineInput, start, baseSeconds)
	}
	end := math.Min(start+duration, baseSeconds)
	span := InsertSpan{
		Start:     start,
		Duration:  end - start,
		Fade:      math.Min(fade, (end-start)/2),
		HasBefore: start > 0,
		HasAfter:  end < baseSeconds,
	}
	return span, nil
}

// InsertSegment replaces [start, start+duration) of the base picture with the
// inserted media, fading it in and out. Base audio passes through untouched.
func (c *Compositor) InsertSegment(ctx context.Context, req InsertRequest) (InsertSpan, error) {
	const op = "insert segment"
	if err := requireFiles(op, "base", req.Base, "media", req.Media); err != nil {
		return InsertSpan{}, err
	}
	if err := requirePath(op, "output", req.Output); err != nil {
		return InsertSpan{}, err
	}
	kind, ok := timeline.ClassifyPath(req.Media)
	if !ok {
		return InsertSpan{}, services.Wrap(services.ErrAssetUnreadable, "compose", op, "unsupported media "+req.Media, nil)
	}
	baseSeconds, err := c.prober.Duration(ctx, req.Base)
	if err != nil {
		return InsertSpan{}, err
	}
	width, height, err := c.prober.Dimensions(ctx, req.Base)
	if err != nil {
		return InsertSpan{}, err
	}
	span, err := ResolveInsert(baseSeconds, req.StartSeconds, req.DurationSeconds, req.FadeSeconds)
	if err != nil {
		return InsertSpan{}, err
	}
	logging.WithContext(ctx, c.logger).Info("inserting segment",
		logging.String("media", req.Media),
		logging.Float64("start", span.Start),
		logging.Float64("duration", span.Duration),
		logging.Float64("fade", span.Fade),
	)
	geometry := Canvas{Width: width, Height: height, FPS: c.canvas.FPS}
	return span, c.run(ctx, insertRequest(req, kind, span, geometry, c.encoder))
}

// InsertGraph builds the before/during/after split and concat.
func InsertGraph(span InsertSpan, geometry Canvas) transcode.Graph {
	var graph transcode.Graph
	fps := strconv.Itoa(geometry.FPS)
	baseTail := transcode.Chain{
		transcode.Positional("setpts", "PTS-STARTPTS"),
		transcode.Positional("setsar", "1"),
		transcode.Positional("format", "yuv420p"),
		transcode.Positional("fps", fps),
	}

	beforeIn, afterIn := "0:v", "0:v"
	if span.HasBefore && span.HasAfter {
		graph = append(graph, transcode.Node{
			Inputs:  []string{"0:v"},
			Chain:   transcode.Chain{transcode.Positional("split", "2")},
			Outputs: []string{"base0", "base1"},
		})
		beforeIn, afterIn = "base0", "base1"
	}

	segments := make([]string, 0, 3)
	if span.HasBefore {
		graph = append(graph, transcode.Node{
			Inputs:  []string{beforeIn},
			Chain:   append(transcode.Chain{transcode.NewFilter("trim", "start", "0", "end", transcode.Seconds(span.Start))}, baseTail...),
			Outputs: []string{"before"},
		})
		segments = append(segments, "before")
	}

	during := NormalizeChain(geometry, timeline.AssetVideo)
	during = append(during,
		transcode.NewFilter("trim", "duration", transcode.Seconds(span.Duration)),
		transcode.Positional("setpts", "PTS-STARTPTS"),
	)
	if span.Fade > 0 {
		during = append(during,
			transcode.NewFilter("fade", "t", "in", "st", "0", "d", transcode.Seconds(span.Fade)),
			transcode.NewFilter("fade", "t", "out", "st", transcode.Seconds(span.Duration-span.Fade), "d", transcode.Seconds(span.Fade)),
		)
	}
	graph = append(graph, transcode.Node{Inputs: []string{"1:v"}, Chain: during, Outputs: []string{"during"}})
	segments = append(segments, "during")

	if span.HasAfter {
		graph = append(graph, transcode.Node{
			Inputs:  []string{afterIn},
			Chain:   append(transcode.Chain{transcode.NewFilter("trim", "start", transcode.Seconds(span.Start+span.Duration))}, baseTail...),
			Outputs: []string{"after"},
		})
		segments = append(segments, "after")
	}

	graph = append(graph, transcode.Node{
		Inputs:  segments,
		Chain:   transcode.Chain{transcode.NewFilter("concat", "n", strconv.Itoa(len(segments)), "v", "1", "a", "0")},
		Outputs: []string{"vout"},
	})
	return graph
}

func insertRequest(req InsertRequest, kind timeline.AssetKind, span InsertSpan, geometry Canvas, enc Encoder) transcode.Request {
	var media transcode.Input
	if kind == timeline.AssetImage {
		media = transcode.StillImage(req.Media, span.Duration, geometry.FPS)
	} else {
		media = transcode.Looped(req.Media)
	}
	return transcode.Request{
		Operation:     "insert segment",
		Inputs:        []transcode.Input{{Path: req.Base}, media},
		Graph:         InsertGraph(span, geometry),
		Maps:          []string{transcode.Label("vout"), "0:a?"},
		OutputOptions: append(enc.videoOptions(), "-c:a", "copy"),
		Output:        req.Output,
	}
}
