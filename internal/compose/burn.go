package compose

import (
	"context"

	"reelsmith/internal/captions"
	"reelsmith/internal/transcode"
)

// BurnRequest renders an SRT file into the picture.
type BurnRequest struct {
	Source    string
	Subtitles string
	Output    string
	Style     captions.RenderStyle
}

// BurnCaptions hard-codes subtitles into a video. Audio is copied.
func (c *Compositor) BurnCaptions(ctx context.Context, req BurnRequest) error {
	const op = "burn captions"
	if err := requireFiles(op, "video", req.Source, "subtitles", req.Subtitles); err != nil {
		return err
	}
	if err := requirePath(op, "output", req.Output); err != nil {
		return err
	}
	r := transcode.Request{
		Operation:     op,
		Inputs:        []transcode.Input{{Path: req.Source}},
		VideoFilter:   transcode.Chain{subtitlesFilter(req.Subtitles, req.Style)},
		OutputOptions: append(c.encoder.videoOptions(), "-c:a", "copy"),
		Output:        req.Output,
	}
	return c.run(ctx, r)
}

// BurnCaptionsOnImage renders an SRT file onto a single still image.
func (c *Compositor) BurnCaptionsOnImage(ctx context.Context, req BurnRequest) error {
	const op = "burn captions on image"
	if err := requireFiles(op, "image", req.Source, "subtitles", req.Subtitles); err != nil {
		return err
	}
	if err := requirePath(op, "output", req.Output); err != nil {
		return err
	}
	r := transcode.Request{
		Operation:     op,
		Inputs:        []transcode.Input{{Path: req.Source}},
		VideoFilter:   transcode.Chain{subtitlesFilter(req.Subtitles, req.Style)},
		OutputOptions: []string{"-frames:v", "1"},
		Output:        req.Output,
	}
	return c.run(ctx, r)
}

func subtitlesFilter(path string, style captions.RenderStyle) transcode.Filter {
	f := transcode.Filter{Name: "subtitles", Args: []transcode.Arg{
		{Value: captions.EscapeFilterPath(path), Quote: true},
	}}
	if len(style.Params) > 0 {
		f = f.With(transcode.Arg{Key: "force_style", Value: captions.EscapeFilterValue(style.String()), Quote: true})
	}
	return f
}
