package compose

import (
	"context"
	"strconv"

	"reelsmith/internal/logging"
	"reelsmith/internal/transcode"
)

// LogoRequest overlays a logo image on a video.
type LogoRequest struct {
	Video  string
	Logo   string
	Output string
	// Scale is the logo width as a share of video width; 0 uses the configured scale.
	Scale float64
	// X and Y place the logo's top-left corner; nil uses the configured position.
	X, Y *int
}

// OverlayLogo scales the logo relative to the video width and overlays it.
func (c *Compositor) OverlayLogo(ctx context.Context, req LogoRequest) error {
	const op = "overlay logo"
	if err := requireFiles(op, "video", req.Video, "logo", req.Logo); err != nil {
		return err
	}
	if err := requirePath(op, "output", req.Output); err != nil {
		return err
	}

	width, _, err := c.prober.Dimensions(ctx, req.Video)
	if err != nil {
		logging.WithContext(ctx, c.logger).Warn("logo overlay falling back to canvas width",
			logging.Error(err),
			logging.Int("width", c.canvas.Width),
		)
		width = c.canvas.Width
	}
	scale := req.Scale
	if scale <= 0 {
		scale = c.render.LogoScale
	}
	x, y := c.render.LogoX, c.render.LogoY
	if req.X != nil {
		x = *req.X
	}
	if req.Y != nil {
		y = *req.Y
	}
	return c.run(ctx, logoRequest(req, LogoWidth(width, scale), x, y, c.encoder))
}

// LogoWidth is the scaled logo width, truncated to whole pixels.
func LogoWidth(videoWidth int, scale float64) int {
	return int(float64(videoWidth) * scale)
}

func logoRequest(req LogoRequest, logoWidth, x, y int, enc Encoder) transcode.Request {
	return transcode.Request{
		Operation: "overlay logo",
		Inputs:    []transcode.Input{{Path: req.Video}, {Path: req.Logo}},
		Graph: transcode.Graph{
			{
				Inputs:  []string{"1:v"},
				Chain:   transcode.Chain{transcode.Positional("scale", strconv.Itoa(logoWidth), "-1")},
				Outputs: []string{"logo"},
			},
			{
				Inputs:  []string{"0:v", "logo"},
				Chain:   transcode.Chain{transcode.NewFilter("overlay", "x", strconv.Itoa(x), "y", strconv.Itoa(y))},
				Outputs: []string{"vout"},
			},
		},
		Maps:          []string{transcode.Label("vout"), "0:a?"},
		OutputOptions: append(enc.videoOptions(), "-c:a", "copy"),
		Output:        req.Output,
	}
}
