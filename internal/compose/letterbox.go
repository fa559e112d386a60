package compose

import (
	"context"
	"strconv"

	"reelsmith/internal/logging"
	"reelsmith/internal/transcode"
)

// LetterboxGeometry is the 9:16 canvas for a landscape source.
type LetterboxGeometry struct {
	Width   int
	Height  int
	PadTop  int
	Applied bool
}

// Letterbox computes the padding for a source of the given size. Sources that
// are not wider than tall are left alone.
func Letterbox(width, height int) LetterboxGeometry {
	if width <= 0 || height <= 0 || width <= height {
		return LetterboxGeometry{Width: width, Height: height}
	}
	newHeight := width * 16 / 9
	if newHeight%2 != 0 {
		newHeight++
	}
	return LetterboxGeometry{
		Width:   width,
		Height:  newHeight,
		PadTop:  (newHeight - height) / 2,
		Applied: true,
	}
}

// LetterboxIfLandscape pads a landscape video to 9:16 and returns the path to
// use downstream: output when padding was applied, source otherwise.
func (c *Compositor) LetterboxIfLandscape(ctx context.Context, source, output string) (string, LetterboxGeometry, error) {
	const op = "letterbox"
	if err := requireFile(op, "video", source); err != nil {
		return "", LetterboxGeometry{}, err
	}
	logger := logging.WithContext(ctx, c.logger)
	width, height, err := c.prober.Dimensions(ctx, source)
	if err != nil {
		logger.Warn("could not read dimensions; skipping letterbox", logging.Error(err))
		return source, LetterboxGeometry{}, nil
	}
	geom := Letterbox(width, height)
	if !geom.Applied {
		logger.Debug("source is not landscape; no letterbox", logging.Int("width", width), logging.Int("height", height))
		return source, geom, nil
	}
	if err := requirePath(op, "output", output); err != nil {
		return "", geom, err
	}
	logger.Info("letterboxing landscape source",
		logging.Int("width", geom.Width),
		logging.Int("height", geom.Height),
		logging.Int("pad_top", geom.PadTop),
	)
	r := transcode.Request{
		Operation: op,
		Inputs:    []transcode.Input{{Path: source}},
		VideoFilter: transcode.Chain{transcode.Positional("pad",
			strconv.Itoa(geom.Width), strconv.Itoa(geom.Height), "0", strconv.Itoa(geom.PadTop), "black")},
		OutputOptions: append(c.encoder.videoOptions(), "-c:a", "copy"),
		Output:        output,
	}
	if err := c.run(ctx, r); err != nil {
		return "", geom, err
	}
	return output, geom, nil
}
