package compose

import (
	"context"

	"reelsmith/internal/transcode"
)

// ExtractAudio writes the source's audio as mono 16 kHz 16-bit WAV.
func (c *Compositor) ExtractAudio(ctx context.Context, source, output string) error {
	const op = "extract audio"
	if err := requireFile(op, "video", source); err != nil {
		return err
	}
	if err := requirePath(op, "output", output); err != nil {
		return err
	}
	return c.run(ctx, transcode.Request{
		Operation:     op,
		Inputs:        []transcode.Input{{Path: source}},
		OutputOptions: []string{"-vn", "-sn", "-dn", "-ac", "1", "-ar", "16000", "-c:a", "pcm_s16le"},
		Output:        output,
	})
}

// ExtractFrame saves the frame at ratio (0..1) of the source duration.
func (c *Compositor) ExtractFrame(ctx context.Context, source, output string, ratio float64) error {
	const op = "extract frame"
	if err := requireFile(op, "video", source); err != nil {
		return err
	}
	if err := requirePath(op, "output", output); err != nil {
		return err
	}
	if ratio < 0 || ratio > 1 {
		ratio = 0.5
	}
	duration, err := c.prober.Duration(ctx, source)
	if err != nil {
		return err
	}
	return c.run(ctx, transcode.Request{
		Operation:     op,
		Inputs:        []transcode.Input{{Path: source, Options: []string{"-ss", transcode.Seconds(duration * ratio)}}},
		OutputOptions: []string{"-frames:v", "1", "-q:v", "2"},
		Output:        output,
	})
}
