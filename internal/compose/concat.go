package compose

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"reelsmith/internal/transcode"
)

// Concat joins clips that share codec parameters with the concat demuxer.
// Streams are copied.
func (c *Compositor) Concat(ctx context.Context, clips []string, output string) error {
	const op = "concatenate clips"
	if len(clips) == 0 {
		return requirePath(op, "clip", "")
	}
	for i, clip := range clips {
		if err := requireFile(op, fmt.Sprintf("clip %d", i), clip); err != nil {
			return err
		}
	}
	if err := requirePath(op, "output", output); err != nil {
		return err
	}

	dir, cleanup, err := c.scratch("concat")
	if err != nil {
		return err
	}
	defer cleanup()

	list := filepath.Join(dir, "list.txt")
	if err := os.WriteFile(list, []byte(ConcatList(clips)), 0o644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	return c.run(ctx, transcode.Request{
		Operation:     op,
		Inputs:        []transcode.Input{{Path: list, Options: []string{"-f", "concat", "-safe", "0"}}},
		OutputOptions: []string{"-c", "copy"},
		Output:        output,
	})
}

// ConcatList renders a concat demuxer script. Paths are made absolute so the
// list can live in a scratch directory.
func ConcatList(clips []string) string {
	var b strings.Builder
	for _, clip := range clips {
		if abs, err := filepath.Abs(clip); err == nil {
			clip = abs
		}
		b.WriteString("file '")
		b.WriteString(strings.ReplaceAll(clip, "'", `'\''`))
		b.WriteString("'\n")
	}
	return b.String()
}
