package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"reelsmith/internal/config"
	"reelsmith/internal/export"
	"reelsmith/internal/textlayout"
)

// coverStyleFlags override the [cover] text style for one run.
type coverStyleFlags struct {
	size        int
	color       string
	strokeColor string
	stroke      int
	position    string
	anchor      string
}

func (f *coverStyleFlags) register(cmd *cobra.Command, prefix string) {
	flags := cmd.Flags()
	flags.IntVar(&f.size, prefix+"size", 0, "Cover font size in pixels (default from cover.font_size)")
	flags.StringVar(&f.color, prefix+"color", "", "Cover text color as #RRGGBB (default from cover.color)")
	flags.StringVar(&f.strokeColor, prefix+"stroke-color", "", "Cover outline color as #RRGGBB (default from cover.stroke_color)")
	flags.IntVar(&f.stroke, prefix+"stroke", -1, "Cover outline width in pixels (default from cover.stroke_width)")
	flags.StringVar(&f.position, prefix+"position", "", `Cover text position, "center" or "x,y" (default from cover.position)`)
	flags.StringVar(&f.anchor, prefix+"anchor", "", "Point of the text block at x,y: middle or top-left (default from cover.anchor)")
}

// style layers the flags over the configured cover style.
func (f *coverStyleFlags) style(cfg *config.Config) (textlayout.Style, error) {
	merged := *cfg
	cover := &merged.Cover
	if f.size < 0 {
		return textlayout.Style{}, fmt.Errorf("cover size must be positive, got %d", f.size)
	}
	if f.size > 0 {
		cover.FontSize = f.size
	}
	for _, c := range []struct {
		value  string
		target *string
	}{
		{f.color, &cover.Color},
		{f.strokeColor, &cover.StrokeColor},
	} {
		value := strings.TrimSpace(c.value)
		if value == "" {
			continue
		}
		if _, err := textlayout.ParseHexColor(value); err != nil {
			return textlayout.Style{}, err
		}
		*c.target = strings.ToUpper(value)
	}
	if f.stroke >= 0 {
		cover.StrokeWidth = f.stroke
	}
	if position := strings.TrimSpace(f.position); position != "" {
		cover.Position = position
	}
	if anchor := strings.TrimSpace(f.anchor); anchor != "" {
		cover.Anchor = anchor
	}
	return export.CoverStyle(&merged)
}
