package textlayout

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	_ "golang.org/x/image/webp"

	"reelsmith/internal/services"
)

// RenderOptions controls text colors and outline.
type RenderOptions struct {
	Color       color.Color
	StrokeColor color.Color
	StrokeWidth int
}

// Style is the cover text style.
type Style struct {
	FontPath    string
	FontSize    float64
	Color       string
	StrokeColor string
	StrokeWidth int
	Position    Position
	Anchor      Anchor
}

// DefaultStyle is white text with a 2px black outline, centered.
func DefaultStyle() Style {
	return Style{FontSize: 50, Color: "#FFFFFF", StrokeColor: "#000000", StrokeWidth: 2, Position: Centered()}
}

// Render draws block onto dst using face.
func Render(dst draw.Image, face font.Face, block Block, opts RenderOptions) {
	if opts.Color == nil {
		opts.Color = color.White
	}
	if opts.StrokeColor == nil {
		opts.StrokeColor = color.Black
	}
	metrics := face.Metrics()
	ascent := fixedToFloat(metrics.Ascent)
	descent := fixedToFloat(metrics.Descent)

	for i, line := range block.Lines {
		pos := block.LinePositions[i]
		baseline := pos.Y + ascent
		if block.LineAnchor == LineLeftMiddle {
			baseline = pos.Y + (ascent-descent)/2
		}
		dot := fixed.Point26_6{X: floatToFixed(pos.X), Y: floatToFixed(baseline)}

		if opts.StrokeWidth > 0 {
			stroke := &font.Drawer{Dst: dst, Src: image.NewUniform(opts.StrokeColor), Face: face}
			r := opts.StrokeWidth
			for dx := -r; dx <= r; dx++ {
				for dy := -r; dy <= r; dy++ {
					if dx == 0 && dy == 0 || dx*dx+dy*dy > r*r {
						continue
					}
					stroke.Dot = fixed.Point26_6{X: dot.X + fixed.I(dx), Y: dot.Y + fixed.I(dy)}
					stroke.DrawString(line)
				}
			}
		}
		fill := &font.Drawer{Dst: dst, Src: image.NewUniform(opts.Color), Face: face, Dot: dot}
		fill.DrawString(line)
	}
}

// RenderFile decodes src (jpeg, png, or webp), draws text with style, and
// writes dst as jpeg or png depending on its extension.
func RenderFile(src, dst, text string, style Style) (Block, error) {
	img, err := decodeImage(src)
	if err != nil {
		return Block{}, err
	}
	face, size, err := LoadFace(style.FontPath, style.FontSize)
	if err != nil {
		return Block{}, err
	}
	textColor, err := ParseHexColor(style.Color)
	if err != nil {
		return Block{}, err
	}
	strokeColor, err := ParseHexColor(style.StrokeColor)
	if err != nil {
		return Block{}, err
	}

	bounds := img.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(canvas, canvas.Bounds(), img, bounds.Min, draw.Src)

	block := Layout(text, FaceMeasurer{Face: face, Size: size}, Size{Width: bounds.Dx(), Height: bounds.Dy()}, style.Position, style.Anchor)
	Render(canvas, face, block, RenderOptions{Color: textColor, StrokeColor: strokeColor, StrokeWidth: style.StrokeWidth})

	if err := encodeImage(dst, canvas); err != nil {
		return Block{}, err
	}
	return block, nil
}

// ParseHexColor parses #RRGGBB into an opaque color.
func ParseHexColor(hex string) (color.RGBA, error) {
	c := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(c) != 6 {
		return color.RGBA{}, fmt.Errorf("color %q must be #RRGGBB", hex)
	}
	v, err := strconv.ParseUint(c, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("color %q is not hexadecimal", hex)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

func decodeImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrAssetUnreadable, "textlayout", "open image", path, err)
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, services.Wrap(services.ErrAssetUnreadable, "textlayout", "decode image", path, err)
	}
	return img, nil
}

func encodeImage(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure output dir: %w", err)
	}
	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create image: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		err = png.Encode(file, img)
	default:
		err = jpeg.Encode(file, img, &jpeg.Options{Quality: 92})
	}
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("encode image %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("finalize image: %w", err)
	}
	return nil
}

func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}
