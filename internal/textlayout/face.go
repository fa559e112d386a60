package textlayout

import (
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"reelsmith/internal/services"
)

// FaceMeasurer measures strings with a font face.
type FaceMeasurer struct {
	Face font.Face
	Size float64
}

// Measure returns the ink bounds of s.
func (m FaceMeasurer) Measure(s string) (float64, float64) {
	if s == "" {
		return 0, 0
	}
	bounds, _ := font.BoundString(m.Face, s)
	return fixedToFloat(bounds.Max.X - bounds.Min.X), fixedToFloat(bounds.Max.Y - bounds.Min.Y)
}

// FontSize returns the configured size.
func (m FaceMeasurer) FontSize() float64 {
	return m.Size
}

// LoadFace opens an OpenType/TrueType font at the given pixel size. An empty
// path selects the bundled Go Bold face at that size.
func LoadFace(path string, size float64) (font.Face, float64, error) {
	data := gobold.TTF
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, 0, services.Wrap(services.ErrAssetUnreadable, "textlayout", "load font", path, err)
		}
		data = raw
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, 0, services.Wrap(services.ErrAssetUnreadable, "textlayout", "parse font", path, err)
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, 0, fmt.Errorf("create font face: %w", err)
	}
	return face, size, nil
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
