package textlayout

import (
	"fmt"
	"strings"
)

// SideMargin is the total horizontal space reserved around wrapped lines.
const SideMargin = 40

// LineSpacingRatio is the share of font size added below every line.
const LineSpacingRatio = 0.2

// Measurer reports rendered text extents in pixels.
type Measurer interface {
	// Measure returns the bounding box width and height of s.
	Measure(s string) (width, height float64)
	// FontSize returns the nominal font size in pixels.
	FontSize() float64
}

// Size is a canvas size in pixels.
type Size struct {
	Width  int
	Height int
}

// Anchor names which point of the block an explicit position refers to.
type Anchor int

const (
	// AnchorTopLeft puts the block's top-left corner at the position.
	AnchorTopLeft Anchor = iota
	// AnchorMiddle centers the block on the position.
	AnchorMiddle
)

func (a Anchor) String() string {
	if a == AnchorMiddle {
		return "middle"
	}
	return "top-left"
}

// ParseAnchor accepts "top-left" (or "lt") and "middle" (or "mm").
func ParseAnchor(value string) (Anchor, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "top-left", "lt":
		return AnchorTopLeft, nil
	case "middle", "mm":
		return AnchorMiddle, nil
	default:
		return AnchorTopLeft, fmt.Errorf("anchor %q must be top-left or middle", value)
	}
}

// LineAnchor tells the renderer which point of each line its coordinate names.
type LineAnchor int

const (
	// LineTopLeft places each line's top-left at its coordinate.
	LineTopLeft LineAnchor = iota
	// LineLeftMiddle places each line's left edge, vertical middle at its coordinate.
	LineLeftMiddle
)

// Position selects where the block goes. Center ignores X and Y.
type Position struct {
	Center bool
	X, Y   float64
}

// Centered positions the block in the middle of the canvas.
func Centered() Position { return Position{Center: true} }

// At positions the block at (x, y).
func At(x, y float64) Position { return Position{X: x, Y: y} }

// Point is a pixel coordinate.
type Point struct {
	X, Y float64
}

// Block is a wrapped, positioned text block.
type Block struct {
	Lines        []string
	LineHeights  []float64
	LineWidths   []float64
	TotalHeight  float64
	MaxLineWidth float64
	LineAnchor   LineAnchor
	// Origin is the block's top-left corner.
	Origin Point
	// LinePositions are the per-line anchor points.
	LinePositions []Point
}

// Wrap greedily packs words into lines no wider than maxWidth. A word that is
// wider than maxWidth on its own gets its own line unmodified.
func Wrap(text string, m Measurer, maxWidth float64) []string {
	var lines []string
	var current []string
	for _, word := range strings.Fields(text) {
		candidate := strings.Join(append(current, word), " ")
		if w, _ := m.Measure(candidate); w <= maxWidth {
			current = append(current, word)
			continue
		}
		if len(current) > 0 {
			lines = append(lines, strings.Join(current, " "))
			current = []string{word}
			continue
		}
		lines = append(lines, word)
	}
	if len(current) > 0 {
		lines = append(lines, strings.Join(current, " "))
	}
	return lines
}

// Layout wraps text to the canvas width less SideMargin and positions the
// resulting block.
//
// Centered blocks are vertically centered; lines are left-aligned at
// canvas center minus half the widest line, and each line is anchored at the
// vertical middle of its content. With AnchorMiddle an explicit position is
// treated the same way around that point instead of the canvas center. With
// AnchorTopLeft lines stack downward from the point, each anchored at its
// top-left.
func Layout(text string, m Measurer, canvas Size, pos Position, anchor Anchor) Block {
	spacing := m.FontSize() * LineSpacingRatio
	lines := Wrap(text, m, float64(canvas.Width-SideMargin))

	block := Block{
		Lines:         lines,
		LineHeights:   make([]float64, len(lines)),
		LineWidths:    make([]float64, len(lines)),
		LinePositions: make([]Point, len(lines)),
	}
	for i, line := range lines {
		w, h := m.Measure(line)
		block.LineWidths[i] = w
		block.LineHeights[i] = h + spacing
		block.TotalHeight += h + spacing
		if w > block.MaxLineWidth {
			block.MaxLineWidth = w
		}
	}
	if len(lines) > 0 {
		block.TotalHeight -= spacing
	}

	switch {
	case pos.Center:
		block.LineAnchor = LineLeftMiddle
		block.Origin = Point{
			X: float64(canvas.Width)/2 - block.MaxLineWidth/2,
			Y: (float64(canvas.Height) - block.TotalHeight) / 2,
		}
	case anchor == AnchorMiddle:
		block.LineAnchor = LineLeftMiddle
		block.Origin = Point{
			X: pos.X - block.MaxLineWidth/2,
			Y: pos.Y - block.TotalHeight/2,
		}
	default:
		block.LineAnchor = LineTopLeft
		block.Origin = Point{X: pos.X, Y: pos.Y}
	}

	y := block.Origin.Y
	for i, h := range block.LineHeights {
		anchorY := y
		if block.LineAnchor == LineLeftMiddle {
			anchorY = y + (h-spacing)/2
		}
		block.LinePositions[i] = Point{X: block.Origin.X, Y: anchorY}
		y += h
	}
	return block
}
