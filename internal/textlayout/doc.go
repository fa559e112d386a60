// Package textlayout word-wraps text blocks for still images and draws them.
//
// Layout is pure and works against a Measurer so wrapping and positioning can
// be exercised without real fonts. A block is centred on the canvas, or placed
// at a point either by its top-left corner or by its middle. Render and
// RenderFile draw the block with golang.org/x/image/font faces, falling back
// to the bundled Go Bold face when no font file is configured; RenderFile is
// what cover generation uses.
package textlayout
