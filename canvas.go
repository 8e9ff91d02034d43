package splice

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// Canvas is a frame buffer that layers are composited onto. Pixels are
// premultiplied RGBA.
type Canvas struct {
	img *image.RGBA
}

// NewCanvas creates a w×h transparent canvas.
func NewCanvas(w, h int) *Canvas {
	return &Canvas{img: image.NewRGBA(image.Rect(0, 0, w, h))}
}

// Image returns the underlying image.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int {
	return c.img.Rect.Dx()
}

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int {
	return c.img.Rect.Dy()
}

// Clear fills the canvas with transparent black.
func (c *Canvas) Clear() {
	clear(c.img.Pix)
}

// Fill fills the entire canvas with the given color.
func (c *Canvas) Fill(col Color) {
	draw.Draw(c.img, c.img.Rect, image.NewUniform(col.RGBA()), image.Point{}, draw.Src)
}

// DrawImageAt draws src over the canvas with its top-left at (x, y).
func (c *Canvas) DrawImageAt(src image.Image, x, y int) {
	b := src.Bounds()
	r := image.Rect(x, y, x+b.Dx(), y+b.Dy())
	draw.Draw(c.img, r, src, b.Min, draw.Over)
}

// DrawImageColored draws src over the canvas with full transform and alpha.
// Pure integer translations at full opacity skip resampling.
func (c *Canvas) DrawImageColored(src image.Image, opts DrawOpts) {
	m := drawTransform(opts)
	alpha := opts.Alpha
	if alpha == 0 {
		alpha = 1
	}
	if alpha >= 1 && m[0] == 1 && m[1] == 0 && m[2] == 0 && m[3] == 1 &&
		m[4] == float64(int(m[4])) && m[5] == float64(int(m[5])) {
		c.DrawImageAt(src, int(m[4]), int(m[5]))
		return
	}
	var xopts *xdraw.Options
	if alpha < 1 {
		xopts = &xdraw.Options{SrcMask: image.NewUniform(color.Alpha{A: uint8(clamp01(alpha)*255 + 0.5)})}
	}
	xdraw.BiLinear.Transform(c.img, toAff3(m), src, src.Bounds(), xdraw.Over, xopts)
}

// Resize replaces the canvas with a cleared one of the given dimensions.
func (c *Canvas) Resize(width, height int) {
	c.img = image.NewRGBA(image.Rect(0, 0, width, height))
}

// SubImageCopy returns a copy of the region r.
func (c *Canvas) SubImageCopy(r image.Rectangle) *image.RGBA {
	r = r.Intersect(c.img.Rect)
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Rect, c.img, r.Min, draw.Src)
	return out
}
