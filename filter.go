package splice

import (
	"image"
	"math"
)

// Filter is the interface for per-pixel effects applied to a rendered layer.
// Both images hold premultiplied RGBA and have the same size.
type Filter interface {
	// Apply renders src into dst with the filter effect.
	Apply(src, dst *image.RGBA)
}

// rows calls fn once per row with the pixel slices of src and dst.
func rows(src, dst *image.RGBA, fn func(s, d []uint8, y int)) {
	b := src.Bounds()
	w := b.Dx() * 4
	so := src.PixOffset(b.Min.X, b.Min.Y)
	db := dst.Bounds()
	do := dst.PixOffset(db.Min.X, db.Min.Y)
	for y := 0; y < b.Dy(); y++ {
		fn(src.Pix[so:so+w], dst.Pix[do:do+w], y)
		so += src.Stride
		do += dst.Stride
	}
}

// --- ColorMatrixFilter ---

// ColorMatrixFilter applies a 4x5 color matrix to un-premultiplied colors.
// The matrix is stored in row-major order: [R_r, R_g, R_b, R_a, R_offset, G_r, ...].
type ColorMatrixFilter struct {
	Matrix [20]float64
}

var identityMatrix = [20]float64{
	1, 0, 0, 0, 0,
	0, 1, 0, 0, 0,
	0, 0, 1, 0, 0,
	0, 0, 0, 1, 0,
}

// NewColorMatrixFilter creates a color matrix filter initialized to the identity.
func NewColorMatrixFilter() *ColorMatrixFilter {
	return &ColorMatrixFilter{Matrix: identityMatrix}
}

// SetBrightness sets the matrix to adjust brightness by the given offset [-1, 1].
func (f *ColorMatrixFilter) SetBrightness(b float64) {
	f.Matrix = [20]float64{
		1, 0, 0, 0, b,
		0, 1, 0, 0, b,
		0, 0, 1, 0, b,
		0, 0, 0, 1, 0,
	}
}

// SetGain sets the matrix to multiply every color channel by m (1 is normal).
func (f *ColorMatrixFilter) SetGain(m float64) {
	f.Matrix = [20]float64{
		m, 0, 0, 0, 0,
		0, m, 0, 0, 0,
		0, 0, m, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// SetContrast sets the matrix to adjust contrast. c=1 is normal, 0=gray, >1 is higher.
func (f *ColorMatrixFilter) SetContrast(c float64) {
	t := (1.0 - c) / 2.0
	f.Matrix = [20]float64{
		c, 0, 0, 0, t,
		0, c, 0, 0, t,
		0, 0, c, 0, t,
		0, 0, 0, 1, 0,
	}
}

// SetSaturation sets the matrix to adjust saturation. s=1 is normal, 0=grayscale.
func (f *ColorMatrixFilter) SetSaturation(s float64) {
	sr := (1 - s) * 0.299
	sg := (1 - s) * 0.587
	sb := (1 - s) * 0.114
	f.Matrix = [20]float64{
		sr + s, sg, sb, 0, 0,
		sr, sg + s, sb, 0, 0,
		sr, sg, sb + s, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// SetHueRotate sets the matrix to rotate hue by deg degrees.
func (f *ColorMatrixFilter) SetHueRotate(deg float64) {
	sin, cos := math.Sincos(deg * math.Pi / 180)
	f.Matrix = [20]float64{
		0.213 + cos*0.787 - sin*0.213, 0.715 - cos*0.715 - sin*0.715, 0.072 - cos*0.072 + sin*0.928, 0, 0,
		0.213 - cos*0.213 + sin*0.143, 0.715 + cos*0.285 + sin*0.140, 0.072 - cos*0.072 - sin*0.283, 0, 0,
		0.213 - cos*0.213 - sin*0.787, 0.715 - cos*0.715 + sin*0.715, 0.072 + cos*0.928 + sin*0.072, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// SetSepia blends toward a sepia tone; amount 0 is unchanged, 1 is full sepia.
func (f *ColorMatrixFilter) SetSepia(amount float64) {
	a := clamp01(amount)
	k := 1 - a
	f.Matrix = [20]float64{
		k + 0.393*a, 0.769 * a, 0.189 * a, 0, 0,
		0.349 * a, k + 0.686*a, 0.168 * a, 0, 0,
		0.272 * a, 0.534 * a, k + 0.131*a, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// SetInvert blends toward the inverted color; amount 1 fully inverts.
func (f *ColorMatrixFilter) SetInvert(amount float64) {
	a := clamp01(amount)
	d := 1 - 2*a
	f.Matrix = [20]float64{
		d, 0, 0, 0, a,
		0, d, 0, 0, a,
		0, 0, d, 0, a,
		0, 0, 0, 1, 0,
	}
}

// SetTint sets the matrix to scale each channel independently.
func (f *ColorMatrixFilter) SetTint(r, g, b float64) {
	f.Matrix = [20]float64{
		r, 0, 0, 0, 0,
		0, g, 0, 0, 0,
		0, 0, b, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Then returns a matrix equivalent to applying f followed by next.
func (f *ColorMatrixFilter) Then(next *ColorMatrixFilter) *ColorMatrixFilter {
	return &ColorMatrixFilter{Matrix: concatMatrix(f.Matrix, next.Matrix)}
}

// concatMatrix composes two 4x5 matrices: the result applies first, then then.
func concatMatrix(first, then [20]float64) [20]float64 {
	var out [20]float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 5; j++ {
			var v float64
			for k := 0; k < 4; k++ {
				v += then[i*5+k] * first[k*5+j]
			}
			if j == 4 {
				v += then[i*5+4]
			}
			out[i*5+j] = v
		}
	}
	return out
}

// Apply renders the color matrix transformation from src into dst.
func (f *ColorMatrixFilter) Apply(src, dst *image.RGBA) {
	m := &f.Matrix
	rows(src, dst, func(s, d []uint8, _ int) {
		for i := 0; i < len(s); i += 4 {
			a := float64(s[i+3]) / 255
			if a == 0 {
				d[i], d[i+1], d[i+2], d[i+3] = 0, 0, 0, 0
				continue
			}
			// Un-premultiply.
			r := float64(s[i]) / 255 / a
			g := float64(s[i+1]) / 255 / a
			b := float64(s[i+2]) / 255 / a
			nr := clamp01(m[0]*r + m[1]*g + m[2]*b + m[3]*a + m[4])
			ng := clamp01(m[5]*r + m[6]*g + m[7]*b + m[8]*a + m[9])
			nb := clamp01(m[10]*r + m[11]*g + m[12]*b + m[13]*a + m[14])
			na := clamp01(m[15]*r + m[16]*g + m[17]*b + m[18]*a + m[19])
			// Re-premultiply.
			d[i] = clampByte(nr * na * 255)
			d[i+1] = clampByte(ng * na * 255)
			d[i+2] = clampByte(nb * na * 255)
			d[i+3] = clampByte(na * 255)
		}
	})
}

// --- BlurFilter ---

// BlurFilter approximates a gaussian blur with three box passes. Radius is
// the standard deviation in pixels. Edges clamp to the nearest pixel.
type BlurFilter struct {
	Radius float64
}

// NewBlurFilter creates a blur filter with the given radius (in pixels).
func NewBlurFilter(radius float64) *BlurFilter {
	if radius < 0 {
		radius = 0
	}
	return &BlurFilter{Radius: radius}
}

// Apply copies src into dst and blurs dst in place.
func (f *BlurFilter) Apply(src, dst *image.RGBA) {
	rows(src, dst, func(s, d []uint8, _ int) { copy(d, s) })
	b := dst.Bounds()
	off := dst.PixOffset(b.Min.X, b.Min.Y)
	blurPlanes(dst.Pix[off:], b.Dx(), b.Dy(), dst.Stride, 4, f.Radius)
}

// boxesForGauss returns n odd box widths whose successive application
// approximates a gaussian of standard deviation sigma.
func boxesForGauss(sigma float64, n int) []int {
	wIdeal := math.Sqrt(12*sigma*sigma/float64(n) + 1)
	wl := int(math.Floor(wIdeal))
	if wl%2 == 0 {
		wl--
	}
	wu := wl + 2
	mIdeal := (12*sigma*sigma - float64(n*wl*wl) - 4*float64(n*wl) - 3*float64(n)) / (-4*float64(wl) - 4)
	m := int(math.Round(mIdeal))
	sizes := make([]int, n)
	for i := range sizes {
		if i < m {
			sizes[i] = wl
		} else {
			sizes[i] = wu
		}
	}
	return sizes
}

// blurPlanes blurs every channel of an interleaved w×h pixel buffer in place.
func blurPlanes(pix []uint8, w, h, stride, channels int, sigma float64) {
	if sigma <= 0 || w == 0 || h == 0 {
		return
	}
	tmp := make([]uint8, len(pix))
	for _, size := range boxesForGauss(sigma, 3) {
		r := (size - 1) / 2
		if r < 1 {
			continue
		}
		for y := 0; y < h; y++ {
			for c := 0; c < channels; c++ {
				boxLine(pix, tmp, y*stride+c, channels, w, r)
			}
		}
		for x := 0; x < w; x++ {
			for c := 0; c < channels; c++ {
				boxLine(tmp, pix, x*channels+c, stride, h, r)
			}
		}
	}
}

// boxLine box-filters n samples spaced step bytes apart starting at off.
func boxLine(src, dst []uint8, off, step, n, r int) {
	at := func(i int) int {
		if i < 0 {
			i = 0
		} else if i >= n {
			i = n - 1
		}
		return int(src[off+i*step])
	}
	span := 2*r + 1
	acc := 0
	for i := -r; i <= r; i++ {
		acc += at(i)
	}
	for i := 0; i < n; i++ {
		dst[off+i*step] = uint8((acc + span/2) / span)
		acc += at(i+r+1) - at(i-r)
	}
}

// --- ChromaKeyFilter ---

// ChromaKeyFilter makes pixels near a key color fully transparent. The cut
// is hard: a pixel is keyed when its RGB distance to Key (0-255 scale) is
// below Similarity·255·√3.
type ChromaKeyFilter struct {
	Key        Color
	Similarity float64
}

// Apply keys src into dst.
func (f *ChromaKeyFilter) Apply(src, dst *image.RGBA) {
	kr, kg, kb := f.Key.R*255, f.Key.G*255, f.Key.B*255
	limit := f.Similarity * 255 * math.Sqrt(3)
	limit2 := limit * limit
	rows(src, dst, func(s, d []uint8, _ int) {
		for i := 0; i < len(s); i += 4 {
			a := s[i+3]
			if a == 0 {
				d[i], d[i+1], d[i+2], d[i+3] = 0, 0, 0, 0
				continue
			}
			af := float64(a) / 255
			dr := float64(s[i])/af - kr
			dg := float64(s[i+1])/af - kg
			db := float64(s[i+2])/af - kb
			if dr*dr+dg*dg+db*db < limit2 {
				d[i], d[i+1], d[i+2], d[i+3] = 0, 0, 0, 0
				continue
			}
			copy(d[i:i+4], s[i:i+4])
		}
	})
}

// --- VignetteFilter ---

// VignetteFilter darkens the frame toward its corners. Strength 1 takes the
// corners to black.
type VignetteFilter struct {
	Strength float64
}

// Apply darkens src into dst; alpha is unchanged.
func (f *VignetteFilter) Apply(src, dst *image.RGBA) {
	b := src.Bounds()
	cx, cy := float64(b.Dx())/2, float64(b.Dy())/2
	norm := cx*cx + cy*cy
	if norm == 0 {
		norm = 1
	}
	rows(src, dst, func(s, d []uint8, y int) {
		dy := float64(y) + 0.5 - cy
		for i := 0; i < len(s); i += 4 {
			dx := float64(i/4) + 0.5 - cx
			k := 1 - clamp01(f.Strength)*(dx*dx+dy*dy)/norm
			d[i] = clampByte(float64(s[i]) * k)
			d[i+1] = clampByte(float64(s[i+1]) * k)
			d[i+2] = clampByte(float64(s[i+2]) * k)
			d[i+3] = s[i+3]
		}
	})
}

// --- Filter application helper ---

// applyFilters runs a filter chain on src, ping-ponging between pooled
// buffers. It returns the buffer holding the result, which is src itself when
// the chain is empty. Any other returned buffer belongs to the caller, who
// must release it to pool.
func applyFilters(filters []Filter, src *image.RGBA, pool *bufferPool) *image.RGBA {
	if len(filters) == 0 {
		return src
	}

	b := src.Bounds()
	current := src
	var scratch *image.RGBA

	for _, f := range filters {
		if scratch == nil || scratch == src {
			scratch = pool.Acquire(b.Dx(), b.Dy())
		}
		f.Apply(current, scratch)
		current, scratch = scratch, current
	}

	if scratch != nil && scratch != src {
		pool.Release(scratch)
	}
	return current
}
