package splice

import (
	"fmt"
	"image"
	"math"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/image/vector"
)

// MaskShape selects how an overlay's alpha is clipped.
type MaskShape string

const (
	MaskNone         MaskShape = "none"
	MaskCircle       MaskShape = "circle"
	MaskRectangle    MaskShape = "rectangle"
	MaskCustomVector MaskShape = "custom-vector"
)

// Mask clips an overlay's alpha channel. CornerRadius is a percentage of the
// shorter side and only applies to rectangles. Feather softens circle and
// rectangle edges by the given pixel radius. VectorData holds an SVG document
// for custom-vector masks.
type Mask struct {
	Shape        MaskShape `yaml:"shape"`
	CornerRadius float64   `yaml:"corner_radius"`
	Feather      float64   `yaml:"feather"`
	VectorData   []byte    `yaml:"-"`
}

// Validate checks Feather ≥ 0 and 0 ≤ CornerRadius ≤ 50.
func (m Mask) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Shape, validation.In(MaskNone, MaskCircle, MaskRectangle, MaskCustomVector)),
		validation.Field(&m.CornerRadius, validation.Min(0.0), validation.Max(50.0)),
		validation.Field(&m.Feather, validation.Min(0.0)),
		validation.Field(&m.VectorData, validation.When(m.Shape == MaskCustomVector, validation.Required)),
	)
}

// IsNone reports whether the mask leaves the layer untouched.
func (m Mask) IsNone() bool {
	return m.Shape == "" || m.Shape == MaskNone
}

func (m Mask) clone() Mask {
	if m.VectorData != nil {
		m.VectorData = append([]byte(nil), m.VectorData...)
	}
	return m
}

// applyMask multiplies buf's alpha by the mask coverage. vm is the decoded
// vector for custom-vector masks. With hardEdges, coverage is thresholded and
// feather is ignored.
func applyMask(buf *image.RGBA, m Mask, vm VectorMask, hardEdges bool) error {
	if m.IsNone() {
		return nil
	}
	b := buf.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	var cov *image.Alpha
	switch m.Shape {
	case MaskCircle, MaskRectangle:
		if !hardEdges && m.Feather > 0 {
			cov = featheredCoverage(m, w, h)
		} else {
			cov = shapeCoverage(m, w, h, 0)
		}
	case MaskCustomVector:
		if vm == nil {
			return fmt.Errorf("%w: vector mask not loaded", ErrAssetDecode)
		}
		cov = vm.Rasterize(w, h)
	default:
		return fmt.Errorf("unknown mask shape %q", m.Shape)
	}
	if hardEdges {
		thresholdAlpha(cov)
	}
	multiplyCoverage(buf, cov)
	return nil
}

// shapeCoverage rasterizes a circle or rounded rectangle filling w×h,
// centered in a buffer with pad transparent pixels on every side.
func shapeCoverage(m Mask, w, h, pad int) *image.Alpha {
	z := vector.NewRasterizer(w+2*pad, h+2*pad)
	fw, fh := float32(w), float32(h)
	off := float32(pad)
	side := min(fw, fh)
	if m.Shape == MaskCircle {
		x0, y0 := off+(fw-side)/2, off+(fh-side)/2
		roundedRect(z, x0, y0, x0+side, y0+side, side/2)
	} else {
		roundedRect(z, off, off, off+fw, off+fh, side*float32(m.CornerRadius)/100)
	}
	cov := image.NewAlpha(image.Rect(0, 0, w+2*pad, h+2*pad))
	z.Draw(cov, cov.Bounds(), image.Opaque, image.Point{})
	return cov
}

// featheredCoverage blurs the shape coverage by m.Feather. The shape is
// rasterized with a transparent margin wider than the blur so edges lying on
// the layer bounds fade out too.
func featheredCoverage(m Mask, w, h int) *image.Alpha {
	pad := int(math.Ceil(3*m.Feather)) + 1
	padded := shapeCoverage(m, w, h, pad)
	pw, ph := w+2*pad, h+2*pad
	blurPlanes(padded.Pix, pw, ph, padded.Stride, 1, m.Feather)
	cov := image.NewAlpha(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		copy(cov.Pix[y*cov.Stride:y*cov.Stride+w], padded.Pix[(y+pad)*padded.Stride+pad:])
	}
	return cov
}

// roundedRect adds a closed rounded rectangle path; arcs are cubic approximations.
func roundedRect(z *vector.Rasterizer, x0, y0, x1, y1, r float32) {
	if r <= 0 {
		z.MoveTo(x0, y0)
		z.LineTo(x1, y0)
		z.LineTo(x1, y1)
		z.LineTo(x0, y1)
		z.ClosePath()
		return
	}
	const k = 0.5522848
	c := r * (1 - k)
	z.MoveTo(x0+r, y0)
	z.LineTo(x1-r, y0)
	z.CubeTo(x1-c, y0, x1, y0+c, x1, y0+r)
	z.LineTo(x1, y1-r)
	z.CubeTo(x1, y1-c, x1-c, y1, x1-r, y1)
	z.LineTo(x0+r, y1)
	z.CubeTo(x0+c, y1, x0, y1-c, x0, y1-r)
	z.LineTo(x0, y0+r)
	z.CubeTo(x0, y0+c, x0+c, y0, x0+r, y0)
	z.ClosePath()
}

func thresholdAlpha(a *image.Alpha) {
	for i, v := range a.Pix {
		if v >= 128 {
			a.Pix[i] = 0xff
		} else {
			a.Pix[i] = 0
		}
	}
}

// multiplyCoverage keeps buf where cov is opaque (destination-in).
func multiplyCoverage(buf *image.RGBA, cov *image.Alpha) {
	b := buf.Bounds()
	for y := 0; y < b.Dy(); y++ {
		row := buf.Pix[buf.PixOffset(b.Min.X, b.Min.Y+y):]
		crow := cov.Pix[y*cov.Stride:]
		for x := 0; x < b.Dx(); x++ {
			c := uint32(crow[x])
			if c == 0xff {
				continue
			}
			p := row[x*4 : x*4+4]
			p[0] = uint8((uint32(p[0])*c + 127) / 255)
			p[1] = uint8((uint32(p[1])*c + 127) / 255)
			p[2] = uint8((uint32(p[2])*c + 127) / 255)
			p[3] = uint8((uint32(p[3])*c + 127) / 255)
		}
	}
}
