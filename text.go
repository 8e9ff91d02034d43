package splice

import (
	"fmt"
	"image"
	"math"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	goRegularOnce sync.Once
	goRegularFont *opentype.Font
	goRegularErr  error
)

func defaultFont() (*opentype.Font, error) {
	goRegularOnce.Do(func() {
		goRegularFont, goRegularErr = opentype.Parse(goregular.TTF)
	})
	return goRegularFont, goRegularErr
}

// faceCache holds one font.Face per pixel size. Faces are not safe for
// concurrent use, so drawing happens under the cache lock.
type faceCache struct {
	mu    sync.Mutex
	faces map[float64]font.Face
}

func (c *faceCache) faceLocked(size float64) (font.Face, error) {
	if f, ok := c.faces[size]; ok {
		return f, nil
	}
	otf, err := defaultFont()
	if err != nil {
		return nil, fmt.Errorf("parse default font: %w", err)
	}
	f, err := opentype.NewFace(otf, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("new face %.1fpx: %w", size, err)
	}
	if c.faces == nil {
		c.faces = make(map[float64]font.Face)
	}
	c.faces[size] = f
	return f, nil
}

// Close releases every cached face.
func (c *faceCache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, f := range c.faces {
		f.Close()
	}
	c.faces = nil
}

// renderText rasterizes tc into a pooled buffer sized to the text's bounding
// box. Lines are centered on the widest line.
func (c *faceCache) renderText(pool *bufferPool, tc *TextContent) (*image.RGBA, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	face, err := c.faceLocked(tc.FontSize)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(tc.Text, "\n")
	m := face.Metrics()
	lineH := m.Height.Ceil()
	widths := make([]fixed.Int26_6, len(lines))
	var maxW fixed.Int26_6
	for i, l := range lines {
		widths[i] = font.MeasureString(face, l)
		maxW = max(maxW, widths[i])
	}
	w := int(math.Ceil(float64(maxW) / 64))
	h := lineH*(len(lines)-1) + (m.Ascent + m.Descent).Ceil()

	buf := pool.Acquire(max(w, 1), max(h, 1))
	d := font.Drawer{
		Dst:  buf,
		Src:  image.NewUniform(tc.Color.RGBA()),
		Face: face,
	}
	for i, l := range lines {
		d.Dot = fixed.Point26_6{
			X: (maxW - widths[i]) / 2,
			Y: m.Ascent + fixed.I(lineH*i),
		}
		d.DrawString(l)
	}
	return buf, nil
}
