package splice

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
)

// Source is the decode collaborator behind a clip. Seek blocks until the
// requested time is decoded (or ctx is done); Frame then returns the pixels
// at that time. Frames returned by Frame are read-only to the compositor.
type Source interface {
	Seek(ctx context.Context, t float64) error
	Frame() (image.Image, error)
	Resolution() (w, h int)
	Close() error
}

var errSourceClosed = errors.New("source closed")

// seekEpsilon absorbs float drift when the sequencer lands on a clip end.
const seekEpsilon = 1e-6

func checkSeekRange(t, duration float64) error {
	if t < -seekEpsilon || t > duration+seekEpsilon {
		return fmt.Errorf("time %.4fs outside [0, %.4fs]", t, duration)
	}
	return nil
}

// StillSource presents one bitmap for its whole duration.
type StillSource struct {
	img      image.Image
	duration float64
	pos      float64
	closed   bool
}

// NewStillSource wraps a decoded bitmap as a source lasting duration seconds.
func NewStillSource(img image.Image, duration float64) *StillSource {
	return &StillSource{img: img, duration: duration}
}

// NewSolidSource returns a w×h still source filled with c.
func NewSolidSource(w, h int, c Color, duration float64) *StillSource {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c.RGBA()), image.Point{}, draw.Src)
	return NewStillSource(img, duration)
}

// Seek moves the cursor; still sources decode nothing.
func (s *StillSource) Seek(ctx context.Context, t float64) error {
	if s.closed {
		return errSourceClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkSeekRange(t, s.duration); err != nil {
		return err
	}
	s.pos = t
	return nil
}

// Frame returns the bitmap.
func (s *StillSource) Frame() (image.Image, error) {
	if s.closed {
		return nil, errSourceClosed
	}
	return s.img, nil
}

// Resolution returns the bitmap size.
func (s *StillSource) Resolution() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// Position returns the last seeked time.
func (s *StillSource) Position() float64 { return s.pos }

// Close releases the source; further seeks fail.
func (s *StillSource) Close() error {
	s.closed = true
	return nil
}

// FuncSource generates its frames from a function of source time. It is the
// simplest way to plug procedural or test footage into a clip.
type FuncSource struct {
	w, h     int
	duration float64
	render   func(t float64) image.Image
	cur      image.Image
	closed   bool
}

// NewFuncSource returns a w×h source of the given duration whose frame at
// time t is render(t).
func NewFuncSource(w, h int, duration float64, render func(t float64) image.Image) *FuncSource {
	return &FuncSource{w: w, h: h, duration: duration, render: render}
}

// Seek renders the frame for t.
func (s *FuncSource) Seek(ctx context.Context, t float64) error {
	if s.closed {
		return errSourceClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkSeekRange(t, s.duration); err != nil {
		return err
	}
	s.cur = s.render(clamp(t, 0, s.duration))
	return nil
}

// Frame returns the most recently rendered frame.
func (s *FuncSource) Frame() (image.Image, error) {
	if s.closed {
		return nil, errSourceClosed
	}
	if s.cur == nil {
		return nil, errors.New("frame requested before seek")
	}
	return s.cur, nil
}

// Resolution returns the generated frame size.
func (s *FuncSource) Resolution() (int, int) { return s.w, s.h }

// Close releases the source.
func (s *FuncSource) Close() error {
	s.closed = true
	s.cur = nil
	return nil
}
