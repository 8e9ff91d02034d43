package splice

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
)

// PNGSink writes each frame as a numbered PNG file in the directory named by
// SinkConfig.Path. Abort removes every file written so far.
type PNGSink struct {
	dir     string
	written []string
	open    bool
}

// NewPNGSink returns a PNG sequence sink.
func NewPNGSink() *PNGSink {
	return &PNGSink{}
}

// Formats returns the single format a PNGSink writes.
func (s *PNGSink) Formats() []string { return []string{"png"} }

// Open creates the output directory.
func (s *PNGSink) Open(cfg SinkConfig) error {
	if cfg.Path == "" {
		return errors.New("png sink: output directory required")
	}
	if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
		return fmt.Errorf("png sink: mkdir %s: %w", cfg.Path, err)
	}
	s.dir = cfg.Path
	s.written = s.written[:0]
	s.open = true
	return nil
}

// WriteFrame encodes the frame to <dir>/frame_<index>.png.
func (s *PNGSink) WriteFrame(f Frame) error {
	if !s.open {
		return errSinkNotOpen
	}
	path := filepath.Join(s.dir, fmt.Sprintf("frame_%06d.png", f.Index))
	if err := writePNG(path, toNRGBA(f.Image)); err != nil {
		return err
	}
	s.written = append(s.written, path)
	return nil
}

// Close finishes the sequence.
func (s *PNGSink) Close() error {
	s.open = false
	return nil
}

// Abort removes the frames written by this stream.
func (s *PNGSink) Abort() error {
	s.open = false
	var errs []error
	for _, p := range s.written {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	s.written = s.written[:0]
	return errors.Join(errs...)
}

// Written returns the paths written by the current stream.
func (s *PNGSink) Written() []string {
	return append([]string(nil), s.written...)
}

// toNRGBA converts premultiplied RGBA to straight-alpha NRGBA.
func toNRGBA(src *image.RGBA) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):][:w*4]
		out := img.Pix[y*img.Stride:][:w*4]
		for i := 0; i < len(row); i += 4 {
			r, g, bl, a := row[i], row[i+1], row[i+2], row[i+3]
			if a > 0 && a < 255 {
				r = uint8(min(int(r)*255/int(a), 255))
				g = uint8(min(int(g)*255/int(a), 255))
				bl = uint8(min(int(bl)*255/int(a), 255))
			}
			out[i] = r
			out[i+1] = g
			out[i+2] = bl
			out[i+3] = a
		}
	}
	return img
}

// writePNG encodes an image to a PNG file at the given path.
func writePNG(path string, img *image.NRGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
