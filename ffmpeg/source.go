package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/phanxgames/splice"
	"github.com/sirupsen/logrus"
)

var _ splice.Source = (*Source)(nil)

var errClosed = errors.New("ffmpeg source closed")

// Source decodes single frames from a video file. Each Seek runs one ffmpeg
// process that emits exactly one RGBA frame at the requested time.
type Source struct {
	exec *Executor
	info VideoInfo
	log  *logrus.Entry

	mu     sync.Mutex
	frame  *image.RGBA
	pos    float64
	closed bool
}

// Open probes path and returns a source for it.
func (e *Executor) Open(ctx context.Context, path string) (*Source, error) {
	info, err := e.Probe(ctx, path)
	if err != nil {
		return nil, err
	}
	return newSource(e, *info), nil
}

func newSource(e *Executor, info VideoInfo) *Source {
	return &Source{
		exec: e,
		info: info,
		log:  e.log.WithField("path", info.Path),
		pos:  -1,
	}
}

// Opener returns a splice.SourceOpener that opens videos with this executor.
func (e *Executor) Opener(ctx context.Context) splice.SourceOpener {
	return func(path string) (splice.Source, float64, error) {
		src, err := e.Open(ctx, path)
		if err != nil {
			return nil, 0, err
		}
		return src, src.info.Duration, nil
	}
}

// Info returns the probed metadata.
func (s *Source) Info() VideoInfo { return s.info }

// Resolution returns the video size.
func (s *Source) Resolution() (int, int) { return s.info.Width, s.info.Height }

// Seek decodes the frame shown at t seconds.
func (s *Source) Seek(ctx context.Context, t float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}
	if t < -1e-6 || t > s.info.Duration+1e-6 {
		return fmt.Errorf("time %.4fs outside [0, %.4fs]", t, s.info.Duration)
	}
	t = s.clampTime(t)
	if s.frame != nil && t == s.pos {
		return nil
	}

	buf, err := s.exec.output(ctx, frameArgs(s.info.Path, t))
	if err != nil {
		return err
	}
	size := s.info.Width * s.info.Height * 4
	if len(buf) < size {
		return fmt.Errorf("%w at %.4fs: got %d of %d bytes", errNoFrame, t, len(buf), size)
	}
	if s.frame == nil {
		s.frame = image.NewRGBA(image.Rect(0, 0, s.info.Width, s.info.Height))
	}
	copy(s.frame.Pix, buf[:size])
	premultiply(s.frame.Pix)
	s.pos = t
	s.log.WithFields(logrus.Fields{
		"function": "Seek",
		"time":     t,
	}).Trace("decoded frame")
	return nil
}

// clampTime keeps t inside the last frame so a seek to the clip end still
// yields a picture.
func (s *Source) clampTime(t float64) float64 {
	last := s.info.Duration
	if s.info.FPS > 0 {
		last -= 1 / s.info.FPS
	}
	return max(0, min(t, last))
}

// Frame returns the frame decoded by the last Seek.
func (s *Source) Frame() (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errClosed
	}
	if s.frame == nil {
		return nil, errNoFrame
	}
	return s.frame, nil
}

// Close releases the decoded frame.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.frame = nil
	return nil
}

// frameArgs extracts the single frame at t as raw RGBA on stdout.
func frameArgs(path string, t float64) []string {
	return []string{
		"-ss", formatSeconds(t),
		"-i", path,
		"-frames:v", "1",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"pipe:1",
	}
}

// premultiply converts straight alpha RGBA in place.
func premultiply(pix []uint8) {
	for i := 0; i+3 < len(pix); i += 4 {
		a := uint32(pix[i+3])
		if a == 255 {
			continue
		}
		pix[i] = uint8(uint32(pix[i]) * a / 255)
		pix[i+1] = uint8(uint32(pix[i+1]) * a / 255)
		pix[i+2] = uint8(uint32(pix[i+2]) * a / 255)
	}
}
