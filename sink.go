package splice

import (
	"errors"
	"image"
	"slices"
	"sync"
)

// SinkConfig describes the stream a sink receives.
type SinkConfig struct {
	Format    string
	Path      string
	Width     int
	Height    int
	FrameRate float64
}

// Frame is one composited output frame.
type Frame struct {
	Index int
	// Time is the timeline time the frame was rendered at.
	Time  float64
	Image *image.RGBA
}

// Sink receives frames in increasing time order. Encoding and muxing are
// entirely the sink's business.
type Sink interface {
	// Formats lists the output formats the sink can write.
	Formats() []string
	Open(cfg SinkConfig) error
	WriteFrame(f Frame) error
	// Close finalizes the output.
	Close() error
	// Abort discards any partially written output.
	Abort() error
}

func supportsFormat(s Sink, format string) bool {
	return slices.Contains(s.Formats(), format)
}

var errSinkNotOpen = errors.New("sink not open")

// MemorySink keeps frames in memory. It accepts any format.
type MemorySink struct {
	mu      sync.Mutex
	cfg     SinkConfig
	frames  []Frame
	open    bool
	closed  bool
	aborted bool
	// OnWrite, when set, is called after each frame is stored.
	OnWrite func(Frame)
}

// NewMemorySink returns an empty memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Formats returns the format names a MemorySink accepts.
func (s *MemorySink) Formats() []string {
	return []string{"memory", "png", "mp4", "webm", "mov", "gif"}
}

// Open starts a new stream, dropping any frames held from a previous one.
func (s *MemorySink) Open(cfg SinkConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	s.frames = nil
	s.open, s.closed, s.aborted = true, false, false
	return nil
}

// WriteFrame stores f.
func (s *MemorySink) WriteFrame(f Frame) error {
	s.mu.Lock()
	if !s.open {
		s.mu.Unlock()
		return errSinkNotOpen
	}
	s.frames = append(s.frames, f)
	hook := s.OnWrite
	s.mu.Unlock()
	if hook != nil {
		hook(f)
	}
	return nil
}

// Close marks the stream complete.
func (s *MemorySink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return errSinkNotOpen
	}
	s.open, s.closed = false, true
	return nil
}

// Abort drops every stored frame.
func (s *MemorySink) Abort() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = nil
	s.open, s.aborted = false, true
	return nil
}

// Frames returns the stored frames.
func (s *MemorySink) Frames() []Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.frames)
}

// Config returns the configuration passed to the last Open.
func (s *MemorySink) Config() SinkConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Opened reports whether Open was ever called since the last reset.
func (s *MemorySink) Opened() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open || s.closed || s.aborted
}

// Closed reports whether the last stream completed.
func (s *MemorySink) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Aborted reports whether the last stream was aborted.
func (s *MemorySink) Aborted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aborted
}
