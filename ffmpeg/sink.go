package ffmpeg

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"slices"
	"strconv"

	"github.com/phanxgames/splice"
	"github.com/sirupsen/logrus"
)

var _ splice.Sink = (*Sink)(nil)

// Sink encodes frames by piping raw RGBA into an ffmpeg process.
type Sink struct {
	exec *Executor
	log  *logrus.Entry

	cfg    splice.SinkConfig
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr bytes.Buffer
	row    []byte
}

// NewSink returns an encoding sink using e.
func (e *Executor) NewSink() *Sink {
	return &Sink{exec: e, log: e.log.WithField("sink", "ffmpeg")}
}

// Formats lists the containers the sink can encode.
func (s *Sink) Formats() []string {
	return []string{"mp4", "webm", "mov", "gif"}
}

// Open starts the encoder writing to cfg.Path.
func (s *Sink) Open(cfg splice.SinkConfig) error {
	if s.cmd != nil {
		return errors.New("ffmpeg sink already open")
	}
	if !slices.Contains(s.Formats(), cfg.Format) {
		return fmt.Errorf("%w: %q", splice.ErrUnsupportedOutputFormat, cfg.Format)
	}
	if cfg.Path == "" {
		return errors.New("ffmpeg sink: output path required")
	}
	args := append(s.exec.baseArgs(), encodeArgs(cfg)...)
	cmd := exec.Command(s.exec.ffmpegPath, args...)
	s.stderr.Reset()
	cmd.Stderr = &s.stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}
	s.cfg = cfg
	s.cmd = cmd
	s.stdin = stdin
	s.row = make([]byte, cfg.Width*4)
	s.log.WithFields(logrus.Fields{
		"function": "Open",
		"format":   cfg.Format,
		"path":     cfg.Path,
		"size":     fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
	}).Debug("encoder started")
	return nil
}

// WriteFrame pipes one frame to the encoder. Frames are straight-alpha
// converted row by row.
func (s *Sink) WriteFrame(f splice.Frame) error {
	if s.cmd == nil {
		return errors.New("ffmpeg sink not open")
	}
	b := f.Image.Bounds()
	if b.Dx() != s.cfg.Width || b.Dy() != s.cfg.Height {
		return fmt.Errorf("frame %d is %dx%d, encoder expects %dx%d",
			f.Index, b.Dx(), b.Dy(), s.cfg.Width, s.cfg.Height)
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		src := f.Image.Pix[f.Image.PixOffset(b.Min.X, y):][:len(s.row)]
		unpremultiplyRow(s.row, src)
		if _, err := s.stdin.Write(s.row); err != nil {
			return fmt.Errorf("write frame %d: %w: %s", f.Index, err, lastLine(s.stderr.String()))
		}
	}
	return nil
}

// Close flushes the encoder and waits for it to finish the file.
func (s *Sink) Close() error {
	if s.cmd == nil {
		return errors.New("ffmpeg sink not open")
	}
	cmd := s.cmd
	s.cmd = nil
	closeErr := s.stdin.Close()
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg execution failed: %w: %s", err, lastLine(s.stderr.String()))
	}
	return closeErr
}

// Abort kills the encoder and removes the partial output.
func (s *Sink) Abort() error {
	if s.cmd == nil {
		return nil
	}
	cmd := s.cmd
	s.cmd = nil
	s.stdin.Close()
	if cmd.Process != nil {
		cmd.Process.Kill()
	}
	cmd.Wait()
	if err := os.Remove(s.cfg.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	s.log.WithFields(logrus.Fields{
		"function": "Abort",
		"path":     s.cfg.Path,
	}).Debug("partial output removed")
	return nil
}

// encodeArgs reads raw RGBA from stdin and encodes cfg.Format to cfg.Path.
func encodeArgs(cfg splice.SinkConfig) []string {
	args := []string{
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"-r", strconv.FormatFloat(cfg.FrameRate, 'f', -1, 64),
		"-i", "pipe:0",
		"-an",
	}
	switch cfg.Format {
	case "mp4":
		args = append(args,
			"-vf", "pad=ceil(iw/2)*2:ceil(ih/2)*2",
			"-c:v", "libx264",
			"-preset", DefaultPreset,
			"-crf", strconv.Itoa(DefaultCRF),
			"-pix_fmt", "yuv420p",
			"-movflags", "+faststart",
		)
	case "webm":
		args = append(args,
			"-c:v", "libvpx-vp9",
			"-b:v", "0",
			"-crf", "32",
			"-pix_fmt", "yuv420p",
		)
	case "mov":
		args = append(args,
			"-c:v", "prores_ks",
			"-profile:v", "3",
			"-pix_fmt", "yuv422p10le",
		)
	case "gif":
		args = append(args,
			"-vf", "split[a][b];[a]palettegen[p];[b][p]paletteuse",
			"-loop", "0",
		)
	}
	return append(args, "-f", cfg.Format, cfg.Path)
}

func unpremultiplyRow(dst, src []uint8) {
	for i := 0; i+3 < len(src); i += 4 {
		a := src[i+3]
		switch a {
		case 255:
			copy(dst[i:i+4], src[i:i+4])
		case 0:
			dst[i], dst[i+1], dst[i+2], dst[i+3] = 0, 0, 0, 0
		default:
			dst[i] = uint8(min(uint32(src[i])*255/uint32(a), 255))
			dst[i+1] = uint8(min(uint32(src[i+1])*255/uint32(a), 255))
			dst[i+2] = uint8(min(uint32(src[i+2])*255/uint32(a), 255))
			dst[i+3] = a
		}
	}
}
