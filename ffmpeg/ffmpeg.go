// Package ffmpeg adapts the ffmpeg and ffprobe executables to splice: Source
// decodes clip frames on demand and Sink encodes composited frames piped
// through stdin.
package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Default encoding settings.
const (
	DefaultCRF    = 23
	DefaultPreset = "medium"
)

// Executor runs ffmpeg and ffprobe.
type Executor struct {
	log         *logrus.Entry
	ffmpegPath  string
	ffprobePath string
	threads     int
}

// New looks up ffmpeg and ffprobe in PATH.
func New(log *logrus.Entry, threads int) (*Executor, error) {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}
	ffprobePath, err := exec.LookPath("ffprobe")
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found in PATH: %w", err)
	}
	return NewWithPaths(log, ffmpegPath, ffprobePath, threads), nil
}

// NewWithPaths creates an executor for explicit binary paths.
func NewWithPaths(log *logrus.Entry, ffmpegPath, ffprobePath string, threads int) *Executor {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Executor{
		log:         log.WithField("component", "ffmpeg"),
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		threads:     threads,
	}
}

// baseArgs precede every ffmpeg invocation.
func (e *Executor) baseArgs() []string {
	args := []string{"-y", "-hide_banner", "-loglevel", "error"}
	if e.threads > 0 {
		args = append(args, "-threads", strconv.Itoa(e.threads))
	}
	return args
}

// output runs ffmpeg to completion and returns its stdout.
func (e *Executor) output(ctx context.Context, args []string) ([]byte, error) {
	args = append(e.baseArgs(), args...)
	e.log.WithFields(logrus.Fields{
		"function": "output",
		"args":     strings.Join(args, " "),
	}).Trace("executing ffmpeg")

	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("ffmpeg execution failed: %w: %s", err, lastLine(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// lastLine returns the last non-empty line of s, which is where ffmpeg
// reports the cause of a failure.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// errNoFrame is returned when ffmpeg produced fewer bytes than a frame.
var errNoFrame = errors.New("ffmpeg produced no frame")

func formatSeconds(t float64) string {
	return strconv.FormatFloat(t, 'f', 6, 64)
}
