package splice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// StillStep asks for one frame at Time, saved under Label.
type StillStep struct {
	Time  float64 `yaml:"time" json:"time"`
	Label string  `yaml:"label" json:"label,omitempty"`
}

// Validate validates the step.
func (s StillStep) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Time, validation.Min(0.0)),
	)
}

// StillScript is a list of frames to render as PNG stills. It is read from
// YAML or JSON.
type StillScript struct {
	Steps []StillStep `yaml:"steps" json:"steps"`
}

// Validate requires at least one step.
func (s StillScript) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Steps, validation.Required),
	)
}

// LoadStillScript parses a still script.
func LoadStillScript(data []byte) (*StillScript, error) {
	var script StillScript
	if err := DecodeYAML(data, "still script", &script); err != nil {
		return nil, err
	}
	return &script, nil
}

// RenderStills renders every step of script into dir as
// <index>_<label>.png and returns the written paths. Steps past the end of
// the timeline render the final frame.
func RenderStills(ctx context.Context, e *Engine, snap *Snapshot, script *StillScript, dir string) ([]string, error) {
	if script == nil || len(script.Steps) == 0 {
		return nil, errors.New("stills: no steps")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("stills: mkdir %s: %w", dir, err)
	}
	total := snap.TotalDuration()
	paths := make([]string, 0, len(script.Steps))
	for i, st := range script.Steps {
		t := min(st.Time, total)
		img, err := e.RenderFrame(ctx, snap, t)
		if err != nil {
			return paths, fmt.Errorf("stills: step %d at %.3fs: %w", i, t, err)
		}
		path := filepath.Join(dir, fmt.Sprintf("%03d_%s.png", i, sanitizeLabel(st.Label)))
		if err := writePNG(path, toNRGBA(img)); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
