package splice

import (
	"errors"
	"fmt"
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Validator is implemented by configuration types that can check themselves.
type Validator interface {
	Validate() error
}

// LoadYAML loads a YAML file into target after expanding environment
// variables, then validates it when target implements Validator.
func LoadYAML[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return DecodeYAML(data, filename, target)
}

// DecodeYAML is LoadYAML for data already in memory; name is used in errors.
func DecodeYAML[T any](data []byte, name string, target *T) error {
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), target); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	if v, ok := any(target).(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("%s validation failed: %w", name, err)
		}
	}
	return nil
}

// MaxFrameRate bounds ExportConfig.FrameRate.
const MaxFrameRate = 240.0

// ExportConfig configures one export run.
type ExportConfig struct {
	// Format is the output format, checked against the sink's Formats.
	Format string `yaml:"format"`
	// Output is a file or directory path handed to the sink.
	Output    string  `yaml:"output"`
	FrameRate float64 `yaml:"frame_rate"`
	// Width and Height override the timeline frame size when both are set.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	// HardEdgeMasks thresholds mask coverage and ignores feather in the
	// exported frames, matching encoders that cannot carry soft mattes.
	HardEdgeMasks bool `yaml:"hard_edge_masks"`
}

// DefaultExportConfig returns a 30 fps PNG sequence configuration.
func DefaultExportConfig() ExportConfig {
	return ExportConfig{Format: "png", Output: "out", FrameRate: 30}
}

// Validate validates the export configuration.
func (c ExportConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Format, validation.Required),
		validation.Field(&c.FrameRate, validation.Required, validation.Min(0.0).Exclusive(), validation.Max(MaxFrameRate)),
		validation.Field(&c.Width, validation.Min(0), validation.By(func(any) error {
			if (c.Width == 0) != (c.Height == 0) {
				return errors.New("width and height must be set together")
			}
			return nil
		})),
		validation.Field(&c.Height, validation.Min(0)),
	)
}

// frameSize returns the render size for snap under this configuration.
func (c ExportConfig) frameSize(snap *Snapshot) (int, int) {
	if c.Width > 0 && c.Height > 0 {
		return c.Width, c.Height
	}
	return snap.Width, snap.Height
}
