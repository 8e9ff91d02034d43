package splice

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ExportConfig)
		wantErr bool
	}{
		{"default", func(*ExportConfig) {}, false},
		{"no format", func(c *ExportConfig) { c.Format = "" }, true},
		{"zero fps", func(c *ExportConfig) { c.FrameRate = 0 }, true},
		{"negative fps", func(c *ExportConfig) { c.FrameRate = -1 }, true},
		{"fps too high", func(c *ExportConfig) { c.FrameRate = MaxFrameRate + 1 }, true},
		{"fractional fps", func(c *ExportConfig) { c.FrameRate = 29.97 }, false},
		{"size", func(c *ExportConfig) { c.Width, c.Height = 1280, 720 }, false},
		{"width only", func(c *ExportConfig) { c.Width = 1280 }, true},
		{"height only", func(c *ExportConfig) { c.Height = 720 }, true},
		{"negative size", func(c *ExportConfig) { c.Width, c.Height = -4, -4 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultExportConfig()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExportConfigFrameSize(t *testing.T) {
	snap := &Snapshot{Width: 320, Height: 180}
	w, h := DefaultExportConfig().frameSize(snap)
	assert.Equal(t, [2]int{320, 180}, [2]int{w, h})

	c := DefaultExportConfig()
	c.Width, c.Height = 64, 48
	w, h = c.frameSize(snap)
	assert.Equal(t, [2]int{64, 48}, [2]int{w, h})
}

func TestLoadYAMLExpandsEnv(t *testing.T) {
	t.Setenv("SPLICE_TEST_FPS", "60")
	path := filepath.Join(t.TempDir(), "export.yaml")
	require.NoError(t, os.WriteFile(path, []byte("format: webm\noutput: out.webm\nframe_rate: ${SPLICE_TEST_FPS}\n"), 0o644))

	var c ExportConfig
	require.NoError(t, LoadYAML(path, &c))
	assert.Equal(t, "webm", c.Format)
	assert.Equal(t, 60.0, c.FrameRate)
}

func TestLoadYAMLErrors(t *testing.T) {
	var c ExportConfig
	err := LoadYAML(filepath.Join(t.TempDir(), "missing.yaml"), &c)
	assert.ErrorIs(t, err, os.ErrNotExist)

	err = DecodeYAML([]byte("format: [unclosed"), "broken", &c)
	assert.ErrorContains(t, err, "failed to parse broken")

	err = DecodeYAML([]byte("format: png\nframe_rate: 0\n"), "zero", &c)
	assert.ErrorContains(t, err, "zero validation failed")
}

func TestDecodeYAMLWithoutValidator(t *testing.T) {
	var m map[string]int
	require.NoError(t, DecodeYAML([]byte("a: 1\n"), "map", &m))
	assert.Equal(t, map[string]int{"a": 1}, m)
}
