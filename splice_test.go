package splice

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"#fff", ColorWhite},
		{"#000000", ColorBlack},
		{"00ff00", ColorGreen},
		{" #ff000080 ", Color{1, 0, 0, 128.0 / 255}},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		require.NoError(t, err, tt.in)
		assert.InDelta(t, tt.want.R, got.R, 1e-9, tt.in)
		assert.InDelta(t, tt.want.G, got.G, 1e-9, tt.in)
		assert.InDelta(t, tt.want.B, got.B, 1e-9, tt.in)
		assert.InDelta(t, tt.want.A, got.A, 1e-9, tt.in)
	}

	for _, bad := range []string{"", "#12", "#12345", "#gggggg"} {
		_, err := ParseColor(bad)
		assert.Error(t, err, bad)
	}
}

func TestColorHex(t *testing.T) {
	assert.Equal(t, "#ffffff", ColorWhite.Hex())
	assert.Equal(t, "#00ff0080", Color{0, 1, 0, 128.0 / 255}.Hex())
}

func TestColorRGBAPremultiplies(t *testing.T) {
	assert.Equal(t, color.RGBA{128, 0, 0, 128}, Color{1, 0, 0, 128.0 / 255}.RGBA())
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, ColorWhite.RGBA())
}

func TestColorYAML(t *testing.T) {
	var v struct {
		C Color `yaml:"c"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(`c: "#ff8000"`), &v))
	assert.Equal(t, "#ff8000", v.C.Hex())

	out, err := yaml.Marshal(v)
	require.NoError(t, err)
	var back struct {
		C Color `yaml:"c"`
	}
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, v.C.Hex(), back.C.Hex())

	assert.Error(t, yaml.Unmarshal([]byte(`c: nope`), &v))
}

func TestClampByte(t *testing.T) {
	assert.Equal(t, uint8(0), clampByte(-3))
	assert.Equal(t, uint8(255), clampByte(300))
	assert.Equal(t, uint8(128), clampByte(127.5))
	assert.Equal(t, uint8(127), clampByte(127.4))
}
