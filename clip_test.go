package splice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClip(duration float64) Clip {
	return NewClip(NewSolidSource(8, 8, ColorBlack, duration), duration)
}

// --- Validate ---

func TestClipValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Clip)
		wantErr bool
	}{
		{"default", func(*Clip) {}, false},
		{"trimmed", func(c *Clip) { c.TrimStart, c.TrimEnd = 2, 8 }, false},
		{"start equals end", func(c *Clip) { c.TrimStart, c.TrimEnd = 5, 5 }, true},
		{"start after end", func(c *Clip) { c.TrimStart, c.TrimEnd = 6, 5 }, true},
		{"end past duration", func(c *Clip) { c.TrimEnd = 10.5 }, true},
		{"negative start", func(c *Clip) { c.TrimStart = -1 }, true},
		{"zero scale", func(c *Clip) { c.EndTransform.Scale = 0 }, true},
		{"similarity above one", func(c *Clip) { c.ChromaKey.Similarity = 1.5 }, true},
		{"negative blur", func(c *Clip) { c.Blur = -2 }, true},
		{"nil source", func(c *Clip) { c.Source = nil }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testClip(10)
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

// --- Source time ---

func TestClipSourceTime(t *testing.T) {
	c := testClip(10)
	c.TrimStart, c.TrimEnd = 2, 8

	assert.Equal(t, 2.0, c.SourceTime(0))
	assert.Equal(t, 5.0, c.SourceTime(3))
	assert.Equal(t, 8.0, c.SourceTime(6))
	assert.Equal(t, 8.0, c.SourceTime(7), "clamped to the window")

	c.Reversed = true
	assert.Equal(t, 8.0, c.SourceTime(0))
	assert.Equal(t, 5.0, c.SourceTime(3))
	assert.Equal(t, 2.0, c.SourceTime(6))
}

func TestClipReversedRoundTrip(t *testing.T) {
	c := testClip(10)
	c.TrimStart, c.TrimEnd = 1, 9
	r := c
	r.Reversed = true
	for _, local := range []float64{0, 0.5, 2, 4, 7.25, 8} {
		assert.InDelta(t, c.SourceTime(local), r.SourceTime(c.Trimmed()-local), 1e-12, "local %v", local)
	}
}

// --- Transform interpolation ---

func TestClipTransformAt(t *testing.T) {
	c := testClip(4)
	c.StartTransform = Transform{Scale: 1, PanX: 0, PanY: -10}
	c.EndTransform = Transform{Scale: 3, PanX: 20, PanY: 10}

	mid := c.TransformAt(2)
	assert.InDelta(t, 2, mid.Scale, 1e-12)
	assert.InDelta(t, 10, mid.PanX, 1e-12)
	assert.InDelta(t, 0, mid.PanY, 1e-12)

	assert.Equal(t, c.StartTransform, c.TransformAt(0))
	assert.Equal(t, c.EndTransform, c.TransformAt(4))
	assert.Equal(t, c.EndTransform, c.TransformAt(9))

	c.Reversed = true
	assert.Equal(t, c.EndTransform, c.TransformAt(0))
	assert.Equal(t, c.StartTransform, c.TransformAt(4))
}

func TestTransformLerpClamps(t *testing.T) {
	a := Transform{Scale: 1}
	b := Transform{Scale: 2, PanX: 50}
	assert.Equal(t, a, a.Lerp(b, -1))
	assert.Equal(t, b, a.Lerp(b, 2))
}

func TestColorGradingNeutral(t *testing.T) {
	assert.True(t, NeutralGrading.IsNeutral())
	assert.False(t, ColorGrading{Brightness: 120, Saturation: 100}.IsNeutral())
	require.NoError(t, NeutralGrading.Validate())
	assert.Error(t, ColorGrading{Brightness: -1, Saturation: 100}.Validate())
}
