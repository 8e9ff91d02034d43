package splice

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const projectYAML = `
width: 64
height: 36
playback_speed: 1.5
clips:
  - color: "#ff0000"
    duration: 4
    trim_start: 1
    start_transform: {scale: 1.5, pan_x: 10, pan_y: 0}
  - source: clips/b.mp4
    trim_end: 3
    reversed: true
    color_grading: {brightness: 120, saturation: 100, hue: 0}
transition:
  type: wipe-left
  duration: 1
overlays:
  - id: title
    type: text
    text: "${SPLICE_TEST_TITLE}"
    color: "#00ff00"
    start: 0
    end: 2
    top: 20
    animation_in: fade
    z_index: 5
  - id: logo
    type: image
    image: logo.png
    start: 1
    end: 3
    mask:
      vector: mask.svg
filter:
  preset: sepia
crop: {x: 10, y: 10, width: 80, height: 80}
export:
  format: mp4
  output: out.mp4
  frame_rate: 25
`

func writeProject(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logo.png"), pngBytes(t, 4, 4, color.RGBA{0, 0, 255, 255}), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mask.svg"), []byte(halfSVG), 0o644))
	path := filepath.Join(dir, "project.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func fakeOpener(opened *[]string) SourceOpener {
	return func(path string) (Source, float64, error) {
		*opened = append(*opened, path)
		return NewFuncSource(8, 8, 6, func(float64) image.Image { return solidRGBA(8, 8, frameBlue) }), 6, nil
	}
}

func TestLoadAndBuildProject(t *testing.T) {
	t.Setenv("SPLICE_TEST_TITLE", "Opening")
	path := writeProject(t, projectYAML)

	p, err := LoadProject(path)
	require.NoError(t, err)
	assert.Equal(t, "mp4", p.Export.Format)
	assert.Equal(t, 25.0, p.Export.FrameRate)

	var opened []string
	tl, err := p.Build(fakeOpener(&opened))
	require.NoError(t, err)
	defer tl.Close()
	assert.Equal(t, []string{filepath.Join(filepath.Dir(path), "clips", "b.mp4")}, opened)

	snap := tl.Snapshot()
	require.NoError(t, snap.Validate())
	assert.Equal(t, 64, snap.Width)
	assert.Equal(t, 1.5, snap.PlaybackSpeed)
	assert.Equal(t, Transition{Type: TransitionWipeLeft, Duration: 1}, snap.Transition)
	assert.Equal(t, FilterSelection{Preset: PresetSepia, Effect: EffectNone}, snap.Filter)
	assert.Equal(t, Crop{X: 10, Y: 10, Width: 80, Height: 80}, snap.Crop)

	require.Len(t, snap.Clips, 2)
	a, b := snap.Clips[0], snap.Clips[1]
	assert.Equal(t, 4.0, a.Duration)
	assert.Equal(t, 1.0, a.TrimStart)
	assert.Equal(t, 4.0, a.TrimEnd)
	assert.Equal(t, Transform{Scale: 1.5, PanX: 10}, a.StartTransform)
	assert.Equal(t, a.StartTransform, a.EndTransform, "end transform defaults to the start transform")
	assert.Equal(t, NeutralGrading, a.ColorGrading)

	assert.Equal(t, 6.0, b.Duration)
	assert.Equal(t, 3.0, b.TrimEnd)
	assert.True(t, b.Reversed)
	assert.Equal(t, 120.0, b.ColorGrading.Brightness)

	require.Len(t, snap.Overlays, 2)
	title, logo := snap.Overlays[0], snap.Overlays[1]
	assert.Equal(t, "title", title.ID)
	assert.Equal(t, 5, title.ZIndex)
	assert.Equal(t, 20.0, title.Top)
	assert.Equal(t, 50.0, title.Left)
	assert.Equal(t, AnimationFade, title.AnimationIn)
	tc := title.Content.(*TextContent)
	assert.Equal(t, "Opening", tc.Text)
	assert.Equal(t, 48.0, tc.FontSize)
	assert.Equal(t, "#00ff00", tc.Color.Hex())

	ic := logo.Content.(*ImageContent)
	assert.Equal(t, 25.0, ic.Width)
	assert.NotEmpty(t, ic.Data)
	assert.Equal(t, MaskCustomVector, logo.Mask.Shape)
	assert.Equal(t, []byte(halfSVG), logo.Mask.VectorData)
}

func TestBuildProjectRendersAllAssets(t *testing.T) {
	t.Setenv("SPLICE_TEST_TITLE", "Render")
	p, err := LoadProject(writeProject(t, projectYAML))
	require.NoError(t, err)
	var opened []string
	tl, err := p.Build(fakeOpener(&opened))
	require.NoError(t, err)
	defer tl.Close()

	img := render(t, quietEngine(), tl.Snapshot(), 1.5)
	assert.Equal(t, image.Rect(0, 0, 51, 29), img.Bounds())
}

func TestProjectValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing size", "clips: []"},
		{"three clips", `
width: 8
height: 8
clips:
  - {color: "#000", duration: 1}
  - {color: "#000", duration: 1}
  - {color: "#000", duration: 1}`},
		{"clip with two sources", `
width: 8
height: 8
clips:
  - {color: "#000", image: a.png, duration: 1}`},
		{"unknown layer type", `
width: 8
height: 8
overlays:
  - {type: video, start: 0, end: 1}`},
		{"text layer without text", `
width: 8
height: 8
overlays:
  - {type: text, start: 0, end: 1}`},
		{"bad crop", `
width: 8
height: 8
crop: {x: 90, y: 0, width: 50, height: 50}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadProject(writeProject(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestBuildProjectVideoWithoutOpener(t *testing.T) {
	p, err := LoadProject(writeProject(t, `
width: 8
height: 8
clips:
  - {source: a.mp4}`))
	require.NoError(t, err)
	_, err = p.Build(nil)
	assert.Error(t, err)
}

func TestBuildProjectClosesSourcesOnError(t *testing.T) {
	p, err := LoadProject(writeProject(t, `
width: 8
height: 8
clips:
  - {source: a.mp4}
overlays:
  - {type: text, text: late, start: 3, end: 1}`))
	require.NoError(t, err)

	src := NewSolidSource(8, 8, ColorWhite, 2)
	_, err = p.Build(func(string) (Source, float64, error) { return src, 2, nil })
	require.Error(t, err)
	_, err = src.Frame()
	assert.ErrorIs(t, err, errSourceClosed)
}

func TestBuildProjectOverlayErrorReturnsNil(t *testing.T) {
	p, err := LoadProject(writeProject(t, `
width: 8
height: 8
clips:
  - {color: "#fff", duration: 2}
overlays:
  - {type: text, text: late, start: 3, end: 1}`))
	require.NoError(t, err)

	var tl *Timeline
	assert.NotPanics(t, func() { tl, err = p.Build(nil) })
	assert.Error(t, err)
	assert.Nil(t, tl)
}

func TestBuildProjectInvalidTrim(t *testing.T) {
	p, err := LoadProject(writeProject(t, `
width: 8
height: 8
clips:
  - {color: "#fff", duration: 2, trim_start: 3}`))
	require.NoError(t, err)
	_, err = p.Build(nil)
	assert.ErrorIs(t, err, ErrInvalidClip)
}

func TestBuildProjectImageClip(t *testing.T) {
	p, err := LoadProject(writeProject(t, `
width: 8
height: 8
clips:
  - {image: logo.png, duration: 2}`))
	require.NoError(t, err)
	tl, err := p.Build(nil)
	require.NoError(t, err)
	defer tl.Close()
	img := render(t, quietEngine(), tl.Snapshot(), 1)
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, img.RGBAAt(4, 4))
}
