package splice

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- FilterSelection ---

func TestFilterSelectionValidate(t *testing.T) {
	assert.NoError(t, FilterSelection{}.Validate())
	assert.NoError(t, FilterSelection{Preset: PresetNoir, Effect: EffectDream}.Validate())
	assert.Error(t, FilterSelection{Preset: "lomo"}.Validate())
	assert.Error(t, FilterSelection{Effect: "glitch"}.Validate())
}

func TestFilterSelectionAdjustmentsOrder(t *testing.T) {
	adjs := FilterSelection{Preset: PresetGrayscale, Effect: EffectVignette}.Adjustments()
	assert.Equal(t, []Adjustment{{AdjustSaturation, 0}, {AdjustVignette, 0.6}}, adjs)
	assert.Empty(t, FilterSelection{Preset: PresetNone, Effect: EffectNone}.Adjustments())
}

func TestEveryPresetAndEffectCompiles(t *testing.T) {
	for p := range presetAdjustments {
		for e := range effectAdjustments {
			_, err := CompileAdjustments(FilterSelection{Preset: p, Effect: e}.Adjustments())
			assert.NoError(t, err, "%s/%s", p, e)
		}
	}
}

// --- CompileAdjustments ---

func TestCompileMergesMatrices(t *testing.T) {
	ec, err := CompileAdjustments([]Adjustment{
		{AdjustSaturation, 0.5},
		{AdjustContrast, 1.2},
		{AdjustBlur, 2},
		{AdjustGain, 0.9},
		{AdjustVignette, 0.5},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"saturation+contrast", "blur", "gain", "vignette"}, ec.Names())
	assert.Equal(t, 4, ec.Len())
}

func TestCompileSkipsZeroBlur(t *testing.T) {
	ec, err := CompileAdjustments([]Adjustment{{AdjustBlur, 0}})
	require.NoError(t, err)
	assert.Equal(t, 0, ec.Len())
}

func TestCompileUnknownKind(t *testing.T) {
	_, err := CompileAdjustments([]Adjustment{{AdjustGain, 1}, {"posterize", 4}})
	assert.EqualError(t, err, "adjustment 1 (posterize): unknown kind")
}

func TestEffectChainNilApply(t *testing.T) {
	var ec *EffectChain
	var pool bufferPool
	src := solidRGBA(2, 2, color.RGBA{9, 9, 9, 255})
	assert.Same(t, src, ec.Apply(src, &pool))
}

// --- grading ---

func TestGradingAdjustments(t *testing.T) {
	assert.Nil(t, GradingAdjustments(NeutralGrading))
	assert.Equal(t, []Adjustment{
		{AdjustGain, 1.5},
		{AdjustSaturation, 0.5},
		{AdjustHue, 90},
	}, GradingAdjustments(ColorGrading{Brightness: 150, Saturation: 50, Hue: 90}))
	assert.Equal(t, []Adjustment{{AdjustHue, -30}},
		GradingAdjustments(ColorGrading{Brightness: 100, Saturation: 100, Hue: -30}))
}

func TestClipChainOrder(t *testing.T) {
	c := testClip(5)
	c.ChromaKey = ChromaKey{Enabled: true, Color: ColorGreen, Similarity: 0.3}
	c.Blur = 3
	c.ColorGrading = ColorGrading{Brightness: 120, Saturation: 80}
	ec, err := clipChain(c)
	require.NoError(t, err)
	assert.Equal(t, []string{"chroma-key", "blur", "gain+saturation"}, ec.Names())
}

func TestClipChainNeutralIsEmpty(t *testing.T) {
	ec, err := clipChain(testClip(5))
	require.NoError(t, err)
	assert.Equal(t, 0, ec.Len())
}

func TestBrightnessGradingBrightens(t *testing.T) {
	c := testClip(5)
	c.ColorGrading = ColorGrading{Brightness: 150, Saturation: 100}
	ec, err := clipChain(c)
	require.NoError(t, err)
	var pool bufferPool
	out := ec.Apply(solidRGBA(2, 2, color.RGBA{100, 100, 100, 255}), &pool)
	assert.Equal(t, color.RGBA{150, 150, 150, 255}, out.RGBAAt(0, 0))
}
