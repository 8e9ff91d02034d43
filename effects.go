package splice

import (
	"fmt"
	"image"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// FilterPreset names a global color look.
type FilterPreset string

const (
	PresetNone      FilterPreset = "none"
	PresetGrayscale FilterPreset = "grayscale"
	PresetSepia     FilterPreset = "sepia"
	PresetVintage   FilterPreset = "vintage"
	PresetWarm      FilterPreset = "warm"
	PresetCool      FilterPreset = "cool"
	PresetVivid     FilterPreset = "vivid"
	PresetNoir      FilterPreset = "noir"
	PresetInvert    FilterPreset = "invert"
)

// EffectKind names a global effect applied after the preset.
type EffectKind string

const (
	EffectNone     EffectKind = "none"
	EffectFade     EffectKind = "fade"
	EffectPunch    EffectKind = "punch"
	EffectDream    EffectKind = "dream"
	EffectVignette EffectKind = "vignette"
)

// AdjustmentKind is one simple image operation.
type AdjustmentKind string

const (
	// AdjustBrightness adds Amount to every channel.
	AdjustBrightness AdjustmentKind = "brightness"
	// AdjustGain multiplies every channel by Amount.
	AdjustGain AdjustmentKind = "gain"
	// AdjustContrast scales around mid-gray; 1 is unchanged.
	AdjustContrast AdjustmentKind = "contrast"
	// AdjustSaturation scales saturation; 0 is grayscale.
	AdjustSaturation AdjustmentKind = "saturation"
	// AdjustHue rotates hue by Amount degrees.
	AdjustHue AdjustmentKind = "hue"
	// AdjustSepia blends toward sepia by Amount in [0, 1].
	AdjustSepia AdjustmentKind = "sepia"
	// AdjustInvert blends toward the inverse by Amount in [0, 1].
	AdjustInvert AdjustmentKind = "invert"
	// AdjustTemperature shifts red up and blue down for positive Amount.
	AdjustTemperature AdjustmentKind = "temperature"
	// AdjustBlur blurs with radius Amount pixels.
	AdjustBlur AdjustmentKind = "blur"
	// AdjustVignette darkens the corners with strength Amount.
	AdjustVignette AdjustmentKind = "vignette"
)

// Adjustment is one step of a filter chain.
type Adjustment struct {
	Kind   AdjustmentKind `yaml:"kind"`
	Amount float64        `yaml:"amount"`
}

var presetAdjustments = map[FilterPreset][]Adjustment{
	PresetNone:      nil,
	PresetGrayscale: {{AdjustSaturation, 0}},
	PresetSepia:     {{AdjustSepia, 1}},
	PresetVintage:   {{AdjustSepia, 0.5}, {AdjustContrast, 0.9}, {AdjustSaturation, 0.8}},
	PresetWarm:      {{AdjustTemperature, 0.1}, {AdjustSaturation, 1.1}},
	PresetCool:      {{AdjustTemperature, -0.1}},
	PresetVivid:     {{AdjustSaturation, 1.5}, {AdjustContrast, 1.15}},
	PresetNoir:      {{AdjustSaturation, 0}, {AdjustContrast, 1.5}, {AdjustGain, 0.9}},
	PresetInvert:    {{AdjustInvert, 1}},
}

var effectAdjustments = map[EffectKind][]Adjustment{
	EffectNone:     nil,
	EffectFade:     {{AdjustContrast, 0.85}, {AdjustSaturation, 0.7}, {AdjustBrightness, 0.05}},
	EffectPunch:    {{AdjustContrast, 1.3}, {AdjustSaturation, 1.3}},
	EffectDream:    {{AdjustBlur, 2}, {AdjustGain, 1.1}, {AdjustSaturation, 1.2}},
	EffectVignette: {{AdjustVignette, 0.6}},
}

// FilterSelection is the global look: a preset followed by an effect.
type FilterSelection struct {
	Preset FilterPreset `yaml:"preset"`
	Effect EffectKind   `yaml:"effect"`
}

// Validate checks both names are known.
func (f FilterSelection) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Preset, validation.By(func(any) error {
			if _, ok := presetAdjustments[f.Preset]; !ok && f.Preset != "" {
				return fmt.Errorf("unknown preset %q", f.Preset)
			}
			return nil
		})),
		validation.Field(&f.Effect, validation.By(func(any) error {
			if _, ok := effectAdjustments[f.Effect]; !ok && f.Effect != "" {
				return fmt.Errorf("unknown effect %q", f.Effect)
			}
			return nil
		})),
	)
}

// Adjustments expands the selection to its ordered adjustment list.
func (f FilterSelection) Adjustments() []Adjustment {
	out := append([]Adjustment(nil), presetAdjustments[f.Preset]...)
	return append(out, effectAdjustments[f.Effect]...)
}

// GradingAdjustments expands per-clip color grading. Brightness and
// saturation are percentages around 100; hue is in degrees.
func GradingAdjustments(g ColorGrading) []Adjustment {
	if g.IsNeutral() {
		return nil
	}
	var out []Adjustment
	if g.Brightness != 100 {
		out = append(out, Adjustment{AdjustGain, g.Brightness / 100})
	}
	if g.Saturation != 100 {
		out = append(out, Adjustment{AdjustSaturation, g.Saturation / 100})
	}
	if g.Hue != 0 {
		out = append(out, Adjustment{AdjustHue, g.Hue})
	}
	return out
}

// EffectChain is an ordered list of compiled filters.
type EffectChain struct {
	filters []Filter
	names   []string
}

// CompileAdjustments turns adjustments into an effect chain. Consecutive
// color matrix adjustments are folded into one matrix.
func CompileAdjustments(adjs []Adjustment) (*EffectChain, error) {
	ec := &EffectChain{}
	var pending *ColorMatrixFilter
	var pendingNames string
	flush := func() {
		if pending != nil {
			ec.add(pending, pendingNames)
			pending, pendingNames = nil, ""
		}
	}
	for i, a := range adjs {
		m := NewColorMatrixFilter()
		switch a.Kind {
		case AdjustBrightness:
			m.SetBrightness(a.Amount)
		case AdjustGain:
			m.SetGain(a.Amount)
		case AdjustContrast:
			m.SetContrast(a.Amount)
		case AdjustSaturation:
			m.SetSaturation(a.Amount)
		case AdjustHue:
			m.SetHueRotate(a.Amount)
		case AdjustSepia:
			m.SetSepia(a.Amount)
		case AdjustInvert:
			m.SetInvert(a.Amount)
		case AdjustTemperature:
			m.SetTint(1+a.Amount, 1, 1-a.Amount)
		case AdjustBlur:
			flush()
			if a.Amount > 0 {
				ec.add(NewBlurFilter(a.Amount), string(a.Kind))
			}
			continue
		case AdjustVignette:
			flush()
			ec.add(&VignetteFilter{Strength: a.Amount}, string(a.Kind))
			continue
		default:
			return nil, fmt.Errorf("adjustment %d (%s): unknown kind", i, a.Kind)
		}
		if pending == nil {
			pending, pendingNames = m, string(a.Kind)
		} else {
			pending = pending.Then(m)
			pendingNames += "+" + string(a.Kind)
		}
	}
	flush()
	return ec, nil
}

func (ec *EffectChain) add(f Filter, name string) {
	ec.filters = append(ec.filters, f)
	ec.names = append(ec.names, name)
}

// Len returns the number of compiled filters.
func (ec *EffectChain) Len() int { return len(ec.filters) }

// Names returns the compiled filter names in order.
func (ec *EffectChain) Names() []string { return ec.names }

// Apply runs the chain over src. The result is src itself or a pooled
// buffer owned by the caller.
func (ec *EffectChain) Apply(src *image.RGBA, pool *bufferPool) *image.RGBA {
	if ec == nil {
		return src
	}
	return applyFilters(ec.filters, src, pool)
}

// clipChain compiles a clip's per-layer processing: chroma key, then blur,
// then color grading.
func clipChain(c Clip) (*EffectChain, error) {
	ec := &EffectChain{}
	if c.ChromaKey.Enabled {
		ec.add(&ChromaKeyFilter{Key: c.ChromaKey.Color, Similarity: c.ChromaKey.Similarity}, "chroma-key")
	}
	adjs := GradingAdjustments(c.ColorGrading)
	if c.Blur > 0 {
		adjs = append([]Adjustment{{AdjustBlur, c.Blur}}, adjs...)
	}
	rest, err := CompileAdjustments(adjs)
	if err != nil {
		return nil, err
	}
	ec.filters = append(ec.filters, rest.filters...)
	ec.names = append(ec.names, rest.names...)
	return ec, nil
}
