package splice

import validation "github.com/go-ozzo/ozzo-validation/v4"

// Transform is a pan/zoom applied to a clip's source frame. Scale is a zoom
// factor (1 = fit, 2 = twice as close). PanX and PanY move the sampling
// center by a percentage of the source width and height.
type Transform struct {
	Scale float64 `yaml:"scale"`
	PanX  float64 `yaml:"pan_x"`
	PanY  float64 `yaml:"pan_y"`
}

// IdentityTransform samples the whole source frame.
var IdentityTransform = Transform{Scale: 1}

// Lerp interpolates linearly from t to other; p is clamped to [0, 1].
func (t Transform) Lerp(other Transform, p float64) Transform {
	p = clamp01(p)
	return Transform{
		Scale: t.Scale + (other.Scale-t.Scale)*p,
		PanX:  t.PanX + (other.PanX-t.PanX)*p,
		PanY:  t.PanY + (other.PanY-t.PanY)*p,
	}
}

// Validate validates the transform.
func (t Transform) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Scale, validation.Required, validation.Min(0.0).Exclusive()),
	)
}

// ChromaKey removes pixels close to Color. Similarity in [0, 1] scales the
// cut-off distance: a pixel is keyed out when its RGB distance to Color is
// below Similarity·255·√3.
type ChromaKey struct {
	Enabled    bool    `yaml:"enabled"`
	Color      Color   `yaml:"color"`
	Similarity float64 `yaml:"similarity"`
}

// Validate validates the chroma key settings.
func (k ChromaKey) Validate() error {
	return validation.ValidateStruct(&k,
		validation.Field(&k.Similarity, validation.Min(0.0), validation.Max(1.0)),
	)
}

// ColorGrading holds per-clip color adjustments. Brightness and Saturation
// are percentages where 100 leaves the frame unchanged; Hue rotates in degrees.
type ColorGrading struct {
	Brightness float64 `yaml:"brightness"`
	Saturation float64 `yaml:"saturation"`
	Hue        float64 `yaml:"hue"`
}

// NeutralGrading leaves colors untouched.
var NeutralGrading = ColorGrading{Brightness: 100, Saturation: 100}

// IsNeutral reports whether the grading is a no-op.
func (g ColorGrading) IsNeutral() bool {
	return g == NeutralGrading
}

// Validate validates the grading.
func (g ColorGrading) Validate() error {
	return validation.ValidateStruct(&g,
		validation.Field(&g.Brightness, validation.Min(0.0)),
		validation.Field(&g.Saturation, validation.Min(0.0)),
	)
}

// Clip is one trimmed source on the timeline.
//
// Only the window [TrimStart, TrimEnd] of the source is played. Start and
// end transforms are interpolated linearly across that window.
type Clip struct {
	Source         Source
	Duration       float64
	TrimStart      float64
	TrimEnd        float64
	StartTransform Transform
	EndTransform   Transform
	ChromaKey      ChromaKey
	ColorGrading   ColorGrading
	// Blur is a gaussian blur radius in output pixels.
	Blur     float64
	Reversed bool
}

// NewClip returns an untrimmed clip with identity transforms and neutral grading.
func NewClip(src Source, duration float64) Clip {
	return Clip{
		Source:         src,
		Duration:       duration,
		TrimEnd:        duration,
		StartTransform: IdentityTransform,
		EndTransform:   IdentityTransform,
		ColorGrading:   NeutralGrading,
	}
}

// Validate checks 0 ≤ TrimStart < TrimEnd ≤ Duration and the nested settings.
func (c Clip) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Source, validation.NotNil),
		validation.Field(&c.Duration, validation.Required, validation.Min(0.0).Exclusive()),
		validation.Field(&c.TrimStart, validation.Min(0.0), validation.Max(c.TrimEnd).Exclusive()),
		validation.Field(&c.TrimEnd, validation.Required, validation.Max(c.Duration)),
		validation.Field(&c.StartTransform),
		validation.Field(&c.EndTransform),
		validation.Field(&c.ChromaKey),
		validation.Field(&c.ColorGrading),
		validation.Field(&c.Blur, validation.Min(0.0)),
	)
}

// Trimmed returns the length of the played window.
func (c Clip) Trimmed() float64 {
	return c.TrimEnd - c.TrimStart
}

// clampLocal keeps a local time inside the played window.
func (c Clip) clampLocal(local float64) float64 {
	return clamp(local, 0, c.Trimmed())
}

// SourceTime maps a clip-local time to the time to seek in the source.
// Reversed clips play from TrimEnd backwards.
func (c Clip) SourceTime(local float64) float64 {
	local = c.clampLocal(local)
	if c.Reversed {
		return c.TrimEnd - local
	}
	return c.TrimStart + local
}

// TransformAt returns the interpolated transform at a clip-local time.
func (c Clip) TransformAt(local float64) Transform {
	d := c.Trimmed()
	if d <= 0 {
		return c.StartTransform
	}
	p := c.clampLocal(local) / d
	if c.Reversed {
		p = 1 - p
	}
	return c.StartTransform.Lerp(c.EndTransform, p)
}
