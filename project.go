package splice

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Project is the YAML document describing a timeline. Asset paths are
// relative to the project file.
type Project struct {
	Width         int             `yaml:"width"`
	Height        int             `yaml:"height"`
	PlaybackSpeed float64         `yaml:"playback_speed"`
	Clips         []ProjectClip   `yaml:"clips"`
	Transition    Transition      `yaml:"transition"`
	Overlays      []ProjectLayer  `yaml:"overlays"`
	Filter        FilterSelection `yaml:"filter"`
	Crop          *Crop           `yaml:"crop"`
	Export        ExportConfig    `yaml:"export"`

	dir string
}

// ProjectClip describes one clip. Exactly one of Source, Image and Color is set.
type ProjectClip struct {
	// Source is a video file opened through the SourceOpener.
	Source string `yaml:"source"`
	// Image is a still picture shown for Duration seconds.
	Image string `yaml:"image"`
	// Color is a solid fill shown for Duration seconds.
	Color string `yaml:"color"`

	Duration       float64      `yaml:"duration"`
	TrimStart      float64      `yaml:"trim_start"`
	TrimEnd        float64      `yaml:"trim_end"`
	StartTransform *Transform   `yaml:"start_transform"`
	EndTransform   *Transform   `yaml:"end_transform"`
	ChromaKey      ChromaKey    `yaml:"chroma_key"`
	ColorGrading   ColorGrading `yaml:"color_grading"`
	Blur           float64      `yaml:"blur"`
	Reversed       bool         `yaml:"reversed"`
}

// Validate checks the clip names exactly one source kind.
func (c ProjectClip) Validate() error {
	n := 0
	for _, s := range []string{c.Source, c.Image, c.Color} {
		if s != "" {
			n++
		}
	}
	if n != 1 {
		return errors.New("exactly one of source, image or color is required")
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.Duration, validation.Min(0.0)),
		validation.Field(&c.Blur, validation.Min(0.0)),
	)
}

// ProjectLayer describes one overlay.
type ProjectLayer struct {
	ID   string `yaml:"id"`
	Type string `yaml:"type"`

	Text     string  `yaml:"text"`
	Color    *Color  `yaml:"color"`
	FontSize float64 `yaml:"font_size"`

	Image     string    `yaml:"image"`
	Width     float64   `yaml:"width"`
	ChromaKey ChromaKey `yaml:"chroma_key"`

	Start        float64       `yaml:"start"`
	End          float64       `yaml:"end"`
	Top          *float64      `yaml:"top"`
	Left         *float64      `yaml:"left"`
	ZIndex       *int          `yaml:"z_index"`
	AnimationIn  AnimationKind `yaml:"animation_in"`
	AnimationOut AnimationKind `yaml:"animation_out"`
	Mask         ProjectMask   `yaml:"mask"`
}

// Validate checks the layer type.
func (l ProjectLayer) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Type, validation.Required, validation.In("text", "image")),
		validation.Field(&l.Text, validation.When(l.Type == "text", validation.Required)),
		validation.Field(&l.Image, validation.When(l.Type == "image", validation.Required)),
	)
}

// ProjectMask is a Mask whose vector data is read from a file.
type ProjectMask struct {
	Mask   `yaml:",inline"`
	Vector string `yaml:"vector"`
}

// SourceOpener opens the video at path and returns it with its duration.
type SourceOpener func(path string) (Source, float64, error)

// LoadProject reads and validates a project file.
func LoadProject(path string) (*Project, error) {
	var p Project
	if err := LoadYAML(path, &p); err != nil {
		return nil, err
	}
	p.dir = filepath.Dir(path)
	return &p, nil
}

// Validate validates the project document.
func (p Project) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Width, validation.Required, validation.Min(1)),
		validation.Field(&p.Height, validation.Required, validation.Min(1)),
		validation.Field(&p.PlaybackSpeed, validation.Min(0.0).Exclusive()),
		validation.Field(&p.Clips, validation.Length(0, 2)),
		validation.Field(&p.Transition),
		validation.Field(&p.Overlays),
		validation.Field(&p.Filter),
		validation.Field(&p.Crop),
	)
}

func (p *Project) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || p.dir == "" {
		return path
	}
	return filepath.Join(p.dir, path)
}

// Build creates a timeline from the project. Video clips are opened with
// open, which may be nil when the project only uses images and colors. On
// error every source opened so far is closed.
func (p *Project) Build(open SourceOpener) (_ *Timeline, err error) {
	tl := NewTimeline(p.Width, p.Height)
	defer func() {
		if err != nil {
			tl.Close()
		}
	}()

	for i, pc := range p.Clips {
		clip, err := p.buildClip(pc, open)
		if err != nil {
			return nil, fmt.Errorf("clip %d: %w", i, err)
		}
		if _, err := tl.AddClip(clip); err != nil {
			clip.Source.Close()
			return nil, fmt.Errorf("clip %d: %w", i, err)
		}
	}
	if p.Transition.Type != "" {
		if err := tl.SetTransition(p.Transition); err != nil {
			return nil, fmt.Errorf("transition: %w", err)
		}
	}
	for i, pl := range p.Overlays {
		o, err := p.buildOverlay(pl)
		if err != nil {
			return nil, fmt.Errorf("overlay %d: %w", i, err)
		}
		id, err := tl.AddOverlay(o)
		if err != nil {
			return nil, fmt.Errorf("overlay %d: %w", i, err)
		}
		if pl.ZIndex != nil {
			if err := tl.SetOverlayZIndex(id, *pl.ZIndex); err != nil {
				return nil, err
			}
		}
	}
	sel := p.Filter
	if sel.Preset == "" {
		sel.Preset = PresetNone
	}
	if sel.Effect == "" {
		sel.Effect = EffectNone
	}
	if err := tl.SetFilter(sel); err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	if p.Crop != nil {
		if err := tl.SetCrop(*p.Crop); err != nil {
			return nil, fmt.Errorf("crop: %w", err)
		}
	}
	if p.PlaybackSpeed > 0 {
		if err := tl.SetPlaybackSpeed(p.PlaybackSpeed); err != nil {
			return nil, err
		}
	}
	return tl, nil
}

func (p *Project) buildClip(pc ProjectClip, open SourceOpener) (Clip, error) {
	var src Source
	duration := pc.Duration
	switch {
	case pc.Source != "":
		if open == nil {
			return Clip{}, fmt.Errorf("no video opener for %s", pc.Source)
		}
		s, d, err := open(p.resolve(pc.Source))
		if err != nil {
			return Clip{}, err
		}
		src, duration = s, d
	case pc.Image != "":
		data, err := os.ReadFile(p.resolve(pc.Image))
		if err != nil {
			return Clip{}, err
		}
		img, err := DecodeImage(data)
		if err != nil {
			return Clip{}, fmt.Errorf("%s: %w", pc.Image, err)
		}
		src = NewStillSource(img, duration)
	default:
		c, err := ParseColor(pc.Color)
		if err != nil {
			return Clip{}, err
		}
		src = NewSolidSource(p.Width, p.Height, c, duration)
	}

	clip := NewClip(src, duration)
	clip.TrimStart = pc.TrimStart
	if pc.TrimEnd > 0 {
		clip.TrimEnd = pc.TrimEnd
	}
	if pc.StartTransform != nil {
		clip.StartTransform = *pc.StartTransform
	}
	if pc.EndTransform != nil {
		clip.EndTransform = *pc.EndTransform
	} else if pc.StartTransform != nil {
		clip.EndTransform = *pc.StartTransform
	}
	clip.ChromaKey = pc.ChromaKey
	if pc.ColorGrading != (ColorGrading{}) {
		clip.ColorGrading = pc.ColorGrading
	}
	clip.Blur = pc.Blur
	clip.Reversed = pc.Reversed
	if err := clip.Validate(); err != nil {
		src.Close()
		return Clip{}, fmt.Errorf("%w: %w", ErrInvalidClip, err)
	}
	return clip, nil
}

func (p *Project) buildOverlay(pl ProjectLayer) (Overlay, error) {
	o := Overlay{
		ID:           pl.ID,
		Start:        pl.Start,
		End:          pl.End,
		Top:          50,
		Left:         50,
		AnimationIn:  pl.AnimationIn,
		AnimationOut: pl.AnimationOut,
		Mask:         pl.Mask.Mask,
	}
	if pl.Top != nil {
		o.Top = *pl.Top
	}
	if pl.Left != nil {
		o.Left = *pl.Left
	}
	if pl.Mask.Vector != "" {
		data, err := os.ReadFile(p.resolve(pl.Mask.Vector))
		if err != nil {
			return Overlay{}, err
		}
		o.Mask.VectorData = data
		if o.Mask.Shape == "" {
			o.Mask.Shape = MaskCustomVector
		}
	}

	switch strings.ToLower(pl.Type) {
	case "text":
		tc := &TextContent{Text: pl.Text, Color: ColorWhite, FontSize: pl.FontSize}
		if pl.Color != nil {
			tc.Color = *pl.Color
		}
		if tc.FontSize == 0 {
			tc.FontSize = 48
		}
		o.Content = tc
	case "image":
		data, err := os.ReadFile(p.resolve(pl.Image))
		if err != nil {
			return Overlay{}, err
		}
		ic := &ImageContent{Data: data, Width: pl.Width, ChromaKey: pl.ChromaKey}
		if ic.Width == 0 {
			ic.Width = 25
		}
		o.Content = ic
	default:
		return Overlay{}, fmt.Errorf("unknown overlay type %q", pl.Type)
	}
	return o, nil
}
