package splice

import (
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// OverlayContent is the variant payload of an overlay: *TextContent or
// *ImageContent.
type OverlayContent interface {
	overlayContent()
	clone() OverlayContent
}

// TextContent renders a single line of text. FontSize is in output pixels.
type TextContent struct {
	Text     string
	Color    Color
	FontSize float64
}

func (*TextContent) overlayContent() {}

func (c *TextContent) clone() OverlayContent {
	cp := *c
	return &cp
}

// Validate validates the text payload.
func (c TextContent) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Text, validation.Required),
		validation.Field(&c.FontSize, validation.Required, validation.Min(0.0).Exclusive()),
	)
}

// ImageContent draws an encoded bitmap. Width is a percentage of the frame
// width; the height follows the bitmap's aspect ratio.
type ImageContent struct {
	Data      []byte
	Width     float64
	ChromaKey ChromaKey
}

func (*ImageContent) overlayContent() {}

func (c *ImageContent) clone() OverlayContent {
	cp := *c
	cp.Data = append([]byte(nil), c.Data...)
	return &cp
}

// Validate validates the image payload.
func (c ImageContent) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Data, validation.Required),
		validation.Field(&c.Width, validation.Required, validation.Min(0.0).Exclusive()),
		validation.Field(&c.ChromaKey),
	)
}

// Overlay is a time-bounded text or image layer drawn above the clips.
// Top and Left place the overlay's center as a percentage of the frame.
type Overlay struct {
	ID           string
	Start, End   float64
	Top, Left    float64
	ZIndex       int
	AnimationIn  AnimationKind
	AnimationOut AnimationKind
	Mask         Mask
	Content      OverlayContent
}

// NewTextOverlay returns a text overlay centered in the frame.
func NewTextOverlay(text string, start, end float64) Overlay {
	return Overlay{
		ID:      uuid.NewString(),
		Start:   start,
		End:     end,
		Top:     50,
		Left:    50,
		Content: &TextContent{Text: text, Color: ColorWhite, FontSize: 48},
	}
}

// NewImageOverlay returns an image overlay centered in the frame, a quarter
// of the frame wide.
func NewImageOverlay(data []byte, start, end float64) Overlay {
	return Overlay{
		ID:      uuid.NewString(),
		Start:   start,
		End:     end,
		Top:     50,
		Left:    50,
		Content: &ImageContent{Data: data, Width: 25},
	}
}

// VisibleAt reports whether Start ≤ t ≤ End.
func (o *Overlay) VisibleAt(t float64) bool {
	return t >= o.Start && t <= o.End
}

// Validate checks timing, animation kinds, mask and payload.
func (o Overlay) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Start, validation.Min(0.0)),
		validation.Field(&o.End, validation.Required, validation.Min(o.Start).Exclusive()),
		validation.Field(&o.AnimationIn, validation.In(animationKinds...)),
		validation.Field(&o.AnimationOut, validation.In(animationKinds...)),
		validation.Field(&o.Mask),
		validation.Field(&o.Content, validation.NotNil),
	)
}

func (o Overlay) clone() Overlay {
	o.Mask = o.Mask.clone()
	if o.Content != nil {
		o.Content = o.Content.clone()
	}
	return o
}

// sortOverlays orders overlays by ascending ZIndex, keeping slice order on ties.
func sortOverlays(overlays []*Overlay) {
	sort.SliceStable(overlays, func(i, j int) bool {
		return overlays[i].ZIndex < overlays[j].ZIndex
	})
}

// visibleOverlays returns the overlays containing t in draw order.
func visibleOverlays(overlays []Overlay, t float64) []*Overlay {
	var out []*Overlay
	for i := range overlays {
		if overlays[i].VisibleAt(t) {
			out = append(out, &overlays[i])
		}
	}
	sortOverlays(out)
	return out
}
