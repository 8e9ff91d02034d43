package splice

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// TransitionType selects how clip A hands over to clip B.
type TransitionType string

const (
	TransitionNone      TransitionType = "none"
	TransitionCrossfade TransitionType = "crossfade"
	TransitionWipeLeft  TransitionType = "wipe-left"
	TransitionWipeRight TransitionType = "wipe-right"
	TransitionWipeUp    TransitionType = "wipe-up"
	TransitionWipeDown  TransitionType = "wipe-down"
)

// Valid reports whether t is a known transition type.
func (t TransitionType) Valid() bool {
	switch t {
	case TransitionNone, TransitionCrossfade, TransitionWipeLeft, TransitionWipeRight,
		TransitionWipeUp, TransitionWipeDown:
		return true
	}
	return false
}

// Transition is the hand-over between the two clips. Duration is in seconds
// and is clamped to the shorter clip when applied.
type Transition struct {
	Type     TransitionType `yaml:"type"`
	Duration float64        `yaml:"duration"`
}

// Validate validates the transition.
func (t Transition) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Type, validation.In(TransitionNone, TransitionCrossfade, TransitionWipeLeft,
			TransitionWipeRight, TransitionWipeUp, TransitionWipeDown)),
		validation.Field(&t.Duration, validation.Min(0.0)),
	)
}

// MinCropSize is the smallest crop width or height, in percent.
const MinCropSize = 5.0

// Crop selects a region of the output frame, in percent.
type Crop struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// FullCrop keeps the whole frame.
var FullCrop = Crop{Width: 100, Height: 100}

// Validate checks the crop stays inside the frame and is at least MinCropSize.
func (c Crop) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.X, validation.Min(0.0), validation.Max(100-c.Width)),
		validation.Field(&c.Y, validation.Min(0.0), validation.Max(100-c.Height)),
		validation.Field(&c.Width, validation.Required, validation.Min(MinCropSize), validation.Max(100.0)),
		validation.Field(&c.Height, validation.Required, validation.Min(MinCropSize), validation.Max(100.0)),
	)
}

// IsFull reports whether the crop keeps the whole frame.
func (c Crop) IsFull() bool {
	return c == FullCrop
}

// Rect returns the crop in pixels of a w×h frame. The result is never empty.
func (c Crop) Rect(w, h int) (x, y, cw, ch int) {
	x = int(c.X/100*float64(w) + 0.5)
	y = int(c.Y/100*float64(h) + 0.5)
	cw = max(1, min(w-x, int(c.Width/100*float64(w)+0.5)))
	ch = max(1, min(h-y, int(c.Height/100*float64(h)+0.5)))
	return x, y, cw, ch
}

// Snapshot is a frozen copy of the timeline. The engine only reads snapshots,
// so editing the timeline never affects a render in progress.
type Snapshot struct {
	Width, Height int
	Clips         []Clip
	Transition    Transition
	Overlays      []Overlay
	Filter        FilterSelection
	Crop          Crop
	PlaybackSpeed float64
}

// Validate checks every clip, overlay and setting in the snapshot.
func (s *Snapshot) Validate() error {
	if len(s.Clips) > 2 {
		return ErrTimelineFull
	}
	for i, c := range s.Clips {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("clip %d: %w: %w", i, ErrInvalidClip, err)
		}
	}
	for _, o := range s.Overlays {
		if err := o.Validate(); err != nil {
			return fmt.Errorf("overlay %s: %w", o.ID, err)
		}
	}
	return validation.ValidateStruct(s,
		validation.Field(&s.Width, validation.Required, validation.Min(1)),
		validation.Field(&s.Height, validation.Required, validation.Min(1)),
		validation.Field(&s.Transition),
		validation.Field(&s.Filter),
		validation.Field(&s.Crop, validation.Skip.When(s.Crop == Crop{})),
		validation.Field(&s.PlaybackSpeed, validation.Required, validation.Min(0.0).Exclusive()),
	)
}

// Timeline is the editable document: up to two clips, their transition,
// overlays and global settings. It is safe for concurrent use.
type Timeline struct {
	mu         sync.Mutex
	width      int
	height     int
	clips      []Clip
	transition Transition
	overlays   []Overlay
	filter     FilterSelection
	crop       Crop
	speed      float64
}

// NewTimeline returns an empty timeline rendering w×h frames.
func NewTimeline(w, h int) *Timeline {
	return &Timeline{
		width:      w,
		height:     h,
		transition: Transition{Type: TransitionNone},
		filter:     FilterSelection{Preset: PresetNone, Effect: EffectNone},
		crop:       FullCrop,
		speed:      1,
	}
}

// Size returns the frame size.
func (tl *Timeline) Size() (int, int) {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return tl.width, tl.height
}

// AddClip appends a clip and returns its index.
func (tl *Timeline) AddClip(c Clip) (int, error) {
	if err := c.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidClip, err)
	}
	tl.mu.Lock()
	defer tl.mu.Unlock()
	if len(tl.clips) >= 2 {
		return 0, ErrTimelineFull
	}
	tl.clips = append(tl.clips, c)
	return len(tl.clips) - 1, nil
}

// RemoveClip removes the clip at index i and closes its source. Clip B
// becomes clip A when A is removed.
func (tl *Timeline) RemoveClip(i int) error {
	tl.mu.Lock()
	if i < 0 || i >= len(tl.clips) {
		tl.mu.Unlock()
		return fmt.Errorf("clip %d: %w", i, ErrNotFound)
	}
	c := tl.clips[i]
	tl.clips = slices.Delete(tl.clips, i, i+1)
	tl.mu.Unlock()
	return c.Source.Close()
}

// Clip returns a copy of the clip at index i.
func (tl *Timeline) Clip(i int) (Clip, error) {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	if i < 0 || i >= len(tl.clips) {
		return Clip{}, fmt.Errorf("clip %d: %w", i, ErrNotFound)
	}
	return tl.clips[i], nil
}

// UpdateClip applies fn to a copy of clip i and stores it if still valid.
// Replacing the source is not allowed.
func (tl *Timeline) UpdateClip(i int, fn func(*Clip)) error {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	if i < 0 || i >= len(tl.clips) {
		return fmt.Errorf("clip %d: %w", i, ErrNotFound)
	}
	c := tl.clips[i]
	fn(&c)
	if c.Source != tl.clips[i].Source {
		return fmt.Errorf("%w: source cannot be replaced", ErrInvalidClip)
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidClip, err)
	}
	tl.clips[i] = c
	return nil
}

// TrimClip sets the played window of clip i.
func (tl *Timeline) TrimClip(i int, start, end float64) error {
	return tl.UpdateClip(i, func(c *Clip) {
		c.TrimStart = start
		c.TrimEnd = end
	})
}

// SetTransition replaces the transition between the clips.
func (tl *Timeline) SetTransition(t Transition) error {
	if err := t.Validate(); err != nil {
		return err
	}
	tl.mu.Lock()
	defer tl.mu.Unlock()
	tl.transition = t
	return nil
}

// AddOverlay adds o on top of every existing overlay and returns its id. An
// id is generated when o has none.
func (tl *Timeline) AddOverlay(o Overlay) (string, error) {
	if err := o.Validate(); err != nil {
		return "", err
	}
	o = o.clone()
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	tl.mu.Lock()
	defer tl.mu.Unlock()
	if tl.overlayIndex(o.ID) >= 0 {
		return "", fmt.Errorf("overlay %s already exists", o.ID)
	}
	o.ZIndex = tl.topZ() + 1
	tl.overlays = append(tl.overlays, o)
	return o.ID, nil
}

// RemoveOverlay removes the overlay with the given id.
func (tl *Timeline) RemoveOverlay(id string) error {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	i := tl.overlayIndex(id)
	if i < 0 {
		return fmt.Errorf("overlay %s: %w", id, ErrNotFound)
	}
	tl.overlays = slices.Delete(tl.overlays, i, i+1)
	return nil
}

// UpdateOverlay applies fn to a copy of the overlay and stores it if still
// valid. The id cannot change.
func (tl *Timeline) UpdateOverlay(id string, fn func(*Overlay)) error {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	i := tl.overlayIndex(id)
	if i < 0 {
		return fmt.Errorf("overlay %s: %w", id, ErrNotFound)
	}
	o := tl.overlays[i].clone()
	fn(&o)
	if o.ID != id {
		return errors.New("overlay id cannot change")
	}
	if err := o.Validate(); err != nil {
		return err
	}
	tl.overlays[i] = o
	return nil
}

// SetOverlayZIndex sets the stacking key of an overlay.
func (tl *Timeline) SetOverlayZIndex(id string, z int) error {
	return tl.UpdateOverlay(id, func(o *Overlay) { o.ZIndex = z })
}

// BringToFront moves an overlay above all others.
func (tl *Timeline) BringToFront(id string) error {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	i := tl.overlayIndex(id)
	if i < 0 {
		return fmt.Errorf("overlay %s: %w", id, ErrNotFound)
	}
	tl.overlays[i].ZIndex = tl.topZ() + 1
	return nil
}

// Overlays returns copies of the overlays in insertion order.
func (tl *Timeline) Overlays() []Overlay {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	out := make([]Overlay, len(tl.overlays))
	for i, o := range tl.overlays {
		out[i] = o.clone()
	}
	return out
}

// SetFilter sets the global filter preset and effect.
func (tl *Timeline) SetFilter(f FilterSelection) error {
	if err := f.Validate(); err != nil {
		return err
	}
	tl.mu.Lock()
	defer tl.mu.Unlock()
	tl.filter = f
	return nil
}

// SetCrop sets the global crop.
func (tl *Timeline) SetCrop(c Crop) error {
	if err := c.Validate(); err != nil {
		return err
	}
	tl.mu.Lock()
	defer tl.mu.Unlock()
	tl.crop = c
	return nil
}

// SetPlaybackSpeed sets the export time step multiplier.
func (tl *Timeline) SetPlaybackSpeed(s float64) error {
	if s <= 0 {
		return fmt.Errorf("playback speed must be positive, got %v", s)
	}
	tl.mu.Lock()
	defer tl.mu.Unlock()
	tl.speed = s
	return nil
}

// Snapshot returns a deep copy of the current state. Sources are shared
// handles; everything else is copied.
func (tl *Timeline) Snapshot() *Snapshot {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	s := &Snapshot{
		Width:         tl.width,
		Height:        tl.height,
		Clips:         slices.Clone(tl.clips),
		Transition:    tl.transition,
		Overlays:      make([]Overlay, len(tl.overlays)),
		Filter:        tl.filter,
		Crop:          tl.crop,
		PlaybackSpeed: tl.speed,
	}
	for i, o := range tl.overlays {
		s.Overlays[i] = o.clone()
	}
	return s
}

// Close removes every clip and closes their sources.
func (tl *Timeline) Close() error {
	tl.mu.Lock()
	clips := tl.clips
	tl.clips = nil
	tl.mu.Unlock()
	var errs []error
	for _, c := range clips {
		errs = append(errs, c.Source.Close())
	}
	return errors.Join(errs...)
}

func (tl *Timeline) overlayIndex(id string) int {
	return slices.IndexFunc(tl.overlays, func(o Overlay) bool { return o.ID == id })
}

func (tl *Timeline) topZ() int {
	z := 0
	for _, o := range tl.overlays {
		z = max(z, o.ZIndex)
	}
	return z
}
