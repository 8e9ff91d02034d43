// Package preview plays a splice timeline in an Ebitengine window using the
// same compositor as export.
package preview

import (
	"context"
	"errors"
	"image"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/phanxgames/splice"
	"github.com/sirupsen/logrus"
)

// seekStep is how far the arrow keys move the playhead, in seconds.
const seekStep = 1.0

// Player implements ebiten.Game. Space toggles playback, the arrow keys
// seek, Home rewinds and L toggles looping.
type Player struct {
	engine *splice.Engine
	log    *logrus.Entry

	mu       sync.Mutex
	timeline *splice.Timeline
	snap     *splice.Snapshot
	clock    clock

	frame    *ebiten.Image
	rendered float64
	dirty    bool
	lastErr  string

	fps     *fpsWidget
	showFPS bool
}

// Option configures a Player.
type Option func(*Player)

// WithLogger sets the player's logger.
func WithLogger(log *logrus.Entry) Option {
	return func(p *Player) {
		if log != nil {
			p.log = log
		}
	}
}

// WithFPS shows an FPS/TPS readout in the top-left corner.
func WithFPS(show bool) Option {
	return func(p *Player) { p.showFPS = show }
}

// WithLoop starts the player in looping mode.
func WithLoop(loop bool) Option {
	return func(p *Player) { p.clock.loop = loop }
}

// NewPlayer creates a paused player for tl. The player owns tl and closes it
// when it is replaced.
func NewPlayer(engine *splice.Engine, tl *splice.Timeline, opts ...Option) *Player {
	p := &Player{
		engine: engine,
		log:    logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.WithField("component", "preview")
	p.setTimelineLocked(tl)
	if p.showFPS {
		p.fps = newFPSWidget()
	}
	return p
}

// SetTimeline swaps in a new timeline, keeping the playhead where it is when
// it still fits. The previous timeline is closed once no frame is using it.
func (p *Player) SetTimeline(tl *splice.Timeline) {
	p.mu.Lock()
	prev := p.timeline
	p.setTimelineLocked(tl)
	p.mu.Unlock()
	if prev != nil && prev != tl {
		if err := prev.Close(); err != nil {
			p.log.WithError(err).Warn("closing previous timeline")
		}
	}
}

func (p *Player) setTimelineLocked(tl *splice.Timeline) {
	p.timeline = tl
	p.snap = tl.Snapshot()
	p.clock.setTotal(p.snap.TotalDuration(), p.snap.PlaybackSpeed)
	p.dirty = true
}

// Time returns the playhead position in timeline seconds.
func (p *Player) Time() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.clock.t
}

// Playing reports whether the clock is advancing.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.clock.playing
}

// Update advances the clock by one tick and handles keyboard input.
func (p *Player) Update() error {
	dt := 1.0 / float64(ebiten.TPS())
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		p.clock.toggle()
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		p.clock.seek(p.clock.t + seekStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft):
		p.clock.seek(p.clock.t - seekStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyHome):
		p.clock.seek(0)
	case inpututil.IsKeyJustPressed(ebiten.KeyL):
		p.clock.loop = !p.clock.loop
	}
	p.clock.advance(dt)
	if p.fps != nil {
		p.fps.update(dt)
	}
	return nil
}

// Draw renders the frame under the playhead. While an export holds the
// engine the last rendered frame stays on screen.
func (p *Player) Draw(screen *ebiten.Image) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.dirty || p.clock.t != p.rendered {
		p.renderLocked()
	}
	if p.frame != nil {
		op := &ebiten.DrawImageOptions{}
		fw, fh := p.frame.Bounds().Dx(), p.frame.Bounds().Dy()
		sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
		if fw != sw || fh != sh {
			op.GeoM.Scale(float64(sw)/float64(fw), float64(sh)/float64(fh))
			op.Filter = ebiten.FilterLinear
		}
		screen.DrawImage(p.frame, op)
	}
	if p.fps != nil {
		p.fps.draw(screen)
	}
}

func (p *Player) renderLocked() {
	t := p.clock.t
	img, err := p.engine.RenderFrame(context.Background(), p.snap, t)
	switch {
	case errors.Is(err, splice.ErrEngineBusy):
		return
	case err != nil:
		if msg := err.Error(); msg != p.lastErr {
			p.lastErr = msg
			p.log.WithFields(logrus.Fields{
				"function": "Draw",
				"time":     t,
			}).WithError(err).Warn("preview render failed")
		}
		return
	}
	p.lastErr = ""
	p.upload(img)
	p.rendered = t
	p.dirty = false
}

// upload copies img into the GPU-side frame, reallocating on size change.
func (p *Player) upload(img *image.RGBA) {
	b := img.Bounds()
	if p.frame == nil || p.frame.Bounds().Dx() != b.Dx() || p.frame.Bounds().Dy() != b.Dy() {
		if p.frame != nil {
			p.frame.Deallocate()
		}
		p.frame = ebiten.NewImageFromImage(img)
		return
	}
	if img.Stride == b.Dx()*4 && b.Min == (image.Point{}) {
		p.frame.WritePixels(img.Pix[:b.Dx()*b.Dy()*4])
		return
	}
	p.frame.WritePixels(packPixels(img))
}

// packPixels returns img's pixels without row padding.
func packPixels(img *image.RGBA) []byte {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		copy(out[y*w*4:], img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):][:w*4])
	}
	return out
}

// Layout keeps the timeline frame size as the logical screen.
func (p *Player) Layout(outsideWidth, outsideHeight int) (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.frame != nil {
		return p.frame.Bounds().Dx(), p.frame.Bounds().Dy()
	}
	return p.snap.Width, p.snap.Height
}

// Run opens a window and plays until it is closed.
func Run(p *Player, title string) error {
	w, h := p.Layout(0, 0)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(p)
}
