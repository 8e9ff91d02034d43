package splice

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	xdraw "golang.org/x/image/draw"
)

// compositor renders complete frames from a snapshot. It is the single
// rendering path shared by preview and export.
type compositor struct {
	pool  bufferPool
	faces faceCache
	log   *logrus.Entry
	debug bool
}

// frameJob carries the per-render state shared by every frame of one call.
type frameJob struct {
	snap   *Snapshot
	assets *Assets
	global *EffectChain
	chains [2]*EffectChain
	w, h   int
	// hardEdges thresholds mask coverage and ignores feather.
	hardEdges bool
}

// newFrameJob compiles the snapshot's filter chains for w×h frames.
func newFrameJob(snap *Snapshot, assets *Assets, w, h int) (*frameJob, error) {
	job := &frameJob{snap: snap, assets: assets, w: w, h: h}
	global, err := CompileAdjustments(snap.Filter.Adjustments())
	if err != nil {
		return nil, fmt.Errorf("global filter: %w", err)
	}
	job.global = global
	for i := range snap.Clips {
		if i >= len(job.chains) {
			break
		}
		ch, err := clipChain(snap.Clips[i])
		if err != nil {
			return nil, fmt.Errorf("clip %d: %w", i, err)
		}
		job.chains[i] = ch
	}
	return job, nil
}

// outputSize returns the frame size after the global crop.
func (job *frameJob) outputSize() (int, int) {
	if job.snap.Crop.IsFull() || job.snap.Crop == (Crop{}) {
		return job.w, job.h
	}
	_, _, cw, ch := job.snap.Crop.Rect(job.w, job.h)
	return cw, ch
}

// composeFrame renders the frame at timeline time t. The returned image is
// owned by the caller.
func (c *compositor) composeFrame(ctx context.Context, job *frameJob, t float64) (*image.RGBA, error) {
	var stats debugStats
	canvas := NewCanvas(job.w, job.h)
	canvas.Fill(ColorBlack)

	st := job.snap.MapTime(t)
	start := time.Now()
	var layer *image.RGBA
	var err error
	switch st.Phase {
	case PhaseA:
		layer, err = c.renderClip(ctx, job, 0, st.LocalA, &stats)
	case PhaseB:
		layer, err = c.renderClip(ctx, job, 1, st.LocalB, &stats)
	case PhaseTransition:
		layer, err = c.renderTransition(ctx, job, st, &stats)
	}
	if err != nil {
		return nil, err
	}
	if layer != nil {
		canvas.DrawImageAt(layer, 0, 0)
		c.pool.Release(layer)
	}
	stats.clipTime = time.Since(start) - stats.seekTime

	start = time.Now()
	for _, o := range visibleOverlays(job.snap.Overlays, t) {
		if err := c.renderOverlay(canvas, job, o, Animate(o, t)); err != nil {
			return nil, fmt.Errorf("overlay %s: %w", o.ID, err)
		}
		stats.overlayCount++
	}
	stats.overlayTime = time.Since(start)

	start = time.Now()
	out := canvas.Image()
	if w, h := job.outputSize(); w != job.w || h != job.h {
		x, y, _, _ := job.snap.Crop.Rect(job.w, job.h)
		out = canvas.SubImageCopy(image.Rect(x, y, x+w, y+h))
	}
	stats.cropTime = time.Since(start)

	if c.debug {
		stats.liveBuffers = c.pool.Live()
		debugLog(c.log, t, stats)
	}
	return out, nil
}

// renderTransition renders both clips and blends them at st.Progress.
func (c *compositor) renderTransition(ctx context.Context, job *frameJob, st TimeState, stats *debugStats) (*image.RGBA, error) {
	a, err := c.renderClip(ctx, job, 0, st.LocalA, stats)
	if err != nil {
		return nil, err
	}
	defer c.pool.Release(a)
	b, err := c.renderClip(ctx, job, 1, st.LocalB, stats)
	if err != nil {
		return nil, err
	}
	defer c.pool.Release(b)

	out := c.pool.Acquire(job.w, job.h)
	blendTransition(out, a, b, job.snap.Transition.Type, st.Progress)
	return out, nil
}

// renderClip seeks clip i to the source time for local, then resamples and
// filters the frame into a pooled full-frame layer.
func (c *compositor) renderClip(ctx context.Context, job *frameJob, i int, local float64, stats *debugStats) (*image.RGBA, error) {
	clip := job.snap.Clips[i]
	srcTime := clip.SourceTime(local)

	seekStart := time.Now()
	if err := clip.Source.Seek(ctx, srcTime); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: clip %d at %.4fs: %w", ErrSeek, i, srcTime, err)
	}
	frame, err := clip.Source.Frame()
	if err != nil {
		return nil, fmt.Errorf("%w: clip %d frame at %.4fs: %w", ErrSeek, i, srcTime, err)
	}
	stats.seekTime += time.Since(seekStart)

	buf := c.pool.Acquire(job.w, job.h)
	renderGeometry(buf, frame, clip.TransformAt(local))

	out := job.chains[i].Apply(buf, &c.pool)
	if out != buf {
		c.pool.Release(buf)
	}
	final := job.global.Apply(out, &c.pool)
	if final != out {
		c.pool.Release(out)
	}
	return final, nil
}

// renderOverlay rasterizes an overlay into an isolated buffer, masks it and
// draws it onto the canvas centered at (Left%, Top%) with the animation state
// applied.
func (c *compositor) renderOverlay(canvas *Canvas, job *frameJob, o *Overlay, st AnimationState) error {
	if !st.Visible || st.Opacity <= 0 || st.Scale <= 0 {
		return nil
	}

	var buf *image.RGBA
	switch content := o.Content.(type) {
	case *TextContent:
		var err error
		buf, err = c.faces.renderText(&c.pool, content)
		if err != nil {
			return err
		}
	case *ImageContent:
		img, ok := job.assets.Image(o.imageKey())
		if !ok {
			return fmt.Errorf("%w: image not loaded", ErrAssetDecode)
		}
		buf = c.renderImage(img, content, job.w)
	default:
		return fmt.Errorf("unsupported overlay content %T", o.Content)
	}
	defer func() { c.pool.Release(buf) }()

	var vm VectorMask
	if o.Mask.Shape == MaskCustomVector {
		vm, _ = job.assets.Mask(o.maskKey())
	}
	if err := applyMask(buf, o.Mask, vm, job.hardEdges); err != nil {
		return err
	}

	bw, bh := float64(buf.Rect.Dx()), float64(buf.Rect.Dy())
	cx := o.Left/100*float64(job.w) + st.TranslateX/100*float64(job.w)
	cy := o.Top/100*float64(job.h) + st.TranslateY/100*float64(job.h)
	canvas.DrawImageColored(buf, DrawOpts{
		X:      cx - bw/2,
		Y:      cy - bh/2,
		ScaleX: st.Scale,
		ScaleY: st.Scale,
		PivotX: bw / 2,
		PivotY: bh / 2,
		Alpha:  st.Opacity,
	})
	return nil
}

// renderImage scales an overlay bitmap to its configured width and applies
// its chroma key.
func (c *compositor) renderImage(img image.Image, content *ImageContent, frameW int) *image.RGBA {
	b := img.Bounds()
	w := max(1, int(math.Round(content.Width/100*float64(frameW))))
	h := max(1, int(math.Round(float64(w)*float64(b.Dy())/float64(b.Dx()))))
	buf := c.pool.Acquire(w, h)
	xdraw.BiLinear.Scale(buf, buf.Rect, img, b, xdraw.Src, nil)
	if !content.ChromaKey.Enabled {
		return buf
	}
	key := &ChromaKeyFilter{Key: content.ChromaKey.Color, Similarity: content.ChromaKey.Similarity}
	out := applyFilters([]Filter{key}, buf, &c.pool)
	if out != buf {
		c.pool.Release(buf)
	}
	return out
}

// drain releases pooled memory and cached faces.
func (c *compositor) drain() {
	c.pool.Drain()
	c.faces.Close()
}
