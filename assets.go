package splice

import (
	"bytes"
	"context"
	"fmt"
	"hash/fnv"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"runtime"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	_ "golang.org/x/image/bmp"  // register decoder
	_ "golang.org/x/image/webp" // register decoder
	"golang.org/x/sync/errgroup"
)

// VectorMask is a decoded custom-vector mask that can be rasterized at any size.
type VectorMask interface {
	// Rasterize returns the mask coverage stretched over w×h. The caller owns
	// the returned image.
	Rasterize(w, h int) *image.Alpha
}

// svgMask rasterizes an SVG document with oksvg.
type svgMask struct {
	mu    sync.Mutex
	icon  *oksvg.SvgIcon
	cache map[image.Point]*image.Alpha
}

// DecodeVectorMask parses an SVG document into a vector mask.
func DecodeVectorMask(data []byte) (VectorMask, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("%w: vector mask: %w", ErrAssetDecode, err)
	}
	if icon.ViewBox.W <= 0 || icon.ViewBox.H <= 0 {
		return nil, fmt.Errorf("%w: vector mask has no viewBox size", ErrAssetDecode)
	}
	if len(icon.SVGPaths) == 0 {
		return nil, fmt.Errorf("%w: vector mask has no paths", ErrAssetDecode)
	}
	return &svgMask{icon: icon}, nil
}

func (m *svgMask) Rasterize(w, h int) *image.Alpha {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := image.Pt(w, h)
	cov, ok := m.cache[key]
	if !ok {
		img := image.NewRGBA(image.Rect(0, 0, w, h))
		scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
		m.icon.SetTarget(0, 0, float64(w), float64(h))
		m.icon.Draw(rasterx.NewDasher(w, h, scanner), 1)
		cov = image.NewAlpha(img.Bounds())
		for i := range cov.Pix {
			cov.Pix[i] = img.Pix[i*4+3]
		}
		if m.cache == nil {
			m.cache = make(map[image.Point]*image.Alpha)
		}
		m.cache[key] = cov
	}
	out := image.NewAlpha(cov.Rect)
	copy(out.Pix, cov.Pix)
	return out
}

// DecodeImage decodes a PNG, JPEG, GIF, WebP or BMP overlay bitmap.
func DecodeImage(data []byte) (image.Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: image: %w", ErrAssetDecode, err)
	}
	if b := img.Bounds(); b.Empty() {
		return nil, fmt.Errorf("%w: empty %s image", ErrAssetDecode, format)
	}
	return img, nil
}

// Assets holds the decoded overlay bitmaps and vector masks of a render.
// Entries are keyed by overlay id and payload, so edited overlays decode again.
type Assets struct {
	mu     sync.RWMutex
	images map[string]image.Image
	masks  map[string]VectorMask
}

// NewAssets returns an empty asset cache.
func NewAssets() *Assets {
	return &Assets{
		images: make(map[string]image.Image),
		masks:  make(map[string]VectorMask),
	}
}

// Preload decodes every overlay asset of snap. It fails with ErrAssetDecode
// if any asset cannot be decoded.
func Preload(ctx context.Context, snap *Snapshot) (*Assets, error) {
	a := NewAssets()
	if err := a.Load(ctx, snap.Overlays); err != nil {
		return nil, err
	}
	return a, nil
}

// Load decodes the assets of overlays that are not cached yet, concurrently.
func (a *Assets) Load(ctx context.Context, overlays []Overlay) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i := range overlays {
		o := &overlays[i]
		if ic, ok := o.Content.(*ImageContent); ok {
			key := assetKey(o.ID, ic.Data)
			if _, ok := a.Image(key); !ok {
				data := ic.Data
				id := o.ID
				g.Go(func() error {
					if err := ctx.Err(); err != nil {
						return err
					}
					img, err := DecodeImage(data)
					if err != nil {
						return fmt.Errorf("overlay %s: %w", id, err)
					}
					a.mu.Lock()
					a.images[key] = img
					a.mu.Unlock()
					return nil
				})
			}
		}
		if o.Mask.Shape == MaskCustomVector {
			key := assetKey(o.ID, o.Mask.VectorData)
			if _, ok := a.Mask(key); !ok {
				data := o.Mask.VectorData
				id := o.ID
				g.Go(func() error {
					if err := ctx.Err(); err != nil {
						return err
					}
					vm, err := DecodeVectorMask(data)
					if err != nil {
						return fmt.Errorf("overlay %s: %w", id, err)
					}
					a.mu.Lock()
					a.masks[key] = vm
					a.mu.Unlock()
					return nil
				})
			}
		}
	}
	return g.Wait()
}

// Image returns a decoded overlay bitmap.
func (a *Assets) Image(key string) (image.Image, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	img, ok := a.images[key]
	return img, ok
}

// Mask returns a decoded vector mask.
func (a *Assets) Mask(key string) (VectorMask, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	m, ok := a.masks[key]
	return m, ok
}

// Len returns the number of cached assets.
func (a *Assets) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.images) + len(a.masks)
}

// Prune drops cached assets that none of overlays refer to.
func (a *Assets) Prune(overlays []Overlay) {
	live := make(map[string]struct{}, 2*len(overlays))
	for i := range overlays {
		o := &overlays[i]
		if key := o.imageKey(); key != "" {
			live[key] = struct{}{}
		}
		if o.Mask.Shape == MaskCustomVector {
			live[o.maskKey()] = struct{}{}
		}
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for key := range a.images {
		if _, ok := live[key]; !ok {
			delete(a.images, key)
		}
	}
	for key := range a.masks {
		if _, ok := live[key]; !ok {
			delete(a.masks, key)
		}
	}
}

// Release drops every cached asset.
func (a *Assets) Release() {
	a.mu.Lock()
	defer a.mu.Unlock()
	clear(a.images)
	clear(a.masks)
}

func (o *Overlay) imageKey() string {
	if ic, ok := o.Content.(*ImageContent); ok {
		return assetKey(o.ID, ic.Data)
	}
	return ""
}

func (o *Overlay) maskKey() string {
	return assetKey(o.ID, o.Mask.VectorData)
}

func assetKey(id string, data []byte) string {
	h := fnv.New64a()
	h.Write(data)
	return fmt.Sprintf("%s:%d:%016x", id, len(data), h.Sum64())
}
