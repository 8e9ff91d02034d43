package splice

import (
	"image"
	"image/draw"
	"math"
)

// blendTransition composes frame a into frame b at progress p into dst.
// All three images have the same size.
func blendTransition(dst, a, b *image.RGBA, typ TransitionType, p float64) {
	p = clamp01(p)
	r := dst.Bounds()
	if typ == TransitionCrossfade {
		crossfade(dst, a, b, p)
		return
	}

	draw.Draw(dst, r, a, a.Bounds().Min, draw.Src)
	clip, ok := wipeRect(r, typ, p)
	if !ok || clip.Empty() {
		return
	}
	off := b.Bounds().Min.Sub(r.Min)
	draw.Draw(dst, clip, b, clip.Min.Add(off), draw.Over)
}

// wipeRect returns the region of r that shows frame B for a wipe.
func wipeRect(r image.Rectangle, typ TransitionType, p float64) (image.Rectangle, bool) {
	w := int(math.Round(float64(r.Dx()) * p))
	h := int(math.Round(float64(r.Dy()) * p))
	switch typ {
	case TransitionWipeLeft:
		return image.Rect(r.Min.X, r.Min.Y, r.Min.X+w, r.Max.Y), true
	case TransitionWipeRight:
		return image.Rect(r.Max.X-w, r.Min.Y, r.Max.X, r.Max.Y), true
	case TransitionWipeDown:
		return image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+h), true
	case TransitionWipeUp:
		return image.Rect(r.Min.X, r.Max.Y-h, r.Max.X, r.Max.Y), true
	}
	return image.Rectangle{}, false
}

// crossfade writes a·(1−p) + b·p per premultiplied channel.
func crossfade(dst, a, b *image.RGBA, p float64) {
	r := dst.Bounds()
	wb := int(math.Round(p * 256))
	wa := 256 - wb
	for y := 0; y < r.Dy(); y++ {
		d := dst.Pix[dst.PixOffset(r.Min.X, r.Min.Y+y):][:r.Dx()*4]
		ar := a.Pix[a.PixOffset(a.Rect.Min.X, a.Rect.Min.Y+y):]
		br := b.Pix[b.PixOffset(b.Rect.Min.X, b.Rect.Min.Y+y):]
		for i := range d {
			d[i] = uint8((int(ar[i])*wa + int(br[i])*wb + 128) >> 8)
		}
	}
}
