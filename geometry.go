package splice

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// sampleRect returns the source rectangle (origin and size, in source pixels
// relative to the frame's top-left) that a transform samples. Pan is a
// percentage of the source size; no clamping to the source bounds is done.
func sampleRect(srcW, srcH int, tr Transform) (x, y, w, h float64) {
	scale := tr.Scale
	if scale <= 0 {
		scale = 1
	}
	w = float64(srcW) / scale
	h = float64(srcH) / scale
	cx := float64(srcW)/2 + tr.PanX/100*float64(srcW)
	cy := float64(srcH)/2 + tr.PanY/100*float64(srcH)
	return cx - w/2, cy - h/2, w, h
}

// sampleTransform maps source coordinates onto a dstW×dstH frame so that the
// sampled rectangle fills it.
func sampleTransform(src image.Rectangle, dstW, dstH int, tr Transform) [6]float64 {
	x, y, w, h := sampleRect(src.Dx(), src.Dy(), tr)
	x += float64(src.Min.X)
	y += float64(src.Min.Y)
	sx := float64(dstW) / w
	sy := float64(dstH) / h
	return [6]float64{sx, 0, 0, sy, -x * sx, -y * sy}
}

// renderGeometry resamples src through tr into dst, which must be cleared.
// Output pixels whose sample falls outside the source stay transparent.
func renderGeometry(dst *image.RGBA, src image.Image, tr Transform) {
	db := dst.Bounds()
	m := sampleTransform(src.Bounds(), db.Dx(), db.Dy(), tr)
	if m == identityAffine && src.Bounds().Size() == db.Size() {
		draw.Draw(dst, db, src, src.Bounds().Min, draw.Src)
		return
	}
	m[4] += float64(db.Min.X)
	m[5] += float64(db.Min.Y)
	xdraw.BiLinear.Transform(dst, toAff3(m), src, src.Bounds(), xdraw.Src, nil)
}
