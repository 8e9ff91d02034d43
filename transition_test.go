package splice

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	frameRed  = color.RGBA{255, 0, 0, 255}
	frameBlue = color.RGBA{0, 0, 255, 255}
)

func blendAt(typ TransitionType, p float64) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, 10, 10))
	blendTransition(dst, solidRGBA(10, 10, frameRed), solidRGBA(10, 10, frameBlue), typ, p)
	return dst
}

func TestCrossfadeEndpointsExact(t *testing.T) {
	assert.Equal(t, solidRGBA(10, 10, frameRed).Pix, blendAt(TransitionCrossfade, 0).Pix)
	assert.Equal(t, solidRGBA(10, 10, frameBlue).Pix, blendAt(TransitionCrossfade, 1).Pix)
}

func TestCrossfadeMidpoint(t *testing.T) {
	c := blendAt(TransitionCrossfade, 0.5).RGBAAt(4, 4)
	assert.Equal(t, color.RGBA{128, 0, 128, 255}, c)
}

func TestCrossfadeClampsProgress(t *testing.T) {
	assert.Equal(t, frameRed, blendAt(TransitionCrossfade, -1).RGBAAt(0, 0))
	assert.Equal(t, frameBlue, blendAt(TransitionCrossfade, 2).RGBAAt(0, 0))
}

func TestWipes(t *testing.T) {
	tests := []struct {
		typ        TransitionType
		showsB     image.Point
		stillShowA image.Point
	}{
		{TransitionWipeLeft, image.Pt(1, 5), image.Pt(8, 5)},
		{TransitionWipeRight, image.Pt(8, 5), image.Pt(1, 5)},
		{TransitionWipeDown, image.Pt(5, 1), image.Pt(5, 8)},
		{TransitionWipeUp, image.Pt(5, 8), image.Pt(5, 1)},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			dst := blendAt(tt.typ, 0.3)
			assert.Equal(t, frameBlue, dst.RGBAAt(tt.showsB.X, tt.showsB.Y))
			assert.Equal(t, frameRed, dst.RGBAAt(tt.stillShowA.X, tt.stillShowA.Y))

			assert.Equal(t, solidRGBA(10, 10, frameRed).Pix, blendAt(tt.typ, 0).Pix)
			assert.Equal(t, solidRGBA(10, 10, frameBlue).Pix, blendAt(tt.typ, 1).Pix)
		})
	}
}

func TestWipeRect(t *testing.T) {
	r := image.Rect(0, 0, 100, 50)
	got, ok := wipeRect(r, TransitionWipeLeft, 0.25)
	assert.True(t, ok)
	assert.Equal(t, image.Rect(0, 0, 25, 50), got)

	got, _ = wipeRect(r, TransitionWipeUp, 0.5)
	assert.Equal(t, image.Rect(0, 25, 100, 50), got)

	_, ok = wipeRect(r, TransitionCrossfade, 0.5)
	assert.False(t, ok)
}

func TestTransitionNoneShowsA(t *testing.T) {
	assert.Equal(t, solidRGBA(10, 10, frameRed).Pix, blendAt(TransitionNone, 0.7).Pix)
}
