package splice

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const halfSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10">
<rect x="0" y="0" width="5" height="10" fill="#000"/>
</svg>`

func whiteLayer(w, h int) *image.RGBA {
	return solidRGBA(w, h, color.RGBA{255, 255, 255, 255})
}

func partialAlphas(img *image.RGBA) int {
	n := 0
	for i := 3; i < len(img.Pix); i += 4 {
		if a := img.Pix[i]; a != 0 && a != 0xff {
			n++
		}
	}
	return n
}

func TestMaskValidate(t *testing.T) {
	tests := []struct {
		name    string
		m       Mask
		wantErr bool
	}{
		{"zero", Mask{}, false},
		{"circle", Mask{Shape: MaskCircle, Feather: 4}, false},
		{"rounded", Mask{Shape: MaskRectangle, CornerRadius: 50}, false},
		{"radius too large", Mask{Shape: MaskRectangle, CornerRadius: 51}, true},
		{"negative radius", Mask{Shape: MaskRectangle, CornerRadius: -1}, true},
		{"negative feather", Mask{Shape: MaskCircle, Feather: -2}, true},
		{"unknown shape", Mask{Shape: "star"}, true},
		{"vector without data", Mask{Shape: MaskCustomVector}, true},
		{"vector", Mask{Shape: MaskCustomVector, VectorData: []byte(halfSVG)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.m.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMaskNoneLeavesLayer(t *testing.T) {
	buf := whiteLayer(8, 8)
	require.NoError(t, applyMask(buf, Mask{}, nil, false))
	require.NoError(t, applyMask(buf, Mask{Shape: MaskNone}, nil, false))
	assert.Equal(t, whiteLayer(8, 8).Pix, buf.Pix)
}

func TestMaskCircle(t *testing.T) {
	buf := whiteLayer(40, 40)
	require.NoError(t, applyMask(buf, Mask{Shape: MaskCircle}, nil, false))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, buf.RGBAAt(20, 20))
	assert.Equal(t, color.RGBA{}, buf.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{}, buf.RGBAAt(39, 39))
	assert.Equal(t, uint8(255), buf.RGBAAt(20, 1).A)
}

func TestMaskCircleOnWideLayerUsesShortSide(t *testing.T) {
	buf := whiteLayer(60, 20)
	require.NoError(t, applyMask(buf, Mask{Shape: MaskCircle}, nil, false))
	assert.Equal(t, uint8(255), buf.RGBAAt(30, 10).A)
	assert.Equal(t, uint8(0), buf.RGBAAt(5, 10).A)
	assert.Equal(t, uint8(0), buf.RGBAAt(55, 10).A)
}

func TestMaskRectangle(t *testing.T) {
	buf := whiteLayer(20, 10)
	require.NoError(t, applyMask(buf, Mask{Shape: MaskRectangle}, nil, false))
	assert.Equal(t, whiteLayer(20, 10).Pix, buf.Pix, "square corners keep every pixel")

	buf = whiteLayer(40, 40)
	require.NoError(t, applyMask(buf, Mask{Shape: MaskRectangle, CornerRadius: 25}, nil, false))
	assert.Equal(t, uint8(0), buf.RGBAAt(0, 0).A)
	assert.Equal(t, uint8(255), buf.RGBAAt(20, 0).A)
	assert.Equal(t, uint8(255), buf.RGBAAt(0, 20).A)
}

func TestMaskFeatherSoftensEdges(t *testing.T) {
	sharp := whiteLayer(40, 40)
	require.NoError(t, applyMask(sharp, Mask{Shape: MaskCircle}, nil, false))
	soft := whiteLayer(40, 40)
	require.NoError(t, applyMask(soft, Mask{Shape: MaskCircle, Feather: 4}, nil, false))
	assert.Greater(t, partialAlphas(soft), partialAlphas(sharp))
}

func TestMaskFeatherFadesLayerEdges(t *testing.T) {
	sharp := whiteLayer(40, 40)
	require.NoError(t, applyMask(sharp, Mask{Shape: MaskRectangle}, nil, false))
	assert.Zero(t, partialAlphas(sharp))

	soft := whiteLayer(40, 40)
	require.NoError(t, applyMask(soft, Mask{Shape: MaskRectangle, Feather: 6}, nil, false))
	assert.Greater(t, partialAlphas(soft), 0)
	assert.Less(t, soft.RGBAAt(0, 0).A, uint8(128))
	assert.Less(t, soft.RGBAAt(0, 20).A, uint8(200))
	assert.Less(t, soft.RGBAAt(0, 0).A, soft.RGBAAt(0, 20).A)
	assert.GreaterOrEqual(t, soft.RGBAAt(20, 20).A, uint8(250))

	circle := whiteLayer(40, 40)
	require.NoError(t, applyMask(circle, Mask{Shape: MaskCircle, Feather: 4}, nil, false))
	assert.Less(t, circle.RGBAAt(20, 0).A, uint8(200), "tangent points fade")
	assert.Less(t, circle.RGBAAt(0, 20).A, uint8(200), "tangent points fade")
}

func TestMaskHardEdges(t *testing.T) {
	buf := whiteLayer(40, 40)
	require.NoError(t, applyMask(buf, Mask{Shape: MaskCircle, Feather: 6}, nil, true))
	assert.Zero(t, partialAlphas(buf))
	assert.Equal(t, uint8(255), buf.RGBAAt(20, 20).A)
	assert.Equal(t, uint8(0), buf.RGBAAt(0, 0).A)
}

func TestMaskPremultipliedChannels(t *testing.T) {
	buf := solidRGBA(1, 1, color.RGBA{200, 100, 50, 255})
	multiplyCoverage(buf, &image.Alpha{Pix: []uint8{128}, Stride: 1, Rect: image.Rect(0, 0, 1, 1)})
	assert.Equal(t, color.RGBA{100, 50, 25, 128}, buf.RGBAAt(0, 0))
}

func TestMaskCustomVector(t *testing.T) {
	vm, err := DecodeVectorMask([]byte(halfSVG))
	require.NoError(t, err)

	buf := whiteLayer(20, 10)
	require.NoError(t, applyMask(buf, Mask{Shape: MaskCustomVector}, vm, false))
	assert.Equal(t, uint8(255), buf.RGBAAt(2, 5).A)
	assert.Equal(t, uint8(0), buf.RGBAAt(17, 5).A)
}

func TestMaskCustomVectorNotLoaded(t *testing.T) {
	err := applyMask(whiteLayer(4, 4), Mask{Shape: MaskCustomVector}, nil, false)
	assert.ErrorIs(t, err, ErrAssetDecode)
}

func TestMaskUnknownShape(t *testing.T) {
	assert.Error(t, applyMask(whiteLayer(4, 4), Mask{Shape: "star"}, nil, false))
}
