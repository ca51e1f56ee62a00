package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLayerCloneIsIndependent(t *testing.T) {
	l := NewLayer(3, 3)
	l.SetRaw(1, 1, RGBA{R: 9, G: 9, B: 9, A: 255})
	clone := l.Clone()
	clone.SetRaw(1, 1, RGBA{A: 0})

	assert.True(t, l.Equal(l))
	assert.False(t, l.Equal(clone))
	assert.Equal(t, uint8(255), l.At(1, 1).A)
}

func TestLayerCopyFromOverwritesInPlace(t *testing.T) {
	a := NewLayer(2, 2)
	b := NewLayer(2, 2)
	b.SetRaw(0, 0, RGBA{R: 1, G: 2, B: 3, A: 4})
	a.CopyFrom(b)
	assert.True(t, a.Equal(b))
}

func TestLayerSubRectAndPutSubRectRoundTrip(t *testing.T) {
	l := NewLayer(5, 5)
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			l.SetRaw(x, y, RGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}
	patch := l.SubRect(Rect{MinX: 1, MinY: 1, MaxX: 3, MaxY: 3})
	assert.Equal(t, 2, patch.W)
	assert.Equal(t, 2, patch.H)
	assert.Equal(t, l.At(1, 1), patch.At(0, 0))

	dst := NewLayer(5, 5)
	dst.PutSubRect(patch, 1, 1)
	assert.Equal(t, l.At(1, 1), dst.At(1, 1))
	assert.Equal(t, l.At(2, 2), dst.At(2, 2))
	assert.Equal(t, RGBA{}, dst.At(0, 0), "outside the patch, destination stays untouched")
}

func TestLayerPutSubRectClampsOutOfBounds(t *testing.T) {
	l := NewLayer(2, 2)
	patch := NewLayer(2, 2)
	patch.SetRaw(0, 0, RGBA{R: 1, A: 255})
	assert.NotPanics(t, func() { l.PutSubRect(patch, 1, 1) })
}
