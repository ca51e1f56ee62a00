package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBrushMaskClampsToValidRange(t *testing.T) {
	_, d := BrushMask(0)
	assert.Equal(t, 1, d)
	_, d = BrushMask(-5)
	assert.Equal(t, 1, d)
	_, d = BrushMask(999)
	assert.Equal(t, 30, d)
	_, d = BrushMask(7)
	assert.Equal(t, 7, d)
}

func TestBrushMaskD3CornersCleared(t *testing.T) {
	mask, d := BrushMask(3)
	assert.Equal(t, 3, d)
	for _, i := range []int{0, 2, 6, 8} {
		assert.False(t, mask[i], "corner %d must be cleared at d=3", i)
	}
	assert.True(t, mask[4], "the center pixel of a d=3 disc is always on")
}

func TestBrushMaskD5CornersCleared(t *testing.T) {
	mask, _ := BrushMask(5)
	for _, i := range []int{0, 4, 20, 24} {
		assert.False(t, mask[i], "corner %d must be cleared at d=5", i)
	}
}

func TestBrushMaskIsSymmetric(t *testing.T) {
	mask, d := BrushMask(11)
	for y := 0; y < d; y++ {
		for x := 0; x < d; x++ {
			assert.Equal(t, mask[y*d+x], mask[y*d+(d-1-x)], "mask should be horizontally symmetric at (%d,%d)", x, y)
		}
	}
}
