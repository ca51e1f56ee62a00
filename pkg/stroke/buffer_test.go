package stroke

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oekaki-cafe/drawcore/pkg/raster"
	"github.com/oekaki-cafe/drawcore/pkg/types"
)

func TestBufferLazilyBeginsOnFirstDraw(t *testing.T) {
	b := NewBuffer(10, 10)
	assert.False(t, b.Active())
	b.DrawPoint(5, 5, 3, types.BrushSolid, types.RGBA{R: 1, A: 255})
	assert.True(t, b.Active())
}

func TestBufferEndStrokeDeactivatesAndCommitsOnce(t *testing.T) {
	b := NewBuffer(10, 10)
	target := raster.NewLayer(10, 10)
	b.DrawPoint(5, 5, 3, types.BrushSolid, types.RGBA{R: 100, G: 0, B: 0, A: 255})
	b.EndStroke(target, 1.0, 1.0)

	require.False(t, b.Active())
	assert.NotEqual(t, raster.RGBA{}, target.At(5, 5))
}

// P3: a stroke drawn as many overlapping dabs through the buffer, then
// committed once, must equal the same dabs blended directly at the same
// effective alpha, pixel for pixel where coverage is uniform.
func TestBufferCommitMatchesDirectBlendAtFullOpacity(t *testing.T) {
	viaBuffer := raster.NewLayer(20, 20)
	direct := raster.NewLayer(20, 20)
	c := types.RGBA{R: 80, G: 40, B: 20, A: 255}

	b := NewBuffer(20, 20)
	b.DrawLine(2, 10, 17, 10, 5, types.BrushSolid, c)
	b.EndStroke(viaBuffer, 1.0, 1.0)

	raster.DrawLine(direct, 2, 10, 17, 10, 5, types.BrushSolid, raster.RGBA(c))

	assert.True(t, viaBuffer.Equal(direct))
}

func TestBufferEndStrokeAppliesCombinedOpacity(t *testing.T) {
	b := NewBuffer(10, 10)
	target := raster.NewLayer(10, 10)
	b.DrawPoint(5, 5, 3, types.BrushSolid, types.RGBA{R: 255, A: 255})
	b.EndStroke(target, 0.5, 0.5)
	got := target.At(5, 5)
	assert.InDelta(t, 64, int(got.A), 2, "0.5*0.5=0.25 effective alpha")
}

func TestBufferEndStrokeNoOpWhenNotActive(t *testing.T) {
	b := NewBuffer(5, 5)
	target := raster.NewLayer(5, 5)
	assert.NotPanics(t, func() { b.EndStroke(target, 1.0, 1.0) })
}

func TestBufferEraserReducesAlphaInsteadOfPaintingRGB(t *testing.T) {
	b := NewBuffer(10, 10)
	target := raster.NewLayer(10, 10)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			target.SetRaw(x, y, raster.RGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}

	b.DrawPoint(5, 5, 3, types.BrushEraser, types.RGBA{R: 255, G: 255, B: 255, A: 255})
	b.EndStroke(target, 0.5, 1.0)

	got := target.At(5, 5)
	assert.InDelta(t, 128, int(got.A), 2, "half-strength eraser should roughly halve coverage")
	assert.Equal(t, uint8(10), got.R, "destination-out never paints the eraser's own color into RGB")
}

func TestBufferEraserDoesNotCompoundAcrossOverlappingDabs(t *testing.T) {
	b := NewBuffer(20, 20)
	target := raster.NewLayer(20, 20)
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			target.SetRaw(x, y, raster.RGBA{R: 1, G: 2, B: 3, A: 255})
		}
	}

	// overlapping dabs along a line: a compounding implementation would erase
	// the same pixel more than once per commit.
	b.DrawLine(5, 10, 8, 10, 5, types.BrushEraser, types.RGBA{A: 255})
	b.EndStroke(target, 0.5, 1.0)

	got := target.At(6, 10).A
	// one erase pass at 0.5 strength halves alpha (within rounding), not
	// repeatedly for every dab that overlapped this pixel.
	assert.InDelta(t, 128, int(got), 2)
}

func TestBufferHalftoneIgnoresOpacityArgument(t *testing.T) {
	b := NewBuffer(10, 10)
	target := raster.NewLayer(10, 10)
	b.DrawPoint(5, 5, 7, types.BrushHalftone, types.RGBA{R: 10, G: 20, B: 30, A: 200})
	b.EndStroke(target, 0.1, 0.1)

	found := false
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if target.At(x, y).A != 0 {
				found = true
				assert.EqualValues(t, 255, target.At(x, y).A)
			}
		}
	}
	assert.True(t, found, "halftone dab should paint at least one pixel")
}
