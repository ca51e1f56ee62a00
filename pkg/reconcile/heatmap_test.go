package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oekaki-cafe/drawcore/pkg/types"
)

func TestHeatMapStartsCold(t *testing.T) {
	h := NewHeatMap(500, 500)
	assert.Equal(t, 0, h.Temperature(10, 10))
}

func TestHeatMapRecordConflictIncrementsCoveredBuckets(t *testing.T) {
	h := NewHeatMap(500, 500)
	h.RecordConflict(types.Rect{MinX: 0, MinY: 0, MaxX: 9, MaxY: 9})
	assert.Equal(t, 1, h.Temperature(0, 0))
	// a point far outside the rect's bucket stays cold
	assert.Equal(t, 0, h.Temperature(490, 490))
}

func TestHeatMapAccumulatesAcrossMultipleConflicts(t *testing.T) {
	h := NewHeatMap(500, 500)
	r := types.Rect{MinX: 100, MinY: 100, MaxX: 105, MaxY: 105}
	h.RecordConflict(r)
	h.RecordConflict(r)
	h.RecordConflict(r)
	assert.Equal(t, 3, h.Temperature(102, 102))
}

func TestHeatMapWideRectCoversMultipleBuckets(t *testing.T) {
	h := NewHeatMap(500, 500)
	// spans roughly the whole canvas, should touch far corners
	h.RecordConflict(types.Rect{MinX: 0, MinY: 0, MaxX: 499, MaxY: 499})
	assert.Equal(t, 1, h.Temperature(0, 0))
	assert.Equal(t, 1, h.Temperature(499, 499))
}

func TestHeatMapClampsOutOfBoundsCoordinates(t *testing.T) {
	h := NewHeatMap(100, 100)
	assert.NotPanics(t, func() {
		h.RecordConflict(types.Rect{MinX: -50, MinY: -50, MaxX: 500, MaxY: 500})
	})
	assert.Equal(t, 1, h.Temperature(-999, -999))
	assert.Equal(t, 1, h.Temperature(99999, 99999))
}

func TestNewHeatMapDefaultsNonPositiveDimensions(t *testing.T) {
	h := NewHeatMap(0, -5)
	assert.Equal(t, 1, h.canvasW)
	assert.Equal(t, 1, h.canvasH)
}
