package reconcile

import "github.com/oekaki-cafe/drawcore/pkg/types"

const heatGridSize = 50

// HeatMap buckets the canvas into a 50x50 grid of conflict counts (§4.6
// "Predictive conflicts"). The reconciler records conflicts into it; no
// code path reads Temperature back to change coalescing or reconciliation.
type HeatMap struct {
	canvasW, canvasH int
	counts           [heatGridSize][heatGridSize]int
}

// NewHeatMap builds a heat map scaled to a canvasW x canvasH canvas.
func NewHeatMap(canvasW, canvasH int) *HeatMap {
	if canvasW <= 0 {
		canvasW = 1
	}
	if canvasH <= 0 {
		canvasH = 1
	}
	return &HeatMap{canvasW: canvasW, canvasH: canvasH}
}

// RecordConflict increments the bucket(s) overlapping r.
func (h *HeatMap) RecordConflict(r types.Rect) {
	minGX, minGY := h.bucket(r.MinX, r.MinY)
	maxGX, maxGY := h.bucket(r.MaxX, r.MaxY)
	for gy := minGY; gy <= maxGY; gy++ {
		for gx := minGX; gx <= maxGX; gx++ {
			h.counts[gy][gx]++
		}
	}
}

// Temperature returns the conflict count of the bucket containing (x,y).
func (h *HeatMap) Temperature(x, y int) int {
	gx, gy := h.bucket(x, y)
	return h.counts[gy][gx]
}

func (h *HeatMap) bucket(x, y int) (int, int) {
	gx := x * heatGridSize / h.canvasW
	gy := y * heatGridSize / h.canvasH
	gx = clampGrid(gx)
	gy = clampGrid(gy)
	return gx, gy
}

func clampGrid(v int) int {
	if v < 0 {
		return 0
	}
	if v >= heatGridSize {
		return heatGridSize - 1
	}
	return v
}
