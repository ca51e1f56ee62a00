package raster

import "github.com/oekaki-cafe/drawcore/pkg/types"

// DrawLine draws a Bresenham line of disc-shaped dabs from (x0,y0) to
// (x1,y1) onto target (§4.1). Identical endpoints degenerate to a single
// dab. Caller guarantees integer endpoints (already true in Go).
func DrawLine(target *Layer, x0, y0, x1, y1, size int, brush types.BrushType, c RGBA) {
	drawLineMode(target, x0, y0, x1, y1, size, brush, c, modeDirect)
}

// DrawLineToBuffer is the stroke-buffer variant used while a stroke is in
// progress (§4.2): identical geometry, full-opacity mask writes.
func DrawLineToBuffer(target *Layer, x0, y0, x1, y1, size int, brush types.BrushType, c RGBA) {
	drawLineMode(target, x0, y0, x1, y1, size, brush, c, modeBuffer)
}

// DrawPoint stamps a single dab — the drawPoint operation kind.
func DrawPoint(target *Layer, x, y, size int, brush types.BrushType, c RGBA) {
	Dab(target, x, y, size, brush, c, modeDirect)
}

// DrawPointToBuffer is DrawPoint's buffer-mode counterpart.
func DrawPointToBuffer(target *Layer, x, y, size int, brush types.BrushType, c RGBA) {
	Dab(target, x, y, size, brush, c, modeBuffer)
}

func drawLineMode(target *Layer, x0, y0, x1, y1, size int, brush types.BrushType, c RGBA, mode writeMode) {
	if x0 == x1 && y0 == y1 {
		Dab(target, x0, y0, size, brush, c, mode)
		return
	}

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	x, y := x0, y0
	for {
		Dab(target, x, y, size, brush, c, mode)
		if x == x1 && y == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
