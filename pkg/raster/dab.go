package raster

import "github.com/oekaki-cafe/drawcore/pkg/types"

// writeMode selects which composite rule a dab uses.
type writeMode int

const (
	modeDirect writeMode = iota // remote ops, replays, fills: §4.1 blend at op alpha
	modeBuffer                  // local stroke buffer: full-opacity mask write, §4.2
)

// Dab stamps a single disc-shaped brush impression centered at (cx,cy) onto
// dst, dispatching on brush type per spec §4.1/§4.2.
func Dab(dst *Layer, cx, cy, size int, brush types.BrushType, c RGBA, mode writeMode) {
	mask, d := BrushMask(size)
	half := d / 2
	tone := 0
	if brush == types.BrushHalftone {
		tone = ToneLevel(c.A)
	}
	for my := 0; my < d; my++ {
		y := cy - half + my
		if y < 0 || y >= dst.H {
			continue
		}
		for mx := 0; mx < d; mx++ {
			if !mask[my*d+mx] {
				continue
			}
			x := cx - half + mx
			if x < 0 || x >= dst.W {
				continue
			}
			paintPixel(dst, x, y, brush, c, tone, mode)
		}
	}
}

func paintPixel(dst *Layer, x, y int, brush types.BrushType, c RGBA, tone int, mode writeMode) {
	if mode == modeBuffer {
		// Halftone still needs the pattern test even inside the buffer, so
		// that the buffer's eventual blit reproduces the dithered shape;
		// everything else in the buffer writes full-opacity mask pixels.
		if brush == types.BrushHalftone {
			if halftoneSample(tone, x, y) {
				bufferOver(dst, x, y, c)
			}
			return
		}
		bufferOver(dst, x, y, c)
		return
	}

	switch brush {
	case types.BrushHalftone:
		if halftoneSample(tone, x, y) {
			halftoneOver(dst, x, y, c)
		}
	case types.BrushEraser:
		eraseOver(dst, x, y, c.A)
	default:
		blendOver(dst, x, y, c)
	}
}
