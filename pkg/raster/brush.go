package raster

import "math"

// brushMasks[d] is a d*d row-major {0,1} disc mask for size d in [1,30],
// precomputed once at init so dab rasterization never recomputes geometry
// (§3 "Brush shape"). Index 0 is unused.
var brushMasks [31][]bool

func init() {
	for d := 1; d <= 30; d++ {
		brushMasks[d] = discMask(d)
	}
	clearCorners(brushMasks[3], 3, []int{0, 2, 6, 8})
	clearCorners(brushMasks[5], 5, []int{0, 4, 20, 24})
}

// discMask returns a disc inscribed in the d*d square, sampled at pixel
// centers against a radius of d/2 centered on the square.
func discMask(d int) []bool {
	mask := make([]bool, d*d)
	center := float64(d-1) / 2
	radius := float64(d) / 2
	for y := 0; y < d; y++ {
		for x := 0; x < d; x++ {
			dx := float64(x) - center
			dy := float64(y) - center
			if math.Hypot(dx, dy) <= radius {
				mask[y*d+x] = true
			}
		}
	}
	return mask
}

// clearCorners forces the given flat indices off, matching the two
// hand-tuned exceptions noted in spec §3 ("d=3 corners cleared" and "d=5
// specific indices cleared") that make tiny brushes look visually centered.
// The exact index set at d=5 is an Open Question in spec §9 ("specific
// indices"); DESIGN.md records the choice made here (the four corners,
// mirroring the d=3 treatment).
func clearCorners(mask []bool, d int, indices []int) {
	for _, i := range indices {
		if i >= 0 && i < len(mask) {
			mask[i] = false
		}
	}
}

// BrushMask returns the precomputed disc mask for a brush size, clamped to
// [1,30] (§7 BoundsFault: clamp and continue).
func BrushMask(size int) (mask []bool, d int) {
	d = size
	if d < 1 {
		d = 1
	}
	if d > 30 {
		d = 30
	}
	return brushMasks[d], d
}
