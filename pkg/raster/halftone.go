package raster

// bayer4x4 is the standard 4x4 ordered-dither threshold matrix, flattened
// row-major, values 0..15 (§3 "Halftone pattern").
var bayer4x4 = [16]int{
	0, 8, 2, 10,
	12, 4, 14, 6,
	3, 11, 1, 9,
	15, 7, 13, 5,
}

// halftoneThresholds maps opacity bytes to one of 16 tone levels. The
// duplicate entries at indices 4/5/6 (114) and 10/11 (184) are intentional
// per spec §3/§9: they widen those tone plateaus and must be preserved
// verbatim.
var halftoneThresholds = [15]int{
	23, 47, 69, 92, 114, 114, 114, 138, 161, 184, 184, 207, 230, 230, 253,
}

// ToneLevel derives the [0,15] tone level a halftone dab paints at, from an
// opacity byte, via the fixed threshold table.
func ToneLevel(a uint8) int {
	for i, t := range halftoneThresholds {
		if int(a) < t {
			return i
		}
	}
	return 15
}

// toneMasks[t] is a precomputed 16-bool row-major 4x4 mask: pixel (r,c) is
// painted at tone level t iff bayer4x4[r*4+c] < t. (t=0 paints nothing, as
// no bayer cell is below 0; higher t thresholds more cells on.)
var toneMasks [16][16]bool

func init() {
	for t := 0; t < 16; t++ {
		for i, v := range bayer4x4 {
			toneMasks[t][i] = v < t
		}
	}
}

// halftoneSample reports whether global canvas coordinate (x,y) is painted
// at tone level t — sampling at global, not dab-local, coordinates so
// adjacent dabs tile seamlessly (§4.1).
func halftoneSample(t, x, y int) bool {
	return toneMasks[t][mod4(y)*4+mod4(x)]
}

// mod4 is a Euclidean mod so negative canvas coordinates still tile correctly.
func mod4(v int) int {
	m := v % 4
	if m < 0 {
		m += 4
	}
	return m
}
