package raster

import "math"

// BlendPixel exposes the §4.1 blend rule for a single pixel, used by the
// stroke buffer's commit blit.
func BlendPixel(dst *Layer, x, y int, c RGBA) {
	blendOver(dst, x, y, c)
}

// ErasePixel exposes the eraser's destination-out composite for a single
// pixel, used by the stroke buffer's eraser commit blit.
func ErasePixel(dst *Layer, x, y int, a uint8) {
	eraseOver(dst, x, y, a)
}

// blendOver composites source color (r,g,b,a) over the destination sample
// already at (x,y), using the exact rule of spec §4.1. This rule — including
// the a1' floor and the "round toward source" tie-break — is normative: it
// is reproduced verbatim so that independently-ordered clients still
// converge on identical bytes (P1, P2).
func blendOver(dst *Layer, x, y int, c RGBA) {
	if c.A == 0 {
		return // a zero-alpha source leaves the destination unchanged (P2)
	}
	d := dst.At(x, y)
	a0 := float64(d.A) / 255
	a1 := float64(c.A) / 255
	a1p := a1
	if a1p < 1.0/255 {
		a1p = 1.0 / 255
	}
	aOut := a0 + a1 - a0*a1
	if aOut <= 0 {
		dst.SetRaw(x, y, RGBA{})
		return
	}
	dst.SetRaw(x, y, RGBA{
		R: blendChannel(c.R, d.R, a1p, a0, aOut),
		G: blendChannel(c.G, d.G, a1p, a0, aOut),
		B: blendChannel(c.B, d.B, a1p, a0, aOut),
		A: clampByte(math.Ceil(aOut * 255)),
	})
}

// blendChannel blends one channel; src is the rounding tie-break reference.
func blendChannel(src, dst uint8, a1p, a0, aOut float64) uint8 {
	v := (float64(src)*a1p + float64(dst)*a0*(1-a1p)) / aOut
	if src > dst {
		v = math.Ceil(v)
	} else {
		v = math.Floor(v)
	}
	return clampByte(v)
}

// eraseOver implements the eraser's destination-out composite (§4.1):
// a_out = a0 * (1 - a1*maskCoverage). maskCoverage is 1.0 for any dab pixel
// selected by the brush mask (the eraser does not have partial sub-pixel
// coverage), so effectively a_out = a0*(1-a1).
func eraseOver(dst *Layer, x, y int, a uint8) {
	d := dst.At(x, y)
	a0 := float64(d.A) / 255
	a1 := float64(a) / 255
	aOut := a0 * (1 - a1)
	if aOut <= 0 {
		dst.SetRaw(x, y, RGBA{})
		return
	}
	d.A = clampByte(math.Round(aOut * 255))
	dst.SetRaw(x, y, d)
}

// halftoneOver paints a fully-opaque sample: halftone density is already
// encoded by which pixels the pattern selects (§4.2), so a selected pixel
// always blends as if a=255.
func halftoneOver(dst *Layer, x, y int, c RGBA) {
	blendOver(dst, x, y, RGBA{R: c.R, G: c.G, B: c.B, A: 255})
}

// bufferOver is the stroke-buffer write mode (§4.2): RGB at full coverage,
// mask-only, so repeated dabs within one stroke never self-compound.
func bufferOver(dst *Layer, x, y int, c RGBA) {
	dst.SetRaw(x, y, RGBA{R: c.R, G: c.G, B: c.B, A: 255})
}

func clampByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
