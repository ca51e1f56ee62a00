// Package raster implements the deterministic drawing engine (spec §4.1):
// brush/halftone rasterization, Bresenham lines, flood fill, and the exact
// alpha-blend rule that lets independently-running clients converge on the
// same bitmap.
package raster

import (
	"bytes"

	"github.com/oekaki-cafe/drawcore/pkg/types"
)

// RGBA and Rect are re-exported from pkg/types so raster call sites don't
// need two import aliases for the same pixel-level concepts.
type RGBA = types.RGBA
type Rect = types.Rect

// Layer is a flat W*H raster of straight-alpha RGBA samples, §3.
// It is never premultiplied: Pix[i*4+3] is the coverage byte, not a
// multiplier already baked into the RGB channels.
type Layer struct {
	W, H int
	Pix  []byte // len == W*H*4
}

// NewLayer returns a fully transparent W x H layer.
func NewLayer(w, h int) *Layer {
	return &Layer{W: w, H: h, Pix: make([]byte, w*h*4)}
}

func (l *Layer) offset(x, y int) int { return (y*l.W + x) * 4 }

// InBounds reports whether (x,y) is a valid pixel coordinate.
func (l *Layer) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < l.W && y < l.H
}

// At returns the raw sample at (x,y). Callers must check InBounds first;
// out-of-bounds reads are a BoundsFault at the caller (§7).
func (l *Layer) At(x, y int) RGBA {
	i := l.offset(x, y)
	return RGBA{l.Pix[i], l.Pix[i+1], l.Pix[i+2], l.Pix[i+3]}
}

// SetRaw writes a sample verbatim, with no blending. Used for buffer resets
// and authoritative snapshot loads.
func (l *Layer) SetRaw(x, y int, c RGBA) {
	i := l.offset(x, y)
	l.Pix[i], l.Pix[i+1], l.Pix[i+2], l.Pix[i+3] = c.R, c.G, c.B, c.A
}

// Clear resets every sample to fully transparent.
func (l *Layer) Clear() {
	for i := range l.Pix {
		l.Pix[i] = 0
	}
}

// Clone deep-copies the layer; used by the history ring (§4.3) and by
// snapshot read-back in the reconciler (§4.6).
func (l *Layer) Clone() *Layer {
	out := &Layer{W: l.W, H: l.H, Pix: make([]byte, len(l.Pix))}
	copy(out.Pix, l.Pix)
	return out
}

// CopyFrom overwrites this layer's pixels from src, which must share dimensions.
func (l *Layer) CopyFrom(src *Layer) {
	copy(l.Pix, src.Pix)
}

// Equal reports byte-for-byte equality, used for history coalescing (§4.3)
// and P1 convergence checks.
func (l *Layer) Equal(o *Layer) bool {
	if l.W != o.W || l.H != o.H {
		return false
	}
	return bytes.Equal(l.Pix, o.Pix)
}

// SubRect reads back a rectangle (clamped to bounds) into a fresh Layer of
// that rectangle's size, used by selective rollback (§4.6) to snapshot the
// area a conflicting remote op will touch before reapplying it.
func (l *Layer) SubRect(r Rect) *Layer {
	r = r.Clamp(l.W, l.H)
	w, h := r.MaxX-r.MinX, r.MaxY-r.MinY
	if w <= 0 || h <= 0 {
		return NewLayer(0, 0)
	}
	out := NewLayer(w, h)
	for y := 0; y < h; y++ {
		srcI := l.offset(r.MinX, r.MinY+y)
		dstI := out.offset(0, y)
		copy(out.Pix[dstI:dstI+w*4], l.Pix[srcI:srcI+w*4])
	}
	return out
}

// PutSubRect writes a SubRect-shaped patch back at origin (ox,oy).
func (l *Layer) PutSubRect(patch *Layer, ox, oy int) {
	for y := 0; y < patch.H; y++ {
		dy := oy + y
		if dy < 0 || dy >= l.H {
			continue
		}
		for x := 0; x < patch.W; x++ {
			dx := ox + x
			if dx < 0 || dx >= l.W {
				continue
			}
			l.SetRaw(dx, dy, patch.At(x, y))
		}
	}
}
