// Package stroke implements the offscreen stroke buffer (spec §4.2): local
// strokes draw into it at full opacity so overlapping dabs within one
// stroke never self-compound, then a single alpha blit onto the target
// layer commits the whole stroke atomically.
package stroke

import (
	"github.com/oekaki-cafe/drawcore/pkg/raster"
	"github.com/oekaki-cafe/drawcore/pkg/types"
)

// Buffer is the local user's single in-progress stroke.
type Buffer struct {
	w, h int
	buf  *raster.Layer

	active     bool
	isHalftone bool
	isEraser   bool
}

// NewBuffer allocates a buffer sized to the canvas.
func NewBuffer(w, h int) *Buffer {
	return &Buffer{w: w, h: h, buf: raster.NewLayer(w, h)}
}

// Active reports whether a stroke is currently open (invariant I4).
func (b *Buffer) Active() bool { return b.active }

// BeginStroke clears the offscreen buffer and marks it active.
func (b *Buffer) BeginStroke() {
	b.buf.Clear()
	b.active = true
	b.isHalftone = false
	b.isEraser = false
}

// DrawPoint stamps a dab into the buffer at full coverage (mask-only write).
// Lazily begins a stroke if one was not already active — a StrokeBufferFault
// per §7, handled by re-initializing rather than erroring.
func (b *Buffer) DrawPoint(x, y, size int, brush types.BrushType, c types.RGBA) {
	b.ensureActive(brush)
	raster.DrawPointToBuffer(b.buf, x, y, size, brush, raster.RGBA(c))
}

// DrawLine draws a line of dabs into the buffer.
func (b *Buffer) DrawLine(x0, y0, x1, y1, size int, brush types.BrushType, c types.RGBA) {
	b.ensureActive(brush)
	raster.DrawLineToBuffer(b.buf, x0, y0, x1, y1, size, brush, raster.RGBA(c))
}

func (b *Buffer) ensureActive(brush types.BrushType) {
	if !b.active {
		b.BeginStroke()
	}
	if brush == types.BrushHalftone {
		b.isHalftone = true
	}
	if brush == types.BrushEraser {
		b.isEraser = true
	}
}

// EndStroke blits the buffer onto target once, at globalAlpha =
// strokeOpacity * layerOpacity, then deactivates the buffer (§4.2).
// Halftone strokes ignore the opacity argument and commit at full
// effective opacity, since density is already encoded in which pixels the
// buffer holds.
func (b *Buffer) EndStroke(target *raster.Layer, strokeOpacity, layerOpacity float64) {
	if !b.active {
		return
	}
	alpha := strokeOpacity * layerOpacity
	if b.isHalftone {
		alpha = 1.0
	}
	a := clamp255(alpha)
	if b.isEraser {
		blitErase(target, b.buf, a)
	} else {
		blitOver(target, b.buf, a)
	}
	b.active = false
	b.isHalftone = false
	b.isEraser = false
}

// blitOver composites the buffer onto target pixel-by-pixel: any buffer
// pixel with nonzero coverage is blended over the target at alpha a,
// using the same exact blend rule as a direct draw (§4.1).
func blitOver(target, buf *raster.Layer, a uint8) {
	for y := 0; y < buf.H; y++ {
		for x := 0; x < buf.W; x++ {
			s := buf.At(x, y)
			if s.A == 0 {
				continue
			}
			raster.BlendPixel(target, x, y, raster.RGBA{R: s.R, G: s.G, B: s.B, A: a})
		}
	}
}

// blitErase commits an eraser stroke's touched mask onto target via the
// destination-out rule, once per pixel at commit time, so overlapping dabs
// within the stroke don't compound erasure beyond one pass at a (§4.1, §4.2).
func blitErase(target, buf *raster.Layer, a uint8) {
	for y := 0; y < buf.H; y++ {
		for x := 0; x < buf.W; x++ {
			if buf.At(x, y).A == 0 {
				continue
			}
			raster.ErasePixel(target, x, y, a)
		}
	}
}

func clamp255(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v * 255)
}
