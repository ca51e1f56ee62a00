package raster

import (
	"sync"

	"github.com/oekaki-cafe/drawcore/pkg/types"
)

// Engine owns one participant's (background, foreground) layer pair and the
// pan/zoom transform used to map pointer coordinates to canvas pixels
// (§4.1). It is pure rasterization plus transform bookkeeping: no I/O, no
// network awareness.
type Engine struct {
	mu sync.Mutex

	bg, fg *Layer

	panX, panY float64
	zoom       float64

	dirty [2]bool
	// onDirty replaces the browser's "attach DOM canvases" callback: it is
	// invoked (outside the lock) whenever a layer is marked dirty or forced
	// to repaint immediately, so an embedder can push pixels to its own
	// output surface.
	onDirty func(which types.LayerKind)
}

// NewEngine allocates a fresh, fully transparent layer pair of size w x h.
func NewEngine(w, h int) *Engine {
	return &Engine{
		bg:   NewLayer(w, h),
		fg:   NewLayer(w, h),
		zoom: 1.0,
	}
}

// AttachDOMCanvases binds the output sink invoked on repaint. May be called
// once per participant, matching spec §4.1's contract.
func (e *Engine) AttachDOMCanvases(onDirty func(which types.LayerKind)) {
	e.mu.Lock()
	e.onDirty = onDirty
	e.mu.Unlock()
}

// Layer returns the live layer for in-place mutation by callers that hold
// the responsibility of serializing access (stroke buffer, reconciler).
func (e *Engine) Layer(which types.LayerKind) *Layer {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.layerLocked(which)
}

func (e *Engine) layerLocked(which types.LayerKind) *Layer {
	if which == types.LayerForeground {
		return e.fg
	}
	return e.bg
}

// GetLayerCanvas exposes the composited raster of one layer for export/snapshot.
func (e *Engine) GetLayerCanvas(which types.LayerKind) *Layer {
	return e.Layer(which)
}

// QueueLayerUpdate marks a layer dirty for the next repaint rather than
// painting synchronously.
func (e *Engine) QueueLayerUpdate(which types.LayerKind) {
	e.mu.Lock()
	e.dirty[which] = true
	cb := e.onDirty
	e.mu.Unlock()
	if cb != nil {
		cb(which)
	}
}

// UpdateAllDOMCanvasesImmediate forces both layers to repaint now,
// regardless of dirty state — used at catch-up boundaries (§4.5).
func (e *Engine) UpdateAllDOMCanvasesImmediate() {
	e.mu.Lock()
	e.dirty[0], e.dirty[1] = false, false
	cb := e.onDirty
	e.mu.Unlock()
	if cb == nil {
		return
	}
	cb(types.LayerBackground)
	cb(types.LayerForeground)
}

// UpdatePanOffset sets the pan offset in container-relative units and
// records the zoom in effect; pure transform state, never mutates pixels.
func (e *Engine) UpdatePanOffset(dx, dy float64, containerW, containerH int, zoom float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.panX, e.panY = dx, dy
	e.zoom = zoom
}

// AdjustPanForZoom rescales the current pan offset around a zoom pivot so
// the point under the pivot stays fixed on screen.
func (e *Engine) AdjustPanForZoom(oldZoom, newZoom, pivotX, pivotY float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if oldZoom == 0 {
		oldZoom = 1
	}
	e.panX = pivotX - (pivotX-e.panX)*(newZoom/oldZoom)
	e.panY = pivotY - (pivotY-e.panY)*(newZoom/oldZoom)
	e.zoom = newZoom
}

// PanZoom returns the current transform state.
func (e *Engine) PanZoom() (panX, panY, zoom float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.panX, e.panY, e.zoom
}

// ApplyOperation is the single dispatcher referenced in DESIGN NOTES §9: it
// rasterizes any Operation variant directly onto this engine's layers,
// using the direct-blend (not stroke-buffer) write path.
func (e *Engine) ApplyOperation(op types.Operation) {
	e.mu.Lock()
	l := e.layerLocked(op.Layer)
	e.mu.Unlock()
	ApplyDirect(l, op)
}

// ApplyDirect rasterizes op onto l using the direct (non-buffer) write path.
func ApplyDirect(l *Layer, op types.Operation) {
	c := RGBA(op.Color)
	switch op.Kind {
	case types.OpDrawPoint:
		DrawPoint(l, op.X, op.Y, op.Size, op.Brush, c)
	case types.OpDrawLine:
		DrawLine(l, op.FromX, op.FromY, op.ToX, op.ToY, op.Size, op.Brush, c)
	case types.OpFill:
		DoFloodFill(l, op.X, op.Y, c)
	case types.OpSnapshot:
		// Snapshot application is owned by the caller (decode PNG -> Layer);
		// the engine only exposes the layer to write into.
	}
}
