// Package input implements the pointer/touch -> engine-operation router
// (spec §4.8): coordinate conversion, pointermove throttling, single-pointer
// tie-breaking, and tool dispatch.
package input

import (
	"math"

	"github.com/oekaki-cafe/drawcore/pkg/types"
)

// Tool selects what a pointer stroke produces.
type Tool int

const (
	ToolPen Tool = iota
	ToolEraser
	ToolFill
	ToolPan
)

// ToCanvasCoords converts a pointer position relative to the interaction
// canvas's bounding rect into integer canvas pixel coordinates, with an
// optional horizontal flip (§4.8).
func ToCanvasCoords(clientX, clientY, rectLeft, rectTop, rectWidth, rectHeight float64, canvasW, canvasH int, flipX bool) (x, y int) {
	fx := (clientX - rectLeft) / rectWidth * float64(canvasW)
	fy := (clientY - rectTop) / rectHeight * float64(canvasH)
	x = int(math.Round(fx))
	y = int(math.Round(fy))
	if flipX {
		x = canvasW - 1 - x
	}
	x = clampInt(x, 0, canvasW-1)
	y = clampInt(y, 0, canvasH-1)
	return x, y
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Router tracks one active pointer's throttling/tie-break state and
// translates its events into stroke actions. It owns no canvas state
// itself; callers (the session controller) wire its callbacks to the
// stroke buffer / engine / wire codec.
type Router struct {
	minIntervalMs float64
	minDistancePx float64

	activePointerID int64
	hasActive       bool

	lastSampleMs float64
	lastX, lastY int
	isDrawing    bool
}

// NewRouter builds a router with the throttling tunables of §4.8
// ("fewer than 12ms" / "moved < 1.5px").
func NewRouter(minIntervalMs, minDistancePx float64) *Router {
	return &Router{minIntervalMs: minIntervalMs, minDistancePx: minDistancePx}
}

// PointerDown claims the pointer (ignoring any other pointerId already
// active — only one pointer drives drawing at a time, §4.8 "Tie-breaking"),
// and returns the tool-dispatched starting action.
func (r *Router) PointerDown(pointerID int64, x, y int, nowMs float64, tool Tool) (DownAction, bool) {
	if r.hasActive && r.activePointerID != pointerID {
		return DownAction{}, false
	}
	r.activePointerID = pointerID
	r.hasActive = true
	r.lastSampleMs = nowMs
	r.lastX, r.lastY = x, y
	r.isDrawing = tool != ToolPan

	switch tool {
	case ToolFill:
		return DownAction{Kind: ActionFill, X: x, Y: y}, true
	case ToolPan:
		return DownAction{Kind: ActionPan}, true
	default:
		return DownAction{Kind: ActionPoint, X: x, Y: y}, true
	}
}

// PointerMove applies the throttle and tie-break rules and, if accepted,
// returns a line segment from the last accepted sample to (x,y).
func (r *Router) PointerMove(pointerID int64, x, y int, nowMs float64, tool Tool) (MoveAction, bool) {
	if !r.hasActive || r.activePointerID != pointerID {
		return MoveAction{}, false
	}
	if nowMs-r.lastSampleMs < r.minIntervalMs {
		return MoveAction{}, false
	}
	dx, dy := float64(x-r.lastX), float64(y-r.lastY)
	if math.Hypot(dx, dy) < r.minDistancePx {
		return MoveAction{}, false
	}

	action := MoveAction{
		Kind:       ActionPan,
		FromX:      r.lastX,
		FromY:      r.lastY,
		ToX:        x,
		ToY:        y,
		DeltaX:     dx,
		DeltaY:     dy,
	}
	if tool != ToolPan {
		action.Kind = ActionLine
	}

	r.lastSampleMs = nowMs
	r.lastX, r.lastY = x, y
	return action, true
}

// PointerUp releases the pointer (on up/cancel/leave-outside-app) and
// reports whether a wire pointerup frame + stroke commit should fire.
// Deduping against double-emission (§9 "some reference paths emit it
// twice") is exactly this isDrawing-gated release.
func (r *Router) PointerUp(pointerID int64) bool {
	if !r.hasActive || r.activePointerID != pointerID {
		return false
	}
	wasDrawing := r.isDrawing
	r.hasActive = false
	r.isDrawing = false
	return wasDrawing
}

// ActionKind discriminates what a router callback should do.
type ActionKind int

const (
	ActionPoint ActionKind = iota
	ActionLine
	ActionFill
	ActionPan
)

// DownAction is the tool-dispatched result of a pointerdown.
type DownAction struct {
	Kind ActionKind
	X, Y int
}

// MoveAction is an accepted pointermove sample.
type MoveAction struct {
	Kind         ActionKind
	FromX, FromY int
	ToX, ToY     int
	DeltaX       float64
	DeltaY       float64
}

// ToolBrush maps a UI tool selection to the wire-level BrushType (§3:
// "fill and pan are tool selectors that produce fill / no-op operations").
func ToolBrush(t Tool) types.BrushType {
	switch t {
	case ToolEraser:
		return types.BrushEraser
	case ToolFill:
		return types.BrushFill
	case ToolPan:
		return types.BrushPan
	default:
		return types.BrushSolid
	}
}
