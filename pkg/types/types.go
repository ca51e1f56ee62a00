// Package types holds the shared operation, area, and participant records
// passed between the drawing engine, reconciler, wire codec, and session
// controller.
package types

import "time"

// LayerKind selects one of a participant's two stacked layers.
type LayerKind int

const (
	LayerBackground LayerKind = iota
	LayerForeground
)

func (k LayerKind) String() string {
	if k == LayerForeground {
		return "fg"
	}
	return "bg"
}

// BrushType selects the dab shape/compositing rule an operation paints with.
type BrushType int

const (
	BrushSolid BrushType = iota
	BrushHalftone
	BrushEraser
	BrushFill
	BrushPan
)

// RGBA is an opaque-RGB-plus-coverage color sample, straight (not premultiplied) alpha.
type RGBA struct {
	R, G, B, A uint8
}

// OpKind is the discriminant of Operation, used by the single
// raster.ApplyDirect dispatcher rather than per-kind subclassing.
type OpKind int

const (
	OpDrawPoint OpKind = iota
	OpDrawLine
	OpFill
	OpSnapshot
)

func (k OpKind) String() string {
	switch k {
	case OpDrawPoint:
		return "drawPoint"
	case OpDrawLine:
		return "drawLine"
	case OpFill:
		return "fill"
	case OpSnapshot:
		return "snapshot"
	default:
		return "unknown"
	}
}

// Domain classifies an AffectedArea for the cross-domain concurrency table
// in reconcile.Concurrent.
type Domain int

const (
	DomainDrawing Domain = iota
	DomainLayer
	DomainSelection
	DomainAnnotation
	DomainTransform
)

// Rect is an axis-aligned, half-open-free integer rectangle: [MinX,MaxX] x [MinY,MaxY].
type Rect struct {
	MinX, MinY, MaxX, MaxY int
}

// Intersects reports whether the two rectangles share any pixel.
func (r Rect) Intersects(o Rect) bool {
	return r.MinX <= o.MaxX && o.MinX <= r.MaxX && r.MinY <= o.MaxY && o.MinY <= r.MaxY
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		MinX: min(r.MinX, o.MinX),
		MinY: min(r.MinY, o.MinY),
		MaxX: max(r.MaxX, o.MaxX),
		MaxY: max(r.MaxY, o.MaxY),
	}
}

// Clamp intersects r with the [0,w) x [0,h) canvas bounds.
func (r Rect) Clamp(w, h int) Rect {
	out := Rect{MinX: max(r.MinX, 0), MinY: max(r.MinY, 0), MaxX: min(r.MaxX, w), MaxY: min(r.MaxY, h)}
	if out.MaxX < out.MinX {
		out.MaxX = out.MinX
	}
	if out.MaxY < out.MinY {
		out.MaxY = out.MinY
	}
	return out
}

// RectAround returns the square bounding box of a size-d dab centered at (x,y),
// expanded by ceil(size/2) per spec §3.
func RectAround(x, y, size int) Rect {
	pad := (size + 1) / 2
	return Rect{MinX: x - pad, MinY: y - pad, MaxX: x + pad, MaxY: y + pad}
}

// IndirectEffect flags an operation's effects beyond its literal bounds.
type IndirectEffect struct {
	AffectsLayers []string
	AffectsCanvas bool
}

// AffectedArea is the concurrency-detection footprint of an Operation (§3, §4.6).
type AffectedArea struct {
	Domain   Domain
	Bounds   Rect
	LayerID  string
	Indirect *IndirectEffect
}

// Operation is a tagged record of a single drawing action, §3.
type Operation struct {
	ID        string // opaque, assigned at creation; carried through coalescing via Constituents
	Kind      OpKind
	UserID    string
	Sequence  uint64
	Timestamp int64 // ms, wall clock
	Priority  int
	Layer     LayerKind
	Affected  AffectedArea

	// drawPoint / drawLine payload
	FromX, FromY int
	ToX, ToY     int
	X, Y         int
	Size         int
	Brush        BrushType
	Color        RGBA

	// snapshot payload
	PNG []byte

	// Coalesced transmission: the constituent operations this compound op
	// replaces on the wire, so rollback/replay can still reapply them
	// individually (§4.6 "Coalescing").
	Constituents []Operation
}

// IsDrawPointLike reports whether the op degenerates to a single dab.
func (op Operation) IsDrawPointLike() bool {
	return op.Kind == OpDrawPoint || (op.Kind == OpDrawLine && op.FromX == op.ToX && op.FromY == op.ToY)
}

// Participant is a server-authoritative session member.
type Participant struct {
	UserID    string
	Username  string
	JoinedAt  time.Time
}
