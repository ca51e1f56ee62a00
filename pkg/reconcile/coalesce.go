package reconcile

import (
	"math"

	"github.com/oekaki-cafe/drawcore/pkg/types"
)

// Coalescer merges a local user's consecutive drawLine/drawPoint ops into a
// single wire frame when they fall within the same short time window and
// their endpoints are close together (§4.6 "Coalescing"), so a fast stroke
// doesn't flood the wire with one frame per dab. The merged op's
// Constituents preserve every original op so a later rollback can still
// replay them individually.
type Coalescer struct {
	windowMs int64
	radiusPx float64
	pending  *types.Operation
}

// NewCoalescer builds a coalescer with the tunables from config.Reconciler
// (default 50ms window, 5px radius).
func NewCoalescer(windowMs int, radiusPx float64) *Coalescer {
	return &Coalescer{windowMs: int64(windowMs), radiusPx: radiusPx}
}

// Offer admits op into the coalescing window. If op merges with the
// pending op, Offer reports nothing to send yet. Otherwise it flushes
// whatever was pending (if anything) and starts a new pending op from op.
func (c *Coalescer) Offer(op types.Operation) (flushed types.Operation, hasFlush bool) {
	if c.pending != nil && c.canMerge(*c.pending, op) {
		merged := mergeOps(*c.pending, op)
		c.pending = &merged
		return types.Operation{}, false
	}
	if c.pending != nil {
		flushed, hasFlush = *c.pending, true
	}
	p := op
	if len(p.Constituents) == 0 {
		p.Constituents = []types.Operation{op}
	}
	c.pending = &p
	return flushed, hasFlush
}

// Flush returns and clears any pending op, e.g. on pointerup or when the
// window simply elapses with no further input.
func (c *Coalescer) Flush() (types.Operation, bool) {
	if c.pending == nil {
		return types.Operation{}, false
	}
	out := *c.pending
	c.pending = nil
	return out, true
}

func (c *Coalescer) canMerge(a, b types.Operation) bool {
	if a.UserID != b.UserID || a.Layer != b.Layer {
		return false
	}
	if a.Kind != types.OpDrawLine && a.Kind != types.OpDrawPoint {
		return false
	}
	if b.Kind != types.OpDrawLine && b.Kind != types.OpDrawPoint {
		return false
	}
	if a.Brush != b.Brush || a.Color != b.Color || a.Size != b.Size {
		return false
	}
	if b.Timestamp-a.Timestamp > c.windowMs {
		return false
	}
	ex, ey := endOf(a)
	sx, sy := startOf(b)
	return math.Hypot(float64(ex-sx), float64(ey-sy)) <= c.radiusPx
}

// mergeOps produces a single drawLine spanning from a's start to b's end,
// unioning their affected-area bounds and chaining constituents.
func mergeOps(a, b types.Operation) types.Operation {
	sx, sy := startOf(a)
	ex, ey := endOf(b)
	merged := a
	merged.Kind = types.OpDrawLine
	merged.FromX, merged.FromY = sx, sy
	merged.ToX, merged.ToY = ex, ey
	merged.Timestamp = b.Timestamp
	merged.Affected.Bounds = a.Affected.Bounds.Union(b.Affected.Bounds)

	cons := append([]types.Operation{}, a.Constituents...)
	if len(cons) == 0 {
		cons = []types.Operation{a}
	}
	if len(b.Constituents) > 0 {
		cons = append(cons, b.Constituents...)
	} else {
		cons = append(cons, b)
	}
	merged.Constituents = cons
	return merged
}

func startOf(op types.Operation) (int, int) {
	if op.Kind == types.OpDrawLine {
		return op.FromX, op.FromY
	}
	return op.X, op.Y
}

func endOf(op types.Operation) (int, int) {
	if op.Kind == types.OpDrawLine {
		return op.ToX, op.ToY
	}
	return op.X, op.Y
}
