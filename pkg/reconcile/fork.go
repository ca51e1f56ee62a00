package reconcile

import (
	"github.com/oekaki-cafe/drawcore/pkg/raster"
	"github.com/oekaki-cafe/drawcore/pkg/types"
)

// Fork materializes the instant a remote op arrives while uncommitted local
// ops exist (§4.6). Only the local participant ever has unconfirmed
// optimistic ops in flight, so there is at most one live Fork at a time.
// Baselines holds, per layerID, a clone of that layer taken immediately
// before the fork's first local op touching it was written — the state a
// full rollback restores before replaying. RemoteOps accumulates every
// remote op applied directly while this fork has been alive (whether via
// the mid-stroke path, the idle-concurrent path, or a selective rollback),
// so a later full rollback can replay the complete history back onto the
// baseline rather than just the single op that triggered it.
type Fork struct {
	BaseSequence      uint64
	LocalOps          []types.Operation
	RemoteOps         []types.Operation
	Fallbehind        int
	StartsAtUndoPoint bool
	Baselines         map[string]*raster.Layer
}

func newFork(baseSequence uint64, startsAtUndoPoint bool) *Fork {
	return &Fork{BaseSequence: baseSequence, StartsAtUndoPoint: startsAtUndoPoint, Baselines: map[string]*raster.Layer{}}
}

// PushLocal records a newly applied optimistic local op awaiting server
// confirmation.
func (f *Fork) PushLocal(op types.Operation) {
	f.LocalOps = append(f.LocalOps, op)
}

// TryConfirm matches an inbound op (presumed to be this client's own,
// echoed back by the server) against the oldest unconfirmed local op. A
// match pops it off the fork; a mismatch leaves the fork untouched so the
// caller can trigger a full rollback.
func (f *Fork) TryConfirm(op types.Operation) bool {
	if len(f.LocalOps) == 0 {
		return false
	}
	if !sameOp(f.LocalOps[0], op) {
		return false
	}
	f.LocalOps = f.LocalOps[1:]
	return true
}

// Empty reports whether every local op in the fork has been confirmed,
// meaning the fork can be discarded (§4.6's fork-empty bypass).
func (f *Fork) Empty() bool { return len(f.LocalOps) == 0 }

// sameOp compares the operation payload that would have been rasterized,
// ignoring Sequence/Timestamp which the server assigns on confirmation.
func sameOp(a, b types.Operation) bool {
	if a.Kind != b.Kind || a.Layer != b.Layer || a.UserID != b.UserID {
		return false
	}
	switch a.Kind {
	case types.OpDrawPoint:
		return a.X == b.X && a.Y == b.Y && a.Size == b.Size && a.Brush == b.Brush && a.Color == b.Color
	case types.OpDrawLine:
		return a.FromX == b.FromX && a.FromY == b.FromY && a.ToX == b.ToX && a.ToY == b.ToY &&
			a.Size == b.Size && a.Brush == b.Brush && a.Color == b.Color
	case types.OpFill:
		return a.X == b.X && a.Y == b.Y && a.Color == b.Color
	case types.OpSnapshot:
		return string(a.PNG) == string(b.PNG)
	default:
		return false
	}
}
