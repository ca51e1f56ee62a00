// Package history implements the bounded undo/redo ring (spec §4.3): full
// layer-pair snapshots, FIFO eviction, byte-equality coalescing, and the
// content-snapshot barrier that undo may never cross.
package history

import (
	"github.com/oekaki-cafe/drawcore/pkg/raster"
)

// ModifiedLayer records which half of the pair an entry's action touched.
type ModifiedLayer int

const (
	ModifiedFG ModifiedLayer = iota
	ModifiedBG
	ModifiedBoth
)

// Entry is one point in the undo ring: a full deep copy of both layers.
type Entry struct {
	FG, BG            *raster.Layer
	Modified          ModifiedLayer
	TimestampMs       int64
	IsContentSnapshot bool
	IsRemote          bool
}

// Ring is the bounded history ring buffer, default capacity 30.
type Ring struct {
	capacity int
	entries  []Entry
	cursor   int // index one past the last applied entry; 0 == nothing recorded
	hasDrawingAction bool
	lastSnapshotIdx  int // index of the latest isContentSnapshot entry, -1 if none
}

// NewRing constructs a ring with the given capacity (spec default 30).
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = 30
	}
	return &Ring{capacity: capacity, lastSnapshotIdx: -1}
}

// SaveState deep-copies fg/bg into a new entry. Remote entries are dropped
// entirely — they must never land in undo history (invariant: undo only
// ever reverts local actions). Byte-identical successive entries coalesce
// into the most recent one rather than growing the ring.
func (r *Ring) SaveState(fg, bg *raster.Layer, modified ModifiedLayer, isDrawingAction, isContentSnapshot, isRemote bool, timestampMs int64) {
	if isRemote {
		return
	}

	// Coalesce: if the most recent entry is byte-identical to what we're
	// about to push, just update its metadata rather than growing the ring.
	if r.cursor > 0 && r.cursor == len(r.entries) {
		last := &r.entries[r.cursor-1]
		if last.FG.Equal(fg) && last.BG.Equal(bg) {
			last.Modified = modified
			last.TimestampMs = timestampMs
			last.IsContentSnapshot = last.IsContentSnapshot || isContentSnapshot
			if isContentSnapshot {
				r.lastSnapshotIdx = r.cursor - 1
			}
			if isDrawingAction {
				r.hasDrawingAction = true
			}
			return
		}
	}

	entry := Entry{
		FG:                fg.Clone(),
		BG:                bg.Clone(),
		Modified:          modified,
		TimestampMs:       timestampMs,
		IsContentSnapshot: isContentSnapshot,
		IsRemote:          false,
	}

	// Pushing past the cursor discards any redo tail, matching standard
	// undo-stack semantics once a new action is taken.
	r.entries = append(r.entries[:r.cursor], entry)
	r.cursor = len(r.entries)

	if len(r.entries) > r.capacity {
		drop := len(r.entries) - r.capacity
		r.entries = r.entries[drop:]
		r.cursor -= drop
		if r.lastSnapshotIdx >= 0 {
			r.lastSnapshotIdx -= drop
			if r.lastSnapshotIdx < 0 {
				r.lastSnapshotIdx = -1 // evicted past the ring
			}
		}
	}

	if isContentSnapshot {
		r.lastSnapshotIdx = len(r.entries) - 1
	}
	if isDrawingAction {
		r.hasDrawingAction = true
	}
}

// CanUndo reports whether undo would produce a new, permitted state:
// cursor > 0, at least one drawing action has ever been recorded, and the
// cursor has not reached the last content-snapshot barrier (invariant I3).
func (r *Ring) CanUndo() bool {
	if r.cursor <= 0 || !r.hasDrawingAction {
		return false
	}
	if r.lastSnapshotIdx >= 0 && r.cursor-1 <= r.lastSnapshotIdx {
		return false
	}
	return true
}

// CanRedo reports whether a redo tail exists.
func (r *Ring) CanRedo() bool {
	return r.cursor < len(r.entries)
}

// Undo moves the cursor back one entry and returns the layer pair to
// restore, or ok=false at the boundary / snapshot barrier.
func (r *Ring) Undo() (fg, bg *raster.Layer, ok bool) {
	if !r.CanUndo() {
		return nil, nil, false
	}
	w, h := r.entries[r.cursor-1].FG.W, r.entries[r.cursor-1].FG.H
	r.cursor--
	// The state to restore is the entry now one-before-cursor; cursor==0
	// means "undo everything", i.e. an empty canvas.
	if r.cursor == 0 {
		return raster.NewLayer(w, h), raster.NewLayer(w, h), true
	}
	prev := r.entries[r.cursor-1]
	return prev.FG.Clone(), prev.BG.Clone(), true
}

// Redo moves the cursor forward one entry and returns its layer pair.
func (r *Ring) Redo() (fg, bg *raster.Layer, ok bool) {
	if !r.CanRedo() {
		return nil, nil, false
	}
	e := r.entries[r.cursor]
	r.cursor++
	return e.FG.Clone(), e.BG.Clone(), true
}

// ClearHistory empties the ring entirely.
func (r *Ring) ClearHistory() {
	r.entries = nil
	r.cursor = 0
	r.hasDrawingAction = false
	r.lastSnapshotIdx = -1
}

// Len reports the number of entries currently retained (post-eviction).
func (r *Ring) Len() int { return len(r.entries) }
