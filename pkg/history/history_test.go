package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oekaki-cafe/drawcore/pkg/raster"
)

func paint(l *raster.Layer, x, y int, v uint8) {
	l.SetRaw(x, y, raster.RGBA{R: v, A: 255})
}

// P4: undo then redo must reproduce the exact pre-undo state.
func TestUndoRedoRoundTrip(t *testing.T) {
	r := NewRing(10)
	fg, bg := raster.NewLayer(4, 4), raster.NewLayer(4, 4)
	r.SaveState(fg, bg, ModifiedFG, true, false, false, 1)

	fg2 := fg.Clone()
	paint(fg2, 0, 0, 99)
	r.SaveState(fg2, bg, ModifiedFG, true, false, false, 2)

	require.True(t, r.CanUndo())
	uf, ub, ok := r.Undo()
	require.True(t, ok)
	assert.True(t, uf.Equal(fg))
	assert.True(t, ub.Equal(bg))

	require.True(t, r.CanRedo())
	rf, rb, ok := r.Redo()
	require.True(t, ok)
	assert.True(t, rf.Equal(fg2))
	assert.True(t, rb.Equal(bg))
}

func TestRemoteEntriesNeverRecorded(t *testing.T) {
	r := NewRing(10)
	fg, bg := raster.NewLayer(4, 4), raster.NewLayer(4, 4)
	r.SaveState(fg, bg, ModifiedFG, true, false, false, 1)
	fg2 := fg.Clone()
	paint(fg2, 1, 1, 50)
	r.SaveState(fg2, bg, ModifiedFG, true, false, true, 2)

	assert.Equal(t, 1, r.Len(), "a remote-originated entry must never land in undo history")
	assert.False(t, r.CanRedo())
}

func TestByteIdenticalSuccessiveEntriesCoalesce(t *testing.T) {
	r := NewRing(10)
	fg, bg := raster.NewLayer(4, 4), raster.NewLayer(4, 4)
	r.SaveState(fg, bg, ModifiedFG, true, false, false, 1)
	r.SaveState(fg.Clone(), bg.Clone(), ModifiedFG, true, false, false, 2)
	assert.Equal(t, 1, r.Len(), "identical consecutive states should coalesce instead of growing the ring")
}

func TestContentSnapshotBarrierBlocksUndo(t *testing.T) {
	r := NewRing(10)
	fg, bg := raster.NewLayer(4, 4), raster.NewLayer(4, 4)
	r.SaveState(fg, bg, ModifiedFG, true, false, false, 1)

	fg2 := fg.Clone()
	paint(fg2, 0, 0, 1)
	r.SaveState(fg2, bg, ModifiedBoth, false, true, false, 2) // content snapshot barrier

	fg3 := fg2.Clone()
	paint(fg3, 1, 1, 2)
	r.SaveState(fg3, bg, ModifiedFG, true, false, false, 3)

	require.True(t, r.CanUndo())
	uf, _, ok := r.Undo()
	require.True(t, ok)
	assert.True(t, uf.Equal(fg2), "undo may step back to the barrier entry itself")

	assert.False(t, r.CanUndo(), "undo must never cross the content-snapshot barrier")
}

func TestRingEvictsOldestBeyondCapacity(t *testing.T) {
	r := NewRing(2)
	bg := raster.NewLayer(2, 2)
	for i := 0; i < 5; i++ {
		fg := raster.NewLayer(2, 2)
		paint(fg, 0, 0, uint8(i+1))
		r.SaveState(fg, bg, ModifiedFG, true, false, false, int64(i))
	}
	assert.LessOrEqual(t, r.Len(), 2)
}

func TestUndoWithNoDrawingActionIsDisallowed(t *testing.T) {
	r := NewRing(10)
	assert.False(t, r.CanUndo())
}

func TestClearHistoryResetsEverything(t *testing.T) {
	r := NewRing(10)
	fg, bg := raster.NewLayer(2, 2), raster.NewLayer(2, 2)
	r.SaveState(fg, bg, ModifiedFG, true, false, false, 1)
	r.ClearHistory()
	assert.Equal(t, 0, r.Len())
	assert.False(t, r.CanUndo())
	assert.False(t, r.CanRedo())
}

func TestNewRingNonPositiveCapacityDefaultsTo30(t *testing.T) {
	r := NewRing(0)
	for i := 0; i < 40; i++ {
		fg, bg := raster.NewLayer(2, 2), raster.NewLayer(2, 2)
		paint(fg, 0, 0, uint8(i))
		r.SaveState(fg, bg, ModifiedFG, true, false, false, int64(i))
	}
	assert.Equal(t, 30, r.Len())
}
