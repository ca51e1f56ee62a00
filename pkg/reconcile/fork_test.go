package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oekaki-cafe/drawcore/pkg/types"
)

func TestForkPushAndConfirmFIFO(t *testing.T) {
	f := newFork(10, false)
	assert.True(t, f.Empty())

	op1 := types.Operation{Kind: types.OpDrawPoint, UserID: "u1", Layer: types.LayerForeground, X: 1, Y: 1, Size: 4, Color: types.RGBA{R: 1}}
	op2 := types.Operation{Kind: types.OpDrawPoint, UserID: "u1", Layer: types.LayerForeground, X: 2, Y: 2, Size: 4, Color: types.RGBA{R: 2}}
	f.PushLocal(op1)
	f.PushLocal(op2)
	assert.False(t, f.Empty())

	// echo of op2 doesn't match the oldest unconfirmed op (op1) — mismatch
	assert.False(t, f.TryConfirm(op2))
	assert.Len(t, f.LocalOps, 2)

	// confirming in FIFO order succeeds
	assert.True(t, f.TryConfirm(op1))
	assert.Len(t, f.LocalOps, 1)
	assert.True(t, f.TryConfirm(op2))
	assert.True(t, f.Empty())
}

func TestForkTryConfirmIgnoresSequenceAndTimestamp(t *testing.T) {
	f := newFork(0, false)
	local := types.Operation{Kind: types.OpDrawLine, UserID: "u1", Layer: types.LayerBackground,
		FromX: 0, FromY: 0, ToX: 5, ToY: 5, Size: 3, Color: types.RGBA{G: 9}, Timestamp: 100}
	f.PushLocal(local)

	echoed := local
	echoed.Sequence = 99
	echoed.Timestamp = 99999 // server stamps its own receipt time
	assert.True(t, f.TryConfirm(echoed))
}

func TestForkTryConfirmRejectsDifferentPayload(t *testing.T) {
	f := newFork(0, false)
	local := types.Operation{Kind: types.OpFill, UserID: "u1", X: 5, Y: 5, Color: types.RGBA{R: 1}}
	f.PushLocal(local)

	different := local
	different.Color = types.RGBA{R: 2}
	assert.False(t, f.TryConfirm(different))
}

func TestForkTryConfirmOnEmptyForkFails(t *testing.T) {
	f := newFork(0, false)
	assert.False(t, f.TryConfirm(types.Operation{}))
}

func TestSameOpRequiresMatchingKindLayerAndUser(t *testing.T) {
	a := types.Operation{Kind: types.OpDrawPoint, UserID: "u1", Layer: types.LayerForeground, X: 1, Y: 1}
	b := a
	b.Layer = types.LayerBackground
	assert.False(t, sameOp(a, b))

	c := a
	c.UserID = "u2"
	assert.False(t, sameOp(a, c))
}

func TestForkRemoteOpsStartsEmpty(t *testing.T) {
	f := newFork(0, false)
	assert.Empty(t, f.RemoteOps)
}

func TestSameOpSnapshotComparesPNGBytes(t *testing.T) {
	a := types.Operation{Kind: types.OpSnapshot, PNG: []byte{1, 2, 3}}
	b := types.Operation{Kind: types.OpSnapshot, PNG: []byte{1, 2, 3}}
	c := types.Operation{Kind: types.OpSnapshot, PNG: []byte{1, 2, 4}}
	assert.True(t, sameOp(a, b))
	assert.False(t, sameOp(a, c))
}
