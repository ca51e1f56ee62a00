package reconcile

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushSnapshotEvictsOldestBeyondRetention(t *testing.T) {
	var ring []Snapshot
	for i := uint64(1); i <= 5; i++ {
		ring = pushSnapshot(ring, Snapshot{Sequence: i}, 3)
	}
	require.Len(t, ring, 3)
	assert.Equal(t, uint64(3), ring[0].Sequence)
	assert.Equal(t, uint64(5), ring[2].Sequence)
}

func TestPushSnapshotDefaultsNonPositiveRetention(t *testing.T) {
	var ring []Snapshot
	for i := uint64(1); i <= 10; i++ {
		ring = pushSnapshot(ring, Snapshot{Sequence: i}, 0)
	}
	assert.Len(t, ring, 5)
}

func TestNearestSnapshotFindsLatestAtOrBeforeSequence(t *testing.T) {
	ring := []Snapshot{{Sequence: 10}, {Sequence: 20}, {Sequence: 30}}
	got, ok := nearestSnapshot(ring, 25)
	require.True(t, ok)
	assert.Equal(t, uint64(20), got.Sequence)
}

func TestNearestSnapshotExactMatch(t *testing.T) {
	ring := []Snapshot{{Sequence: 10}, {Sequence: 20}}
	got, ok := nearestSnapshot(ring, 20)
	require.True(t, ok)
	assert.Equal(t, uint64(20), got.Sequence)
}

func TestNearestSnapshotNoneBeforeSequenceReturnsFalse(t *testing.T) {
	ring := []Snapshot{{Sequence: 10}, {Sequence: 20}}
	_, ok := nearestSnapshot(ring, 5)
	assert.False(t, ok)
}

func TestSnapshotSchedulerRunsCaptureOnItsInterval(t *testing.T) {
	var calls int32
	s, err := newSnapshotScheduler(1, func() { atomic.AddInt32(&calls, 1) })
	require.NoError(t, err)
	s.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	}()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) >= 1
	}, 4*time.Second, 50*time.Millisecond)
}

func TestSnapshotSchedulerShutdownStopsFutureCaptures(t *testing.T) {
	s, err := newSnapshotScheduler(5, func() {})
	require.NoError(t, err)
	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, s.Shutdown(ctx))
}
