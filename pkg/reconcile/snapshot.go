package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/oekaki-cafe/drawcore/pkg/raster"
)

// Snapshot is one retained content snapshot of a participant's layer pair,
// keyed by the op sequence it was captured at. Exported so embedders can
// supply a capture callback and read results back via LatestSnapshot.
type Snapshot struct {
	Sequence uint64
	FG, BG   *raster.Layer
}

// snapshotScheduler periodically captures a content snapshot, either every
// SnapshotInterval ops or every SnapshotEverySec seconds, whichever comes
// first (§4.6 "Periodic snapshots"), retaining only the most recent
// SnapshotRetention entries. Grounded on the teacher's knowledge/cron.go
// gocron.Scheduler usage (api/pkg/controller/knowledge/cron.go).
type snapshotScheduler struct {
	scheduler gocron.Scheduler
	capture   func()
	everySec  int
}

func newSnapshotScheduler(everySec int, capture func()) (*snapshotScheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("reconcile: creating snapshot scheduler: %w", err)
	}
	if everySec <= 0 {
		everySec = 5
	}
	s := &snapshotScheduler{scheduler: sched, capture: capture, everySec: everySec}

	_, err = sched.NewJob(
		gocron.DurationJob(time.Duration(everySec)*time.Second),
		gocron.NewTask(func() { s.capture() }),
		gocron.WithName("reconcile-periodic-snapshot"),
	)
	if err != nil {
		return nil, fmt.Errorf("reconcile: scheduling snapshot job: %w", err)
	}
	return s, nil
}

func (s *snapshotScheduler) Start() { s.scheduler.Start() }

func (s *snapshotScheduler) Shutdown(ctx context.Context) error {
	done := make(chan error, 1)
	go func() { done <- s.scheduler.Shutdown() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// pushSnapshot appends entry and evicts the oldest beyond retention.
func pushSnapshot(ring []Snapshot, entry Snapshot, retention int) []Snapshot {
	ring = append(ring, entry)
	if retention <= 0 {
		retention = 5
	}
	if len(ring) > retention {
		ring = ring[len(ring)-retention:]
	}
	return ring
}

// nearestSnapshot finds the most recent retained snapshot at or before
// sequence, used by Reconciler.LatestSnapshot. fullRollback does not
// consult snapshots; it restores the fork's own baselines.
func nearestSnapshot(ring []Snapshot, sequence uint64) (Snapshot, bool) {
	var best Snapshot
	found := false
	for _, e := range ring {
		if e.Sequence <= sequence && (!found || e.Sequence > best.Sequence) {
			best = e
			found = true
		}
	}
	return best, found
}
