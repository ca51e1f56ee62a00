// Package reconcile implements the optimistic local rendering / server
// confirmation reconciler (spec §4.6), the centerpiece of the drawing
// core: a local fork of unconfirmed operations, spatial concurrency
// detection against incoming remote ops, selective or full
// rollback-and-replay, coalescing of outbound strokes, periodic content
// snapshots, and a conflict-rate strategy reading reported for
// diagnostics.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/oekaki-cafe/drawcore/pkg/config"
	"github.com/oekaki-cafe/drawcore/pkg/errs"
	"github.com/oekaki-cafe/drawcore/pkg/raster"
	"github.com/oekaki-cafe/drawcore/pkg/types"
)

// LayerLookup resolves a layerID (as carried on types.AffectedArea) to the
// live layer it should be rasterized onto. The session controller owns
// every participant's layer pair and supplies this; the reconciler itself
// holds no layer state beyond fork baselines.
type LayerLookup func(layerID string) *raster.Layer

// StrokeFlusher lets the reconciler interrupt the local user's in-progress
// stroke buffer when a remote op arrives mid-stroke (§4.6 step 4): commit
// whatever is drawn so far, let the reconciler replay on top of the
// committed layer, then reopen a fresh buffer for the rest of the stroke.
type StrokeFlusher interface {
	Active() bool
	FlushAndReopen()
}

// Reconciler holds the single local participant's fork of unconfirmed
// operations and reconciles every inbound remote operation against it.
type Reconciler struct {
	localUserID string
	cfg         config.Reconciler
	logger      *slog.Logger

	layers  LayerLookup
	flusher StrokeFlusher
	drawing func() bool

	fork *Fork

	// opLog is every op (local or remote) applied since the last content
	// snapshot. fullRollback does not read it: it restores Fork.Baselines
	// and replays Fork.RemoteOps and the fork's local ops.
	opLog []types.Operation

	snapshots        []Snapshot
	opsSinceSnapshot int
	captureSnapshot  func() Snapshot

	rectCache *RectCache
	window    *rollingWindow
	heat      *HeatMap
	scheduler *snapshotScheduler
}

// New builds a Reconciler for one local participant. captureSnapshot must
// produce a fresh content snapshot of whatever layer(s) matter for replay
// (typically the local user's own fg/bg pair); it is invoked both
// periodically (via gocron, §4.6 "Periodic snapshots") and opportunistically.
func New(localUserID string, cfg config.Reconciler, canvasW, canvasH int, layers LayerLookup, flusher StrokeFlusher, drawing func() bool, captureSnapshot func() Snapshot, logger *slog.Logger) (*Reconciler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cache, err := NewRectCache(int64(cfg.RectCacheSize))
	if err != nil {
		return nil, fmt.Errorf("reconcile: %w", err)
	}
	r := &Reconciler{
		localUserID:     localUserID,
		cfg:             cfg,
		logger:          logger,
		layers:          layers,
		flusher:         flusher,
		drawing:         drawing,
		captureSnapshot: captureSnapshot,
		rectCache:       cache,
		window:          newRollingWindow(cfg.ConflictWindow),
		heat:            NewHeatMap(canvasW, canvasH),
	}
	sched, err := newSnapshotScheduler(cfg.SnapshotEverySec, r.onPeriodicSnapshot)
	if err != nil {
		return nil, err
	}
	r.scheduler = sched
	return r, nil
}

// Start launches the periodic snapshot scheduler.
func (r *Reconciler) Start() { r.scheduler.Start() }

// Shutdown stops the periodic snapshot scheduler.
func (r *Reconciler) Shutdown(ctx context.Context) error { return r.scheduler.Shutdown(ctx) }

func (r *Reconciler) onPeriodicSnapshot() {
	if r.captureSnapshot == nil {
		return
	}
	r.recordSnapshot()
}

func (r *Reconciler) recordSnapshot() {
	entry := r.captureSnapshot()
	r.snapshots = pushSnapshot(r.snapshots, entry, r.cfg.SnapshotRetention)
	r.opsSinceSnapshot = 0
	r.opLog = nil
}

// PrepareLocalOp must be called before op's pixels are written to the live
// layer (i.e. before stroke.Buffer.EndStroke or a direct fill runs), so the
// reconciler can capture a pre-op baseline the first time a fork touches
// this layerID. Opening (or reusing) the fork happens here; BeginLocalOp
// afterward only records the already-applied op.
func (r *Reconciler) PrepareLocalOp(layerID string) {
	if r.fork == nil {
		r.fork = newFork(0, r.opsSinceSnapshot == 0)
	}
	if _, ok := r.fork.Baselines[layerID]; !ok {
		if live := r.layers(layerID); live != nil {
			r.fork.Baselines[layerID] = live.Clone()
		}
	}
}

// BeginLocalOp records a just-applied optimistic local operation. Call
// PrepareLocalOp(op.Affected.LayerID) before writing the op's pixels, then
// apply it, then call BeginLocalOp.
func (r *Reconciler) BeginLocalOp(op types.Operation) {
	if r.fork == nil {
		r.fork = newFork(op.Sequence, r.opsSinceSnapshot == 0)
	}
	if r.fork.BaseSequence == 0 {
		r.fork.BaseSequence = op.Sequence
	}
	r.fork.PushLocal(op)
	r.trackOp(op)
}

func (r *Reconciler) trackOp(op types.Operation) {
	r.opLog = append(r.opLog, op)
	r.opsSinceSnapshot++
	if r.cfg.SnapshotInterval > 0 && r.opsSinceSnapshot >= r.cfg.SnapshotInterval {
		r.recordSnapshot()
	}
}

// HandleRemoteOp reconciles one inbound operation against the local fork
// (§4.6 steps 1-5). catchingUp bypasses reconciliation entirely (the
// session controller is draining a catch-up queue before the fork can
// possibly exist). Errors are never fatal to the session: on any internal
// failure the caller should fall back to a full rollback against the
// latest snapshot, per §7's "reconciler never throws" rule.
func (r *Reconciler) HandleRemoteOp(op types.Operation, catchingUp bool) error {
	if catchingUp {
		r.applyDirect(op)
		r.trackOp(op)
		return nil
	}

	if r.fork == nil || r.fork.Empty() {
		r.fork = nil
		r.applyDirect(op)
		r.trackOp(op)
		return nil
	}

	if op.UserID == r.localUserID {
		if r.fork.TryConfirm(op) {
			if r.fork.Empty() {
				r.fork = nil
			}
			return nil
		}
		r.window.Record(true)
		return r.fullRollback(op)
	}

	if r.drawing != nil && r.drawing() {
		return r.handleWhileDrawing(op)
	}

	return r.handleWhileIdle(op)
}

// handleWhileDrawing implements §4.6 step 4: the local user is mid-stroke,
// so the in-progress buffer is flushed and reopened around the remote op
// rather than rolled back, and fallbehind is tracked to bound how far the
// replay can lag before it is cheaper to give up and do a full rollback.
func (r *Reconciler) handleWhileDrawing(op types.Operation) error {
	if r.flusher != nil && r.flusher.Active() {
		r.flusher.FlushAndReopen()
	}
	r.applyDirect(op)
	r.trackOp(op)

	r.fork.Fallbehind++
	if r.fork.Fallbehind > r.cfg.MaxFallbehind {
		r.logger.Warn("reconcile: fallbehind exceeded, forcing full rollback", "fallbehind", r.fork.Fallbehind)
		return r.fullRollback(op)
	}
	r.window.Record(false)
	r.fork.RemoteOps = append(r.fork.RemoteOps, op)
	return nil
}

// handleWhileIdle implements §4.6 step 5: the local user is not drawing, so
// every unconfirmed local op is tested for spatial/domain concurrency
// against the remote op. If all are concurrent (disjoint), the remote op
// can be applied directly with no rollback; otherwise selective rollback
// (§8 P8) repairs only the conflicting ops' footprint, falling back to a
// full rollback when no baseline is available to selectively restore from.
func (r *Reconciler) handleWhileIdle(op types.Operation) error {
	allConcurrent := true
	for _, local := range r.fork.LocalOps {
		if !Concurrent(local.Affected, op.Affected, r.rectCache) {
			allConcurrent = false
			break
		}
	}
	if allConcurrent {
		r.window.Record(false)
		r.applyDirect(op)
		r.trackOp(op)
		r.fork.RemoteOps = append(r.fork.RemoteOps, op)
		return nil
	}

	r.window.Record(true)
	r.heat.RecordConflict(op.Affected.Bounds)
	return r.selectiveRollback(op)
}

// selectiveRollback implements §4.6's preferred rollback path: rather than
// restoring the whole layer, it restores only the rectangle the incoming
// remote op touches, applies the remote op, then replays just the local ops
// that actually conflict with it within that rect. Local ops that never
// touched the rect are left untouched on the canvas — they were never
// wrong. Falls back to fullRollback when this layer has no captured
// baseline to read the pre-fork rect from.
func (r *Reconciler) selectiveRollback(op types.Operation) error {
	layerID := op.Affected.LayerID
	baseline, ok := r.fork.Baselines[layerID]
	live := r.layers(layerID)
	if !ok || baseline == nil || live == nil {
		return r.fullRollback(op)
	}

	rect := op.Affected.Bounds.Clamp(baseline.W, baseline.H)
	patch := baseline.SubRect(rect)
	live.PutSubRect(patch, rect.MinX, rect.MinY)

	r.applyDirect(op)
	r.trackOp(op)
	r.fork.RemoteOps = append(r.fork.RemoteOps, op)

	for _, local := range r.fork.LocalOps {
		if !Concurrent(local.Affected, op.Affected, r.rectCache) {
			r.replayOp(local)
		}
	}

	r.fork.Fallbehind = 0
	return nil
}

// replayOp reapplies a (possibly coalesced) local op during rollback. A
// coalesced op carries its original dabs in Constituents (§4.2); replaying
// those individually instead of the merged compound op preserves the
// original stroke's curve rather than collapsing it to a straight line
// between its first and last sampled point.
func (r *Reconciler) replayOp(op types.Operation) {
	if len(op.Constituents) > 0 {
		for _, sub := range op.Constituents {
			r.applyDirect(sub)
		}
		return
	}
	r.applyDirect(op)
}

// fullRollback restores every layer touched by the fork's unconfirmed ops
// to its pre-fork baseline, replays every remote op the fork has observed
// since that baseline (including the one that triggered this rollback, in
// arrival order), then replays the fork's local ops on top in original
// order, expanding coalesced ops into their constituents (§4.6 "Full
// rollback"). On any internal failure (missing baseline, bad layer lookup)
// it clears the fork and falls back to simply applying the remote op
// directly, per §7's "never throw" rule — the local canvas may show a
// momentarily stale state rather than the session breaking.
func (r *Reconciler) fullRollback(op types.Operation) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("reconcile: full rollback panicked, clearing fork", "recover", rec)
			r.fork = nil
			r.applyDirect(op)
			err = &errs.ReconcilerFault{Reason: fmt.Sprintf("full rollback recovered from panic: %v", rec)}
		}
	}()

	if len(r.fork.Baselines) == 0 {
		r.fork = nil
		r.applyDirect(op)
		return &errs.ReconcilerFault{Reason: "no baseline available for full rollback"}
	}

	for layerID, baseline := range r.fork.Baselines {
		live := r.layers(layerID)
		if live == nil {
			continue
		}
		live.CopyFrom(baseline)
	}

	for _, remote := range r.fork.RemoteOps {
		r.replayOp(remote)
	}

	r.applyDirect(op)

	replay := r.fork.LocalOps
	baselines := r.fork.Baselines
	remoteOps := append(append([]types.Operation{}, r.fork.RemoteOps...), op)

	r.fork = newFork(op.Sequence, false)
	r.fork.Baselines = baselines
	r.fork.RemoteOps = remoteOps
	for _, localOp := range replay {
		r.replayOp(localOp)
		r.fork.LocalOps = append(r.fork.LocalOps, localOp)
	}
	return nil
}

func (r *Reconciler) applyDirect(op types.Operation) {
	l := r.layers(op.Affected.LayerID)
	if l == nil {
		r.logger.Warn("reconcile: no layer for affected area, dropping op", "layerId", op.Affected.LayerID)
		return
	}
	raster.ApplyDirect(l, op)
}

// CurrentStrategy reports the reconciler's adaptively-derived posture,
// exposed for diagnostics/telemetry rather than for changing correctness.
func (r *Reconciler) CurrentStrategy() Strategy { return r.window.Strategy() }

// LatestSnapshot returns the most recently retained content snapshot at or
// before sequence, for the session controller's snapshotRequest handler
// (§4.5) to seed a newly joined participant without replaying full history.
func (r *Reconciler) LatestSnapshot(sequence uint64) (seq uint64, fg, bg *raster.Layer, ok bool) {
	e, found := nearestSnapshot(r.snapshots, sequence)
	if !found {
		return 0, nil, nil, false
	}
	return e.Sequence, e.FG, e.BG, true
}
