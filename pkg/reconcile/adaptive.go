package reconcile

// Strategy is the conflict-rate band the reconciler reports through
// CurrentStrategy, derived from the recent conflict rate (§4.6 "Adaptive
// strategy"). The reconciliation algorithm is the same in every band.
type Strategy int

const (
	// StrategyBalanced is the band for a conflict rate from 0.3 to 0.6.
	StrategyBalanced Strategy = iota
	// StrategyConservative is the band for a conflict rate above 0.6.
	StrategyConservative
	// StrategyOptimistic is the band for a conflict rate below 0.3,
	// including an empty window.
	StrategyOptimistic
)

const (
	conflictRateHigh = 0.6
	conflictRateLow  = 0.3
)

// rollingWindow tracks the last N reconciliation outcomes (conflict or not)
// as a ring of booleans, sized by config.Reconciler.ConflictWindow (default
// 20), and derives the current Strategy from the recent conflict rate.
type rollingWindow struct {
	size    int
	samples []bool
	next    int
	filled  int
}

func newRollingWindow(size int) *rollingWindow {
	if size <= 0 {
		size = 20
	}
	return &rollingWindow{size: size, samples: make([]bool, size)}
}

// Record appends one outcome (true = the reconciliation step found a
// conflict requiring rollback).
func (w *rollingWindow) Record(conflicted bool) {
	w.samples[w.next] = conflicted
	w.next = (w.next + 1) % w.size
	if w.filled < w.size {
		w.filled++
	}
}

// ConflictRate returns the fraction of recorded outcomes that conflicted,
// 0 when no samples have been recorded yet.
func (w *rollingWindow) ConflictRate() float64 {
	if w.filled == 0 {
		return 0
	}
	n := 0
	for i := 0; i < w.filled; i++ {
		if w.samples[i] {
			n++
		}
	}
	return float64(n) / float64(w.filled)
}

// Strategy derives the current posture from the conflict rate.
func (w *rollingWindow) Strategy() Strategy {
	rate := w.ConflictRate()
	switch {
	case rate > conflictRateHigh:
		return StrategyConservative
	case rate < conflictRateLow:
		return StrategyOptimistic
	default:
		return StrategyBalanced
	}
}
