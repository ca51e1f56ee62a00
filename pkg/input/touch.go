package input

// ShouldPreventTouchDefault implements §4.8's touch isolation rule:
// touchstart/move/end are preventDefaulted only when the event target is
// inside the canvas interaction area and outside any controls subtree.
// insideCanvas/insideControls are computed by the embedder from its own
// DOM hit-testing; this function only encodes the boolean rule so it is
// exercised identically regardless of host environment.
func ShouldPreventTouchDefault(insideCanvas, insideControls bool) bool {
	return insideCanvas && !insideControls
}
