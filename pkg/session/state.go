// Package session implements the client-side connection state machine
// (spec §4.5): WebSocket lifecycle, catch-up draining, the participant
// registry, and outbound send policy, wiring together pkg/raster,
// pkg/stroke, pkg/history, pkg/protocol, and pkg/reconcile into one
// embeddable controller.
package session

// State is the connection's lifecycle stage (§4.5).
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}
