// Package errs defines the error-kind taxonomy of spec §7, so callers can
// branch with errors.As instead of string-matching. None of these are ever
// allowed to panic into the drawing loop (§7 "Propagation").
package errs

import "fmt"

// ProtocolError: unrecognized type, short frame, malformed UTF-8 — drop the
// frame, log, continue.
type ProtocolError struct{ Reason string }

func (e *ProtocolError) Error() string { return fmt.Sprintf("protocol error: %s", e.Reason) }

// DecodeError: a snapshot's PNG failed to decode — skip that layer's state
// update, never clear existing pixels.
type DecodeError struct{ Reason string }

func (e *DecodeError) Error() string { return fmt.Sprintf("decode error: %s", e.Reason) }

// TransportError: the WebSocket closed or errored — move to disconnected,
// surface to the UI, no retry in the core.
type TransportError struct{ Reason string }

func (e *TransportError) Error() string { return fmt.Sprintf("transport error: %s", e.Reason) }

// StrokeBufferFault: a draw primitive was called with the buffer inactive
// when it should have been active — re-initialize lazily and continue.
type StrokeBufferFault struct{ Reason string }

func (e *StrokeBufferFault) Error() string { return fmt.Sprintf("stroke buffer fault: %s", e.Reason) }

// ReconcilerFault: any exception inside reconciliation — clear the fork,
// fall back to full rollback.
type ReconcilerFault struct{ Reason string }

func (e *ReconcilerFault) Error() string { return fmt.Sprintf("reconciler fault: %s", e.Reason) }

// BoundsFault: integer overflow or out-of-canvas coordinates — clamp and
// continue, never throw.
type BoundsFault struct{ Reason string }

func (e *BoundsFault) Error() string { return fmt.Sprintf("bounds fault: %s", e.Reason) }
