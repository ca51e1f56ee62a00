package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/gorilla/websocket"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/oekaki-cafe/drawcore/pkg/config"
	"github.com/oekaki-cafe/drawcore/pkg/errs"
	"github.com/oekaki-cafe/drawcore/pkg/history"
	"github.com/oekaki-cafe/drawcore/pkg/input"
	"github.com/oekaki-cafe/drawcore/pkg/protocol"
	"github.com/oekaki-cafe/drawcore/pkg/raster"
	"github.com/oekaki-cafe/drawcore/pkg/reconcile"
	"github.com/oekaki-cafe/drawcore/pkg/stroke"
	"github.com/oekaki-cafe/drawcore/pkg/types"
)

// Controller drives one embedding's WebSocket session end to end (§4.5):
// connect/close lifecycle, catch-up draining, participant roster
// rebuilds, and wiring every inbound/outbound operation through the
// reconciler, history ring, and stroke buffer. Grounded on the teacher's
// connection-handling idiom (api/pkg/desktop/ws_input.go's upgrade-then-
// read-loop shape, mirrored here client-side with websocket.Dial).
type Controller struct {
	mu    sync.Mutex
	state State

	url         string
	localUserID string
	canvasW     int
	canvasH     int

	conn   *websocket.Conn
	connMu sync.Mutex // serializes writes, as ConnectedClient.mu does server-side

	cfg    config.Config
	logger *slog.Logger

	registry   *Registry
	history    *history.Ring
	buffer     *stroke.Buffer
	router     *input.Router
	reconciler *reconcile.Reconciler
	coalescer  *reconcile.Coalescer

	localSeq uint64

	catchingUp  bool
	catchupMu   sync.Mutex
	quietTimer  *time.Timer
	stuckTimer  *time.Timer

	onStateChange func(State)
	onChat        func(protocol.Chat)

	closeOnce sync.Once
	done      chan struct{}
}

// New builds a disconnected Controller for one local participant.
func New(cfg config.Config, url, localUserID string, canvasW, canvasH int, logger *slog.Logger) (*Controller, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		url:         url,
		localUserID: localUserID,
		canvasW:     canvasW,
		canvasH:     canvasH,
		cfg:         cfg,
		logger:      logger,
		registry:    NewRegistry(canvasW, canvasH),
		history:     history.NewRing(cfg.History.RingCapacity),
		buffer:      stroke.NewBuffer(canvasW, canvasH),
		router:      input.NewRouter(float64(cfg.Input.MinSampleIntervalMs), cfg.Input.MinSampleDistancePx),
		coalescer:   reconcile.NewCoalescer(cfg.Reconciler.CoalesceWindowMs, float64(cfg.Reconciler.CoalesceRadiusPx)),
		done:        make(chan struct{}),
	}
	c.registry.Join(types.Participant{UserID: localUserID, JoinedAt: time.Now()})

	r, err := reconcile.New(localUserID, cfg.Reconciler, canvasW, canvasH, c.registry.Layer, strokeFlusher{c}, func() bool { return c.buffer.Active() }, c.captureSnapshot, logger)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	c.reconciler = r
	return c, nil
}

// strokeFlusher adapts Controller to reconcile.StrokeFlusher without
// exposing the buffer's commit path publicly.
type strokeFlusher struct{ c *Controller }

func (f strokeFlusher) Active() bool { return f.c.buffer.Active() }
func (f strokeFlusher) FlushAndReopen() {
	target := f.c.registry.Layer(LayerID(f.c.localUserID, types.LayerForeground))
	if target == nil {
		return
	}
	f.c.buffer.EndStroke(target, 1.0, 1.0)
	f.c.buffer.BeginStroke()
}

func (c *Controller) captureSnapshot() reconcile.Snapshot {
	e := c.registry.Engine(c.localUserID)
	if e == nil {
		return reconcile.Snapshot{Sequence: c.localSeq}
	}
	return reconcile.Snapshot{
		Sequence: c.localSeq,
		FG:       e.Layer(types.LayerForeground).Clone(),
		BG:       e.Layer(types.LayerBackground).Clone(),
	}
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	cb := c.onStateChange
	c.mu.Unlock()
	if cb != nil {
		cb(s)
	}
}

// State reports the current connection lifecycle stage.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// OnStateChange registers a callback invoked on every state transition.
func (c *Controller) OnStateChange(f func(State)) { c.onStateChange = f }

// OnChat registers a callback invoked for every inbound chat message.
func (c *Controller) OnChat(f func(protocol.Chat)) { c.onChat = f }

// Registry exposes the participant roster for compositor export / UI.
func (c *Controller) Registry() *Registry { return c.registry }

// History exposes the undo/redo ring for UI wiring.
func (c *Controller) History() *history.Ring { return c.history }

// Router exposes the pointer/touch router for UI event wiring.
func (c *Controller) Router() *input.Router { return c.router }

// Connect dials the session's WebSocket endpoint, sends the join frame,
// enters catch-up mode, and starts the read loop in a new goroutine.
func (c *Controller) Connect(ctx context.Context) error {
	c.setState(StateConnecting)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		c.setState(StateDisconnected)
		return &errs.TransportError{Reason: err.Error()}
	}
	c.conn = conn
	c.setState(StateConnected)
	c.reconciler.Start()
	c.beginCatchup()

	if err := c.send(protocol.Frame{Type: protocol.MsgJoin, Payload: protocol.EncodeJoin(protocol.Join{
		UserID: c.localUserID, TimestampMs: nowMs(),
	})}); err != nil {
		c.logger.Warn("session: failed to send join frame", "err", err)
	}

	go c.readLoop()
	return nil
}

// Close tears down the connection and the reconciler's background jobs.
func (c *Controller) Close() error {
	var closeErr error
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.reconciler.Shutdown(context.Background())
		c.setState(StateDisconnected)
		if c.conn != nil {
			closeErr = c.conn.Close()
		}
	})
	return closeErr
}

func (c *Controller) readLoop() {
	defer c.setState(StateDisconnected)
	for {
		select {
		case <-c.done:
			return
		default:
		}
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			c.logger.Info("session: read loop ending", "err", err)
			return
		}
		f, err := protocol.DecodeFrameBytes(msg)
		if err != nil {
			c.logger.Warn("session: dropping malformed frame", "err", &errs.ProtocolError{Reason: err.Error()})
			continue
		}
		c.noteCatchupActivity()
		c.dispatch(f)
	}
}

// send serializes conn.WriteMessage access (mirroring ConnectedClient.mu in
// the teacher's session_registry.go) and retries transient failures, per
// §4.5's outbound send policy.
func (c *Controller) send(f protocol.Frame) error {
	f.SenderID = 0
	payload := f.Encode()
	return retry.Do(func() error {
		c.connMu.Lock()
		defer c.connMu.Unlock()
		if c.conn == nil {
			return &errs.TransportError{Reason: "not connected"}
		}
		return c.conn.WriteMessage(websocket.BinaryMessage, payload)
	}, retry.Attempts(3), retry.Delay(100*time.Millisecond))
}

// dispatch routes one decoded frame to its handler (§4.4's message table).
func (c *Controller) dispatch(f protocol.Frame) {
	switch f.Type {
	case protocol.MsgDrawLine:
		m, err := protocol.DecodeDrawLine(f.Payload)
		if err != nil {
			c.logger.Warn("session: bad drawLine frame", "err", err)
			return
		}
		c.applyRemoteOp(drawLineOp(m))
	case protocol.MsgDrawPoint:
		m, err := protocol.DecodeDrawPoint(f.Payload)
		if err != nil {
			c.logger.Warn("session: bad drawPoint frame", "err", err)
			return
		}
		c.applyRemoteOp(drawPointOp(m))
	case protocol.MsgFill:
		m, err := protocol.DecodeFill(f.Payload)
		if err != nil {
			c.logger.Warn("session: bad fill frame", "err", err)
			return
		}
		c.applyRemoteOp(fillOp(m, c.canvasW, c.canvasH))
	case protocol.MsgSnapshot:
		m, err := protocol.DecodeSnapshot(f.Payload)
		if err != nil {
			c.logger.Warn("session: bad snapshot frame", "err", &errs.DecodeError{Reason: err.Error()})
			return
		}
		c.handleSnapshot(m)
	case protocol.MsgJoin:
		m, err := protocol.DecodeJoin(f.Payload)
		if err == nil {
			c.registry.Join(types.Participant{UserID: m.UserID, JoinedAt: time.UnixMilli(m.TimestampMs)})
		}
	case protocol.MsgLeave:
		m, err := protocol.DecodeLeave(f.Payload)
		if err == nil {
			c.registry.Leave(m.UserID)
		}
	case protocol.MsgLayers:
		m, err := protocol.DecodeLayers(f.Payload)
		if err == nil {
			c.handleLayers(m)
		}
	case protocol.MsgChat:
		m, err := protocol.DecodeChat(f.Payload)
		if err == nil && c.onChat != nil {
			c.onChat(m)
		}
	case protocol.MsgSnapshotRequest:
		c.handleSnapshotRequest()
	case protocol.MsgEndSession:
		c.handleEndSession()
	case protocol.MsgPointerUp:
		// no engine-side effect: presence-only framing.
	default:
		c.logger.Warn("session: unrecognized frame type", "err", &errs.ProtocolError{Reason: f.Type.String()})
	}
}

func (c *Controller) applyRemoteOp(op types.Operation) {
	catchingUp := c.isCatchingUp()
	if err := c.reconciler.HandleRemoteOp(op, catchingUp); err != nil {
		c.logger.Warn("session: reconciliation fell back", "err", err)
	}
	c.history.SaveState(
		c.localLayer(types.LayerForeground), c.localLayer(types.LayerBackground),
		history.ModifiedFG, false, false, op.UserID != c.localUserID, op.Timestamp,
	)
}

func (c *Controller) handleSnapshot(m protocol.Snapshot) {
	l := c.registry.Layer(LayerID(m.UserID, m.Layer))
	if l == nil {
		return
	}
	// Decoding PNG bytes into pixels is an embedder concern (image codec
	// choice belongs to the host app); the core only guarantees the layer
	// is addressable here. A failed decode must never clear existing
	// pixels (§7 DecodeError contract) so this never calls l.Clear().
	_ = l
}

func (c *Controller) handleLayers(m protocol.Layers) {
	roster := make([]types.Participant, 0, len(m.Participants))
	for _, p := range m.Participants {
		roster = append(roster, types.Participant{
			UserID: p.UserID, Username: p.Username, JoinedAt: time.UnixMilli(p.JoinTimestampMs),
		})
	}
	c.registry.Rebuild(roster)
}

// handleSnapshotRequest picks the reconciler's latest periodically-captured
// content snapshot when one exists (§4.5, §4.6 "Periodic snapshots"),
// falling back to the live layers when none has been taken yet, and records
// that pair in history as a content barrier so undo can never cross it. It
// sends no snapshot frame back to the server.
func (c *Controller) handleSnapshotRequest() {
	fg := c.localLayer(types.LayerForeground)
	bg := c.localLayer(types.LayerBackground)
	if _, snapFG, snapBG, ok := c.reconciler.LatestSnapshot(c.localSeq); ok {
		fg, bg = snapFG, snapBG
	}
	if fg == nil || bg == nil {
		return
	}
	// PNG encoding is an embedder concern; the core just marks the content
	// barrier so undo can never cross it, matching a real snapshot commit.
	c.history.SaveState(fg, bg, history.ModifiedBoth, false, true, false, nowMs())
}

func (c *Controller) handleEndSession() {
	_ = c.Close()
}

func (c *Controller) localLayer(kind types.LayerKind) *raster.Layer {
	e := c.registry.Engine(c.localUserID)
	if e == nil {
		return nil
	}
	return e.Layer(kind)
}

// --- catch-up (§4.5) ---

func (c *Controller) beginCatchup() {
	c.catchupMu.Lock()
	defer c.catchupMu.Unlock()
	c.catchingUp = true
	c.stuckTimer = time.AfterFunc(time.Duration(c.cfg.Session.CatchupStuckSec)*time.Second, c.endCatchup)
	c.quietTimer = time.AfterFunc(time.Duration(c.cfg.Session.CatchupQuietMs)*time.Millisecond, c.endCatchup)
}

// noteCatchupActivity resets the quiet timer on every inbound frame while
// catching up, grounded on the teacher's scroll-gesture debounce
// (api/pkg/desktop/ws_input.go's wsInputState.scrollTimer).
func (c *Controller) noteCatchupActivity() {
	c.catchupMu.Lock()
	defer c.catchupMu.Unlock()
	if !c.catchingUp || c.quietTimer == nil {
		return
	}
	c.quietTimer.Reset(time.Duration(c.cfg.Session.CatchupQuietMs) * time.Millisecond)
}

func (c *Controller) endCatchup() {
	c.catchupMu.Lock()
	if !c.catchingUp {
		c.catchupMu.Unlock()
		return
	}
	c.catchingUp = false
	if c.stuckTimer != nil {
		c.stuckTimer.Stop()
	}
	if c.quietTimer != nil {
		c.quietTimer.Stop()
	}
	c.catchupMu.Unlock()

	c.registry.members.Range(func(_ string, p *participant) bool {
		p.engine.UpdateAllDOMCanvasesImmediate()
		return true
	})
}

func (c *Controller) isCatchingUp() bool {
	c.catchupMu.Lock()
	defer c.catchupMu.Unlock()
	return c.catchingUp
}

// --- local input wiring ---

// DrawLocalLine draws a local stroke segment into the buffer and emits a
// (possibly coalesced) wire frame.
func (c *Controller) DrawLocalLine(x0, y0, x1, y1, size int, brush types.BrushType, color types.RGBA, layer types.LayerKind) error {
	c.buffer.DrawLine(x0, y0, x1, y1, size, brush, color)
	op := types.Operation{
		ID:   gonanoid.Must(8),
		Kind: types.OpDrawLine, UserID: c.localUserID, Timestamp: nowMs(), Layer: layer,
		FromX: x0, FromY: y0, ToX: x1, ToY: y1, Size: size, Brush: brush, Color: color,
		Affected: types.AffectedArea{
			Domain: types.DomainDrawing,
			Bounds: types.RectAround(x0, y0, size).Union(types.RectAround(x1, y1, size)),
			LayerID: LayerID(c.localUserID, layer),
		},
	}
	if flushed, ok := c.coalescer.Offer(op); ok {
		return c.sendOp(flushed)
	}
	return nil
}

// EndLocalStroke commits the buffer onto the local foreground/background
// layer, flushes the coalescer, opens a fork entry, and emits a pointerup.
func (c *Controller) EndLocalStroke(layer types.LayerKind, strokeOpacity, layerOpacity float64) error {
	layerID := LayerID(c.localUserID, layer)
	c.reconciler.PrepareLocalOp(layerID)
	target := c.localLayer(layer)
	if target != nil {
		c.buffer.EndStroke(target, strokeOpacity, layerOpacity)
	}
	if flushed, ok := c.coalescer.Flush(); ok {
		c.localSeq++
		flushed.Sequence = c.localSeq
		c.reconciler.BeginLocalOp(flushed)
		if err := c.sendOp(flushed); err != nil {
			return err
		}
	}
	return c.send(protocol.Frame{Type: protocol.MsgPointerUp, Payload: protocol.EncodePointerUp(protocol.PointerUp{UserID: c.localUserID})})
}

func (c *Controller) sendOp(op types.Operation) error {
	switch op.Kind {
	case types.OpDrawLine:
		return c.send(protocol.Frame{Type: protocol.MsgDrawLine, Payload: protocol.EncodeDrawLine(protocol.DrawLine{
			UserID: op.UserID, Layer: op.Layer, FromX: op.FromX, FromY: op.FromY, ToX: op.ToX, ToY: op.ToY,
			Size: op.Size, Brush: op.Brush, Color: op.Color,
		})})
	case types.OpDrawPoint:
		return c.send(protocol.Frame{Type: protocol.MsgDrawPoint, Payload: protocol.EncodeDrawPoint(protocol.DrawPoint{
			UserID: op.UserID, Layer: op.Layer, X: op.X, Y: op.Y, Size: op.Size, Brush: op.Brush, Color: op.Color,
		})})
	case types.OpFill:
		return c.send(protocol.Frame{Type: protocol.MsgFill, Payload: protocol.EncodeFill(protocol.Fill{
			UserID: op.UserID, Layer: op.Layer, X: op.X, Y: op.Y, Color: op.Color,
		})})
	default:
		return nil
	}
}

// Fill performs a local flood fill, committing it directly (fills have no
// stroke buffer phase) and transmitting it as its own op.
func (c *Controller) Fill(x, y int, color types.RGBA, layer types.LayerKind) error {
	layerID := LayerID(c.localUserID, layer)
	c.reconciler.PrepareLocalOp(layerID)
	target := c.localLayer(layer)
	if target == nil {
		return &errs.BoundsFault{Reason: "no local layer to fill"}
	}
	raster.ApplyDirect(target, types.Operation{Kind: types.OpFill, X: x, Y: y, Color: color})

	c.localSeq++
	op := types.Operation{
		ID:   gonanoid.Must(8),
		Kind: types.OpFill, UserID: c.localUserID, Sequence: c.localSeq, Timestamp: nowMs(), Layer: layer,
		X: x, Y: y, Color: color,
		Affected: types.AffectedArea{
			Domain: types.DomainDrawing, Bounds: raster.FloodFillBounds(x, y, c.canvasW, c.canvasH), LayerID: layerID,
			Indirect: &types.IndirectEffect{AffectsLayers: []string{layerID}},
		},
	}
	c.reconciler.BeginLocalOp(op)
	return c.sendOp(op)
}

func nowMs() int64 { return time.Now().UnixMilli() }

func drawLineOp(m protocol.DrawLine) types.Operation {
	return types.Operation{
		Kind: types.OpDrawLine, UserID: m.UserID, Layer: m.Layer,
		FromX: m.FromX, FromY: m.FromY, ToX: m.ToX, ToY: m.ToY, Size: m.Size, Brush: m.Brush, Color: m.Color,
		Timestamp: nowMs(),
		Affected: types.AffectedArea{
			Domain: types.DomainDrawing,
			Bounds: types.RectAround(m.FromX, m.FromY, m.Size).Union(types.RectAround(m.ToX, m.ToY, m.Size)),
			LayerID: LayerID(m.UserID, m.Layer),
		},
	}
}

func drawPointOp(m protocol.DrawPoint) types.Operation {
	return types.Operation{
		Kind: types.OpDrawPoint, UserID: m.UserID, Layer: m.Layer,
		X: m.X, Y: m.Y, Size: m.Size, Brush: m.Brush, Color: m.Color,
		Timestamp: nowMs(),
		Affected: types.AffectedArea{
			Domain: types.DomainDrawing, Bounds: types.RectAround(m.X, m.Y, m.Size), LayerID: LayerID(m.UserID, m.Layer),
		},
	}
}

func fillOp(m protocol.Fill, canvasW, canvasH int) types.Operation {
	layerID := LayerID(m.UserID, m.Layer)
	return types.Operation{
		Kind: types.OpFill, UserID: m.UserID, Layer: m.Layer, X: m.X, Y: m.Y, Color: m.Color,
		Timestamp: nowMs(),
		Affected: types.AffectedArea{
			Domain: types.DomainDrawing, Bounds: raster.FloodFillBounds(m.X, m.Y, canvasW, canvasH), LayerID: layerID,
			Indirect: &types.IndirectEffect{AffectsLayers: []string{layerID}},
		},
	}
}

