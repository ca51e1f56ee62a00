package session

import (
	"sort"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/oekaki-cafe/drawcore/pkg/compositor"
	"github.com/oekaki-cafe/drawcore/pkg/raster"
	"github.com/oekaki-cafe/drawcore/pkg/types"
)

// participant is one session member's engine plus their join order, which
// determines z-stacking (compositor.ZIndex).
type participant struct {
	types.Participant
	engine     *raster.Engine
	joinIndex  int
	bgZ, fgZ   int
}

// Registry tracks every participant's layer-pair engine, keyed by user ID,
// grounded on the teacher's concurrent-map conventions
// (api/pkg/scheduler/cluster.go's xsync.MapOf[string, *runner]) in place of
// its original sync.Map-based ConnectedClient/SessionClients bookkeeping
// (api/pkg/desktop/session_registry.go) — the wire shape differs entirely,
// but the "own layer pair per participant, looked up by a concurrent map"
// idiom carries over directly.
type Registry struct {
	canvasW, canvasH int
	members          *xsync.MapOf[string, *participant]

	mu        sync.Mutex
	nextJoinIndex int
}

// NewRegistry builds an empty registry for a canvasW x canvasH session.
func NewRegistry(canvasW, canvasH int) *Registry {
	return &Registry{
		canvasW: canvasW,
		canvasH: canvasH,
		members: xsync.NewMapOf[string, *participant](),
	}
}

// Join adds a participant (idempotent: re-joining an existing userID is a
// no-op), giving it the next join index and the z-indices compositor.ZIndex
// derives from it. Other participants' z-indices are not recomputed, and
// join indices are not reused after a Leave.
func (r *Registry) Join(p types.Participant) {
	if _, ok := r.members.Load(p.UserID); ok {
		return
	}
	r.mu.Lock()
	idx := r.nextJoinIndex
	r.nextJoinIndex++
	r.mu.Unlock()

	bgZ, fgZ := compositor.ZIndex(idx)
	r.members.Store(p.UserID, &participant{
		Participant: p,
		engine:      raster.NewEngine(r.canvasW, r.canvasH),
		joinIndex:   idx,
		bgZ:         bgZ,
		fgZ:         fgZ,
	})
}

// Leave removes a participant entirely.
func (r *Registry) Leave(userID string) {
	r.members.Delete(userID)
}

// Rebuild replaces the whole roster at once (§4.5's "layers" message:
// the server periodically sends the authoritative full participant list,
// and the client must reconcile its local registry against it rather
// than trust incremental join/leave framing alone).
func (r *Registry) Rebuild(roster []types.Participant) {
	want := make(map[string]bool, len(roster))
	for _, p := range roster {
		want[p.UserID] = true
		if _, ok := r.members.Load(p.UserID); !ok {
			r.Join(p)
		}
	}
	r.members.Range(func(userID string, _ *participant) bool {
		if !want[userID] {
			r.members.Delete(userID)
		}
		return true
	})
}

// Engine returns the live engine for a participant, or nil if unknown.
func (r *Registry) Engine(userID string) *raster.Engine {
	p, ok := r.members.Load(userID)
	if !ok {
		return nil
	}
	return p.engine
}

// Layer resolves a "{userID}:{bg|fg}" layerID key to its live layer, the
// LayerLookup the reconciler needs (pkg/reconcile.LayerLookup).
func (r *Registry) Layer(layerID string) *raster.Layer {
	userID, kind, ok := splitLayerID(layerID)
	if !ok {
		return nil
	}
	e := r.Engine(userID)
	if e == nil {
		return nil
	}
	return e.Layer(kind)
}

// Surfaces returns every participant's layer pair and z-index, ready for
// compositor.Export / compositor.ForParticipants.
func (r *Registry) Surfaces() []compositor.ParticipantSurfaces {
	var out []compositor.ParticipantSurfaces
	r.members.Range(func(userID string, p *participant) bool {
		out = append(out, compositor.ParticipantSurfaces{
			UserID: userID,
			BG:     p.engine.Layer(types.LayerBackground), BGZ: p.bgZ,
			FG: p.engine.Layer(types.LayerForeground), FGZ: p.fgZ,
		})
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].BGZ < out[j].BGZ })
	return out
}

// Count reports how many participants are currently registered.
func (r *Registry) Count() int { return r.members.Size() }

// LayerID builds the canonical "{userID}:{bg|fg}" key for an op targeting
// a participant's own layer.
func LayerID(userID string, kind types.LayerKind) string {
	return userID + ":" + kind.String()
}

func splitLayerID(layerID string) (userID string, kind types.LayerKind, ok bool) {
	for i := len(layerID) - 1; i >= 0; i-- {
		if layerID[i] == ':' {
			switch layerID[i+1:] {
			case "fg":
				return layerID[:i], types.LayerForeground, true
			case "bg":
				return layerID[:i], types.LayerBackground, true
			}
			return "", 0, false
		}
	}
	return "", 0, false
}
