package session

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// NewRouter exposes the one HTTP surface spec.md §6 names as out of scope
// for the core to implement but in scope for the core to be dialable
// against: a WebSocket upgrade route keyed by session id. Grounded on the
// teacher's desktop streaming route (api/pkg/desktop/ws_stream.go registers
// its upgrade handler on a gorilla/mux router the same way). The relay
// behind this route is an embedder's to build; this only gives a test
// harness and any embedding server a concrete mount point to agree on.
func NewRouter(upgrade http.HandlerFunc) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/collaborate/{sessionId}/ws", upgrade).Methods(http.MethodGet)
	return r
}

// SessionIDFromRequest extracts the {sessionId} path variable set by the
// route above.
func SessionIDFromRequest(r *http.Request) string {
	return mux.Vars(r)["sessionId"]
}

// NewSessionID mints an opaque session identifier for an embedder that
// does not already have one (e.g. a CLI test harness starting a session
// ad hoc), grounded on the teacher's use of google/uuid for allocator-
// scoped ids (api/pkg/scheduler/allocator.go).
func NewSessionID() string {
	return uuid.NewString()
}
