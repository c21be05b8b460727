// Package actorctx resolves the acting-user reference threaded through
// every Ledger/Receiving/Dispatch call from an inbound HTTP request. The
// core performs no authentication (spec §1); callers are expected to sit
// behind a gateway that has already verified identity and forwards it as
// this header.
package actorctx

import (
	"net/http"

	"github.com/inkwms/warehouse/pkg/actor"
)

// HeaderUserID is the identity header a fronting gateway is expected to set
// once it has authenticated the caller.
const HeaderUserID = "X-User-ID"

// IDFromRequest returns the acting user id for performedBy fields, falling
// back to the system actor id when the header is absent (e.g. operator
// tooling calling the manual alert trigger).
func IDFromRequest(r *http.Request) string {
	if id := r.Header.Get(HeaderUserID); id != "" {
		return id
	}
	return actor.SystemActor().ID
}
