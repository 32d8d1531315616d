package httpapi

import (
	"net/http"

	"github.com/lifeos-home/gateway/internal/proxy"
)

// handleProfile proxies the caller's profile lookup. Session only: the
// profile belongs to a signed-in user, so the dev bypass does not apply.
func (a *API) handleProfile(w http.ResponseWriter, r *http.Request) {
	actor, _, err := a.resolver.ResolveSession(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if !a.requireStrongKey(w) {
		return
	}

	res, err := a.forwarder.Forward(r.Context(), http.MethodGet, "me", "", nil, proxy.Headers{
		ActorEmail:  actor.Email,
		InternalKey: a.internalKey,
	})
	if err != nil {
		writeMessage(w, http.StatusBadGateway, "Upstream request failed")
		return
	}

	proxy.Relay(w, res)
}
