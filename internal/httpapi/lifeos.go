package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lifeos-home/gateway/internal/authn"
	"github.com/lifeos-home/gateway/internal/logger"
	"github.com/lifeos-home/gateway/internal/proxy"
	"github.com/lifeos-home/gateway/internal/secrets"
)

// handleLifeOS is the generic passthrough: any method, any path under
// /api/lifeos/, forwarded verbatim with trust headers attached. Identity and
// key-strength preconditions short-circuit before any downstream call.
func (a *API) handleLifeOS(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.requireActor(w, r)
	if !ok {
		return
	}
	if !a.requireStrongKey(w) {
		return
	}

	body, ok := a.readBody(w, r)
	if !ok {
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = proxy.DefaultContentType
	}

	rest := chi.URLParam(r, "*")
	res, err := a.forwarder.Forward(r.Context(), r.Method, rest, r.URL.RawQuery, body, proxy.Headers{
		ContentType: contentType,
		ActorEmail:  actor.Email,
		InternalKey: a.internalKey,
	})
	if err != nil {
		writeMessage(w, http.StatusBadGateway, "Upstream request failed")
		return
	}

	proxy.Relay(w, res)
}

// requireActor resolves the caller's identity, writing the appropriate error
// response when resolution fails. Bypass misconfiguration is an operator
// problem and maps to 500; everything else is a plain 401.
func (a *API) requireActor(w http.ResponseWriter, r *http.Request) (authn.Actor, bool) {
	actor, err := a.resolver.Resolve(r)
	if err != nil {
		if errors.Is(err, authn.ErrBypassForbidden) || errors.Is(err, authn.ErrBypassEmailMissing) {
			a.logger.Error("dev auth bypass misconfiguration", logger.Error(err))
			writeMessage(w, http.StatusInternalServerError, "Server misconfigured: dev auth bypass")
			return authn.Actor{}, false
		}
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return authn.Actor{}, false
	}
	return actor, true
}

// requireStrongKey fails closed when the shared internal key is weak or
// absent. A weak key must never be sent downstream as if it were trusted.
func (a *API) requireStrongKey(w http.ResponseWriter) bool {
	if !secrets.IsStrong(a.internalKey) {
		a.logger.Error("internal API key is missing or weak")
		writeMessage(w, http.StatusInternalServerError, "Server misconfigured: INTERNAL_API_KEY missing")
		return false
	}
	return true
}

// readBody captures the inbound body for passthrough. GET and HEAD never
// carry one.
func (a *API) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return nil, true
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Failed to read request body")
		return nil, false
	}
	return body, true
}
