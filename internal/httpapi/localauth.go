package httpapi

import (
	"net/http"

	"github.com/lifeos-home/gateway/internal/csrf"
	"github.com/lifeos-home/gateway/internal/proxy"
)

// handleLogin proxies credential sign-in to the downstream after validating
// the double-submit CSRF pair. No session is required here; the caller is in
// the middle of establishing one.
func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	a.localAuth(w, r, "auth/login")
}

// handleRegister proxies account creation, guarded the same way as login.
func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	a.localAuth(w, r, "auth/register")
}

func (a *API) localAuth(w http.ResponseWriter, r *http.Request, downstreamPath string) {
	if err := csrf.Validate(r); err != nil {
		writeMessage(w, http.StatusForbidden, "CSRF validation failed")
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

	// The key rides along when configured; the typed header record drops it
	// when absent so an unset key is never sent as an empty credential.
	res, err := a.forwarder.Forward(r.Context(), http.MethodPost, downstreamPath, "", body, proxy.Headers{
		ContentType: contentType,
		InternalKey: a.internalKey,
	})
	if err != nil {
		writeMessage(w, http.StatusBadGateway, "Upstream request failed")
		return
	}

	proxy.Relay(w, res)
}
