// Package authn resolves the acting identity for inbound requests: a signed
// session cookie first, the configuration-gated dev bypass as fallback. The
// resolved Actor lives for a single request and is never persisted.
package authn

import (
	"errors"
	"net/http"
	"strings"

	"github.com/lifeos-home/gateway/internal/token"
)

// Session cookie names. The secure-prefixed variant is set on HTTPS
// deployments and takes precedence.
const (
	SessionCookieName       = "next-auth.session-token"
	SecureSessionCookieName = "__Secure-next-auth.session-token"
)

// Actor is the authenticated identity on whose behalf a request is forwarded.
type Actor struct {
	Email       string // lowercased
	DisplayName string // empty when the session carries no name
}

// Resolver extracts actors from requests. The token service may be nil when
// no signing secret is configured; session resolution then always reports a
// missing session and only the bypass path can authenticate.
type Resolver struct {
	tokens *token.Service
	bypass BypassConfig
}

// NewResolver builds a Resolver. An empty signingSecret disables cookie
// session resolution rather than failing, so a bypass-only dev setup works.
func NewResolver(signingSecret string, bypass BypassConfig) (*Resolver, error) {
	r := &Resolver{bypass: bypass}
	if signingSecret != "" {
		svc, err := token.NewFromString(signingSecret)
		if err != nil {
			return nil, err
		}
		r.tokens = svc
	}
	return r, nil
}

// Resolve returns the actor for a request, consulting the bypass configuration
// for errors before the session so a misconfigured production deployment fails
// loudly instead of falling through to "unauthenticated". A valid session wins
// over the bypass identity; expired or invalid sessions fall back to bypass
// the same way missing ones do.
func (r *Resolver) Resolve(req *http.Request) (Actor, error) {
	bypassEmail, err := r.bypass.Resolve()
	if err != nil {
		return Actor{}, err
	}

	actor, _, sessionErr := r.session(req)
	if sessionErr == nil {
		return actor, nil
	}

	if bypassEmail != "" {
		return Actor{Email: bypassEmail}, nil
	}
	return Actor{}, sessionErr
}

// ResolveSession resolves strictly from the session cookie, distinguishing an
// expired session from an absent one. The bypass identity never applies here;
// this is the path used by the Matrix bridge where downstream trust requires a
// real signed session.
func (r *Resolver) ResolveSession(req *http.Request) (Actor, token.SessionClaims, error) {
	return r.session(req)
}

func (r *Resolver) session(req *http.Request) (Actor, token.SessionClaims, error) {
	if r.tokens == nil {
		return Actor{}, token.SessionClaims{}, ErrSessionMissing
	}

	raw := sessionCookie(req)
	if raw == "" {
		return Actor{}, token.SessionClaims{}, ErrSessionMissing
	}

	var claims token.SessionClaims
	if err := r.tokens.Parse(raw, &claims); err != nil {
		if errors.Is(err, token.ErrExpiredToken) {
			return Actor{}, token.SessionClaims{}, ErrSessionExpired
		}
		// Unverifiable cookies are indistinguishable from no session.
		return Actor{}, token.SessionClaims{}, ErrSessionMissing
	}

	email := strings.ToLower(strings.TrimSpace(claims.Email))
	if email == "" {
		return Actor{}, token.SessionClaims{}, ErrSessionMissing
	}

	return Actor{Email: email, DisplayName: claims.Name}, claims, nil
}

func sessionCookie(req *http.Request) string {
	if c, err := req.Cookie(SecureSessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if c, err := req.Cookie(SessionCookieName); err == nil {
		return c.Value
	}
	return ""
}
