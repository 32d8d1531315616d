// Package csrf validates the double-submit token pair protecting the local
// authentication endpoints: a cookie-carried token and a request header that
// must match exactly.
package csrf

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
)

// HeaderName is the request header carrying the client's CSRF token.
const HeaderName = "X-CSRF-Token"

// Cookie names. The host-prefixed variant is set on HTTPS deployments and is
// checked first.
const (
	CookieName       = "next-auth.csrf-token"
	SecureCookieName = "__Host-next-auth.csrf-token"
)

var (
	// ErrTokenMissing is returned when either side of the pair is absent.
	ErrTokenMissing = errors.New("csrf: token missing")

	// ErrTokenMismatch is returned when header and cookie tokens differ.
	ErrTokenMismatch = errors.New("csrf: token mismatch")
)

// Validate checks the request's CSRF token pair. The cookie value may carry a
// "|"-delimited hash suffix; only the portion before the first "|" is the
// comparable token. Both values must be present and byte-equal.
func Validate(r *http.Request) error {
	headerToken := r.Header.Get(HeaderName)
	cookieToken := tokenFromCookie(r)
	if headerToken == "" || cookieToken == "" {
		return ErrTokenMissing
	}
	if subtle.ConstantTimeCompare([]byte(headerToken), []byte(cookieToken)) != 1 {
		return ErrTokenMismatch
	}
	return nil
}

func tokenFromCookie(r *http.Request) string {
	raw := ""
	if c, err := r.Cookie(SecureCookieName); err == nil && c.Value != "" {
		raw = c.Value
	} else if c, err := r.Cookie(CookieName); err == nil {
		raw = c.Value
	}
	if raw == "" {
		return ""
	}
	token, _, _ := strings.Cut(raw, "|")
	return token
}
