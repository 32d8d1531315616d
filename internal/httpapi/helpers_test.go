package httpapi_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lifeos-home/gateway/internal/authn"
	"github.com/lifeos-home/gateway/internal/httpapi"
	"github.com/lifeos-home/gateway/internal/oauthsetup"
	"github.com/lifeos-home/gateway/internal/proxy"
	"github.com/lifeos-home/gateway/internal/token"
)

const (
	strongKey     = "12345678901234567890123456789012"
	signingSecret = "nextauth_super_secret_for_tests_only"
)

type recordedRequest struct {
	Method      string
	Path        string
	RawQuery    string
	Body        string
	ContentType string
	Email       string
	Key         string
	HasKey      bool
}

// fakeDownstream records every request it receives and answers with a
// configurable response.
type fakeDownstream struct {
	mu       sync.Mutex
	requests []recordedRequest
	respond  http.HandlerFunc
	srv      *httptest.Server
}

func newFakeDownstream(t *testing.T, respond http.HandlerFunc) *fakeDownstream {
	t.Helper()

	f := &fakeDownstream{respond: respond}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, _ := io.ReadAll(r.Body)
		_, hasKey := r.Header[http.CanonicalHeaderKey(proxy.HeaderInternalKey)]
		f.mu.Lock()
		f.requests = append(f.requests, recordedRequest{
			Method:      r.Method,
			Path:        r.URL.Path,
			RawQuery:    r.URL.RawQuery,
			Body:        string(payload),
			ContentType: r.Header.Get("Content-Type"),
			Email:       r.Header.Get(proxy.HeaderUserEmail),
			Key:         r.Header.Get(proxy.HeaderInternalKey),
			HasKey:      hasKey,
		})
		f.mu.Unlock()
		f.respond(w, r)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func jsonDownstream(t *testing.T, status int, body string) *fakeDownstream {
	t.Helper()

	return newFakeDownstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

func (f *fakeDownstream) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeDownstream) last(t *testing.T) recordedRequest {
	t.Helper()

	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests, "expected at least one downstream call")
	return f.requests[len(f.requests)-1]
}

// newTestHandler wires a full API against the fake downstream. Mutators
// adjust the dependency set before construction.
func newTestHandler(t *testing.T, downstreamURL string, mutate ...func(*httpapi.Deps)) http.Handler {
	t.Helper()

	resolver, err := authn.NewResolver(signingSecret, authn.BypassConfig{Environment: "development"})
	require.NoError(t, err)

	forwarder, err := proxy.New(proxy.Config{BaseURL: downstreamURL, Timeout: 5 * time.Second})
	require.NoError(t, err)

	deps := httpapi.Deps{
		Resolver:       resolver,
		Forwarder:      forwarder,
		InternalAPIKey: strongKey,
		SigningSecret:  signingSecret,
		OAuth: oauthsetup.Config{
			CredentialsFile: filepath.Join(t.TempDir(), "oauth.runtime.json"),
		},
	}
	for _, m := range mutate {
		m(&deps)
	}

	api, err := httpapi.New(deps)
	require.NoError(t, err)
	return api.Handler()
}

// withBypass replaces the resolver with one using the given bypass config.
func withBypass(t *testing.T, bypass authn.BypassConfig) func(*httpapi.Deps) {
	t.Helper()

	return func(deps *httpapi.Deps) {
		resolver, err := authn.NewResolver(signingSecret, bypass)
		require.NoError(t, err)
		deps.Resolver = resolver
	}
}

func sessionCookie(t *testing.T, claims token.SessionClaims) *http.Cookie {
	t.Helper()

	svc, err := token.NewFromString(signingSecret)
	require.NoError(t, err)
	tok, err := svc.Generate(claims)
	require.NoError(t, err)
	return &http.Cookie{Name: authn.SessionCookieName, Value: tok}
}

func validSessionCookie(t *testing.T, email string) *http.Cookie {
	t.Helper()

	return sessionCookie(t, token.SessionClaims{
		Subject:   "u1",
		Email:     email,
		Name:      "Member",
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	})
}

func expiredSessionCookie(t *testing.T, email string) *http.Cookie {
	t.Helper()

	return sessionCookie(t, token.SessionClaims{
		Subject:   "u1",
		Email:     email,
		IssuedAt:  time.Now().Add(-2 * time.Hour).Unix(),
		ExpiresAt: time.Now().Add(-time.Hour).Unix(),
	})
}
