// Package httpapi exposes the gateway's HTTP surface: the generic LifeOS
// proxy, the local-auth passthrough, the Matrix session bridge, the profile
// proxy, and the guarded OAuth setup endpoint, plus health and metrics.
package httpapi

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lifeos-home/gateway/internal/authn"
	"github.com/lifeos-home/gateway/internal/oauthsetup"
	"github.com/lifeos-home/gateway/internal/proxy"
	"github.com/lifeos-home/gateway/internal/token"
)

// Deps are the collaborators the API needs. Resolver and Forwarder are
// required; the rest default to safe values.
type Deps struct {
	Resolver  *authn.Resolver
	Forwarder *proxy.Forwarder

	// InternalAPIKey is the shared downstream trust secret. May be weak or
	// empty; handlers gate on its strength per call.
	InternalAPIKey string

	// SigningSecret signs bridge tokens and verifies session cookies. Empty
	// disables the Matrix bridge with a configuration error.
	SigningSecret string

	OAuth    oauthsetup.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry

	// Now overrides the clock. Intended for tests.
	Now func() time.Time
}

// API holds the gateway's handlers and their dependencies.
type API struct {
	resolver    *authn.Resolver
	forwarder   *proxy.Forwarder
	internalKey string
	signing     *token.Service
	oauthCfg    oauthsetup.Config
	oauthStore  *oauthsetup.Store
	logger      *slog.Logger
	registry    *prometheus.Registry
	metrics     *metrics
	now         func() time.Time
}

// New creates the API from its dependencies.
func New(deps Deps) (*API, error) {
	if deps.Resolver == nil {
		return nil, errors.New("httpapi: resolver is required")
	}
	if deps.Forwarder == nil {
		return nil, errors.New("httpapi: forwarder is required")
	}

	a := &API{
		resolver:    deps.Resolver,
		forwarder:   deps.Forwarder,
		internalKey: deps.InternalAPIKey,
		oauthCfg:    deps.OAuth,
		oauthStore:  oauthsetup.NewStore(deps.OAuth.CredentialsFile),
		logger:      deps.Logger,
		registry:    deps.Registry,
		now:         deps.Now,
	}

	if deps.SigningSecret != "" {
		svc, err := token.NewFromString(deps.SigningSecret)
		if err != nil {
			return nil, err
		}
		a.signing = svc
	}
	if a.logger == nil {
		a.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if a.registry == nil {
		a.registry = prometheus.NewRegistry()
	}
	if a.now == nil {
		a.now = time.Now
	}
	a.metrics = newMetrics(a.registry)

	return a, nil
}

// Handler assembles the router.
func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(a.requestIDMiddleware, a.loggingMiddleware, a.metricsMiddleware)

	r.Route("/api", func(api chi.Router) {
		lifeos := http.HandlerFunc(a.handleLifeOS)
		for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete} {
			api.Method(method, "/lifeos/*", lifeos)
		}

		api.Post("/local-auth/login", a.handleLogin)
		api.Post("/local-auth/register", a.handleRegister)
		api.Get("/matrix/session", a.handleMatrixSession)
		api.Get("/session/profile", a.handleProfile)
		api.Get("/setup/oauth", a.handleOAuthStatus)
		api.Post("/setup/oauth", a.handleOAuthSave)
	})

	r.Get("/healthz", a.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	return r
}

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
