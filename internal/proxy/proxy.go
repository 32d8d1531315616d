// Package proxy forwards inbound requests to the downstream LifeOS API. The
// downstream owns all business data and validation; this layer relays method,
// body, query string, status, and content type verbatim and only injects the
// trust headers proving the call comes from the gateway.
package proxy

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Header names injected into downstream requests.
const (
	HeaderUserEmail   = "X-User-Email"
	HeaderInternalKey = "X-Internal-Api-Key"
)

// DefaultContentType is used when neither the caller nor the downstream
// declares one.
const DefaultContentType = "application/json"

// Config provides environment-based configuration for the forwarder.
type Config struct {
	// BaseURL is the downstream API root, without a trailing slash.
	BaseURL string `env:"LIFEOS_API_BASE_URL" envDefault:"http://127.0.0.1:4000"`

	// Timeout bounds every downstream call. The upstream source relied on
	// platform defaults here; an unresponsive downstream would hang callers
	// indefinitely, so the forwarder always sets a deadline.
	Timeout time.Duration `env:"LIFEOS_API_TIMEOUT" envDefault:"30s"`
}

// Headers is the typed outbound header record. Empty fields are omitted from
// the request entirely, which makes "never send an absent key" structural
// rather than a conditional at each call site.
type Headers struct {
	ContentType string
	ActorEmail  string
	InternalKey string
}

func (h Headers) apply(req *http.Request) {
	if h.ContentType != "" {
		req.Header.Set("Content-Type", h.ContentType)
	}
	if h.ActorEmail != "" {
		req.Header.Set(HeaderUserEmail, h.ActorEmail)
	}
	if h.InternalKey != "" {
		req.Header.Set(HeaderInternalKey, h.InternalKey)
	}
}

// Result is a downstream response captured for relay.
type Result struct {
	Status      int
	ContentType string
	Body        []byte
}

// Forwarder issues downstream calls. Safe for concurrent use.
type Forwarder struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// Option configures the forwarder.
type Option func(*Forwarder)

// WithLogger sets a logger for downstream call diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Forwarder) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithHTTPClient replaces the HTTP client. Intended for tests.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Forwarder) {
		if client != nil {
			f.client = client
		}
	}
}

// New creates a Forwarder from configuration.
func New(cfg Config, opts ...Option) (*Forwarder, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		return nil, fmt.Errorf("proxy: base URL is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("proxy: invalid base URL %q: %w", cfg.BaseURL, err)
	}

	f := &Forwarder{
		baseURL: base,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Forward issues one downstream call and captures the response. The path is
// joined to the base URL and the raw query string is appended verbatim. Bodies
// are never sent for GET or HEAD; for other methods the given bytes go out
// unmodified. The request inherits ctx for cancellation on top of the client
// timeout.
func (f *Forwarder) Forward(ctx context.Context, method, path, rawQuery string, body []byte, hdr Headers) (*Result, error) {
	target := f.baseURL + "/" + strings.TrimLeft(path, "/")
	if rawQuery != "" {
		target += "?" + rawQuery
	}

	var reader io.Reader
	if method != http.MethodGet && method != http.MethodHead && body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("proxy: build request: %w", err)
	}
	hdr.apply(req)

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Error("downstream call failed",
			slog.String("method", method),
			slog.String("target", target),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("proxy: downstream request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("proxy: read downstream response: %w", err)
	}

	f.logger.Debug("downstream call",
		slog.String("method", method),
		slog.String("target", target),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = DefaultContentType
	}

	return &Result{
		Status:      resp.StatusCode,
		ContentType: contentType,
		Body:        payload,
	}, nil
}

// Relay writes a captured downstream response to the caller unchanged. The
// payload is never reinterpreted, and caching is disabled so clients always
// treat downstream state as current.
func Relay(w http.ResponseWriter, res *Result) {
	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(res.Status)
	_, _ = w.Write(res.Body)
}
