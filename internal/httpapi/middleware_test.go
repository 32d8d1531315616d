package httpapi_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	t.Run("generates an id when the caller sends none", func(t *testing.T) {
		t.Parallel()

		downstream := jsonDownstream(t, http.StatusOK, `{}`)
		handler := newTestHandler(t, downstream.srv.URL)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		id := rec.Header().Get("X-Request-ID")
		require.NotEmpty(t, id)
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
	})

	t.Run("echoes a caller-supplied id", func(t *testing.T) {
		t.Parallel()

		downstream := jsonDownstream(t, http.StatusOK, `{}`)
		handler := newTestHandler(t, downstream.srv.URL)

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("X-Request-ID", "req-abc-123")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "req-abc-123", rec.Header().Get("X-Request-ID"))
	})
}

func TestHealth(t *testing.T) {
	t.Parallel()

	downstream := jsonDownstream(t, http.StatusOK, `{}`)
	handler := newTestHandler(t, downstream.srv.URL)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	downstream := jsonDownstream(t, http.StatusOK, `{}`)
	handler := newTestHandler(t, downstream.srv.URL)

	// Drive one proxied request through so the counters have a sample.
	req := httptest.NewRequest(http.MethodGet, "/api/lifeos/tasks", nil)
	req.AddCookie(validSessionCookie(t, "member@example.com"))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "lifeos_gateway_requests_total")
	assert.Contains(t, body, `path="/api/lifeos/*"`)
	assert.Contains(t, body, "lifeos_gateway_request_duration_seconds")
}
