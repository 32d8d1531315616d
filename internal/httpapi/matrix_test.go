package httpapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeos-home/gateway/internal/authn"
	"github.com/lifeos-home/gateway/internal/httpapi"
	"github.com/lifeos-home/gateway/internal/token"
)

type matrixSessionBody struct {
	Status string `json:"status"`
	Actor  struct {
		Email       string  `json:"email"`
		DisplayName *string `json:"displayName"`
	} `json:"actor"`
	Bridge struct {
		Token     string `json:"token"`
		ExpiresAt string `json:"expiresAt"`
	} `json:"bridge"`
	Rooms json.RawMessage `json:"rooms"`
}

type authErrorBody struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	Recoverable bool   `json:"recoverable"`
}

func TestMatrixSession(t *testing.T) {
	t.Parallel()

	t.Run("missing session yields a recoverable auth error", func(t *testing.T) {
		t.Parallel()

		downstream := jsonDownstream(t, http.StatusOK, `[]`)
		handler := newTestHandler(t, downstream.srv.URL)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/matrix/session", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		var body authErrorBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "SESSION_MISSING", body.Code)
		assert.True(t, body.Recoverable)
		assert.Equal(t, 0, downstream.calls())
	})

	t.Run("expired session is reported distinctly", func(t *testing.T) {
		t.Parallel()

		downstream := jsonDownstream(t, http.StatusOK, `[]`)
		handler := newTestHandler(t, downstream.srv.URL)

		req := httptest.NewRequest(http.MethodGet, "/api/matrix/session", nil)
		req.AddCookie(expiredSessionCookie(t, "member@example.com"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		var body authErrorBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "SESSION_EXPIRED", body.Code)
		assert.True(t, body.Recoverable)
		assert.Equal(t, 0, downstream.calls())
	})

	t.Run("mints a bridge token after downstream confirms the actor", func(t *testing.T) {
		t.Parallel()

		roomsPayload := `[{"roomId":"!abc:home","name":"Family"}]`
		downstream := jsonDownstream(t, http.StatusOK, roomsPayload)

		mintedAt := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
		handler := newTestHandler(t, downstream.srv.URL, func(deps *httpapi.Deps) {
			deps.Now = func() time.Time { return mintedAt }
		})

		req := httptest.NewRequest(http.MethodGet, "/api/matrix/session", nil)
		req.AddCookie(validSessionCookie(t, "member@example.com"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var body matrixSessionBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "ok", body.Status)
		assert.Equal(t, "member@example.com", body.Actor.Email)
		require.NotNil(t, body.Actor.DisplayName)
		assert.Equal(t, "Member", *body.Actor.DisplayName)
		assert.JSONEq(t, roomsPayload, string(body.Rooms))
		assert.Equal(t, mintedAt.Add(5*time.Minute).Format(time.RFC3339), body.Bridge.ExpiresAt)

		// The bridge token must verify against the shared signing secret and
		// carry the confirmed actor.
		svc, err := token.NewFromString(signingSecret)
		require.NoError(t, err)
		svc = svc.WithClock(func() time.Time { return mintedAt })
		var payload token.BridgePayload
		require.NoError(t, svc.Parse(body.Bridge.Token, &payload))
		assert.Equal(t, "u1", payload.Subject)
		assert.Equal(t, "member@example.com", payload.Email)
		assert.Equal(t, mintedAt.Unix(), payload.IssuedAt)
		assert.Equal(t, mintedAt.Add(5*time.Minute).Unix(), payload.ExpiresAt)

		// Downstream saw exactly one rooms probe with trust headers.
		require.Equal(t, 1, downstream.calls())
		got := downstream.last(t)
		assert.Equal(t, "/matrix/rooms", got.Path)
		assert.Equal(t, "member@example.com", got.Email)
		assert.Equal(t, strongKey, got.Key)
	})

	t.Run("downstream rejection maps to MATRIX_AUTH_REJECTED", func(t *testing.T) {
		t.Parallel()

		for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
			downstream := jsonDownstream(t, status, `{"message":"nope"}`)
			handler := newTestHandler(t, downstream.srv.URL)

			req := httptest.NewRequest(http.MethodGet, "/api/matrix/session", nil)
			req.AddCookie(validSessionCookie(t, "member@example.com"))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			var body authErrorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "MATRIX_AUTH_REJECTED", body.Code)
			assert.True(t, body.Recoverable)
		}
	})

	t.Run("other downstream failures map to bad gateway", func(t *testing.T) {
		t.Parallel()

		downstream := jsonDownstream(t, http.StatusInternalServerError, `{}`)
		handler := newTestHandler(t, downstream.srv.URL)

		req := httptest.NewRequest(http.MethodGet, "/api/matrix/session", nil)
		req.AddCookie(validSessionCookie(t, "member@example.com"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Contains(t, rec.Body.String(), "Matrix session bootstrap failed")
	})

	t.Run("missing signing secret is a loud configuration error", func(t *testing.T) {
		t.Parallel()

		downstream := jsonDownstream(t, http.StatusOK, `[]`)
		handler := newTestHandler(t, downstream.srv.URL, func(deps *httpapi.Deps) {
			deps.SigningSecret = ""
		})

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/matrix/session", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "NEXTAUTH secret missing")
		assert.Equal(t, 0, downstream.calls())
	})

	t.Run("weak internal key blocks the rooms probe", func(t *testing.T) {
		t.Parallel()

		downstream := jsonDownstream(t, http.StatusOK, `[]`)
		handler := newTestHandler(t, downstream.srv.URL, func(deps *httpapi.Deps) {
			deps.InternalAPIKey = "short"
		})

		req := httptest.NewRequest(http.MethodGet, "/api/matrix/session", nil)
		req.AddCookie(validSessionCookie(t, "member@example.com"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, 0, downstream.calls())
	})

	t.Run("dev bypass never mints bridge tokens", func(t *testing.T) {
		t.Parallel()

		downstream := jsonDownstream(t, http.StatusOK, `[]`)
		handler := newTestHandler(t, downstream.srv.URL, withBypass(t, authn.BypassConfig{
			Enabled:     true,
			Email:       "dev@example.com",
			Environment: "development",
		}))

		// The bypass identity works for the generic proxy, but the bridge
		// requires a real signed session.
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/matrix/session", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		var body authErrorBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "SESSION_MISSING", body.Code)
		assert.Equal(t, 0, downstream.calls())
	})

	t.Run("non-JSON rooms body degrades to null", func(t *testing.T) {
		t.Parallel()

		downstream := newFakeDownstream(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		handler := newTestHandler(t, downstream.srv.URL)

		req := httptest.NewRequest(http.MethodGet, "/api/matrix/session", nil)
		req.AddCookie(validSessionCookie(t, "member@example.com"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var body matrixSessionBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "null", string(body.Rooms))
	})
}
