package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/lifeos-home/gateway/internal/authn"
	"github.com/lifeos-home/gateway/internal/logger"
	"github.com/lifeos-home/gateway/internal/proxy"
	"github.com/lifeos-home/gateway/internal/token"
)

// bridgeTTL is the fixed lifetime of a minted Matrix bridge token.
const bridgeTTL = 5 * time.Minute

type matrixActor struct {
	Email       string  `json:"email"`
	DisplayName *string `json:"displayName"`
}

type matrixBridge struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}

type matrixSessionResponse struct {
	Status string          `json:"status"`
	Actor  matrixActor     `json:"actor"`
	Bridge matrixBridge    `json:"bridge"`
	Rooms  json.RawMessage `json:"rooms"`
}

// handleMatrixSession bootstraps the chat bridge: verify the session with
// expiry awareness, confirm downstream authorization by listing the actor's
// rooms, and only then mint a short-lived bridge token. A token is never
// minted for an actor the downstream has not just confirmed.
func (a *API) handleMatrixSession(w http.ResponseWriter, r *http.Request) {
	if a.signing == nil {
		a.logger.Error("matrix bridge requested without signing secret configured")
		writeMessage(w, http.StatusInternalServerError, "Server misconfigured: NEXTAUTH secret missing")
		return
	}

	actor, claims, err := a.resolver.ResolveSession(r)
	if err != nil {
		if errors.Is(err, authn.ErrSessionExpired) {
			writeAuthError(w, http.StatusUnauthorized, "SESSION_EXPIRED", "Session expired. Please sign in again.")
			return
		}
		writeAuthError(w, http.StatusUnauthorized, "SESSION_MISSING", "Sign in required for Matrix access")
		return
	}

	if !a.requireStrongKey(w) {
		return
	}

	res, err := a.forwarder.Forward(r.Context(), http.MethodGet, "matrix/rooms", "", nil, proxy.Headers{
		ActorEmail:  actor.Email,
		InternalKey: a.internalKey,
	})
	if err != nil {
		writeMessage(w, http.StatusBadGateway, "Matrix session bootstrap failed")
		return
	}

	// The caller's own session is valid but the downstream trust relationship
	// rejected it. A distinct failure class from "you are not logged in".
	if res.Status == http.StatusUnauthorized || res.Status == http.StatusForbidden {
		writeAuthError(w, http.StatusUnauthorized, "MATRIX_AUTH_REJECTED", "Matrix authorization failed for current session")
		return
	}
	if res.Status < 200 || res.Status >= 300 {
		writeMessage(w, http.StatusBadGateway, "Matrix session bootstrap failed")
		return
	}

	subject := claims.Subject
	if subject == "" {
		subject = actor.Email
	}

	now := a.now()
	expiresAt := now.Add(bridgeTTL)
	bridgeToken, err := a.signing.Generate(token.BridgePayload{
		Subject:   subject,
		Email:     actor.Email,
		IssuedAt:  now.Unix(),
		ExpiresAt: expiresAt.Unix(),
	})
	if err != nil {
		a.logger.Error("bridge token mint failed", logger.Error(err))
		writeMessage(w, http.StatusInternalServerError, "Matrix bridge token mint failed")
		return
	}

	var displayName *string
	if actor.DisplayName != "" {
		displayName = &actor.DisplayName
	}

	rooms := json.RawMessage(res.Body)
	if !json.Valid(rooms) {
		rooms = json.RawMessage("null")
	}

	writeJSON(w, http.StatusOK, matrixSessionResponse{
		Status: "ok",
		Actor:  matrixActor{Email: actor.Email, DisplayName: displayName},
		Bridge: matrixBridge{
			Token:     bridgeToken,
			ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
		},
		Rooms: rooms,
	})
}
