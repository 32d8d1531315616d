package httpapi

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/lifeos-home/gateway/internal/logger"
	"github.com/lifeos-home/gateway/internal/oauthsetup"
)

type oauthStatusResponse struct {
	Providers oauthsetup.ProviderStatus `json:"providers"`
}

type oauthSaveRequest struct {
	SetupToken         string `json:"setupToken"`
	GoogleClientID     string `json:"googleClientId"`
	GoogleClientSecret string `json:"googleClientSecret"`
	AppleClientID      string `json:"appleClientId"`
	AppleClientSecret  string `json:"appleClientSecret"`
}

type oauthSaveResponse struct {
	Message   string                    `json:"message"`
	Providers oauthsetup.ProviderStatus `json:"providers"`
}

// handleOAuthStatus reports which sign-in providers are configured, without
// ever echoing credential values.
func (a *API) handleOAuthStatus(w http.ResponseWriter, _ *http.Request) {
	stored, err := a.oauthStore.Load()
	if err != nil {
		a.logger.Error("failed to load stored oauth credentials", logger.Error(err))
		writeMessage(w, http.StatusInternalServerError, "Failed to read OAuth configuration")
		return
	}
	writeJSON(w, http.StatusOK, oauthStatusResponse{Providers: oauthsetup.Status(a.oauthCfg, stored)})
}

// handleOAuthSave stores provider credentials, guarded by the setup token.
func (a *API) handleOAuthSave(w http.ResponseWriter, r *http.Request) {
	if a.oauthCfg.SetupToken == "" {
		writeMessage(w, http.StatusInternalServerError, "Server missing OAUTH_SETUP_TOKEN")
		return
	}

	var req oauthSaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.SetupToken == "" ||
		subtle.ConstantTimeCompare([]byte(req.SetupToken), []byte(a.oauthCfg.SetupToken)) != 1 {
		writeMessage(w, http.StatusUnauthorized, "Invalid setup token")
		return
	}

	creds := oauthsetup.Credentials{
		GoogleClientID:     strings.TrimSpace(req.GoogleClientID),
		GoogleClientSecret: strings.TrimSpace(req.GoogleClientSecret),
		AppleClientID:      strings.TrimSpace(req.AppleClientID),
		AppleClientSecret:  strings.TrimSpace(req.AppleClientSecret),
	}
	if err := a.oauthStore.Save(creds); err != nil {
		a.logger.Error("failed to store oauth credentials", logger.Error(err))
		writeMessage(w, http.StatusInternalServerError, "Failed to store OAuth credentials")
		return
	}

	writeJSON(w, http.StatusOK, oauthSaveResponse{
		Message:   "OAuth credentials saved",
		Providers: oauthsetup.Status(a.oauthCfg, creds),
	})
}
