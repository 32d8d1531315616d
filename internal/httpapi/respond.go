package httpapi

import (
	"encoding/json"
	"net/http"
)

// messageResponse is the uniform error/info body: always a message field.
type messageResponse struct {
	Message string `json:"message"`
}

// authErrorResponse carries a machine-readable discriminator for the Matrix
// bridge flow, so clients can prompt re-authentication instead of treating
// the failure as fatal.
type authErrorResponse struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	Recoverable bool   `json:"recoverable"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, authErrorResponse{Code: code, Message: message, Recoverable: true})
}
