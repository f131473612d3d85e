package handler

import (
	"net/http"

	"github.com/fitspace/avatar-service/internal/service"
)

// AuthHandler exposes token issuance over HTTP.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// IssueToken handles POST /api/auth/token.
func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	payload, err := decodeBody(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	userID, _ := payload["userId"].(string)
	apiKey, _ := payload["apiKey"].(string)

	token, err := h.auth.IssueToken(r.Context(), userID, apiKey)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, token)
}
