package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fitspace/avatar-service/internal/auth"
	"github.com/fitspace/avatar-service/internal/middleware"
	"github.com/fitspace/avatar-service/internal/service"
)

// AvatarHandler exposes the avatar use cases over HTTP.
type AvatarHandler struct {
	avatars *service.AvatarService
}

// NewAvatarHandler creates a new avatar handler.
func NewAvatarHandler(avatars *service.AvatarService) *AvatarHandler {
	return &AvatarHandler{avatars: avatars}
}

// List handles GET /api/users/{userId}/avatars.
func (h *AvatarHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorize(w, r, auth.ScopeAvatarsRead)
	if !ok {
		return
	}

	list, err := h.avatars.ListAvatars(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Get handles GET /api/users/{userId}/avatars/{avatarId}.
func (h *AvatarHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorize(w, r, auth.ScopeAvatarsRead)
	if !ok {
		return
	}

	avatar, err := h.avatars.GetAvatar(r.Context(), userID, mux.Vars(r)["avatarId"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, avatar)
}

// Create handles POST /api/users/{userId}/avatars.
func (h *AvatarHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorize(w, r, auth.ScopeAvatarsWrite)
	if !ok {
		return
	}

	payload, err := decodeBody(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	avatar, err := h.avatars.CreateAvatar(r.Context(), userID, payload)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, avatar)
}

// Update handles PUT /api/users/{userId}/avatars/{avatarId}.
func (h *AvatarHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorize(w, r, auth.ScopeAvatarsWrite)
	if !ok {
		return
	}

	payload, err := decodeBody(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	avatar, err := h.avatars.UpdateAvatar(r.Context(), userID, mux.Vars(r)["avatarId"], payload)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, avatar)
}

// authorize checks that the authenticated user matches the {userId} path
// parameter and that the token carries the required scope. Tokens are only
// valid for the user they were issued to.
func (h *AvatarHandler) authorize(w http.ResponseWriter, r *http.Request, scope string) (string, bool) {
	pathUserID := mux.Vars(r)["userId"]
	claims := middleware.GetClaims(r.Context())

	if claims == nil || claims.UserID() != pathUserID {
		writeError(w, http.StatusForbidden, "forbidden", "You do not have access to this user's avatars.")
		return "", false
	}
	if !claims.HasScope(scope) {
		writeError(w, http.StatusForbidden, "forbidden", "Token is missing the required scope.")
		return "", false
	}
	return pathUserID, true
}
