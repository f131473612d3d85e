// Package handler wires the HTTP surface: routing, JSON encoding, and the
// mapping from domain errors to status codes.
package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fitspace/avatar-service/internal/auth"
	"github.com/fitspace/avatar-service/internal/middleware"
	"github.com/fitspace/avatar-service/internal/service"
)

// NewRouter builds the service's router. The token endpoint is open; every
// avatar route sits behind the bearer-token middleware.
func NewRouter(
	authHandler *AuthHandler,
	avatarHandler *AvatarHandler,
	jwtManager *auth.JWTManager,
) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.Metrics())
	router.Use(middleware.Logging())

	router.HandleFunc("/health", handleHealth).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/token", authHandler.IssueToken).Methods(http.MethodPost)

	avatars := api.PathPrefix("/users/{userId}/avatars").Subrouter()
	avatars.Use(middleware.RequireAuth(jwtManager))
	avatars.HandleFunc("", avatarHandler.List).Methods(http.MethodGet)
	avatars.HandleFunc("", avatarHandler.Create).Methods(http.MethodPost)
	avatars.HandleFunc("/{avatarId}", avatarHandler.Get).Methods(http.MethodGet)
	avatars.HandleFunc("/{avatarId}", avatarHandler.Update).Methods(http.MethodPut)

	return router
}

// NewRouterFromServices is a convenience wrapper used by the server binary
// and tests.
func NewRouterFromServices(
	authService *service.AuthService,
	avatarService *service.AvatarService,
	jwtManager *auth.JWTManager,
) *mux.Router {
	return NewRouter(NewAuthHandler(authService), NewAvatarHandler(avatarService), jwtManager)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
