package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/fitspace/avatar-service/internal/auth"
	"github.com/fitspace/avatar-service/internal/config"
	"github.com/fitspace/avatar-service/internal/handler"
	"github.com/fitspace/avatar-service/internal/metrics"
	"github.com/fitspace/avatar-service/internal/service"
	"github.com/fitspace/avatar-service/internal/storage/sqlite"
	"github.com/fitspace/avatar-service/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	// Initialize SQLite storage
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExp)
	verifier := auth.NewAPIKeyVerifier(cfg.APIKeyHash)
	if verifier.Enabled() {
		slog.Info("API key check enabled for token issuance")
	}

	logger := slog.Default()
	authService := service.NewAuthService(store, jwtManager, verifier, logger)
	avatarService := service.NewAvatarService(store, logger)

	router := handler.NewRouterFromServices(authService, avatarService, jwtManager)
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	// Wrap with h2c so HTTP/2 clients work without TLS termination here
	h2cHandler := h2c.NewHandler(corsMiddleware(router), &http2.Server{})

	addr := cfg.Addr()
	slog.Info("Server starting", "address", addr, "url", fmt.Sprintf("http://localhost%s", addr))
	if err := http.ListenAndServe(addr, h2cHandler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
