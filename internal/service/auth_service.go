package service

import (
	"context"
	"log/slog"

	"github.com/fitspace/avatar-service/internal/auth"
	"github.com/fitspace/avatar-service/internal/metrics"
	"github.com/fitspace/avatar-service/internal/models"
	"github.com/fitspace/avatar-service/internal/normalize"
	"github.com/fitspace/avatar-service/internal/storage"
)

// Token is an issued access token with its metadata.
type Token struct {
	AccessToken string      `json:"token"`
	TokenType   string      `json:"tokenType"`
	ExpiresIn   int64       `json:"expiresIn"`
	User        models.User `json:"user"`
}

// AuthService issues access tokens. There is no account registration:
// presenting a user id (plus the API key, when one is configured) is enough
// to mint a token for that user.
type AuthService struct {
	store      storage.Store
	jwtManager *auth.JWTManager
	verifier   *auth.APIKeyVerifier
	logger     *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(store storage.Store, jwtManager *auth.JWTManager, verifier *auth.APIKeyVerifier, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:      store,
		jwtManager: jwtManager,
		verifier:   verifier,
		logger:     logger,
	}
}

// IssueToken validates the request, registers the user if unseen, and
// returns a signed bearer token.
func (s *AuthService) IssueToken(ctx context.Context, userID, apiKey string) (*Token, error) {
	if userID == "" {
		return nil, normalize.Errorf("userId is required.")
	}

	if err := s.verifier.Verify(apiKey); err != nil {
		s.logger.Warn("Token request rejected", "user_id", userID, "error", err)
		return nil, err
	}

	if err := s.store.EnsureUser(ctx, userID); err != nil {
		s.logger.Error("Failed to register user", "user_id", userID, "error", err)
		return nil, err
	}

	tokenString, err := s.jwtManager.Generate(userID)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", userID, "error", err)
		return nil, err
	}

	metrics.RecordTokenIssued()
	s.logger.Info("Token issued", "user_id", userID)
	return &Token{
		AccessToken: tokenString,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.jwtManager.TokenDuration().Seconds()),
		User:        models.User{ID: userID},
	}, nil
}
