package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fitspace/avatar-service/internal/metrics"
	"github.com/fitspace/avatar-service/internal/models"
	"github.com/fitspace/avatar-service/internal/normalize"
	"github.com/fitspace/avatar-service/internal/storage"
)

// AvatarService owns the avatar use cases: it normalizes incoming payloads
// into drafts and delegates persistence to the store.
type AvatarService struct {
	store  storage.Store
	logger *slog.Logger
}

// NewAvatarService creates a new avatar service.
func NewAvatarService(store storage.Store, logger *slog.Logger) *AvatarService {
	return &AvatarService{
		store:  store,
		logger: logger,
	}
}

// ListAvatars returns the user's avatars capped at the per-user quota.
func (s *AvatarService) ListAvatars(ctx context.Context, userID string) (*models.AvatarList, error) {
	list, err := s.store.ListAvatars(ctx, userID, models.MaxAvatarsPerUser)
	if err != nil {
		s.logger.Error("Failed to list avatars", "user_id", userID, "error", err)
		return nil, err
	}
	return list, nil
}

// GetAvatar returns a single avatar owned by the user.
func (s *AvatarService) GetAvatar(ctx context.Context, userID, avatarID string) (*models.Avatar, error) {
	if err := validateAvatarID(avatarID); err != nil {
		return nil, err
	}

	avatar, err := s.store.GetAvatar(ctx, userID, avatarID)
	if err != nil {
		if err != storage.ErrAvatarNotFound {
			s.logger.Error("Failed to get avatar", "user_id", userID, "avatar_id", avatarID, "error", err)
		}
		return nil, err
	}
	return avatar, nil
}

// CreateAvatar normalizes the payload and creates a new avatar in the
// user's lowest free slot.
func (s *AvatarService) CreateAvatar(ctx context.Context, userID string, payload map[string]any) (*models.Avatar, error) {
	draft, err := draftFromPayload(payload)
	if err != nil {
		metrics.RecordAvatarWrite("create", "invalid")
		return nil, err
	}

	avatar, err := s.store.CreateAvatar(ctx, userID, draft)
	if err != nil {
		metrics.RecordAvatarWrite("create", "error")
		switch err {
		case storage.ErrDuplicateName, storage.ErrQuotaExceeded:
			s.logger.Warn("Avatar creation rejected", "user_id", userID, "error", err)
		default:
			s.logger.Error("Failed to create avatar", "user_id", userID, "error", err)
		}
		return nil, err
	}

	metrics.RecordAvatarWrite("create", "ok")
	s.logger.Info("Avatar created", "user_id", userID, "avatar_id", avatar.ID, "slot", avatar.Slot)
	return avatar, nil
}

// UpdateAvatar normalizes the payload and fully replaces the avatar's name
// and measurements.
func (s *AvatarService) UpdateAvatar(ctx context.Context, userID, avatarID string, payload map[string]any) (*models.Avatar, error) {
	if err := validateAvatarID(avatarID); err != nil {
		return nil, err
	}

	draft, err := draftFromPayload(payload)
	if err != nil {
		metrics.RecordAvatarWrite("update", "invalid")
		return nil, err
	}

	avatar, err := s.store.UpdateAvatar(ctx, userID, avatarID, draft)
	if err != nil {
		metrics.RecordAvatarWrite("update", "error")
		switch err {
		case storage.ErrAvatarNotFound, storage.ErrDuplicateName:
			s.logger.Warn("Avatar update rejected", "user_id", userID, "avatar_id", avatarID, "error", err)
		default:
			s.logger.Error("Failed to update avatar", "user_id", userID, "avatar_id", avatarID, "error", err)
		}
		return nil, err
	}

	metrics.RecordAvatarWrite("update", "ok")
	s.logger.Info("Avatar updated", "user_id", userID, "avatar_id", avatar.ID)
	return avatar, nil
}

// draftFromPayload normalizes the raw JSON payload into a draft. All four
// sections are optional; missing ones normalize to their empty canonical
// form.
func draftFromPayload(payload map[string]any) (models.AvatarDraft, error) {
	var draft models.AvatarDraft

	name, err := normalize.Name(payload["name"])
	if err != nil {
		return draft, err
	}
	basic, err := normalize.Measurements(payload["basicMeasurements"], "basicMeasurements")
	if err != nil {
		return draft, err
	}
	body, err := normalize.Measurements(payload["bodyMeasurements"], "bodyMeasurements")
	if err != nil {
		return draft, err
	}
	morphs, err := normalize.MorphTargets(payload["morphTargets"])
	if err != nil {
		return draft, err
	}

	draft.Name = name
	draft.BasicMeasurements = basic
	draft.BodyMeasurements = body
	draft.MorphTargets = morphs
	return draft, nil
}

func validateAvatarID(avatarID string) error {
	if _, err := uuid.Parse(avatarID); err != nil {
		return normalize.Errorf("Avatar id must be a valid UUID.")
	}
	return nil
}
