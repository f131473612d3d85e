// Package storage provides abstractions for persistent avatar data.
package storage

import (
	"context"
	"errors"

	"github.com/fitspace/avatar-service/internal/models"
)

var (
	// ErrAvatarNotFound is returned when no avatar matches both the id and
	// the owning user. Avatars belonging to other users are reported the
	// same way as absent ones.
	ErrAvatarNotFound = errors.New("avatar not found")

	// ErrDuplicateName is returned when a create or rename would violate
	// the per-user unique name constraint.
	ErrDuplicateName = errors.New("avatar name must be unique per user")

	// ErrQuotaExceeded is returned when a user already holds the maximum
	// number of avatars.
	ErrQuotaExceeded = errors.New("user has reached the maximum of five avatars")
)

// Store defines the interface for avatar storage operations. Every method
// runs as a single transaction against the backing database: on failure no
// partial state is visible, on success the transaction has committed before
// the method returns. This abstraction allows swapping storage backends
// without changing the service layer.
type Store interface {
	// EnsureUser registers a user id if it is not already known.
	// Idempotent; never fails for a valid id.
	EnsureUser(ctx context.Context, userID string) error

	// ListAvatars returns the user's avatars ordered by (created_at, id)
	// ascending, truncated to limit, together with the list envelope
	// counts. The user record is created as a side effect if absent.
	ListAvatars(ctx context.Context, userID string, limit int) (*models.AvatarList, error)

	// GetAvatar returns the avatar with the given id owned by userID, or
	// ErrAvatarNotFound.
	GetAvatar(ctx context.Context, userID, avatarID string) (*models.Avatar, error)

	// CreateAvatar inserts a new avatar in the lowest free slot and
	// replaces its measurement sub-collections with the draft's. Returns
	// ErrQuotaExceeded or ErrDuplicateName on constraint violations.
	CreateAvatar(ctx context.Context, userID string, draft models.AvatarDraft) (*models.Avatar, error)

	// UpdateAvatar renames an avatar, refreshes its updated_at and fully
	// replaces its measurement sub-collections. Returns ErrAvatarNotFound
	// or ErrDuplicateName.
	UpdateAvatar(ctx context.Context, userID, avatarID string, draft models.AvatarDraft) (*models.Avatar, error)

	// Close releases any resources held by the store.
	Close() error
}
