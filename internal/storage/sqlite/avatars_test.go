package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/fitspace/avatar-service/internal/models"
	"github.com/fitspace/avatar-service/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "avatar-service-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateAvatar generates ID, slot and timestamps", func(t *testing.T) {
		avatar, err := store.CreateAvatar(ctx, "user-1", models.AvatarDraft{Name: "First"})
		if err != nil {
			t.Fatalf("CreateAvatar failed: %v", err)
		}

		if avatar.ID == "" {
			t.Error("Expected avatar ID to be generated")
		}
		if avatar.Slot != 1 {
			t.Errorf("Expected slot 1 for first avatar, got %d", avatar.Slot)
		}
		if avatar.CreatedAt.IsZero() {
			t.Error("Expected CreatedAt to be set")
		}
		if !avatar.UpdatedAt.Equal(avatar.CreatedAt) {
			t.Errorf("Expected UpdatedAt == CreatedAt on create, got %v and %v",
				avatar.UpdatedAt, avatar.CreatedAt)
		}
		if avatar.BasicMeasurements == nil || avatar.BodyMeasurements == nil || avatar.MorphTargets == nil {
			t.Error("Expected empty collections to be non-nil")
		}
	})

	t.Run("GetAvatar retrieves complete avatar", func(t *testing.T) {
		original, err := store.CreateAvatar(ctx, "user-2", models.AvatarDraft{
			Name:              "Gym Profile",
			BasicMeasurements: map[string]float64{"height": 180, "weight": 75.5},
			BodyMeasurements:  map[string]float64{"chest": 100, "waist": 82},
			MorphTargets: []models.MorphTarget{
				{ID: "arm_girth", Value: 0.4},
				{ID: "torso_length", Value: -0.1},
			},
		})
		if err != nil {
			t.Fatalf("CreateAvatar failed: %v", err)
		}

		retrieved, err := store.GetAvatar(ctx, "user-2", original.ID)
		if err != nil {
			t.Fatalf("GetAvatar failed: %v", err)
		}

		if retrieved.ID != original.ID {
			t.Errorf("ID mismatch: got %s, want %s", retrieved.ID, original.ID)
		}
		if retrieved.Name != "Gym Profile" {
			t.Errorf("Name mismatch: got %s, want Gym Profile", retrieved.Name)
		}
		if !retrieved.CreatedAt.Equal(original.CreatedAt) {
			t.Errorf("CreatedAt mismatch: got %v, want %v", retrieved.CreatedAt, original.CreatedAt)
		}
		if got := retrieved.BasicMeasurements["weight"]; got != 75.5 {
			t.Errorf("weight mismatch: got %f, want 75.5", got)
		}
		if got := retrieved.BodyMeasurements["chest"]; got != 100 {
			t.Errorf("chest mismatch: got %f, want 100", got)
		}
		if len(retrieved.MorphTargets) != 2 {
			t.Fatalf("Expected 2 morph targets, got %d", len(retrieved.MorphTargets))
		}
		// Morph targets come back sorted by id.
		if retrieved.MorphTargets[0].ID != "arm_girth" || retrieved.MorphTargets[1].ID != "torso_length" {
			t.Errorf("Morph targets out of order: %v", retrieved.MorphTargets)
		}
	})

	t.Run("GetAvatar returns not found for unknown id", func(t *testing.T) {
		_, err := store.GetAvatar(ctx, "user-1", "nonexistent-id")
		if !errors.Is(err, storage.ErrAvatarNotFound) {
			t.Errorf("Expected ErrAvatarNotFound, got %v", err)
		}
	})

	t.Run("GetAvatar hides other users' avatars", func(t *testing.T) {
		avatar, err := store.CreateAvatar(ctx, "owner", models.AvatarDraft{Name: "Private"})
		if err != nil {
			t.Fatalf("CreateAvatar failed: %v", err)
		}

		_, err = store.GetAvatar(ctx, "intruder", avatar.ID)
		if !errors.Is(err, storage.ErrAvatarNotFound) {
			t.Errorf("Expected ErrAvatarNotFound for foreign avatar, got %v", err)
		}
	})

	t.Run("CreateAvatar rejects duplicate name per user", func(t *testing.T) {
		if _, err := store.CreateAvatar(ctx, "user-3", models.AvatarDraft{Name: "Main"}); err != nil {
			t.Fatalf("CreateAvatar failed: %v", err)
		}

		_, err := store.CreateAvatar(ctx, "user-3", models.AvatarDraft{Name: "Main"})
		if !errors.Is(err, storage.ErrDuplicateName) {
			t.Errorf("Expected ErrDuplicateName, got %v", err)
		}

		// Same name under a different user is fine.
		if _, err := store.CreateAvatar(ctx, "user-4", models.AvatarDraft{Name: "Main"}); err != nil {
			t.Errorf("Expected cross-user duplicate name to succeed, got %v", err)
		}
	})

	t.Run("CreateAvatar enforces quota and reuses freed slots", func(t *testing.T) {
		userID := "user-5"
		avatars := make([]*models.Avatar, 0, models.MaxAvatarsPerUser)
		for i := 1; i <= models.MaxAvatarsPerUser; i++ {
			avatar, err := store.CreateAvatar(ctx, userID, models.AvatarDraft{
				Name: fmt.Sprintf("Avatar %d", i),
			})
			if err != nil {
				t.Fatalf("CreateAvatar %d failed: %v", i, err)
			}
			if avatar.Slot != i {
				t.Errorf("Expected slot %d, got %d", i, avatar.Slot)
			}
			avatars = append(avatars, avatar)
		}

		_, err := store.CreateAvatar(ctx, userID, models.AvatarDraft{Name: "One Too Many"})
		if !errors.Is(err, storage.ErrQuotaExceeded) {
			t.Fatalf("Expected ErrQuotaExceeded, got %v", err)
		}

		// Free slot 3 directly and confirm the next create claims it.
		if _, err := store.db.ExecContext(ctx, "DELETE FROM avatars WHERE id = ?", avatars[2].ID); err != nil {
			t.Fatalf("Failed to free slot: %v", err)
		}

		replacement, err := store.CreateAvatar(ctx, userID, models.AvatarDraft{Name: "Replacement"})
		if err != nil {
			t.Fatalf("CreateAvatar after freeing slot failed: %v", err)
		}
		if replacement.Slot != 3 {
			t.Errorf("Expected lowest free slot 3, got %d", replacement.Slot)
		}
	})

	t.Run("UpdateAvatar replaces measurements entirely", func(t *testing.T) {
		avatar, err := store.CreateAvatar(ctx, "user-6", models.AvatarDraft{
			Name:              "Before",
			BasicMeasurements: map[string]float64{"height": 170},
			BodyMeasurements:  map[string]float64{"hips": 95, "waist": 80},
			MorphTargets:      []models.MorphTarget{{ID: "jaw_width", Value: 0.2}},
		})
		if err != nil {
			t.Fatalf("CreateAvatar failed: %v", err)
		}

		updated, err := store.UpdateAvatar(ctx, "user-6", avatar.ID, models.AvatarDraft{
			Name:              "After",
			BasicMeasurements: map[string]float64{"height": 171},
		})
		if err != nil {
			t.Fatalf("UpdateAvatar failed: %v", err)
		}

		if updated.Name != "After" {
			t.Errorf("Name mismatch: got %s, want After", updated.Name)
		}
		if updated.Slot != avatar.Slot {
			t.Errorf("Slot changed on update: got %d, want %d", updated.Slot, avatar.Slot)
		}
		if !updated.CreatedAt.Equal(avatar.CreatedAt) {
			t.Errorf("CreatedAt changed on update: got %v, want %v", updated.CreatedAt, avatar.CreatedAt)
		}
		if updated.UpdatedAt.Before(avatar.UpdatedAt) {
			t.Errorf("UpdatedAt moved backwards: got %v, was %v", updated.UpdatedAt, avatar.UpdatedAt)
		}
		if got := updated.BasicMeasurements["height"]; got != 171 {
			t.Errorf("height mismatch: got %f, want 171", got)
		}
		// Omitted sections are cleared, not merged.
		if len(updated.BodyMeasurements) != 0 {
			t.Errorf("Expected body measurements cleared, got %v", updated.BodyMeasurements)
		}
		if len(updated.MorphTargets) != 0 {
			t.Errorf("Expected morph targets cleared, got %v", updated.MorphTargets)
		}
	})

	t.Run("UpdateAvatar rejects duplicate name", func(t *testing.T) {
		if _, err := store.CreateAvatar(ctx, "user-7", models.AvatarDraft{Name: "Keeper"}); err != nil {
			t.Fatalf("CreateAvatar failed: %v", err)
		}
		victim, err := store.CreateAvatar(ctx, "user-7", models.AvatarDraft{Name: "Renamed"})
		if err != nil {
			t.Fatalf("CreateAvatar failed: %v", err)
		}

		_, err = store.UpdateAvatar(ctx, "user-7", victim.ID, models.AvatarDraft{Name: "Keeper"})
		if !errors.Is(err, storage.ErrDuplicateName) {
			t.Errorf("Expected ErrDuplicateName, got %v", err)
		}

		// Keeping your own name is not a collision.
		if _, err := store.UpdateAvatar(ctx, "user-7", victim.ID, models.AvatarDraft{Name: "Renamed"}); err != nil {
			t.Errorf("Expected self-rename to succeed, got %v", err)
		}
	})

	t.Run("UpdateAvatar returns not found for unknown id", func(t *testing.T) {
		_, err := store.UpdateAvatar(ctx, "user-1", "nonexistent-id", models.AvatarDraft{Name: "Ghost"})
		if !errors.Is(err, storage.ErrAvatarNotFound) {
			t.Errorf("Expected ErrAvatarNotFound, got %v", err)
		}
	})

	t.Run("ListAvatars orders by creation and applies limit", func(t *testing.T) {
		userID := "user-8"
		for i := 1; i <= 3; i++ {
			if _, err := store.CreateAvatar(ctx, userID, models.AvatarDraft{
				Name: fmt.Sprintf("Avatar %d", i),
			}); err != nil {
				t.Fatalf("CreateAvatar %d failed: %v", i, err)
			}
		}

		list, err := store.ListAvatars(ctx, userID, 2)
		if err != nil {
			t.Fatalf("ListAvatars failed: %v", err)
		}

		if list.Total != 3 {
			t.Errorf("Total mismatch: got %d, want 3", list.Total)
		}
		if list.Count != 2 || len(list.Items) != 2 {
			t.Errorf("Count mismatch: got count=%d items=%d, want 2", list.Count, len(list.Items))
		}
		if list.Items[0].Name != "Avatar 1" || list.Items[1].Name != "Avatar 2" {
			t.Errorf("Unexpected ordering: %s, %s", list.Items[0].Name, list.Items[1].Name)
		}
	})

	t.Run("ListAvatars registers unknown user with empty list", func(t *testing.T) {
		list, err := store.ListAvatars(ctx, "fresh-user", models.MaxAvatarsPerUser)
		if err != nil {
			t.Fatalf("ListAvatars failed: %v", err)
		}
		if list.Total != 0 || list.Count != 0 {
			t.Errorf("Expected empty list, got total=%d count=%d", list.Total, list.Count)
		}
		if list.Items == nil {
			t.Error("Expected items to be non-nil")
		}

		var count int
		if err := store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE id = ?", "fresh-user").Scan(&count); err != nil {
			t.Fatalf("Failed to count users: %v", err)
		}
		if count != 1 {
			t.Errorf("Expected user row to exist, got count %d", count)
		}
	})

	t.Run("EnsureUser is idempotent", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			if err := store.EnsureUser(ctx, "repeat-user"); err != nil {
				t.Fatalf("EnsureUser call %d failed: %v", i+1, err)
			}
		}
	})
}
