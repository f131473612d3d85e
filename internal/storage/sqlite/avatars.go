package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fitspace/avatar-service/internal/models"
	"github.com/fitspace/avatar-service/internal/storage"
)

// errSlotTaken signals that a concurrent create claimed the slot this
// transaction computed. The create retries on a fresh transaction.
var errSlotTaken = errors.New("avatar slot already taken")

const avatarColumns = "id, user_id, name, slot, created_at, updated_at"

// CreateAvatar inserts a new avatar into the lowest free slot and writes its
// measurement sub-collections, all in one transaction.
//
// The free-slot scan and the insert share a transaction, but two concurrent
// creates for the same user can still compute the same slot. The UNIQUE
// (user_id, slot) index rejects the loser, which retries on a fresh snapshot
// until it wins a slot or the quota genuinely runs out.
func (s *SQLiteStore) CreateAvatar(ctx context.Context, userID string, draft models.AvatarDraft) (*models.Avatar, error) {
	for attempt := 0; attempt < models.MaxAvatarsPerUser; attempt++ {
		avatar, err := s.createAvatar(ctx, userID, draft)
		if errors.Is(err, errSlotTaken) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return avatar, nil
	}
	return nil, fmt.Errorf("failed to allocate avatar slot after %d attempts: %w",
		models.MaxAvatarsPerUser, errSlotTaken)
}

// createAvatar is a single creation attempt.
func (s *SQLiteStore) createAvatar(ctx context.Context, userID string, draft models.AvatarDraft) (*models.Avatar, error) {
	now := time.Now().UTC()
	avatar := &models.Avatar{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      draft.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := ensureUser(ctx, tx, userID); err != nil {
			return err
		}

		slot, err := findAvailableSlot(ctx, tx, userID)
		if err != nil {
			return err
		}
		avatar.Slot = slot

		_, err = tx.ExecContext(ctx,
			`INSERT INTO avatars (id, user_id, name, slot, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			avatar.ID, avatar.UserID, avatar.Name, avatar.Slot,
			avatar.CreatedAt.UnixNano(), avatar.UpdatedAt.UnixNano(),
		)
		switch {
		case isUniqueViolation(err, "avatars.name"):
			return storage.ErrDuplicateName
		case isUniqueViolation(err, "avatars.slot"):
			return errSlotTaken
		case err != nil:
			return fmt.Errorf("failed to insert avatar: %w", err)
		}

		if err := replaceMeasurements(ctx, tx, avatar.ID, draft); err != nil {
			return err
		}
		return hydrateMeasurements(ctx, tx, avatar)
	})
	if err != nil {
		return nil, err
	}
	return avatar, nil
}

// UpdateAvatar renames an avatar, refreshes updated_at and fully replaces
// the measurement sub-collections. Old measurements are discarded, never
// merged.
func (s *SQLiteStore) UpdateAvatar(ctx context.Context, userID, avatarID string, draft models.AvatarDraft) (*models.Avatar, error) {
	var avatar *models.Avatar

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		a, err := getAvatarRow(ctx, tx, userID, avatarID)
		if err != nil {
			return err
		}

		a.Name = draft.Name
		a.UpdatedAt = time.Now().UTC()

		_, err = tx.ExecContext(ctx,
			"UPDATE avatars SET name = ?, updated_at = ? WHERE id = ?",
			a.Name, a.UpdatedAt.UnixNano(), a.ID,
		)
		switch {
		case isUniqueViolation(err, "avatars.name"):
			return storage.ErrDuplicateName
		case err != nil:
			return fmt.Errorf("failed to update avatar: %w", err)
		}

		if err := replaceMeasurements(ctx, tx, a.ID, draft); err != nil {
			return err
		}
		if err := hydrateMeasurements(ctx, tx, a); err != nil {
			return err
		}
		avatar = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return avatar, nil
}

// GetAvatar retrieves an avatar owned by userID, fully hydrated.
func (s *SQLiteStore) GetAvatar(ctx context.Context, userID, avatarID string) (*models.Avatar, error) {
	var avatar *models.Avatar

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		a, err := getAvatarRow(ctx, tx, userID, avatarID)
		if err != nil {
			return err
		}
		if err := hydrateMeasurements(ctx, tx, a); err != nil {
			return err
		}
		avatar = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return avatar, nil
}

// ListAvatars returns the user's avatars ordered by (created_at, id)
// ascending. Only the first limit avatars are hydrated and returned as
// items; total counts every avatar the user owns. The user record is
// registered as a side effect.
func (s *SQLiteStore) ListAvatars(ctx context.Context, userID string, limit int) (*models.AvatarList, error) {
	list := &models.AvatarList{
		UserID: userID,
		Limit:  limit,
		Items:  []models.Avatar{},
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := ensureUser(ctx, tx, userID); err != nil {
			return err
		}

		rows, err := tx.QueryContext(ctx,
			"SELECT "+avatarColumns+" FROM avatars WHERE user_id = ? ORDER BY created_at, id",
			userID,
		)
		if err != nil {
			return fmt.Errorf("failed to list avatars: %w", err)
		}
		defer rows.Close()

		var avatars []*models.Avatar
		for rows.Next() {
			avatar, err := scanAvatar(rows)
			if err != nil {
				return err
			}
			avatars = append(avatars, avatar)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to iterate avatars: %w", err)
		}

		list.Total = len(avatars)
		if limit >= 0 && limit < len(avatars) {
			avatars = avatars[:limit]
		}
		for _, avatar := range avatars {
			if err := hydrateMeasurements(ctx, tx, avatar); err != nil {
				return err
			}
			list.Items = append(list.Items, *avatar)
		}
		list.Count = len(list.Items)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// findAvailableSlot returns the lowest slot in [1, MaxAvatarsPerUser] not
// held by the user, or storage.ErrQuotaExceeded when all are taken.
func findAvailableSlot(ctx context.Context, tx *sql.Tx, userID string) (int, error) {
	rows, err := tx.QueryContext(ctx, "SELECT slot FROM avatars WHERE user_id = ?", userID)
	if err != nil {
		return 0, fmt.Errorf("failed to scan slots: %w", err)
	}
	defer rows.Close()

	used := make(map[int]bool)
	for rows.Next() {
		var slot int
		if err := rows.Scan(&slot); err != nil {
			return 0, fmt.Errorf("failed to scan slot: %w", err)
		}
		used[slot] = true
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to iterate slots: %w", err)
	}

	for slot := 1; slot <= models.MaxAvatarsPerUser; slot++ {
		if !used[slot] {
			return slot, nil
		}
	}
	return 0, storage.ErrQuotaExceeded
}

// getAvatarRow fetches the avatar row without its sub-collections.
// Ownership is part of the lookup predicate: an id owned by another user is
// indistinguishable from a missing one.
func getAvatarRow(ctx context.Context, tx *sql.Tx, userID, avatarID string) (*models.Avatar, error) {
	row := tx.QueryRowContext(ctx,
		"SELECT "+avatarColumns+" FROM avatars WHERE id = ? AND user_id = ?",
		avatarID, userID,
	)
	return scanAvatar(row)
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAvatar(row rowScanner) (*models.Avatar, error) {
	avatar := &models.Avatar{}
	var createdAt, updatedAt int64

	err := row.Scan(&avatar.ID, &avatar.UserID, &avatar.Name, &avatar.Slot, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrAvatarNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan avatar: %w", err)
	}

	avatar.CreatedAt = time.Unix(0, createdAt).UTC()
	avatar.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return avatar, nil
}

// replaceMeasurements discards and rewrites all three measurement
// sub-collections for an avatar. It runs inside the caller's transaction so
// a failure leaves the previous state intact.
func replaceMeasurements(ctx context.Context, tx *sql.Tx, avatarID string, draft models.AvatarDraft) error {
	for _, table := range []string{
		"avatar_basic_measurements",
		"avatar_body_measurements",
		"avatar_morph_targets",
	} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE avatar_id = ?", avatarID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for key, value := range draft.BasicMeasurements {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO avatar_basic_measurements (avatar_id, measurement_key, value) VALUES (?, ?, ?)",
			avatarID, key, value,
		); err != nil {
			return fmt.Errorf("failed to insert basic measurement: %w", err)
		}
	}

	for key, value := range draft.BodyMeasurements {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO avatar_body_measurements (avatar_id, measurement_key, value) VALUES (?, ?, ?)",
			avatarID, key, value,
		); err != nil {
			return fmt.Errorf("failed to insert body measurement: %w", err)
		}
	}

	for _, target := range draft.MorphTargets {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO avatar_morph_targets (avatar_id, morph_id, value) VALUES (?, ?, ?)",
			avatarID, target.ID, target.Value,
		); err != nil {
			return fmt.Errorf("failed to insert morph target: %w", err)
		}
	}
	return nil
}

// hydrateMeasurements loads the three sub-collections onto avatar in
// canonical form: maps are never nil, morph targets come back sorted by id.
func hydrateMeasurements(ctx context.Context, tx *sql.Tx, avatar *models.Avatar) error {
	basic, err := fetchMeasurementMap(ctx, tx, "avatar_basic_measurements", avatar.ID)
	if err != nil {
		return err
	}
	body, err := fetchMeasurementMap(ctx, tx, "avatar_body_measurements", avatar.ID)
	if err != nil {
		return err
	}

	rows, err := tx.QueryContext(ctx,
		"SELECT morph_id, value FROM avatar_morph_targets WHERE avatar_id = ? ORDER BY morph_id",
		avatar.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get morph targets: %w", err)
	}
	defer rows.Close()

	morphs := []models.MorphTarget{}
	for rows.Next() {
		var target models.MorphTarget
		if err := rows.Scan(&target.ID, &target.Value); err != nil {
			return fmt.Errorf("failed to scan morph target: %w", err)
		}
		morphs = append(morphs, target)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate morph targets: %w", err)
	}

	avatar.BasicMeasurements = basic
	avatar.BodyMeasurements = body
	avatar.MorphTargets = morphs
	return nil
}

func fetchMeasurementMap(ctx context.Context, tx *sql.Tx, table, avatarID string) (map[string]float64, error) {
	rows, err := tx.QueryContext(ctx,
		"SELECT measurement_key, value FROM "+table+" WHERE avatar_id = ?",
		avatarID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", table, err)
	}
	defer rows.Close()

	values := make(map[string]float64)
	for rows.Next() {
		var key string
		var value float64
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", table, err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", table, err)
	}
	return values, nil
}
