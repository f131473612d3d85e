package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// EnsureUser registers a user id if it is not already known. Callers hit this
// implicitly on their first avatar operation; repeated calls are no-ops.
func (s *SQLiteStore) EnsureUser(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO users (id) VALUES (?)",
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to ensure user: %w", err)
	}
	return nil
}

// ensureUser is the in-transaction variant used by operations that register
// the user as a side effect.
func ensureUser(ctx context.Context, tx *sql.Tx, userID string) error {
	_, err := tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO users (id) VALUES (?)",
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to ensure user: %w", err)
	}
	return nil
}
