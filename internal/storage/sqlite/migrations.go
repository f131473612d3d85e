package sqlite

import "database/sql"

// migrations contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
//
// The unique constraints on (user_id, name) and (user_id, slot) are the
// authoritative enforcement of per-user name uniqueness and slot ownership;
// application code detects their violations rather than pre-checking.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS avatars (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    name TEXT NOT NULL,
    slot INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    UNIQUE (user_id, name),
    UNIQUE (user_id, slot),
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS avatar_basic_measurements (
    avatar_id TEXT NOT NULL,
    measurement_key TEXT NOT NULL,
    value REAL NOT NULL,
    PRIMARY KEY (avatar_id, measurement_key),
    FOREIGN KEY (avatar_id) REFERENCES avatars(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS avatar_body_measurements (
    avatar_id TEXT NOT NULL,
    measurement_key TEXT NOT NULL,
    value REAL NOT NULL,
    PRIMARY KEY (avatar_id, measurement_key),
    FOREIGN KEY (avatar_id) REFERENCES avatars(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS avatar_morph_targets (
    avatar_id TEXT NOT NULL,
    morph_id TEXT NOT NULL,
    value REAL NOT NULL,
    PRIMARY KEY (avatar_id, morph_id),
    FOREIGN KEY (avatar_id) REFERENCES avatars(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_avatars_user_id ON avatars(user_id);
CREATE INDEX IF NOT EXISTS idx_basic_measurements_avatar_id ON avatar_basic_measurements(avatar_id);
CREATE INDEX IF NOT EXISTS idx_body_measurements_avatar_id ON avatar_body_measurements(avatar_id);
CREATE INDEX IF NOT EXISTS idx_morph_targets_avatar_id ON avatar_morph_targets(avatar_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
