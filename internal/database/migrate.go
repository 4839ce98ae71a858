package database

import (
	"context"
	"fmt"
	"log/slog"
)

const usersSchemaSQL = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	username      TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS users_username_key ON users (username);
`

// EnsureSchema creates the users table and its unique username index if
// they are missing. Username uniqueness is enforced here, in the store,
// so concurrent signups cannot race past the application-level check.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if db == nil || db.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	if _, err := db.Pool.Exec(ctx, usersSchemaSQL); err != nil {
		return fmt.Errorf("apply users schema: %w", err)
	}

	slog.Info("database schema ensured")
	return nil
}
