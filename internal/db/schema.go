package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema. The CHECK on items guarantees that an
// unavailable item always carries a requester and that only known statuses
// and conditions are stored.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    username      TEXT NOT NULL,
    email         TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    school        TEXT,
    program       TEXT,
    rating_sum    INTEGER NOT NULL DEFAULT 0,
    rating_count  INTEGER NOT NULL DEFAULT 0,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_active
    ON users(email) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS items (
    id           TEXT PRIMARY KEY,
    owner_id     TEXT NOT NULL REFERENCES users(id),
    requester_id TEXT REFERENCES users(id),
    title        TEXT NOT NULL,
    description  TEXT,
    category     TEXT NOT NULL,
    condition    TEXT NOT NULL CHECK (condition IN ('excellent', 'gently_used', 'fair', 'poor')),
    school       TEXT,
    program      TEXT,
    image        BLOB,
    image_mime   TEXT,
    status       TEXT NOT NULL DEFAULT 'available' CHECK (status IN ('available', 'unavailable', 'old')),
    return_date  DATETIME NOT NULL,
    created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CHECK (status != 'unavailable' OR requester_id IS NOT NULL)
);

CREATE INDEX IF NOT EXISTS idx_items_owner ON items(owner_id);
CREATE INDEX IF NOT EXISTS idx_items_requester ON items(requester_id);
CREATE INDEX IF NOT EXISTS idx_items_status_school ON items(status, school);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
