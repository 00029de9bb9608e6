// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Sentinel errors returned by store operations.
var (
	ErrNotFound    = errors.New("store: not found")
	ErrEmailExists = errors.New("store: email already registered")
)

// User is a registered account.
type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	FullName     string
	IsActive     bool
	IsVerified   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile holds the personalization background for a user.
type Profile struct {
	UserID               string
	SoftwareExperience   string
	HardwareExperience   string
	RoboticsExperience   string
	CurrentRole          string
	ProgrammingLanguages string
	LearningGoals        string
	Industry             string
	UpdatedAt            time.Time
}

// ChatMessage is one turn of a user's chat history.
type ChatMessage struct {
	ID        int64
	UserID    string
	Role      string // "user" or "assistant"
	Content   string
	CreatedAt time.Time
}

// Store wraps the SQLite database with typed operations.
type Store struct {
	db *sql.DB
}

// New creates a Store over an opened database.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for health checks.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates the schema if it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	password_hash BLOB NOT NULL,
	full_name TEXT NOT NULL DEFAULT '',
	is_active INTEGER NOT NULL DEFAULT 1,
	is_verified INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS profiles (
	user_id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
	software_experience TEXT NOT NULL DEFAULT '',
	hardware_experience TEXT NOT NULL DEFAULT '',
	robotics_experience TEXT NOT NULL DEFAULT '',
	current_role TEXT NOT NULL DEFAULT '',
	programming_languages TEXT NOT NULL DEFAULT '',
	learning_goals TEXT NOT NULL DEFAULT '',
	industry TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS chat_messages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chat_messages_user ON chat_messages(user_id, created_at);
`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("store: migrate failed: %w", err)
	}
	return nil
}
