// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"fmt"
	"time"
)

// SaveMessage appends one chat turn to a user's history.
func (s *Store) SaveMessage(ctx context.Context, userID, role, content string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_messages (user_id, role, content, created_at) VALUES (?, ?, ?, ?)`,
		userID, role, content, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("store: save message: %w", err)
	}
	return nil
}

// RecentMessages returns the newest limit messages for a user, oldest first.
func (s *Store) RecentMessages(ctx context.Context, userID string, limit int) ([]ChatMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, role, content, created_at FROM (
		   SELECT id, user_id, role, content, created_at
		   FROM chat_messages WHERE user_id = ?
		   ORDER BY id DESC LIMIT ?
		 ) ORDER BY id ASC`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("store: recent messages: %w", err)
	}
	defer rows.Close()

	var out []ChatMessage
	for rows.Next() {
		var m ChatMessage
		if err := rows.Scan(&m.ID, &m.UserID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
