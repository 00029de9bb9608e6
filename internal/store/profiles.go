// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// UpsertProfile stores the personalization background for a user,
// replacing any previous values.
func (s *Store) UpsertProfile(ctx context.Context, p *Profile) error {
	p.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profiles (user_id, software_experience, hardware_experience, robotics_experience,
		                       current_role, programming_languages, learning_goals, industry, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   software_experience = excluded.software_experience,
		   hardware_experience = excluded.hardware_experience,
		   robotics_experience = excluded.robotics_experience,
		   current_role = excluded.current_role,
		   programming_languages = excluded.programming_languages,
		   learning_goals = excluded.learning_goals,
		   industry = excluded.industry,
		   updated_at = excluded.updated_at`,
		p.UserID, p.SoftwareExperience, p.HardwareExperience, p.RoboticsExperience,
		p.CurrentRole, p.ProgrammingLanguages, p.LearningGoals, p.Industry, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("store: upsert profile: %w", err)
	}
	return nil
}

// ProfileByUserID returns the stored background for a user.
func (s *Store) ProfileByUserID(ctx context.Context, userID string) (*Profile, error) {
	var p Profile
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, software_experience, hardware_experience, robotics_experience,
		        current_role, programming_languages, learning_goals, industry, updated_at
		 FROM profiles WHERE user_id = ?`, userID).
		Scan(&p.UserID, &p.SoftwareExperience, &p.HardwareExperience, &p.RoboticsExperience,
			&p.CurrentRole, &p.ProgrammingLanguages, &p.LearningGoals, &p.Industry, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: scan profile: %w", err)
	}
	return &p, nil
}
