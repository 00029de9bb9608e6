// SPDX-License-Identifier: MIT

package api

import (
	"errors"
	"strings"

	"github.com/hamza123545/physical-ai-backend/internal/auth"
	"github.com/hamza123545/physical-ai-backend/internal/store"
)

var (
	errInvalidEmail   = errors.New("invalid email address")
	errEmptyQuestion  = errors.New("question must not be empty")
	errEmptyContent   = errors.New("content must not be empty")
	errEmptyChapter   = errors.New("chapter_id must not be empty")
	errBadExperience  = errors.New("experience level must be one of: none, beginner, intermediate, advanced")
	errBadCurrentRole = errors.New("current_role must be one of: student, professional, hobbyist, researcher")
)

var experienceLevels = map[string]struct{}{
	"none":         {},
	"beginner":     {},
	"intermediate": {},
	"advanced":     {},
}

var currentRoles = map[string]struct{}{
	"student":      {},
	"professional": {},
	"hobbyist":     {},
	"researcher":   {},
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

func (r *signupRequest) validate() error {
	r.Email = strings.TrimSpace(r.Email)
	if !strings.Contains(r.Email, "@") || len(r.Email) < 3 {
		return errInvalidEmail
	}
	return auth.ValidatePassword(r.Password)
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type userResponse struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
	IsActive   bool   `json:"is_active"`
	IsVerified bool   `json:"is_verified"`
}

func toUserResponse(u *store.User) userResponse {
	return userResponse{
		ID:         u.ID,
		Email:      u.Email,
		FullName:   u.FullName,
		IsActive:   u.IsActive,
		IsVerified: u.IsVerified,
	}
}

type backgroundRequest struct {
	SoftwareExperience   string `json:"software_experience"`
	HardwareExperience   string `json:"hardware_experience"`
	RoboticsExperience   string `json:"robotics_experience"`
	CurrentRole          string `json:"current_role"`
	ProgrammingLanguages string `json:"programming_languages"`
	LearningGoals        string `json:"learning_goals"`
	Industry             string `json:"industry"`
}

func (r *backgroundRequest) validate() error {
	for _, level := range []string{r.SoftwareExperience, r.HardwareExperience, r.RoboticsExperience} {
		if level == "" {
			continue
		}
		if _, ok := experienceLevels[strings.ToLower(level)]; !ok {
			return errBadExperience
		}
	}
	if r.CurrentRole != "" {
		if _, ok := currentRoles[strings.ToLower(r.CurrentRole)]; !ok {
			return errBadCurrentRole
		}
	}
	return nil
}

func (r *backgroundRequest) toProfile(userID string) *store.Profile {
	return &store.Profile{
		UserID:               userID,
		SoftwareExperience:   strings.ToLower(r.SoftwareExperience),
		HardwareExperience:   strings.ToLower(r.HardwareExperience),
		RoboticsExperience:   strings.ToLower(r.RoboticsExperience),
		CurrentRole:          strings.ToLower(r.CurrentRole),
		ProgrammingLanguages: r.ProgrammingLanguages,
		LearningGoals:        r.LearningGoals,
		Industry:             r.Industry,
	}
}

type backgroundResponse struct {
	SoftwareExperience   string `json:"software_experience"`
	HardwareExperience   string `json:"hardware_experience"`
	RoboticsExperience   string `json:"robotics_experience"`
	CurrentRole          string `json:"current_role"`
	ProgrammingLanguages string `json:"programming_languages"`
	LearningGoals        string `json:"learning_goals"`
	Industry             string `json:"industry"`
}

func toBackgroundResponse(p *store.Profile) backgroundResponse {
	return backgroundResponse{
		SoftwareExperience:   p.SoftwareExperience,
		HardwareExperience:   p.HardwareExperience,
		RoboticsExperience:   p.RoboticsExperience,
		CurrentRole:          p.CurrentRole,
		ProgrammingLanguages: p.ProgrammingLanguages,
		LearningGoals:        p.LearningGoals,
		Industry:             p.Industry,
	}
}

type chatQueryRequest struct {
	Question string `json:"question"`
}

func (r *chatQueryRequest) validate() error {
	if strings.TrimSpace(r.Question) == "" {
		return errEmptyQuestion
	}
	return nil
}

type embeddingsSearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

func (r *embeddingsSearchRequest) validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return errEmptyQuestion
	}
	return nil
}

type personalizeRequest struct {
	ChapterID string `json:"chapter_id"`
	Content   string `json:"content"`
}

func (r *personalizeRequest) validate() error {
	if strings.TrimSpace(r.ChapterID) == "" {
		return errEmptyChapter
	}
	if strings.TrimSpace(r.Content) == "" {
		return errEmptyContent
	}
	return nil
}
