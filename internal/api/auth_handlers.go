// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hamza123545/physical-ai-backend/internal/auth"
	"github.com/hamza123545/physical-ai-backend/internal/log"
	"github.com/hamza123545/physical-ai-backend/internal/store"
)

// handleSignup registers a new account and returns an access token.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.New("invalid request body"))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not process password"})
		return
	}

	u, err := s.store.CreateUser(r.Context(), req.Email, hash, req.FullName)
	if errors.Is(err, store.ErrEmailExists) {
		writeConflict(w, "email already registered")
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not create account"})
		return
	}

	logger := log.WithComponentFromContext(r.Context(), "auth")
	logger.Info().
		Str(log.FieldEvent, "auth.signup").
		Str(log.FieldUserID, u.ID).
		Msg("account created")

	s.writeToken(w, u)
}

// handleSignin verifies credentials and returns an access token.
func (s *Server) handleSignin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.New("invalid request body"))
		return
	}

	u, err := s.store.UserByEmail(r.Context(), req.Email)
	if err != nil {
		// Same response for unknown email and bad password.
		writeUnauthorized(w)
		return
	}
	if !u.IsActive || !auth.CheckPassword(u.PasswordHash, req.Password) {
		writeUnauthorized(w)
		return
	}

	logger := log.WithComponentFromContext(r.Context(), "auth")
	logger.Info().
		Str(log.FieldEvent, "auth.signin").
		Str(log.FieldUserID, u.ID).
		Msg("user signed in")

	s.writeToken(w, u)
}

// handleMe returns the authenticated user's account.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	u, err := s.store.UserByID(r.Context(), claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		writeNotFound(w)
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "lookup failed"})
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (s *Server) writeToken(w http.ResponseWriter, u *store.User) {
	tok, err := s.signer.Sign(u.ID, u.Email)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not issue token"})
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: tok,
		TokenType:   "bearer",
		ExpiresIn:   int(s.signer.TTL().Seconds()),
	})
}

// handleGetBackground returns the stored personalization profile.
func (s *Server) handleGetBackground(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	p, err := s.store.ProfileByUserID(r.Context(), claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		// A fresh account simply has an empty background.
		writeJSON(w, http.StatusOK, backgroundResponse{})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "lookup failed"})
		return
	}
	writeJSON(w, http.StatusOK, toBackgroundResponse(p))
}

// handlePutBackground stores the personalization profile.
func (s *Server) handlePutBackground(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	var req backgroundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.New("invalid request body"))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}

	p := req.toProfile(claims.UserID)
	if err := s.store.UpsertProfile(r.Context(), p); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not save background"})
		return
	}
	writeJSON(w, http.StatusOK, toBackgroundResponse(p))
}
