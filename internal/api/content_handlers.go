// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hamza123545/physical-ai-backend/internal/auth"
	"github.com/hamza123545/physical-ai-backend/internal/store"
)

// handlePersonalize rewrites chapter content for the caller's stored
// background. Users without a profile get the content back unchanged.
func (s *Server) handlePersonalize(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	var req personalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.New("invalid request body"))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}

	profile, err := s.store.ProfileByUserID(r.Context(), claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusOK, map[string]any{
			"content":      req.Content,
			"personalized": false,
			"cached":       false,
		})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "profile lookup failed"})
		return
	}

	out, cached, err := s.personalizer.Personalize(r.Context(), profile, req.ChapterID, req.Content)
	if err != nil {
		writeServiceUnavailable(w, errors.New("personalization failed"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"content":      out,
		"personalized": true,
		"cached":       cached,
	})
}
