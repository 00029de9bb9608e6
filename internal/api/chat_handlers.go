// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/hamza123545/physical-ai-backend/internal/auth"
	"github.com/hamza123545/physical-ai-backend/internal/llm"
	"github.com/hamza123545/physical-ai-backend/internal/log"
	"github.com/hamza123545/physical-ai-backend/internal/rag"
)

// historyLimit bounds how many prior turns are replayed into the model.
const historyLimit = 10

// handleChatQuery answers a question over HTTP. Authenticated users get
// their chat history included and the exchange persisted.
func (s *Server) handleChatQuery(w http.ResponseWriter, r *http.Request) {
	var req chatQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.New("invalid request body"))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}

	history := s.loadHistory(r)

	ans, err := s.rag.Ask(r.Context(), req.Question, history, nil)
	if err != nil {
		writeServiceUnavailable(w, errors.New("answer generation failed"))
		return
	}

	s.persistExchange(r, req.Question, ans.Text)
	writeJSON(w, http.StatusOK, ans)
}

// wsMessage is the frame format exchanged over the chat websocket.
type wsMessage struct {
	Type     string       `json:"type"` // "chunk", "done", "error"
	Content  string       `json:"content,omitempty"`
	Answer   string       `json:"answer,omitempty"`
	Sources  []rag.Source `json:"sources,omitempty"`
	Question string       `json:"question,omitempty"`
}

// handleChatWS streams answers over a websocket. Each client frame carries
// one question; the server responds with chunk frames and a final done frame.
func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.policy.CheckOrigin,
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		return
	}
	defer conn.Close()

	logger := log.WithComponentFromContext(r.Context(), "chat-ws")

	for {
		var in wsMessage
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug().Err(err).Str(log.FieldEvent, "ws.read_error").Msg("websocket closed")
			}
			return
		}
		if in.Question == "" {
			_ = conn.WriteJSON(wsMessage{Type: "error", Content: errEmptyQuestion.Error()})
			continue
		}

		history := s.loadHistory(r)

		ans, err := s.rag.Ask(r.Context(), in.Question, history, func(chunk string) {
			_ = conn.WriteJSON(wsMessage{Type: "chunk", Content: chunk})
		})
		if err != nil {
			logger.Warn().Err(err).Str(log.FieldEvent, "ws.answer_error").Msg("streaming answer failed")
			_ = conn.WriteJSON(wsMessage{Type: "error", Content: "answer generation failed"})
			continue
		}

		s.persistExchange(r, in.Question, ans.Text)
		if err := conn.WriteJSON(wsMessage{Type: "done", Answer: ans.Text, Sources: ans.Sources}); err != nil {
			return
		}
	}
}

// handleEmbeddingsSearch runs retrieval only, returning scored passages.
func (s *Server) handleEmbeddingsSearch(w http.ResponseWriter, r *http.Request) {
	var req embeddingsSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.New("invalid request body"))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}

	points, err := s.rag.SearchPassages(r.Context(), req.Query, req.Limit)
	if err != nil {
		writeServiceUnavailable(w, errors.New("search failed"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": points})
}

// handleChatKitSession mints a ChatKit client secret for the browser SDK.
func (s *Server) handleChatKitSession(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	secret, expires, err := s.chatkit.CreateChatKitSession(r.Context(), claims.UserID)
	if err != nil {
		writeServiceUnavailable(w, errors.New("session creation failed"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"client_secret": secret,
		"expires_at":    expires.Unix(),
	})
}

// loadHistory returns recent chat turns for authenticated requesters,
// oldest first, mapped to model messages. Anonymous requests get none.
func (s *Server) loadHistory(r *http.Request) []llm.Message {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		return nil
	}

	msgs, err := s.store.RecentMessages(r.Context(), claims.UserID, historyLimit)
	if err != nil {
		logger := log.WithComponentFromContext(r.Context(), "chat")
		logger.Warn().Err(err).
			Str(log.FieldEvent, "chat.history_error").
			Msg("could not load chat history")
		return nil
	}

	out := make([]llm.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, llm.Message{Role: m.Role, Content: m.Content})
	}
	return out
}

// persistExchange saves one question/answer pair for authenticated users.
// History is best-effort; failures never fail the request.
func (s *Server) persistExchange(r *http.Request, question, answer string) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		return
	}

	ctx := r.Context()
	logger := log.WithComponentFromContext(ctx, "chat")
	if err := s.store.SaveMessage(ctx, claims.UserID, "user", question); err != nil {
		logger.Warn().Err(err).
			Str(log.FieldEvent, "chat.persist_error").
			Msg("could not save user message")
		return
	}
	if err := s.store.SaveMessage(ctx, claims.UserID, "assistant", answer); err != nil {
		logger.Warn().Err(err).
			Str(log.FieldEvent, "chat.persist_error").
			Msg("could not save assistant message")
	}
}
