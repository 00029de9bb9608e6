// SPDX-License-Identifier: MIT

// Package api implements the HTTP surface of the textbook backend: auth,
// chat, embeddings search, content personalization and operational routes.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hamza123545/physical-ai-backend/internal/api/middleware"
	"github.com/hamza123545/physical-ai-backend/internal/auth"
	"github.com/hamza123545/physical-ai-backend/internal/config"
	"github.com/hamza123545/physical-ai-backend/internal/cors"
	"github.com/hamza123545/physical-ai-backend/internal/health"
	"github.com/hamza123545/physical-ai-backend/internal/llm"
	"github.com/hamza123545/physical-ai-backend/internal/rag"
	"github.com/hamza123545/physical-ai-backend/internal/store"
	"github.com/hamza123545/physical-ai-backend/internal/vector"
)

// Asker answers textbook questions, optionally streaming deltas.
type Asker interface {
	Ask(ctx context.Context, question string, history []llm.Message, onChunk func(string)) (*rag.Answer, error)
	SearchPassages(ctx context.Context, query string, limit int) ([]vector.Point, error)
}

// ContentPersonalizer rewrites chapter content for a user's background.
type ContentPersonalizer interface {
	Personalize(ctx context.Context, profile *store.Profile, chapterID, content string) (string, bool, error)
}

// SessionMinter creates ChatKit client sessions.
type SessionMinter interface {
	CreateChatKitSession(ctx context.Context, userID string) (string, time.Time, error)
}

// Deps bundles the dependencies for the API server.
type Deps struct {
	Config       config.AppConfig
	Policy       *cors.Policy
	Store        *store.Store
	Signer       *auth.Signer
	RAG          Asker
	Personalizer ContentPersonalizer
	ChatKit      SessionMinter
	Health       *health.Manager
}

// Server is the textbook API server.
type Server struct {
	cfg          config.AppConfig
	policy       *cors.Policy
	store        *store.Store
	signer       *auth.Signer
	rag          Asker
	personalizer ContentPersonalizer
	chatkit      SessionMinter
	health       *health.Manager
}

// New creates the API server.
func New(deps Deps) *Server {
	return &Server{
		cfg:          deps.Config,
		policy:       deps.Policy,
		store:        deps.Store,
		signer:       deps.Signer,
		rag:          deps.RAG,
		personalizer: deps.Personalizer,
		chatkit:      deps.ChatKit,
		health:       deps.Health,
	}
}

// Router builds the chi router with the full middleware stack and all routes.
func (s *Server) Router() *chi.Mux {
	r := middleware.NewRouter(middleware.StackConfig{
		Policy:                s.policy,
		EnableSecurityHeaders: true,
		EnableMetrics:         true,
		EnableLogging:         true,
		RateLimitRPM:          s.cfg.RateLimitRPM,
	})

	r.Get("/", s.handleRoot)
	r.Get("/health", s.health.ServeHealth)
	r.Get("/ready", s.health.ServeReady)
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		// Preflight never 405s, whatever the path. Denied origins still get
		// a 200 with the default frontend origin echoed.
		r.Options("/*", s.policy.PreflightHandler())

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", s.handleSignup)
			r.Post("/signin", s.handleSignin)
			r.With(auth.WithAuth(s.signer), auth.RequireAuth).Get("/me", s.handleMe)
		})

		r.Route("/user", func(r chi.Router) {
			r.Use(auth.WithAuth(s.signer), auth.RequireAuth)
			r.Get("/background", s.handleGetBackground)
			r.Put("/background", s.handlePutBackground)
		})

		r.Route("/chat", func(r chi.Router) {
			r.Use(auth.WithAuth(s.signer))
			r.With(middleware.ChatRateLimit()).Post("/query", s.handleChatQuery)
			r.Get("/ws", s.handleChatWS)
		})

		r.Route("/embeddings", func(r chi.Router) {
			r.Post("/search", s.handleEmbeddingsSearch)
		})

		r.Route("/chatkit", func(r chi.Router) {
			r.Use(auth.WithAuth(s.signer), auth.RequireAuth)
			r.Post("/session", s.handleChatKitSession)
		})

		r.Route("/content", func(r chi.Router) {
			r.Use(auth.WithAuth(s.signer), auth.RequireAuth)
			r.With(middleware.ChatRateLimit()).Post("/personalize", s.handlePersonalize)
		})
	})

	return r
}

// handleRoot serves the service banner the frontend pings on load.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "Physical AI Textbook API",
		"status":  "running",
		"docs":    "/docs",
	})
}
