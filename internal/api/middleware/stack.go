// SPDX-License-Identifier: MIT

// Package middleware provides the canonical HTTP ingress middleware stack
// for the textbook API server.
package middleware

import (
	"github.com/go-chi/chi/v5"

	"github.com/hamza123545/physical-ai-backend/internal/cors"
	applog "github.com/hamza123545/physical-ai-backend/internal/log"
)

// StackConfig configures the canonical HTTP ingress middleware stack.
type StackConfig struct {
	// CORS admission policy; required.
	Policy *cors.Policy

	// Security headers
	EnableSecurityHeaders bool

	// Observability
	EnableMetrics bool
	EnableLogging bool

	// Rate limiting
	RateLimitRPM int // 0 disables
}

// NewRouter constructs a chi router with the canonical middleware stack applied.
func NewRouter(cfg StackConfig) *chi.Mux {
	r := chi.NewRouter()
	ApplyStack(r, cfg)
	return r
}

// ApplyStack applies the canonical middleware stack to r.
func ApplyStack(r chi.Router, cfg StackConfig) {
	// 1. Recoverer (outermost safety net)
	r.Use(Recoverer)
	// 2. RequestID (correlation early)
	r.Use(RequestID)
	// 3. CORS backup pass (wraps the writer so the header set is backfilled
	//    on any response the primary layer missed)
	r.Use(cfg.Policy.BackupHeaders())
	// 4. CORS primary admission
	r.Use(cfg.Policy.Handler())
	// 5. Security headers
	if cfg.EnableSecurityHeaders {
		r.Use(SecurityHeaders())
	}
	// 6. Metrics (track all requests)
	if cfg.EnableMetrics {
		r.Use(Metrics())
	}
	// 7. Logging (wraps handlers, captures full latency)
	if cfg.EnableLogging {
		r.Use(applog.Middleware())
	}
	// 8. Rate limit (global protection)
	if cfg.RateLimitRPM > 0 {
		r.Use(APIRateLimit(cfg.RateLimitRPM))
	}
}
