// SPDX-License-Identifier: MIT

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/hamza123545/physical-ai-backend/internal/log"
)

type authCtxKey int

const claimsKey authCtxKey = 1

// WithAuth attaches verified claims to the request context when a valid
// Bearer token is present. Requests without one pass through unchanged.
func WithAuth(signer *Signer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if strings.HasPrefix(h, "Bearer ") {
				tok := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
				if c, err := signer.Parse(tok); err == nil {
					ctx := context.WithValue(r.Context(), claimsKey, c)
					ctx = log.ContextWithUserID(ctx, c.UserID)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth rejects requests that carry no verified claims.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ClaimsFromContext(r.Context()); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClaimsFromContext extracts verified claims, if any.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*Claims)
	return c, ok
}
