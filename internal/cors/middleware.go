// SPDX-License-Identifier: MIT

package cors

import (
	"bufio"
	"net"
	"net/http"
	"strconv"

	"github.com/hamza123545/physical-ai-backend/internal/log"
	"github.com/hamza123545/physical-ai-backend/internal/metrics"
)

const (
	headerAllowOrigin      = "Access-Control-Allow-Origin"
	headerAllowCredentials = "Access-Control-Allow-Credentials"
	headerAllowMethods     = "Access-Control-Allow-Methods"
	headerAllowHeaders     = "Access-Control-Allow-Headers"
	headerExposeHeaders    = "Access-Control-Expose-Headers"
	headerMaxAge           = "Access-Control-Max-Age"

	allowedMethods = "GET, POST, PUT, DELETE, OPTIONS, PATCH, HEAD"

	// preflightMaxAge caches preflight results for one hour.
	preflightMaxAge = 3600
)

// setAllowHeaders writes the full CORS header set for an admitted origin.
// The set is always written together: an allow-origin header without the
// credentials permission silently breaks authenticated requests.
func setAllowHeaders(h http.Header, origin string) {
	h.Set(headerAllowOrigin, origin)
	h.Set(headerAllowCredentials, "true")
	h.Set(headerAllowMethods, allowedMethods)
	h.Set(headerAllowHeaders, "*")
	h.Set(headerExposeHeaders, "*")
}

// Handler returns the primary CORS middleware. It admits the request origin
// via Decide and sets the full header set for allowed origins. Denied
// origins get no allow-origin header; the browser enforces the failure.
func (p *Policy) Handler() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// The allowed origin varies per requester, so caches must key
			// on Origin.
			w.Header().Add("Vary", "Origin")

			origin := r.Header.Get("Origin")
			d := p.Decide(origin)
			p.logDecision(r, d, "cors.primary")

			if d.Allowed {
				setAllowHeaders(w.Header(), d.Origin)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// BackupHeaders returns the response post-processing middleware. It runs on
// every request and injects the full CORS header set immediately before the
// first write, but only when no Access-Control-Allow-Origin is present —
// it never overwrites a value the primary layer already set.
func (p *Policy) BackupHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bw := &backupWriter{
				ResponseWriter: w,
				policy:         p,
				request:        r,
			}
			next.ServeHTTP(bw, r)
			// Handlers that never write still get the backfill on the
			// implicit 200.
			bw.backfill()
		})
	}
}

// backupWriter wraps http.ResponseWriter to backfill CORS headers before
// the header block is flushed.
type backupWriter struct {
	http.ResponseWriter
	policy  *Policy
	request *http.Request
	done    bool
}

func (bw *backupWriter) WriteHeader(status int) {
	bw.backfill()
	bw.ResponseWriter.WriteHeader(status)
}

func (bw *backupWriter) Write(b []byte) (int, error) {
	bw.backfill()
	return bw.ResponseWriter.Write(b)
}

func (bw *backupWriter) Flush() {
	bw.backfill()
	if f, ok := bw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack lets websocket upgrades take over the connection. The backfill
// runs first so the 101 handshake still carries the CORS header set.
func (bw *backupWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	bw.backfill()
	if hj, ok := bw.ResponseWriter.(http.Hijacker); ok {
		return hj.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

// backfill injects the header set once, and only when the primary layer
// left no allow-origin header.
func (bw *backupWriter) backfill() {
	if bw.done {
		return
	}
	bw.done = true

	if bw.Header().Get(headerAllowOrigin) != "" {
		return
	}

	d := bw.policy.Decide(bw.request.Header.Get("Origin"))
	bw.policy.logDecision(bw.request, d, "cors.backup")
	if d.Allowed {
		setAllowHeaders(bw.Header(), d.Origin)
	}
}

// PreflightHandler handles CORS preflight requests for API routes. It
// always answers 200; when the origin is denied it falls back to the
// default production frontend origin rather than omitting the header, so
// preflight stays non-blocking for the known frontend even if the
// allow-list is stale.
func (p *Policy) PreflightHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		d := p.Decide(origin)
		p.logDecision(r, d, "cors.preflight")

		echoed := d.Origin
		if !d.Allowed {
			echoed = PagesOrigin
			metrics.RecordPreflightFallback()
		}

		h := w.Header()
		h.Add("Vary", "Origin")
		setAllowHeaders(h, echoed)
		h.Set(headerMaxAge, strconv.Itoa(preflightMaxAge))
		w.WriteHeader(http.StatusOK)
	}
}

// CheckOrigin adapts the policy for websocket upgrades. Requests without an
// Origin header are same-origin or non-browser clients and pass.
func (p *Policy) CheckOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return p.Decide(origin).Allowed
}

// logDecision records the decision inputs for operational diagnosis.
// Logging is best-effort and never fails the request.
func (p *Policy) logDecision(r *http.Request, d Decision, event string) {
	metrics.RecordCORSDecision(d.Rule, d.Allowed)

	logger := log.WithComponentFromContext(r.Context(), "cors")
	logger.Debug().
		Str(log.FieldEvent, event).
		Str(log.FieldOrigin, r.Header.Get("Origin")).
		Str(log.FieldEchoedOrigin, d.Origin).
		Bool(log.FieldAllowed, d.Allowed).
		Str(log.FieldAdmissionRule, d.Rule).
		Str(log.FieldPath, r.URL.Path).
		Strs("allowed_origins", p.AllowList()).
		Msg("origin admission decision")
}
