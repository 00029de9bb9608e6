// SPDX-License-Identifier: MIT

package cors

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
}

func TestHandler_AllowedOriginGetsFullHeaderSet(t *testing.T) {
	p := NewPolicy("https://a.com", false)
	h := p.Handler()(okHandler())

	req := httptest.NewRequest("GET", "/api/chat/query", nil)
	req.Header.Set("Origin", "https://a.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://a.com" {
		t.Errorf("Allow-Origin = %q, want https://a.com", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Allow-Credentials = %q, want true", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got != allowedMethods {
		t.Errorf("Allow-Methods = %q, want %q", got, allowedMethods)
	}
	if got := w.Header().Get("Access-Control-Allow-Headers"); got != "*" {
		t.Errorf("Allow-Headers = %q, want *", got)
	}
	if got := w.Header().Get("Access-Control-Expose-Headers"); got != "*" {
		t.Errorf("Expose-Headers = %q, want *", got)
	}
	if vary := w.Header().Get("Vary"); !strings.Contains(vary, "Origin") {
		t.Errorf("Vary = %q, want it to contain Origin", vary)
	}
}

func TestHandler_DeniedOriginGetsNoAllowOrigin(t *testing.T) {
	p := NewPolicy("https://a.com", false)
	h := p.Handler()(okHandler())

	req := httptest.NewRequest("GET", "/api/chat/query", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin = %q, want empty for denied origin", got)
	}
	// Denied requests still reach the handler; CORS is browser-enforced.
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestHandler_NoOriginHeader(t *testing.T) {
	p := NewPolicy("", false)
	h := p.Handler()(okHandler())

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin = %q, want empty when Origin header absent", got)
	}
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestBackupHeaders_BackfillsWhenAbsent(t *testing.T) {
	p := NewPolicy("https://a.com", false)
	h := p.BackupHeaders()(okHandler())

	req := httptest.NewRequest("GET", "/api/content/personalize", nil)
	req.Header.Set("Origin", "https://a.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	// The full set must be present, never a partial one.
	for header, want := range map[string]string{
		"Access-Control-Allow-Origin":      "https://a.com",
		"Access-Control-Allow-Credentials": "true",
		"Access-Control-Allow-Methods":     allowedMethods,
		"Access-Control-Allow-Headers":     "*",
		"Access-Control-Expose-Headers":    "*",
	} {
		if got := w.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
}

func TestBackupHeaders_NeverOverwritesPrimaryLayer(t *testing.T) {
	p := NewPolicy("https://a.com", false)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Simulates the primary CORS layer having run already.
		w.Header().Set("Access-Control-Allow-Origin", "https://primary.example")
		w.WriteHeader(http.StatusOK)
	})
	h := p.BackupHeaders()(inner)

	req := httptest.NewRequest("GET", "/api/chat/query", nil)
	req.Header.Set("Origin", "https://a.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://primary.example" {
		t.Errorf("Allow-Origin = %q, backup pass must not overwrite", got)
	}
	// The backup pass was a no-op, so it must not have added the rest of
	// the set either.
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "" {
		t.Errorf("Allow-Credentials = %q, want empty when backup is a no-op", got)
	}
}

func TestBackupHeaders_DeniedOriginNoFallback(t *testing.T) {
	p := NewPolicy("https://a.com", false)
	h := p.BackupHeaders()(okHandler())

	req := httptest.NewRequest("GET", "/api/chat/query", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	// Non-preflight requests never get the default-origin fallback.
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin = %q, want empty for denied non-preflight request", got)
	}
}

func TestBackupHeaders_HandlerWithoutExplicitWrite(t *testing.T) {
	p := NewPolicy("https://a.com", false)
	silent := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	h := p.BackupHeaders()(silent)

	req := httptest.NewRequest("GET", "/api/user/background", nil)
	req.Header.Set("Origin", "https://a.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://a.com" {
		t.Errorf("Allow-Origin = %q, want backfill on implicit 200", got)
	}
}

func TestPreflight_AllowedOriginEchoed(t *testing.T) {
	p := NewPolicy("https://a.com", false)
	h := p.PreflightHandler()

	req := httptest.NewRequest("OPTIONS", "/api/chat/query", nil)
	req.Header.Set("Origin", "https://a.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://a.com" {
		t.Errorf("Allow-Origin = %q, want https://a.com", got)
	}
	if got := w.Header().Get("Access-Control-Max-Age"); got != "3600" {
		t.Errorf("Max-Age = %q, want 3600", got)
	}
}

func TestPreflight_DeniedOriginFallsBackToPagesOrigin(t *testing.T) {
	p := NewPolicy("https://a.com", false)
	h := p.PreflightHandler()

	req := httptest.NewRequest("OPTIONS", "/api/chat/query", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	// Preflight is never a 4xx/5xx; the default frontend origin keeps the
	// known frontend working even with a stale allow-list.
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != PagesOrigin {
		t.Errorf("Allow-Origin = %q, want fallback %q", got, PagesOrigin)
	}
}

func TestPreflight_PagesPathOriginEchoedStripped(t *testing.T) {
	p := NewPolicy("", false)
	h := p.PreflightHandler()

	req := httptest.NewRequest("OPTIONS", "/api/embeddings/search", nil)
	req.Header.Set("Origin", "https://hamza123545.github.io/physical-ai-book")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != PagesOrigin {
		t.Errorf("Allow-Origin = %q, want %q", got, PagesOrigin)
	}
}

func TestCheckOrigin_Websocket(t *testing.T) {
	p := NewPolicy("https://a.com", false)

	req := httptest.NewRequest("GET", "/api/chat/ws", nil)
	if !p.CheckOrigin(req) {
		t.Error("expected request without Origin header to pass")
	}

	req.Header.Set("Origin", "https://a.com")
	if !p.CheckOrigin(req) {
		t.Error("expected allow-listed origin to pass")
	}

	req.Header.Set("Origin", "https://evil.example.com")
	if p.CheckOrigin(req) {
		t.Error("expected unknown origin to be rejected")
	}
}
