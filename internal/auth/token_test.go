// SPDX-License-Identifier: MIT

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSignAndParse(t *testing.T) {
	s := NewSigner("test-secret", time.Hour)

	tok, err := s.Sign("u-1", "alice@example.com")
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	c, err := s.Parse(tok)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if c.UserID != "u-1" || c.Email != "alice@example.com" {
		t.Errorf("claims = %+v, want uid u-1 / alice@example.com", c)
	}
}

func TestParse_WrongSecret(t *testing.T) {
	s1 := NewSigner("secret-one", time.Hour)
	s2 := NewSigner("secret-two", time.Hour)

	tok, err := s1.Sign("u-1", "a@b.com")
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if _, err := s2.Parse(tok); err == nil {
		t.Error("expected parse with wrong secret to fail")
	}
}

func TestParse_Expired(t *testing.T) {
	s := NewSigner("test-secret", time.Hour)
	s.now = func() time.Time { return time.Now().UTC().Add(-2 * time.Hour) }

	tok, err := s.Sign("u-1", "a@b.com")
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	s.now = func() time.Time { return time.Now().UTC() }
	if _, err := s.Parse(tok); err == nil {
		t.Error("expected expired token to fail parsing")
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  error
	}{
		{"Abcdef12", nil},
		{"short1A", ErrPasswordTooShort},
		{"abcdefgh1", ErrPasswordNoUpper},
		{"ABCDEFGH1", ErrPasswordNoLower},
		{"Abcdefgh", ErrPasswordNoDigit},
	}

	for _, tt := range tests {
		if err := ValidatePassword(tt.password); err != tt.wantErr {
			t.Errorf("ValidatePassword(%q) = %v, want %v", tt.password, err, tt.wantErr)
		}
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Abcdef12")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !CheckPassword(hash, "Abcdef12") {
		t.Error("expected matching password to verify")
	}
	if CheckPassword(hash, "wrong-password") {
		t.Error("expected wrong password to fail")
	}
}

func TestRequireAuth(t *testing.T) {
	s := NewSigner("test-secret", time.Hour)
	handler := WithAuth(s)(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := ClaimsFromContext(r.Context())
		if !ok {
			t.Error("expected claims in context")
		} else if c.UserID != "u-7" {
			t.Errorf("claims user = %q, want u-7", c.UserID)
		}
		w.WriteHeader(http.StatusOK)
	})))

	// No token
	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status without token = %d, want 401", w.Code)
	}

	// Garbage token
	req = httptest.NewRequest("GET", "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status with garbage token = %d, want 401", w.Code)
	}

	// Valid token
	tok, err := s.Sign("u-7", "a@b.com")
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	req = httptest.NewRequest("GET", "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("status with valid token = %d, want 200", w.Code)
	}
}
