package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func corsHandler(cfg CORSConfig) http.Handler {
	return CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestCORSDisabledWithoutOrigins(t *testing.T) {
	handler := corsHandler(CORSConfig{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected pass-through when CORS is disabled, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("expected no CORS headers when disabled")
	}
}

func TestCORSAllowedOrigin(t *testing.T) {
	handler := corsHandler(CORSConfig{
		AllowedOrigins: []string{"https://app.example"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/search", nil)
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Errorf("expected allowed origin echoed, got %q", got)
	}
}

func TestCORSRejectedOrigin(t *testing.T) {
	handler := corsHandler(CORSConfig{
		AllowedOrigins: []string{"https://app.example"},
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for disallowed origin, got %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	handler := corsHandler(CORSConfig{
		AllowedOrigins: []string{"https://app.example"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         600,
	})

	req := httptest.NewRequest(http.MethodOptions, "/v1/search", nil)
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST" {
		t.Errorf("unexpected methods header %q", got)
	}
	if got := rec.Header().Get("Access-Control-Max-Age"); got != "600" {
		t.Errorf("unexpected max-age header %q", got)
	}
}

func TestCORSSameOriginRequest(t *testing.T) {
	handler := corsHandler(CORSConfig{
		AllowedOrigins: []string{"https://app.example"},
	})

	// No Origin header at all.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected same-origin request to pass, got %d", rec.Code)
	}
}
