package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubChecker struct {
	err error
}

func (s *stubChecker) HealthCheck(ctx context.Context) error {
	return s.err
}

func decodeHealth(t *testing.T, rec *httptest.ResponseRecorder) HealthResponse {
	t.Helper()
	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	return resp
}

func TestHealth(t *testing.T) {
	h := NewHealthHandlers(HealthHandlersConfig{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeHealth(t, rec)
	if resp.Status != "healthy" {
		t.Errorf("expected healthy, got %q", resp.Status)
	}
	if resp.Checks["runtime"] != "ok" {
		t.Errorf("expected runtime check ok, got %q", resp.Checks["runtime"])
	}
}

func TestHealthMethodNotAllowed(t *testing.T) {
	h := NewHealthHandlers(HealthHandlersConfig{})

	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestReadyWithoutCache(t *testing.T) {
	h := NewHealthHandlers(HealthHandlersConfig{MetricsEnabled: true})

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	h.Ready(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeHealth(t, rec)
	if resp.Checks["cache"] != "ok" {
		t.Errorf("expected cache check ok without redis, got %q", resp.Checks["cache"])
	}
	if resp.Checks["metrics"] != "ok" {
		t.Errorf("expected metrics check ok, got %q", resp.Checks["metrics"])
	}
}

func TestReadyHealthyCache(t *testing.T) {
	h := NewHealthHandlers(HealthHandlersConfig{CacheChecker: &stubChecker{}})

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	h.Ready(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if resp := decodeHealth(t, rec); resp.Checks["cache"] != "ok" {
		t.Errorf("expected cache ok, got %q", resp.Checks["cache"])
	}
}

func TestReadyUnhealthyCache(t *testing.T) {
	h := NewHealthHandlers(HealthHandlersConfig{
		CacheChecker: &stubChecker{err: errors.New("connection refused")},
	})

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	h.Ready(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	resp := decodeHealth(t, rec)
	if resp.Status != "unhealthy" {
		t.Errorf("expected unhealthy, got %q", resp.Status)
	}
	if resp.Checks["cache"] != "error" {
		t.Errorf("expected cache error, got %q", resp.Checks["cache"])
	}
}
