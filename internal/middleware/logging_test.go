package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

// captureLogger returns a JSON logger writing to the returned buffer.
func captureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, nil)), &buf
}

func decodeLogLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to decode log line %q: %v", buf.String(), err)
	}
	return entry
}

func TestLoggingBasicFields(t *testing.T) {
	logger, buf := captureLogger()

	handler := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("hello"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/search", nil))

	entry := decodeLogLine(t, buf)
	if entry["method"] != "POST" {
		t.Errorf("expected method POST, got %v", entry["method"])
	}
	if entry["path"] != "/v1/search" {
		t.Errorf("expected path /v1/search, got %v", entry["path"])
	}
	if entry["status"] != float64(http.StatusCreated) {
		t.Errorf("expected status 201, got %v", entry["status"])
	}
	if entry["size"] != float64(5) {
		t.Errorf("expected size 5, got %v", entry["size"])
	}
	if entry["level"] != "INFO" {
		t.Errorf("expected INFO level, got %v", entry["level"])
	}
}

func TestLoggingErrorLevels(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "INFO"},
		{http.StatusBadRequest, "WARN"},
		{http.StatusInternalServerError, "ERROR"},
	}

	for _, tt := range tests {
		logger, buf := captureLogger()
		handler := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		entry := decodeLogLine(t, buf)
		if entry["level"] != tt.level {
			t.Errorf("status %d: expected level %s, got %v", tt.status, tt.level, entry["level"])
		}
	}
}

func TestLoggingErrorCodePropagation(t *testing.T) {
	logger, buf := captureLogger()

	handler := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Handlers push derived contexts back through the writer.
		UpdateResponseContext(w, SetErrorCode(r.Context(), "validation_error"))
		w.WriteHeader(http.StatusBadRequest)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/recommendations", nil))

	entry := decodeLogLine(t, buf)
	if entry["error_code"] != "validation_error" {
		t.Errorf("expected error_code validation_error, got %v", entry["error_code"])
	}
}

func TestLoggingIncludesSubjectAndRequestID(t *testing.T) {
	logger, buf := captureLogger()

	inner := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := SetSubject(r.Context(), "user-123")
		inner.ServeHTTP(w, r.WithContext(ctx))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	RequestID(handler).ServeHTTP(rec, req)

	entry := decodeLogLine(t, buf)
	if entry["subject"] != "user-123" {
		t.Errorf("expected subject user-123, got %v", entry["subject"])
	}
	if entry["request_id"] != "req-42" {
		t.Errorf("expected request_id req-42, got %v", entry["request_id"])
	}
}

func TestResponseWriterIgnoresDoubleWriteHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)

	rw.WriteHeader(http.StatusNotFound)
	rw.WriteHeader(http.StatusOK)

	if rw.statusCode != http.StatusNotFound {
		t.Errorf("expected first status to stick, got %d", rw.statusCode)
	}
}

func TestNewLoggerByEnv(t *testing.T) {
	if NewLogger("production") == nil {
		t.Error("expected a production logger")
	}
	if NewLogger("development") == nil {
		t.Error("expected a development logger")
	}
}
