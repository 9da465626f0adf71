// Package middleware provides HTTP middleware components for the API server.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"
)

// subjectKey is the context key for the authenticated subject.
type subjectKey struct{}

// errorCodeKey is the context key for error code.
type errorCodeKey struct{}

// SetSubject stores the authenticated subject in the context.
// This should be called by authentication middleware after validating the token.
func SetSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey{}, subject)
}

// GetSubject retrieves the authenticated subject from context.
// Returns empty string for anonymous requests.
func GetSubject(ctx context.Context) string {
	if subject, ok := ctx.Value(subjectKey{}).(string); ok {
		return subject
	}
	return ""
}

// SetErrorCode stores an error code in the context.
// This should be called by handlers when returning error responses.
func SetErrorCode(ctx context.Context, code string) context.Context {
	return context.WithValue(ctx, errorCodeKey{}, code)
}

// GetErrorCode retrieves the error code from context. Returns empty string if not present.
func GetErrorCode(ctx context.Context) string {
	if code, ok := ctx.Value(errorCodeKey{}).(string); ok {
		return code
	}
	return ""
}

// responseWriter wraps http.ResponseWriter to capture status code, response
// size, and a handler-updated context for the logging middleware.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	size        int
	wroteHeader bool
	ctx         context.Context
}

// WriteHeader captures the status code before writing it.
// Only the first call sets the status code; subsequent calls are ignored
// to match http.ResponseWriter behavior where only the first status is sent.
func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

// Write captures the response size and writes the data.
func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

// updateContext stores a context derived inside the handler so values set
// after ServeHTTP started (like error codes) are visible when logging.
func (rw *responseWriter) updateContext(ctx context.Context) {
	rw.ctx = ctx
}

// contextUpdater is implemented by response writers that can carry a
// handler-updated context back to the logging middleware.
type contextUpdater interface {
	updateContext(ctx context.Context)
}

// UpdateResponseContext propagates a derived context to the logging middleware
// through the response writer. Handlers call this (usually via the api error
// helpers) so SetErrorCode values reach the access log. It is a no-op when the
// writer is not wrapped by Logging.
func UpdateResponseContext(w http.ResponseWriter, ctx context.Context) {
	if u, ok := w.(contextUpdater); ok {
		u.updateContext(ctx)
	}
}

// newResponseWriter creates a new responseWriter with default 200 status.
func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

// NewLogger creates an slog.Logger based on the environment.
// In production (env == "production"), it returns a JSON handler.
// Otherwise, it returns a text handler for development.
func NewLogger(env string) *slog.Logger {
	var handler slog.Handler
	if env == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}
	return slog.New(handler)
}

// Logging is a middleware that logs HTTP requests with structured fields.
// It captures: method, path, status, latency (ms), request ID, subject (if
// authenticated), response size, and error_code (for error responses).
//
// Note: If a handler panics, the log entry will not be written. To ensure logging
// even on panics, place a recovery middleware outside of the logging middleware.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			latency := time.Since(start).Milliseconds()

			// Prefer the context handlers pushed back through the writer;
			// it carries values set after this middleware ran.
			ctx := r.Context()
			if rw.ctx != nil {
				ctx = rw.ctx
			}

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rw.statusCode),
				slog.Int64("latency_ms", latency),
				slog.Int("size", rw.size),
			}

			if requestID := GetRequestID(ctx); requestID != "" {
				attrs = append(attrs, slog.String("request_id", requestID))
			}

			if subject := GetSubject(ctx); subject != "" {
				attrs = append(attrs, slog.String("subject", subject))
			}

			if rw.statusCode >= 400 {
				if errorCode := GetErrorCode(ctx); errorCode != "" {
					attrs = append(attrs, slog.String("error_code", errorCode))
				}
			}

			if rw.statusCode >= 500 {
				logger.LogAttrs(r.Context(), slog.LevelError, "request completed", attrs...)
			} else if rw.statusCode >= 400 {
				logger.LogAttrs(r.Context(), slog.LevelWarn, "request completed", attrs...)
			} else {
				logger.LogAttrs(r.Context(), slog.LevelInfo, "request completed", attrs...)
			}
		})
	}
}
