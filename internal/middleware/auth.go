// Package middleware provides HTTP middleware components for the API server.
package middleware

import (
	"net/http"
	"strings"
)

// TokenValidator validates a bearer token and returns the subject it was
// issued to. Implemented by auth.JWTService.
type TokenValidator interface {
	Subject(token string) (string, error)
}

// Authenticate is optional bearer-token authentication. Requests without an
// Authorization header pass through anonymously; requests with a bearer token
// must carry a valid one or get 401. A nil validator disables authentication
// entirely (the server runs open when no JWT secret is configured).
func Authenticate(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if validator == nil {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				unauthorized(w, r)
				return
			}

			subject, err := validator.Subject(token)
			if err != nil {
				unauthorized(w, r)
				return
			}

			ctx := SetSubject(r.Context(), subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// unauthorized writes the standard error envelope. The body is built inline
// because the api package depends on this one.
func unauthorized(w http.ResponseWriter, r *http.Request) {
	UpdateResponseContext(w, SetErrorCode(r.Context(), "auth_failed"))
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":"auth_failed","message":"Invalid or expired token"}}`))
}
