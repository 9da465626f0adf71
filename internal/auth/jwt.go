// Package auth provides authentication utilities for JWT token management.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token lifetime for issued tokens.
const DefaultTokenExpiry = 24 * time.Hour

// Default leeway for token validation.
const DefaultLeeway = 30 * time.Second

// ErrInvalidToken is returned when token validation fails.
var ErrInvalidToken = errors.New("invalid token")

// ErrExpiredToken is returned when the token has expired.
var ErrExpiredToken = errors.New("token has expired")

// ErrEmptySubject is returned when the subject is empty.
var ErrEmptySubject = errors.New("subject cannot be empty")

// Claims represents the JWT claims for the application. The subject is the
// caller identity used for logging and per-user rate limiting.
type Claims struct {
	jwt.RegisteredClaims
}

// JWTService handles JWT token operations.
// Supports dual-key rotation: tokens are signed with currentSecret,
// but can be validated with either currentSecret or previousSecret.
type JWTService struct {
	currentSecret  []byte
	previousSecret []byte
	leeway         time.Duration
}

// NewJWTService creates a new JWTService with the given secret.
func NewJWTService(secret string) *JWTService {
	return &JWTService{
		currentSecret: []byte(secret),
		leeway:        DefaultLeeway,
	}
}

// NewJWTServiceWithRotation creates a JWTService with dual-key support for
// zero-downtime rotation. Tokens are always signed with currentSecret, but
// can be validated with either secret. Set previousSecret to empty string if
// no rotation is in progress.
func NewJWTServiceWithRotation(currentSecret, previousSecret string) *JWTService {
	svc := &JWTService{
		currentSecret: []byte(currentSecret),
		leeway:        DefaultLeeway,
	}
	if previousSecret != "" {
		svc.previousSecret = []byte(previousSecret)
	}
	return svc
}

// GenerateToken creates a signed token for the given subject.
func (s *JWTService) GenerateToken(subject string, expiry time.Duration) (string, error) {
	if subject == "" {
		return "", ErrEmptySubject
	}
	if expiry <= 0 {
		expiry = DefaultTokenExpiry
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.currentSecret)
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
// Supports dual-key rotation: tries currentSecret first, then previousSecret if available.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	claims, err := s.parseWithSecret(tokenString, s.currentSecret)
	if err == nil {
		return claims, nil
	}

	if s.previousSecret != nil {
		if claims, prevErr := s.parseWithSecret(tokenString, s.previousSecret); prevErr == nil {
			return claims, nil
		}
	}

	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, ErrExpiredToken
	}
	return nil, ErrInvalidToken
}

// Subject validates a token and returns its subject. It implements the
// middleware.TokenValidator interface.
func (s *JWTService) Subject(tokenString string) (string, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

func (s *JWTService) parseWithSecret(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Only HS256 is accepted
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, ErrInvalidToken
		}
		return secret, nil
	}, jwt.WithLeeway(s.leeway))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
