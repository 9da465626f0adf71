// Package config provides configuration loading and validation for the API server.
// It uses koanf to merge environment variables with optional file overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration values for the API server.
type Config struct {
	// Server settings
	Port int    `koanf:"port"`
	Env  string `koanf:"env"`

	// Google Places API (New)
	GooglePlacesAPIKey  string `koanf:"google_places_api_key"`
	GooglePlacesBaseURL string `koanf:"google_places_base_url"`

	// Redis (optional; enables the search cache and distributed rate limiting)
	RedisURL string `koanf:"redis_url"`

	// Search cache
	SearchCacheTTLSeconds int `koanf:"search_cache_ttl_seconds"`

	// Ranking calibration file (optional JSON weight overrides)
	RankingCalibrationPath string `koanf:"ranking_calibration_path"`

	// JWT Authentication (optional; requests are anonymous when unset).
	// JWTSecretPrevious enables zero-downtime secret rotation: tokens signed
	// with the previous secret stay valid during the rotation window.
	JWTSecret         string `koanf:"jwt_secret"`
	JWTSecretPrevious string `koanf:"jwt_secret_previous"`

	// Rate limiting
	RateLimitRequestsPerWindow int `koanf:"rate_limit_requests_per_window"`
	RateLimitWindowSeconds     int `koanf:"rate_limit_window_seconds"`

	// CORS (optional; comma-separated origin allowlist, no wildcards).
	// CORS is disabled when empty.
	CORSAllowedOrigins string `koanf:"cors_allowed_origins"`
}

// Configuration validation errors.
var (
	ErrMissingGooglePlacesAPIKey = errors.New("GOOGLE_PLACES_API_KEY is required")
	ErrInvalidPort               = errors.New("PORT must be a valid integer")
)

// Default values for non-secret configuration.
const (
	DefaultPort                       = 8080
	DefaultEnv                        = "development"
	DefaultSearchCacheTTLSeconds      = 300
	DefaultRateLimitRequestsPerWindow = 60
	DefaultRateLimitWindowSeconds     = 60
)

// Load reads configuration from environment variables and an optional config file.
// Environment variables take precedence over file values.
// Returns the loaded config and a slice of validation errors (empty if valid).
// If a config file path is provided and the file cannot be loaded, an error is returned.
func Load(configFilePath string) (*Config, []error) {
	k := koanf.New(".")
	var loadErrs []error

	// Load from YAML file first if provided (lower precedence)
	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, []error{fmt.Errorf("failed to load config file %s: %w", configFilePath, err)}
		}
	}

	// Parse port from env, collecting error if invalid
	// Try TABLESCOUT_PORT first, then PORT for backward compatibility
	port, portErr := getEnvIntOrDefaultMulti([]string{"TABLESCOUT_PORT", "PORT"}, k.Int("port"), DefaultPort)
	if portErr != nil {
		loadErrs = append(loadErrs, portErr)
	}

	cacheTTL, cacheTTLErr := getEnvIntOrDefault("SEARCH_CACHE_TTL_SECONDS", k.Int("search_cache_ttl_seconds"), DefaultSearchCacheTTLSeconds)
	if cacheTTLErr != nil {
		loadErrs = append(loadErrs, cacheTTLErr)
	}

	rlRequests, rlRequestsErr := getEnvIntOrDefault("RATE_LIMIT_REQUESTS_PER_WINDOW", k.Int("rate_limit_requests_per_window"), DefaultRateLimitRequestsPerWindow)
	if rlRequestsErr != nil {
		loadErrs = append(loadErrs, rlRequestsErr)
	}

	rlWindow, rlWindowErr := getEnvIntOrDefault("RATE_LIMIT_WINDOW_SECONDS", k.Int("rate_limit_window_seconds"), DefaultRateLimitWindowSeconds)
	if rlWindowErr != nil {
		loadErrs = append(loadErrs, rlWindowErr)
	}

	// Build config struct, with env vars taking precedence over file values
	cfg := &Config{
		Port:                       port,
		Env:                        getEnvOrDefaultMulti([]string{"TABLESCOUT_ENV", "ENV", "GO_ENV"}, k.String("env"), DefaultEnv),
		GooglePlacesAPIKey:         getEnvOrKoanf("GOOGLE_PLACES_API_KEY", k, "google_places_api_key"),
		GooglePlacesBaseURL:        getEnvOrKoanf("GOOGLE_PLACES_BASE_URL", k, "google_places_base_url"),
		RedisURL:                   getEnvOrKoanf("REDIS_URL", k, "redis_url"),
		SearchCacheTTLSeconds:      cacheTTL,
		RankingCalibrationPath:     getEnvOrKoanf("RANKING_CALIBRATION_PATH", k, "ranking_calibration_path"),
		JWTSecret:                  getEnvOrKoanf("JWT_SECRET", k, "jwt_secret"),
		JWTSecretPrevious:          getEnvOrKoanf("JWT_SECRET_PREVIOUS", k, "jwt_secret_previous"),
		RateLimitRequestsPerWindow: rlRequests,
		RateLimitWindowSeconds:     rlWindow,
		CORSAllowedOrigins:         getEnvOrKoanf("CORS_ALLOWED_ORIGINS", k, "cors_allowed_origins"),
	}

	// Validate and collect errors
	errs := cfg.Validate()
	errs = append(loadErrs, errs...)

	return cfg, errs
}

// getEnvOrKoanf returns the environment variable value if set, otherwise the koanf value.
func getEnvOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	return k.String(koanfKey)
}

// getEnvOrDefaultMulti tries multiple environment variable keys in order.
// Returns the first non-empty value found, otherwise the koanf value, or default.
func getEnvOrDefaultMulti(envKeys []string, koanfVal string, defaultVal string) string {
	for _, key := range envKeys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvIntOrDefault returns the environment variable as int if set, otherwise the koanf value, or default.
// Returns an error if the environment variable is set but cannot be parsed as an integer.
func getEnvIntOrDefault(envKey string, koanfVal int, defaultVal int) (int, error) {
	if val := os.Getenv(envKey); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid integer: %w", envKey, err)
		}
		return i, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// getEnvIntOrDefaultMulti tries multiple environment variable keys in order.
// Returns the first valid integer value found, otherwise the koanf value, or default.
// Returns an error if any environment variable is set but cannot be parsed as an integer.
func getEnvIntOrDefaultMulti(envKeys []string, koanfVal int, defaultVal int) (int, error) {
	for _, key := range envKeys {
		if val := os.Getenv(key); val != "" {
			i, err := strconv.Atoi(val)
			if err != nil {
				return 0, fmt.Errorf("%s must be a valid integer: %w", key, ErrInvalidPort)
			}
			return i, nil
		}
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// Validate checks that all required configuration values are present.
// Returns a slice of validation errors (empty if valid).
func (c *Config) Validate() []error {
	var errs []error

	if c.GooglePlacesAPIKey == "" {
		errs = append(errs, ErrMissingGooglePlacesAPIKey)
	}

	return errs
}

// LogSummary returns a summary of the configuration suitable for logging.
// All secrets are masked to prevent accidental exposure.
func (c *Config) LogSummary() map[string]string {
	return map[string]string{
		"port":                           fmt.Sprintf("%d", c.Port),
		"env":                            c.Env,
		"google_places_api_key":          maskSecret(c.GooglePlacesAPIKey),
		"google_places_base_url":         c.GooglePlacesBaseURL,
		"redis_url":                      maskRedisURL(c.RedisURL),
		"search_cache_ttl_seconds":       fmt.Sprintf("%d", c.SearchCacheTTLSeconds),
		"ranking_calibration_path":       c.RankingCalibrationPath,
		"jwt_secret":                     maskSecret(c.JWTSecret),
		"jwt_secret_previous":            maskSecret(c.JWTSecretPrevious),
		"rate_limit_requests_per_window": fmt.Sprintf("%d", c.RateLimitRequestsPerWindow),
		"rate_limit_window_seconds":      fmt.Sprintf("%d", c.RateLimitWindowSeconds),
		"cors_allowed_origins":           c.CORSAllowedOrigins,
	}
}

// GetJWTSecrets returns the current and previous JWT secrets. The previous
// secret is empty outside a rotation window.
func (c *Config) GetJWTSecrets() (current, previous string) {
	return c.JWTSecret, c.JWTSecretPrevious
}

// GetCORSOrigins splits the comma-separated origin allowlist into a slice,
// dropping empty entries. Returns nil when CORS is not configured.
func (c *Config) GetCORSOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}
	var origins []string
	for _, origin := range strings.Split(c.CORSAllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// maskSecret masks a secret value, showing only the first 4 characters followed by ****
// If the secret is shorter than 8 characters, it's fully masked.
func maskSecret(s string) string {
	if s == "" {
		return "<not set>"
	}
	if len(s) < 8 {
		return "****"
	}
	return s[:4] + "****"
}

// maskRedisURL masks the password in a redis:// URL.
func maskRedisURL(s string) string {
	if s == "" {
		return "<not set>"
	}

	schemeEnd := strings.Index(s, "://")
	if schemeEnd == -1 {
		return maskSecret(s)
	}

	rest := s[schemeEnd+3:]
	atIndex := strings.Index(rest, "@")
	if atIndex == -1 {
		return s // No credentials in URL
	}

	colonIndex := strings.Index(rest[:atIndex], ":")
	if colonIndex == -1 {
		return s // No password (only username)
	}

	scheme := s[:schemeEnd+3]
	user := rest[:colonIndex]
	hostAndPath := rest[atIndex:]

	return scheme + user + ":****" + hostAndPath
}
