// Package main is the entry point for the API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/onnwee/tablescout/internal/api"
	"github.com/onnwee/tablescout/internal/auth"
	"github.com/onnwee/tablescout/internal/cache"
	"github.com/onnwee/tablescout/internal/config"
	"github.com/onnwee/tablescout/internal/googleplaces"
	"github.com/onnwee/tablescout/internal/health"
	"github.com/onnwee/tablescout/internal/middleware"
	"github.com/onnwee/tablescout/internal/ranking"
	"github.com/onnwee/tablescout/internal/tracing"
)

const serviceName = "tablescout-api"

func main() {
	help := flag.Bool("help", false, "display help message")
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	flag.Parse()

	if *help {
		fmt.Println("Tablescout API Server")
		fmt.Println()
		fmt.Println("Usage: api [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	cfg, errs := config.Load(*configPath)

	logger := middleware.NewLogger(cfg.Env)
	slog.SetDefault(logger)

	if len(errs) > 0 {
		for _, err := range errs {
			logger.Error("configuration error", "error", err)
		}
		os.Exit(1)
	}
	logger.Info("configuration loaded", "config", cfg.LogSummary())

	// Tracing is opt-in: enabled when an OTLP endpoint is configured.
	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	exporterType := "otlp-http"
	if os.Getenv("OTEL_EXPORTER_OTLP_PROTOCOL") == "grpc" {
		exporterType = "otlp-grpc"
	}
	provider, err := tracing.NewProvider(tracing.Config{
		ServiceName:  serviceName,
		Enabled:      otlpEndpoint != "",
		Environment:  cfg.Env,
		ExporterType: exporterType,
		OTLPEndpoint: otlpEndpoint,
		SamplingRate: 1.0,
		InsecureMode: cfg.Env != "production",
	})
	if err != nil {
		logger.Warn("tracing setup failed, continuing without tracing", "error", err)
	} else if provider.IsEnabled() {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := provider.Shutdown(ctx); err != nil {
				logger.Error("tracing shutdown failed", "error", err)
			}
		}()
	}

	// Redis is optional. Without it the search cache degrades to pass-through
	// and rate limiting falls back to per-process in-memory windows.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
	}

	registry := prometheus.NewRegistry()
	metrics := middleware.NewMetrics()
	if err := metrics.Register(registry); err != nil {
		logger.Error("failed to register metrics", "error", err)
		os.Exit(1)
	}

	var rateLimitStore middleware.RateLimitStore
	if redisClient != nil {
		rateLimitStore = middleware.NewRedisRateLimitStore(redisClient).WithMetrics(metrics)
	} else {
		inMem := middleware.NewInMemoryRateLimitStore()
		go func() {
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for range ticker.C {
				inMem.Cleanup()
			}
		}()
		rateLimitStore = inMem
	}

	var searchCache *cache.SearchCache
	var cacheChecker api.HealthChecker
	if redisClient != nil {
		ttl := time.Duration(cfg.SearchCacheTTLSeconds) * time.Second
		searchCache = cache.New(redisClient, ttl, logger)
		cacheChecker = health.NewRedisChecker(redisClient)
	}

	weights, err := ranking.LoadCalibration(cfg.RankingCalibrationPath)
	if err != nil {
		logger.Warn("using default ranking weights", "error", err)
	}

	places := googleplaces.NewClient(googleplaces.Config{
		APIKey:  cfg.GooglePlacesAPIKey,
		BaseURL: cfg.GooglePlacesBaseURL,
	})

	// Token validation is optional; without a secret all requests are anonymous.
	// A previous secret keeps old tokens valid through a rotation window.
	var validator middleware.TokenValidator
	if current, previous := cfg.GetJWTSecrets(); current != "" {
		if previous != "" {
			validator = auth.NewJWTServiceWithRotation(current, previous)
		} else {
			validator = auth.NewJWTService(current)
		}
	}

	globalLimit := middleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimitRequestsPerWindow,
		WindowDuration:    time.Duration(cfg.RateLimitWindowSeconds) * time.Second,
	}
	if err := globalLimit.Validate(); err != nil {
		logger.Warn("invalid rate limit config, using defaults", "error", err)
		globalLimit = middleware.DefaultGlobalLimit()
	}

	searchHandlers := api.NewSearchHandlers(places, searchCache, weights, metrics)
	rankHandlers := api.NewRankHandlers(weights)
	healthHandlers := api.NewHealthHandlers(api.HealthHandlersConfig{
		CacheChecker:   cacheChecker,
		MetricsEnabled: true,
	})

	// The search endpoints fan out to the paid provider API, so they carry a
	// tighter per-user limit on top of the global per-IP one.
	searchLimiter := middleware.RateLimiter(rateLimitStore, middleware.DefaultSearchLimit(), middleware.UserKeyFunc())

	mux := http.NewServeMux()
	mux.HandleFunc("/", rootHandler)
	mux.HandleFunc("/health", healthHandlers.Health)
	mux.HandleFunc("/ready", healthHandlers.Ready)
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.Handle("/v1/search", searchLimiter(http.HandlerFunc(searchHandlers.Search)))
	mux.Handle("/v1/nearby", searchLimiter(http.HandlerFunc(searchHandlers.Nearby)))
	mux.HandleFunc("/v1/recommendations", rankHandlers.Recommend)

	// Apply middleware: CORS -> RequestID -> Tracing -> Authenticate ->
	// Logging -> HTTPMetrics -> RateLimiter
	handler := middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:   cfg.GetCORSOrigins(),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           600,
	})(middleware.RequestID(
		middleware.Tracing(serviceName)(
			middleware.Authenticate(validator)(
				middleware.Logging(logger)(
					middleware.HTTPMetrics(metrics)(
						middleware.RateLimiter(rateLimitStore, globalLimit, middleware.IPKeyFunc())(mux)))))))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// rootHandler serves the service banner at / and a structured 404 everywhere
// no other route matched.
func rootHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		ctx := middleware.SetErrorCode(r.Context(), api.ErrCodeNotFound)
		api.WriteError(w, ctx, http.StatusNotFound, api.ErrCodeNotFound, "The requested resource was not found")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(`{"service":"tablescout-api","version":"0.1.0"}`)); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}
