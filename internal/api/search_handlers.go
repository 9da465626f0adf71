// Package api provides HTTP API handlers for the tablescout API.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/onnwee/tablescout/internal/cache"
	"github.com/onnwee/tablescout/internal/googleplaces"
	"github.com/onnwee/tablescout/internal/middleware"
	"github.com/onnwee/tablescout/internal/place"
	"github.com/onnwee/tablescout/internal/ranking"
	"github.com/onnwee/tablescout/internal/tracing"
)

// PlacesSearcher is the provider surface the search handlers depend on.
// Implemented by googleplaces.Client.
type PlacesSearcher interface {
	SearchText(ctx context.Context, q googleplaces.TextQuery) ([]place.Place, error)
	SearchNearby(ctx context.Context, q googleplaces.NearbyQuery) ([]place.Place, error)
}

// SearchHandlers holds dependencies for the provider-backed search endpoints.
// The cache and metrics may be nil; both degrade gracefully.
type SearchHandlers struct {
	places  PlacesSearcher
	cache   *cache.SearchCache
	weights *ranking.Weights
	metrics *middleware.Metrics
}

// NewSearchHandlers creates a new SearchHandlers instance.
func NewSearchHandlers(places PlacesSearcher, searchCache *cache.SearchCache, weights *ranking.Weights, metrics *middleware.Metrics) *SearchHandlers {
	if weights == nil {
		weights = ranking.DefaultWeights()
	}
	return &SearchHandlers{
		places:  places,
		cache:   searchCache,
		weights: weights,
		metrics: metrics,
	}
}

// searchRequest is the body for POST /v1/search.
type searchRequest struct {
	Query      string        `json:"query"`
	Origin     *place.Point  `json:"origin,omitempty"`
	RadiusM    float64       `json:"radius_m,omitempty"`
	MaxResults int           `json:"max_results,omitempty"`
	Profile    place.Profile `json:"profile"`
	TopK       int           `json:"top_k,omitempty"`
}

// nearbyRequest is the body for POST /v1/nearby.
type nearbyRequest struct {
	Origin        *place.Point  `json:"origin"`
	RadiusM       float64       `json:"radius_m,omitempty"`
	IncludedTypes []string      `json:"included_types,omitempty"`
	Profile       place.Profile `json:"profile"`
	TopK          int           `json:"top_k,omitempty"`
}

// Search handles POST /v1/search.
// It runs a provider text search (through the read-through cache), normalizes
// the results, and ranks them against the caller's profile.
func (h *SearchHandlers) Search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	var req searchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "Invalid request body: "+err.Error())
		return
	}

	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "query is required")
		return
	}
	if req.MaxResults < 0 || req.MaxResults > googleplaces.MaxResults {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation,
			fmt.Sprintf("max_results must be between 0 and %d (0 requests the full page of %d)", googleplaces.MaxResults, googleplaces.MaxResults))
		return
	}

	key := cache.Key("text", req.Query, req.Origin, req.MaxResults)
	candidates, err := h.fetch(r.Context(), key, "searchText", func(ctx context.Context) ([]place.Place, error) {
		return h.places.SearchText(ctx, googleplaces.TextQuery{
			Query:      req.Query,
			Bias:       req.Origin,
			RadiusM:    req.RadiusM,
			MaxResults: req.MaxResults,
		})
	})
	if err != nil {
		h.writeProviderError(w, r, err)
		return
	}

	result, err := rankCandidates(r, candidates, req.Profile, req.Origin, req.TopK, h.weights)
	if err != nil {
		writeRankError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, rankResponse{
		Query:    req.Query,
		Total:    result.Total,
		Returned: result.Returned,
		Items:    result.Items,
	})
}

// Nearby handles POST /v1/nearby.
// Like Search but uses the provider's nearby endpoint, so the origin is
// required and doubles as the ranking origin.
func (h *SearchHandlers) Nearby(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	var req nearbyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "Invalid request body: "+err.Error())
		return
	}

	if req.Origin == nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "origin is required")
		return
	}

	// Radius and types participate in the cache key; two nearby searches with
	// different parameters must not share entries.
	descriptor := fmt.Sprintf("%s|%.0f", strings.Join(req.IncludedTypes, ","), req.RadiusM)
	key := cache.Key("nearby", descriptor, req.Origin, 0)
	candidates, err := h.fetch(r.Context(), key, "searchNearby", func(ctx context.Context) ([]place.Place, error) {
		return h.places.SearchNearby(ctx, googleplaces.NearbyQuery{
			Center:        *req.Origin,
			RadiusM:       req.RadiusM,
			IncludedTypes: req.IncludedTypes,
		})
	})
	if err != nil {
		h.writeProviderError(w, r, err)
		return
	}

	result, err := rankCandidates(r, candidates, req.Profile, req.Origin, req.TopK, h.weights)
	if err != nil {
		writeRankError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, rankResponse{
		Total:    result.Total,
		Returned: result.Returned,
		Items:    result.Items,
	})
}

// fetch reads through the cache: a hit skips the provider entirely, a miss
// calls it inside a client span and stores the result.
func (h *SearchHandlers) fetch(ctx context.Context, key, operation string, call func(context.Context) ([]place.Place, error)) ([]place.Place, error) {
	if cached, ok := h.cache.Get(ctx, key); ok {
		if h.metrics != nil {
			h.metrics.IncSearchCacheHits()
		}
		return cached, nil
	}
	if h.metrics != nil {
		h.metrics.IncSearchCacheMisses()
	}

	spanCtx, endSpan := tracing.StartProviderSpan(ctx, operation)
	candidates, err := call(spanCtx)
	endSpan(err)

	if h.metrics != nil {
		h.metrics.IncProviderRequests(operation, providerOutcome(err))
	}
	if err != nil {
		return nil, err
	}

	h.cache.Set(ctx, key, candidates)
	return candidates, nil
}

func providerOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, googleplaces.ErrRateLimited):
		return "rate_limited"
	default:
		return "error"
	}
}

// writeProviderError maps provider failures onto the error envelope. Quota
// exhaustion upstream surfaces as 503 so callers know to back off; everything
// else is a 502.
func (h *SearchHandlers) writeProviderError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, googleplaces.ErrRateLimited) {
		slog.WarnContext(r.Context(), "places provider rate limited", "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeUpstreamRateLimited)
		WriteError(w, ctx, http.StatusServiceUnavailable, ErrCodeUpstreamRateLimited,
			"The places provider is rate limiting requests; try again later")
		return
	}

	slog.ErrorContext(r.Context(), "places provider call failed", "error", err)
	ctx := middleware.SetErrorCode(r.Context(), ErrCodeUpstreamError)
	WriteError(w, ctx, http.StatusBadGateway, ErrCodeUpstreamError, "Failed to fetch places")
}
