// Package api provides HTTP API handlers for the tablescout API.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"

	"github.com/onnwee/tablescout/internal/middleware"
	"github.com/onnwee/tablescout/internal/place"
	"github.com/onnwee/tablescout/internal/ranking"
	"github.com/onnwee/tablescout/internal/tracing"
)

// maxRequestBytes caps request bodies. Candidate lists are small; anything
// bigger than this is abuse.
const maxRequestBytes = 1 << 20

// RankHandlers holds dependencies for the ranking-only endpoint, which scores
// caller-supplied candidates without touching the provider.
type RankHandlers struct {
	weights *ranking.Weights
}

// NewRankHandlers creates a new RankHandlers instance. A nil weights falls
// back to the canonical defaults.
func NewRankHandlers(weights *ranking.Weights) *RankHandlers {
	if weights == nil {
		weights = ranking.DefaultWeights()
	}
	return &RankHandlers{weights: weights}
}

// recommendRequest is the body for POST /v1/recommendations.
type recommendRequest struct {
	Candidates []place.Place `json:"candidates"`
	Profile    place.Profile `json:"profile"`
	Origin     *place.Point  `json:"origin,omitempty"`
	TopK       int           `json:"top_k,omitempty"`
}

// rankResponse is the shared response shape of the ranking endpoints.
type rankResponse struct {
	Query    string              `json:"query,omitempty"`
	Total    int                 `json:"total"`
	Returned int                 `json:"returned"`
	Items    []place.ScoredPlace `json:"items"`
}

// Recommend handles POST /v1/recommendations.
// It ranks the candidates in the request body against the profile and returns
// the top results with scores and short explanations.
func (h *RankHandlers) Recommend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	var req recommendRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "Invalid request body: "+err.Error())
		return
	}

	result, err := rankCandidates(r, req.Candidates, req.Profile, req.Origin, req.TopK, h.weights)
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

// rankCandidates runs the engine inside a span, defaulting topK.
func rankCandidates(r *http.Request, candidates []place.Place, prof place.Profile, origin *place.Point, topK int, w *ranking.Weights) (*ranking.Result, error) {
	if topK == 0 {
		topK = ranking.DefaultTopK
	}

	_, endSpan := tracing.StartSpan(r.Context(), "rank_candidates")
	result, err := ranking.Rank(candidates, prof, origin, topK, w)
	endSpan(err)
	if err != nil {
		return nil, err
	}

	roundScores(result.Items)
	return result, nil
}

// roundScores rounds scores to 4 decimals for presentation. Ordering was
// decided on full precision before this runs.
func roundScores(items []place.ScoredPlace) {
	for i := range items {
		items[i].Score = math.Round(items[i].Score*1e4) / 1e4
	}
}

// writeRankError maps engine errors onto the error envelope.
func writeRankError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ranking.ValidationError
	if errors.As(err, &verr) {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, verr.Message)
		return
	}

	slog.ErrorContext(r.Context(), "ranking failed", "error", err)
	ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
	WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to rank candidates")
}

// decodeJSON decodes a bounded JSON request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	dec := json.NewDecoder(r.Body)
	return dec.Decode(dst)
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode response", "error", err)
	}
}
