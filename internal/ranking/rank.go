package ranking

import (
	"fmt"
	"sort"

	"github.com/onnwee/tablescout/internal/place"
)

// DefaultTopK is the number of results returned when the caller does not ask
// for a specific count.
const DefaultTopK = 10

// ValidationError reports invalid ranking input. It maps to a 400 response at
// the API layer; nothing is scored when validation fails.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Result is the outcome of one ranking call. Total counts all candidates
// considered; Returned counts the items kept after top-K truncation.
type Result struct {
	Total    int                 `json:"total"`
	Returned int                 `json:"returned"`
	Items    []place.ScoredPlace `json:"items"`
}

// Rank scores every candidate against the profile, sorts by score descending
// and truncates to topK. Candidates are copied, never mutated. The sort is
// stable: candidates with equal scores retain their input order.
//
// Returns *ValidationError when topK is not positive or the origin is present
// but out of coordinate range. Once validated, the call cannot partially fail:
// every signal is total over arbitrary candidate data.
func Rank(candidates []place.Place, prof place.Profile, origin *place.Point, topK int, w *Weights) (*Result, error) {
	if topK <= 0 {
		return nil, &ValidationError{Message: fmt.Sprintf("topK must be a positive integer, got %d", topK)}
	}
	if err := validateOrigin(origin); err != nil {
		return nil, err
	}

	prof = prof.Normalize()

	items := make([]place.ScoredPlace, 0, len(candidates))
	for _, c := range candidates {
		score, why := ScoreCandidate(c, prof, origin, w)
		items = append(items, place.ScoredPlace{Place: c, Score: score, Why: why})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})

	if len(items) > topK {
		items = items[:topK]
	}

	return &Result{
		Total:    len(candidates),
		Returned: len(items),
		Items:    items,
	}, nil
}

// validateOrigin rejects coordinates outside the valid lat/lng range. A nil
// origin is valid; the distance signal then falls back to its neutral default.
func validateOrigin(origin *place.Point) error {
	if origin == nil {
		return nil
	}
	if origin.Lat < -90 || origin.Lat > 90 {
		return &ValidationError{Message: fmt.Sprintf("origin latitude must be between -90 and 90, got %f", origin.Lat)}
	}
	if origin.Lng < -180 || origin.Lng > 180 {
		return &ValidationError{Message: fmt.Sprintf("origin longitude must be between -180 and 180, got %f", origin.Lng)}
	}
	return nil
}
