package ranking

import (
	"fmt"
	"math"
	"strings"

	"github.com/onnwee/tablescout/internal/geo"
	"github.com/onnwee/tablescout/internal/place"
)

// RatingPenalty is the multiplier applied when a candidate's known rating
// falls below the profile's minimum. It is a soft filter: the candidate sinks
// in the ordering but is never excluded. Candidates with unknown ratings are
// never penalized.
const RatingPenalty = 0.6

// Breakdown carries the per-signal values computed for one candidate. The
// explainer renders from these same values; it never recomputes a signal.
type Breakdown struct {
	Keyword  float64
	Price    float64
	Quality  float64
	Distance float64
	Open     float64

	// DistanceKm is the raw distance behind the Distance signal, kept for
	// the explanation string. Nil when it could not be computed.
	DistanceKm *float64
}

// ScoreCandidate computes the composite score and justification for one
// candidate. The profile is expected to be normalized (see place.Profile).
// Nil weights fall back to defaults. The computation is deterministic: the
// same inputs always produce the same score bit-for-bit.
func ScoreCandidate(p place.Place, prof place.Profile, origin *place.Point, w *Weights) (float64, string) {
	if w == nil {
		w = DefaultWeights()
	}

	b := Breakdown{
		Keyword: KeywordScore(p, prof.Keywords),
		Price:   PriceScore(place.LevelOf(p.PriceLevel), prof.PriceLevels, place.BudgetToLevels(prof.MaxBudget)),
		Quality: QualityScore(p.Rating, p.UserRatingCount),
		Open:    OpenScore(p.OpenNow, prof.RequireOpen),
	}
	b.DistanceKm = geo.DistanceKm(origin, p.Location)
	b.Distance = DistanceScore(b.DistanceKm, prof.MaxDistanceKm)

	sum := w.Keyword*b.Keyword +
		w.Price*b.Price +
		w.Quality*b.Quality +
		w.Distance*b.Distance +
		w.Open*b.Open

	penalty := 1.0
	if p.Rating != nil && *p.Rating < prof.MinRating {
		penalty = RatingPenalty
	}

	return penalty * sum, explain(p, b)
}

// explain renders the short "why" string from the breakdown the aggregation
// pass produced. Absent pieces are omitted rather than rendered as
// placeholders.
func explain(p place.Place, b Breakdown) string {
	var parts []string

	if symbol := place.SymbolOf(p.PriceLevel); symbol != place.UnknownPriceSymbol {
		parts = append(parts, symbol)
	}

	if p.Rating != nil {
		parts = append(parts, fmt.Sprintf("%.1f★ (%d reviews)", *p.Rating, p.UserRatingCount))
	}

	if b.DistanceKm != nil {
		km := *b.DistanceKm
		if km < 1 {
			parts = append(parts, fmt.Sprintf("%.0f m away", km*1000))
		} else {
			parts = append(parts, fmt.Sprintf("%.1f km away", km))
		}
	}

	if b.Keyword >= 0.5 {
		parts = append(parts, fmt.Sprintf("matches %d%% of your keywords", int(math.Round(b.Keyword*100))))
	}

	if p.OpenNow != nil && *p.OpenNow {
		parts = append(parts, "open now")
	}

	return strings.Join(parts, " · ")
}
