package ranking

import (
	"math"
	"strings"

	"github.com/onnwee/tablescout/internal/place"
)

// Neutral defaults returned when a signal's required data is absent. Chosen to
// avoid unduly penalizing incomplete records: a place with no opening hours or
// no location should rank lower than a confirmed match, not disappear.
const (
	// NeutralPriceScore is returned when the candidate's price level is
	// unknown but the caller expressed a price constraint.
	NeutralPriceScore = 0.5

	// NeutralOpenScore is returned when openness is required but the
	// candidate's open-now status is unknown.
	NeutralOpenScore = 0.6

	// NeutralDistanceScore is returned when the distance to the candidate
	// cannot be computed (missing origin or candidate location).
	NeutralDistanceScore = 0.6

	// NearPlateauKm is the distance under which a candidate counts as
	// "very near" and receives the full distance score.
	NearPlateauKm = 0.25

	// FarFloorScore is the minimum distance score. Distant places stay
	// rankable instead of dropping to zero.
	FarFloorScore = 0.1
)

// KeywordScore measures how many of the profile's keywords appear in the
// candidate's textual fields (name, types, summary, primary type), matched
// case-insensitively as substrings. Partial credit: the score is the fraction
// of keywords that hit. Returns 0 when no keywords were supplied.
func KeywordScore(p place.Place, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}

	var bag strings.Builder
	if p.Name != nil {
		bag.WriteString(*p.Name)
		bag.WriteByte(' ')
	}
	for _, t := range p.Types {
		bag.WriteString(t)
		bag.WriteByte(' ')
	}
	if p.Summary != nil {
		bag.WriteString(*p.Summary)
		bag.WriteByte(' ')
	}
	if p.PrimaryType != nil {
		bag.WriteString(*p.PrimaryType)
	}
	haystack := strings.ToLower(bag.String())

	hits := 0
	for _, kw := range keywords {
		if strings.Contains(haystack, strings.ToLower(kw)) {
			hits++
		}
	}

	return float64(hits) / float64(len(keywords))
}

// PriceScore measures how well the candidate's price level fits the caller's
// constraints. The effective allowed set is the intersection of the explicit
// price-level preference (when non-empty) and the budget-derived levels (when
// present). With no constraints the score is 1. An empty intersection also
// scores 1 for every candidate: contradictory constraints fall back to
// "no constraint" rather than excluding everything. An unknown candidate level
// under an active constraint scores the neutral 0.5.
func PriceScore(level *int, preferred []int, budgetLevels []int) float64 {
	effective := effectivePriceSet(preferred, budgetLevels)
	if effective == nil {
		return 1
	}

	if level == nil {
		return NeutralPriceScore
	}
	for _, l := range effective {
		if l == *level {
			return 1
		}
	}
	return 0
}

// effectivePriceSet intersects the explicit preference with the budget levels.
// Returns nil when the result imposes no constraint, either because neither
// input was supplied or because their intersection is empty.
func effectivePriceSet(preferred []int, budgetLevels []int) []int {
	switch {
	case len(preferred) == 0 && budgetLevels == nil:
		return nil
	case len(preferred) == 0:
		return budgetLevels
	case budgetLevels == nil:
		return preferred
	}

	var intersection []int
	for _, p := range preferred {
		for _, b := range budgetLevels {
			if p == b {
				intersection = append(intersection, p)
				break
			}
		}
	}
	if len(intersection) == 0 {
		// Contradictory constraints leave nothing; treat as unconstrained
		// so the caller still gets results.
		return nil
	}
	return intersection
}

// QualityScore combines the candidate's rating with a review-count confidence
// factor so a 5-star place with one review does not outrank a 4.5-star place
// with thousands. Confidence reaches 1 at roughly 1000 reviews. Returns 0 when
// the rating is absent or zero.
func QualityScore(rating *float64, reviewCount int) float64 {
	if rating == nil || *rating == 0 {
		return 0
	}

	r := *rating
	if r < 0 {
		r = 0
	}
	if r > 5 {
		r = 5
	}

	confidence := math.Log10(float64(reviewCount)+1) / 3
	if confidence > 1 {
		confidence = 1
	}

	return (r / 5) * confidence
}

// OpenScore scores the candidate's open-now status. Without RequireOpen there
// is no penalty. With it, confirmed-open scores 1, confirmed-closed scores 0,
// and unknown status takes a mild penalty instead of exclusion because the
// place may well be open.
func OpenScore(openNow *bool, requireOpen bool) float64 {
	if !requireOpen {
		return 1
	}
	if openNow == nil {
		return NeutralOpenScore
	}
	if *openNow {
		return 1
	}
	return 0
}

// DistanceScore maps a distance to [FarFloorScore, 1]: a flat plateau under
// NearPlateauKm, linear decay up to maxKm, and a floor beyond it so distant
// places remain rankable. Unknown distances score the neutral default.
func DistanceScore(km *float64, maxKm float64) float64 {
	if km == nil {
		return NeutralDistanceScore
	}
	if *km <= NearPlateauKm {
		return 1
	}
	if *km >= maxKm {
		return FarFloorScore
	}
	return 1 - 0.9*(*km/maxKm)
}
