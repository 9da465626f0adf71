package ranking

import (
	"math"
	"testing"

	"github.com/onnwee/tablescout/internal/place"
)

const epsilon = 1e-9

// TestKeywordScore tests partial-credit keyword matching.
func TestKeywordScore(t *testing.T) {
	tests := []struct {
		name     string
		place    place.Place
		keywords []string
		expected float64
	}{
		{
			name:     "no keywords scores zero",
			place:    place.Place{Name: strPtr("Taco Town")},
			keywords: nil,
			expected: 0,
		},
		{
			name:     "half the keywords hit",
			place:    place.Place{Name: strPtr("Tacos El Loco"), Types: []string{"mexican_restaurant"}},
			keywords: []string{"tacos", "vegan"},
			expected: 0.5,
		},
		{
			name:     "all keywords hit",
			place:    place.Place{Name: strPtr("Vegan Tacos & More")},
			keywords: []string{"tacos", "vegan"},
			expected: 1,
		},
		{
			name:     "match is case-insensitive",
			place:    place.Place{Name: strPtr("RAMEN HOUSE")},
			keywords: []string{"Ramen"},
			expected: 1,
		},
		{
			name: "summary and primary type are searched",
			place: place.Place{
				Summary:     strPtr("Cozy spot for hand-pulled noodles"),
				PrimaryType: strPtr("chinese_restaurant"),
			},
			keywords: []string{"noodles", "chinese"},
			expected: 1,
		},
		{
			name:     "types are searched",
			place:    place.Place{Types: []string{"sushi_restaurant", "japanese_restaurant"}},
			keywords: []string{"sushi"},
			expected: 1,
		},
		{
			name:     "no hits on empty place",
			place:    place.Place{PlaceID: "x"},
			keywords: []string{"pizza"},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := KeywordScore(tt.place, tt.keywords)
			if math.Abs(result-tt.expected) > epsilon {
				t.Errorf("expected %f, got %f", tt.expected, result)
			}
		})
	}
}

// TestPriceScore tests the effective-set logic including the empty
// intersection fallback.
func TestPriceScore(t *testing.T) {
	tests := []struct {
		name         string
		level        *int
		preferred    []int
		budgetLevels []int
		expected     float64
	}{
		{
			name:     "no constraints scores one",
			level:    intPtr(3),
			expected: 1,
		},
		{
			name:      "level in preferred set",
			level:     intPtr(2),
			preferred: []int{1, 2},
			expected:  1,
		},
		{
			name:      "level outside preferred set",
			level:     intPtr(4),
			preferred: []int{1, 2},
			expected:  0,
		},
		{
			name:         "level in budget set",
			level:        intPtr(1),
			budgetLevels: []int{1, 2},
			expected:     1,
		},
		{
			name:         "level in intersection",
			level:        intPtr(2),
			preferred:    []int{2, 3},
			budgetLevels: []int{1, 2},
			expected:     1,
		},
		{
			name:         "level outside intersection",
			level:        intPtr(3),
			preferred:    []int{2, 3},
			budgetLevels: []int{1, 2},
			expected:     0,
		},
		{
			name:         "empty intersection falls back to no constraint",
			level:        intPtr(4),
			preferred:    []int{0, 1},
			budgetLevels: []int{3, 4},
			expected:     1,
		},
		{
			name:      "unknown level under constraint is neutral",
			level:     nil,
			preferred: []int{1, 2},
			expected:  NeutralPriceScore,
		},
		{
			name:     "unknown level without constraint scores one",
			level:    nil,
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := PriceScore(tt.level, tt.preferred, tt.budgetLevels)
			if math.Abs(result-tt.expected) > epsilon {
				t.Errorf("expected %f, got %f", tt.expected, result)
			}
		})
	}
}

// TestQualityScore tests rating/review-count blending.
func TestQualityScore(t *testing.T) {
	tests := []struct {
		name        string
		rating      *float64
		reviewCount int
		expected    float64
	}{
		{
			name:     "absent rating scores zero",
			rating:   nil,
			expected: 0,
		},
		{
			name:        "zero rating scores zero",
			rating:      floatPtr(0),
			reviewCount: 500,
			expected:    0,
		},
		{
			name:        "full confidence at 999 reviews",
			rating:      floatPtr(4.0),
			reviewCount: 999,
			expected:    0.8, // (4/5) * log10(1000)/3 = 0.8 * 1
		},
		{
			name:        "low confidence dampens a perfect rating",
			rating:      floatPtr(5.0),
			reviewCount: 9,
			expected:    1.0 / 3.0, // 1.0 * log10(10)/3
		},
		{
			name:        "confidence caps at one",
			rating:      floatPtr(5.0),
			reviewCount: 1_000_000,
			expected:    1,
		},
		{
			name:        "out-of-range rating is clamped",
			rating:      floatPtr(7.5),
			reviewCount: 999,
			expected:    1, // clamped to 5, full confidence
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := QualityScore(tt.rating, tt.reviewCount)
			if math.Abs(result-tt.expected) > 1e-6 {
				t.Errorf("expected %f, got %f", tt.expected, result)
			}
		})
	}
}

// TestQualityScoreOrdering verifies the design rationale: a five-star place
// with one review must not outrank a well-reviewed 4.5-star place.
func TestQualityScoreOrdering(t *testing.T) {
	oneReview := QualityScore(floatPtr(5.0), 1)
	thousands := QualityScore(floatPtr(4.5), 5000)
	if oneReview >= thousands {
		t.Errorf("5.0★/1 review (%f) should score below 4.5★/5000 reviews (%f)", oneReview, thousands)
	}
}

// TestOpenScore tests the three-valued openness signal.
func TestOpenScore(t *testing.T) {
	tests := []struct {
		name        string
		openNow     *bool
		requireOpen bool
		expected    float64
	}{
		{name: "not required ignores closed", openNow: boolPtr(false), requireOpen: false, expected: 1},
		{name: "not required ignores unknown", openNow: nil, requireOpen: false, expected: 1},
		{name: "required and open", openNow: boolPtr(true), requireOpen: true, expected: 1},
		{name: "required and closed", openNow: boolPtr(false), requireOpen: true, expected: 0},
		{name: "required and unknown takes mild penalty", openNow: nil, requireOpen: true, expected: NeutralOpenScore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := OpenScore(tt.openNow, tt.requireOpen)
			if math.Abs(result-tt.expected) > epsilon {
				t.Errorf("expected %f, got %f", tt.expected, result)
			}
		})
	}
}

// TestDistanceScore tests the plateau, decay and floor regions.
func TestDistanceScore(t *testing.T) {
	tests := []struct {
		name     string
		km       *float64
		maxKm    float64
		expected float64
	}{
		{name: "unknown distance is neutral", km: nil, maxKm: 3, expected: NeutralDistanceScore},
		{name: "zero distance", km: floatPtr(0), maxKm: 3, expected: 1},
		{name: "inside near plateau", km: floatPtr(0.2), maxKm: 3, expected: 1},
		{name: "plateau boundary", km: floatPtr(0.25), maxKm: 3, expected: 1},
		{name: "linear decay at 1km of 3", km: floatPtr(1), maxKm: 3, expected: 1 - 0.9/3},
		{name: "at the horizon", km: floatPtr(3), maxKm: 3, expected: FarFloorScore},
		{name: "beyond the horizon", km: floatPtr(50), maxKm: 3, expected: FarFloorScore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DistanceScore(tt.km, tt.maxKm)
			if math.Abs(result-tt.expected) > epsilon {
				t.Errorf("expected %f, got %f", tt.expected, result)
			}
		})
	}
}

// TestDistanceScoreMonotonic verifies increasing distance never increases the
// score.
func TestDistanceScoreMonotonic(t *testing.T) {
	const maxKm = 5.0
	prev := math.Inf(1)
	for km := 0.0; km <= 8.0; km += 0.1 {
		d := km
		score := DistanceScore(&d, maxKm)
		if score > prev+epsilon {
			t.Fatalf("score increased from %f to %f at km=%f", prev, score, km)
		}
		prev = score
	}
}

func strPtr(s string) *string     { return &s }
func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool        { return &b }
