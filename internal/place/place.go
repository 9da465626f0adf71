// Package place defines the canonical place and preference models shared by the
// ranking engine, the provider normalizer, and the HTTP API.
package place

// Point represents a geographic coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Budget represents a caller-supplied spending cap for one meal.
// Currency is recorded but never converted; the tier table in price.go reads
// only the amount.
type Budget struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency,omitempty"`
}

// Place is a normalized restaurant candidate. PlaceID is the only field required
// for identity; every other field may be absent upstream and is therefore
// pointer-typed or zero-valued. Consumers must tolerate any combination of
// missing fields.
type Place struct {
	PlaceID         string   `json:"placeId"`
	Name            *string  `json:"name,omitempty"`
	Rating          *float64 `json:"rating,omitempty"`
	UserRatingCount int      `json:"userRatingCount"`
	PriceLevel      *string  `json:"priceLevel,omitempty"`
	Location        *Point   `json:"location,omitempty"`
	OpenNow         *bool    `json:"openNow,omitempty"`
	Types           []string `json:"types,omitempty"`
	PrimaryType     *string  `json:"primaryType,omitempty"`
	Summary         *string  `json:"summary,omitempty"`
	Website         *string  `json:"website,omitempty"`
	Phone           *string  `json:"phone,omitempty"`
	Address         *string  `json:"address,omitempty"`
}

// Profile holds the caller's ranking preferences. The zero value means
// "no preference" for every criterion except MaxDistanceKm, which callers
// should default via Normalize.
type Profile struct {
	Keywords      []string `json:"keywords,omitempty"`
	PriceLevels   []int    `json:"priceLevels,omitempty"`
	MinRating     float64  `json:"minRating,omitempty"`
	RequireOpen   bool     `json:"requireOpen,omitempty"`
	MaxDistanceKm float64  `json:"maxDistanceKm,omitempty"`
	MaxBudget     *Budget  `json:"maxBudget,omitempty"`
}

// DefaultMaxDistanceKm is the distance horizon used when the caller does not
// supply one.
const DefaultMaxDistanceKm = 3.0

// Normalize returns a copy of the profile with defaults applied. The receiver
// is not modified.
func (p Profile) Normalize() Profile {
	if p.MaxDistanceKm <= 0 {
		p.MaxDistanceKm = DefaultMaxDistanceKm
	}
	if p.MinRating < 0 {
		p.MinRating = 0
	}
	return p
}

// ScoredPlace is a Place annotated with its composite score and a short
// human-readable justification. Instances are built fresh per ranking call and
// never mutated afterwards.
type ScoredPlace struct {
	Place
	Score float64 `json:"score"`
	Why   string  `json:"why"`
}
