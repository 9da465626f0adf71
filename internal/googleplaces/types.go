// Package googleplaces is a minimal client for the Google Places API (New, v1)
// covering text and nearby search. Responses are normalized into the canonical
// place.Place shape; every field except the place ID may be absent.
package googleplaces

import "fmt"

// wire types mirror the subset of the v1 JSON payload the normalizer consumes.
// Optional provider fields are pointer-typed so absence survives decoding.

type searchTextRequest struct {
	TextQuery      string        `json:"textQuery"`
	MaxResultCount int           `json:"maxResultCount,omitempty"`
	LocationBias   *locationBias `json:"locationBias,omitempty"`
}

type searchNearbyRequest struct {
	MaxResultCount      int                  `json:"maxResultCount,omitempty"`
	IncludedTypes       []string             `json:"includedTypes,omitempty"`
	LocationRestriction *locationRestriction `json:"locationRestriction"`
}

type locationBias struct {
	Circle *circle `json:"circle,omitempty"`
}

type locationRestriction struct {
	Circle *circle `json:"circle,omitempty"`
}

type circle struct {
	Center latLng  `json:"center"`
	Radius float64 `json:"radius,omitempty"` // meters
}

type latLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type searchResponse struct {
	Places []wirePlace `json:"places"`
}

type wirePlace struct {
	ID                  string            `json:"id"`
	DisplayName         *localizedText    `json:"displayName,omitempty"`
	Rating              *float64          `json:"rating,omitempty"`
	UserRatingCount     *int              `json:"userRatingCount,omitempty"`
	PriceLevel          *string           `json:"priceLevel,omitempty"`
	Location            *latLng           `json:"location,omitempty"`
	CurrentOpeningHours *openingHours     `json:"currentOpeningHours,omitempty"`
	Types               []string          `json:"types,omitempty"`
	PrimaryType         *string           `json:"primaryType,omitempty"`
	EditorialSummary    *localizedText    `json:"editorialSummary,omitempty"`
	WebsiteURI          *string           `json:"websiteUri,omitempty"`
	NationalPhoneNumber *string           `json:"nationalPhoneNumber,omitempty"`
	FormattedAddress    *string           `json:"formattedAddress,omitempty"`
}

type localizedText struct {
	Text string `json:"text"`
}

type openingHours struct {
	OpenNow *bool `json:"openNow,omitempty"`
}

// apiErrorBody is the provider's error envelope.
type apiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// APIError reports a non-2xx provider response.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("places api error %d (%s): %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("places api error %d: %s", e.StatusCode, e.Message)
}
