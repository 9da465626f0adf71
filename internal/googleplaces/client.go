package googleplaces

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/onnwee/tablescout/internal/place"
)

// DefaultBaseURL is the production Places API (New) endpoint.
const DefaultBaseURL = "https://places.googleapis.com"

// fieldMask lists exactly the fields the normalizer consumes. Requesting a
// narrow mask keeps per-call billing in the cheaper SKUs.
const fieldMask = "places.id,places.displayName,places.rating,places.userRatingCount," +
	"places.priceLevel,places.location,places.currentOpeningHours.openNow,places.types," +
	"places.primaryType,places.editorialSummary,places.websiteUri,places.nationalPhoneNumber," +
	"places.formattedAddress"

// MaxResults is the provider's practical cap per search call.
const MaxResults = 20

const (
	defaultTimeout   = 10 * time.Second
	retryBackoff     = 300 * time.Millisecond
	maxResponseBytes = 4 << 20 // provider responses stay well under this
)

// ErrRateLimited is returned when the provider reports quota exhaustion
// (HTTP 429 / RESOURCE_EXHAUSTED). Callers should surface it without retrying.
var ErrRateLimited = errors.New("places api rate limited")

// Client calls the Places API. Safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Config configures a Client. APIKey is required; zero values elsewhere fall
// back to defaults.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// NewClient creates a Places API client with an otel-instrumented transport.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// TextQuery describes one text search. Bias is optional; when present, results
// are biased toward a circle of RadiusM meters around it.
type TextQuery struct {
	Query      string
	Bias       *place.Point
	RadiusM    float64
	MaxResults int
}

// NearbyQuery describes one nearby search. Center is required.
type NearbyQuery struct {
	Center        place.Point
	RadiusM       float64
	IncludedTypes []string
	MaxResults    int
}

// SearchText runs a places:searchText call and returns normalized places.
func (c *Client) SearchText(ctx context.Context, q TextQuery) ([]place.Place, error) {
	body := searchTextRequest{
		TextQuery:      q.Query,
		MaxResultCount: clampMaxResults(q.MaxResults),
	}
	if q.Bias != nil {
		radius := q.RadiusM
		if radius <= 0 {
			radius = 5000
		}
		body.LocationBias = &locationBias{Circle: &circle{
			Center: latLng{Latitude: q.Bias.Lat, Longitude: q.Bias.Lng},
			Radius: radius,
		}}
	}
	return c.search(ctx, "/v1/places:searchText", body)
}

// SearchNearby runs a places:searchNearby call and returns normalized places.
func (c *Client) SearchNearby(ctx context.Context, q NearbyQuery) ([]place.Place, error) {
	radius := q.RadiusM
	if radius <= 0 {
		radius = 1500
	}
	includedTypes := q.IncludedTypes
	if len(includedTypes) == 0 {
		includedTypes = []string{"restaurant"}
	}
	body := searchNearbyRequest{
		MaxResultCount: clampMaxResults(q.MaxResults),
		IncludedTypes:  includedTypes,
		LocationRestriction: &locationRestriction{Circle: &circle{
			Center: latLng{Latitude: q.Center.Lat, Longitude: q.Center.Lng},
			Radius: radius,
		}},
	}
	return c.search(ctx, "/v1/places:searchNearby", body)
}

// search posts the request, retrying once on transport errors and 5xx
// responses. Rate limits and other 4xx responses are not retried.
func (c *Client) search(ctx context.Context, path string, body any) ([]place.Place, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode search request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryBackoff):
			}
		}

		places, retryable, err := c.doSearch(ctx, path, payload)
		if err == nil {
			return places, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) doSearch(ctx context.Context, path string, payload []byte) (places []place.Place, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, false, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", fieldMask)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("places api request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, true, fmt.Errorf("failed to read places api response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := decodeAPIError(resp.StatusCode, data)
		if isRateLimited(resp.StatusCode, apiErr.Status) {
			return nil, false, fmt.Errorf("%w: %s", ErrRateLimited, apiErr.Message)
		}
		return nil, resp.StatusCode >= 500, apiErr
	}

	var decoded searchResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, false, fmt.Errorf("failed to decode places api response: %w", err)
	}

	return normalizeAll(decoded.Places), false, nil
}

// decodeAPIError extracts the provider error envelope, falling back to the
// raw status code when the body is not the expected shape.
func decodeAPIError(statusCode int, data []byte) *APIError {
	var body apiErrorBody
	if err := json.Unmarshal(data, &body); err == nil && body.Error.Message != "" {
		return &APIError{StatusCode: statusCode, Status: body.Error.Status, Message: body.Error.Message}
	}
	return &APIError{StatusCode: statusCode, Message: http.StatusText(statusCode)}
}

func isRateLimited(statusCode int, status string) bool {
	return statusCode == http.StatusTooManyRequests || status == "RESOURCE_EXHAUSTED"
}

func clampMaxResults(n int) int {
	if n <= 0 || n > MaxResults {
		return MaxResults
	}
	return n
}
