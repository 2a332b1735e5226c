package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/UnknownOlympus/hermes/internal/models"
)

// VisicomBaseURL -- Visicom API base URL.
const VisicomBaseURL = "https://api.visicom.ua/data-api/5.0/uk/geocode.json"

// VisicomProvider implements geocoding using Visicom API.
type VisicomProvider struct {
	client  HTTPClient   // HTTP client for making requests
	baseURL string       // Base URL for the Visicom API
	apiKey  string       // API key with geocoding access
	log     *slog.Logger // Logger for logging operations
}

// ErrVisicomUnauthorized is returned for 401/403 answers, which no retry can fix.
var ErrVisicomUnauthorized = errors.New("visicom API unauthorized (invalid API key)")

// Visicom API response (simplified for geocoding use-case).
type visicomResponse struct {
	Geometry *struct {
		Coordinates []float64 `json:"coordinates"` // [lon, lat]
	} `json:"geo_centroid"`
}

// NewVisicomProvider allows injecting custom HTTP client.
func NewVisicomProvider(client HTTPClient, baseURL, apiKey string, log *slog.Logger) *VisicomProvider {
	if baseURL == "" {
		baseURL = VisicomBaseURL
	}

	return &VisicomProvider{
		client:  client,
		baseURL: baseURL,
		apiKey:  apiKey,
		log:     log,
	}
}

// Name returns the provider name used in messages and metrics.
func (vp *VisicomProvider) Name() string {
	return string(ProviderTypeVisicom)
}

// Geocode converts address into geographic coordinates using Visicom API.
func (vp *VisicomProvider) Geocode(ctx context.Context, address string) (*models.Coordinates, error) {
	const coordsListLength = 2

	reqURL, err := url.Parse(vp.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("text", address)
	query.Set("limit", "1")
	query.Set("key", vp.apiKey)
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := vp.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute geocoding request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		// continue
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("%w: %w", ErrVisicomUnauthorized,
			&StatusError{Provider: vp.Name(), Code: resp.StatusCode, Body: snippet(body)})
	default:
		vp.log.DebugContext(ctx, "Visicom API error", "status", resp.StatusCode, "body", string(body))
		return nil, &StatusError{Provider: vp.Name(), Code: resp.StatusCode, Body: snippet(body)}
	}

	var result visicomResponse
	if err = json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: failed to decode visicom response: %w", ErrMalformedResponse, err)
	}

	if result.Geometry == nil {
		return nil, ErrNoResults
	}

	coords := result.Geometry.Coordinates
	if len(coords) != coordsListLength {
		return nil, ErrInvalidGeometry
	}

	lon := coords[0]
	lat := coords[1]

	vp.log.DebugContext(ctx, "Visicom found result", "address", address, "lat", lat, "lon", lon)

	return &models.Coordinates{
		Latitude:  lat,
		Longitude: lon,
	}, nil
}
