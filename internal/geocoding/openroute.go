package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/UnknownOlympus/hermes/internal/models"
)

// OpenRouteServiceBaseURL is the public openrouteservice API endpoint.
const OpenRouteServiceBaseURL = "https://api.openrouteservice.org"

// OpenRouteServiceProvider implements forward geocoding against the openrouteservice
// (Pelias) search endpoint. The API key travels in the Authorization header.
type OpenRouteServiceProvider struct {
	client  HTTPClient   // HTTP client for making requests
	baseURL string       // Base URL for the API, without the /geocode path
	apiKey  string       // API key with geocoding access
	country string       // ISO country code used as boundary.country hint
	log     *slog.Logger // Logger for logging operations
}

// orsResponse is the part of the GeoJSON FeatureCollection we need.
type orsResponse struct {
	Features []struct {
		Geometry *struct {
			Coordinates []float64 `json:"coordinates"` // [lon, lat]
		} `json:"geometry"`
	} `json:"features"`
}

// NewOpenRouteServiceProvider creates a provider that talks to baseURL through client.
func NewOpenRouteServiceProvider(
	client HTTPClient,
	baseURL string,
	apiKey string,
	country string,
	log *slog.Logger,
) *OpenRouteServiceProvider {
	if baseURL == "" {
		baseURL = OpenRouteServiceBaseURL
	}

	return &OpenRouteServiceProvider{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		country: country,
		log:     log,
	}
}

// Name returns the provider name used in messages and metrics.
func (op *OpenRouteServiceProvider) Name() string {
	return string(ProviderTypeOpenRouteService)
}

// Geocode converts an address into coordinates with a single search request.
func (op *OpenRouteServiceProvider) Geocode(ctx context.Context, address string) (*models.Coordinates, error) {
	const coordsListLength = 2

	reqURL, err := url.Parse(op.baseURL + "/geocode/search")
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("text", address)
	query.Set("size", "1")
	if op.country != "" {
		query.Set("boundary.country", op.country)
	}
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", op.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := op.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute geocoding request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		op.log.DebugContext(ctx, "openrouteservice API error", "status", resp.StatusCode, "body", string(body))
		return nil, &StatusError{Provider: op.Name(), Code: resp.StatusCode, Body: snippet(body)}
	}

	var result orsResponse
	if err = json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: failed to decode openrouteservice response: %w", ErrMalformedResponse, err)
	}

	if len(result.Features) == 0 {
		return nil, ErrNoResults
	}

	geometry := result.Features[0].Geometry
	if geometry == nil || len(geometry.Coordinates) < coordsListLength {
		return nil, ErrInvalidGeometry
	}

	lon := geometry.Coordinates[0]
	lat := geometry.Coordinates[1]

	op.log.DebugContext(ctx, "openrouteservice found result", "address", address, "lat", lat, "lon", lon)

	return &models.Coordinates{
		Latitude:  lat,
		Longitude: lon,
	}, nil
}
