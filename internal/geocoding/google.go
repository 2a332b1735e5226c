package geocoding

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/UnknownOlympus/hermes/internal/models"
	"googlemaps.github.io/maps"
)

// GoogleProvider is a struct that holds the client for Google Maps API
// and a logger for logging purposes. It is used to interact with the
// Google Maps geocoding services.
type GoogleProvider struct {
	client  GoogleAPIClient // client is the Google Maps API client
	country string          // country restricts results through a component filter
	log     *slog.Logger    // log is the logger for logging operations
}

// GoogleAPIClient is the subset of *maps.Client used by the provider.
type GoogleAPIClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// googleStatusCodes translates Google API status strings into HTTP-like codes so that
// the Client can apply the same retry policy as for the REST providers.
var googleStatusCodes = map[string]int{
	"OVER_QUERY_LIMIT": http.StatusTooManyRequests,
	"UNKNOWN_ERROR":    http.StatusServiceUnavailable,
	"OVER_DAILY_LIMIT": http.StatusForbidden,
	"REQUEST_DENIED":   http.StatusForbidden,
	"INVALID_REQUEST":  http.StatusBadRequest,
}

// NewGoogleProvider initializes a new GoogleProvider with the given client and logger.
func NewGoogleProvider(client GoogleAPIClient, country string, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, country: country, log: log}
}

// Name returns the provider name used in messages and metrics.
func (gp *GoogleProvider) Name() string {
	return string(ProviderTypeGoogle)
}

// Geocode takes a context and an address string as input, and returns the geographical coordinates
// (longitude and latitude) of the provided address using the Google Maps Geocoding API.
func (gp *GoogleProvider) Geocode(ctx context.Context, address string) (*models.Coordinates, error) {
	gp.log.DebugContext(ctx, "Geocoding using Google Maps", "address", address)

	req := maps.GeocodingRequest{Address: address}
	if gp.country != "" {
		req.Components = map[maps.Component]string{maps.ComponentCountry: gp.country}
	}

	geocodeResponse, err := gp.client.Geocode(ctx, &req)
	if err != nil {
		return nil, gp.classify(err)
	}

	if len(geocodeResponse) == 0 {
		return nil, ErrNoResults
	}
	coords := geocodeResponse[0].Geometry.Location

	return &models.Coordinates{Longitude: coords.Lng, Latitude: coords.Lat}, nil
}

// classify maps "maps: STATUS - message" errors onto the shared error taxonomy.
// Anything else is a transport failure and is returned wrapped.
func (gp *GoogleProvider) classify(err error) error {
	msg := err.Error()
	if strings.Contains(msg, "ZERO_RESULTS") {
		return ErrNoResults
	}

	for status, code := range googleStatusCodes {
		if strings.Contains(msg, status) {
			return &StatusError{Provider: gp.Name(), Code: code, Body: snippet([]byte(msg))}
		}
	}

	return fmt.Errorf("failed to geocode address: %w", err)
}
