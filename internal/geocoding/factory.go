package geocoding

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"googlemaps.github.io/maps"
)

// ProviderType represents the type of geocoding provider.
type ProviderType string

const (
	// ProviderTypeOpenRouteService represents the openrouteservice geocoding provider.
	ProviderTypeOpenRouteService ProviderType = "openrouteservice"
	// ProviderTypeGoogle represents Google Maps geocoding provider.
	ProviderTypeGoogle ProviderType = "google"
	// ProviderTypeNominatim represents OpenStreetMap Nominatim geocoding provider.
	ProviderTypeNominatim ProviderType = "nominatim"
	// ProviderTypeVisicom represents Visicom Maps geocoding provider.
	ProviderTypeVisicom ProviderType = "visicom"
)

// Default HTTP timeouts for upstream requests.
const (
	DefaultConnectTimeout = 10 * time.Second
	DefaultRequestTimeout = 20 * time.Second
)

// ProviderConfig holds configuration for creating a geocoding provider.
type ProviderConfig struct {
	Type           ProviderType  // Type of provider to create
	APIKey         string        // API key (openrouteservice, Google, Visicom)
	BaseURL        string        // Optional endpoint override
	Country        string        // ISO country code used to bias results
	ConnectTimeout time.Duration // TCP/TLS connect timeout
	RequestTimeout time.Duration // Whole request timeout
	Logger         *slog.Logger  // Logger for the provider
}

// NewProvider creates a geocoding provider based on the provided configuration.
// Returns an error if the provider type is unsupported or if provider creation fails.
func NewProvider(config ProviderConfig) (Provider, error) {
	switch config.Type {
	case ProviderTypeOpenRouteService:
		return newOpenRouteServiceProvider(config)
	case ProviderTypeGoogle:
		return newGoogleProvider(config)
	case ProviderTypeNominatim:
		return NewNominatimProvider(NewHTTPClient(config.ConnectTimeout, config.RequestTimeout),
			config.BaseURL, config.Country, config.Logger), nil
	case ProviderTypeVisicom:
		return newVisicomProvider(config)
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", config.Type)
	}
}

// NewHTTPClient builds the HTTP client used by the REST providers.
// Zero timeouts fall back to the defaults.
func NewHTTPClient(connectTimeout, requestTimeout time.Duration) *http.Client {
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: connectTimeout}).DialContext
	transport.TLSHandshakeTimeout = connectTimeout

	return &http.Client{
		Timeout:   requestTimeout,
		Transport: transport,
	}
}

func newOpenRouteServiceProvider(config ProviderConfig) (Provider, error) {
	if config.APIKey == "" {
		return nil, errors.New("API key is required for openrouteservice provider")
	}

	return NewOpenRouteServiceProvider(
		NewHTTPClient(config.ConnectTimeout, config.RequestTimeout),
		config.BaseURL,
		config.APIKey,
		config.Country,
		config.Logger,
	), nil
}

// newGoogleProvider creates a Google Maps geocoding provider.
func newGoogleProvider(config ProviderConfig) (Provider, error) {
	if config.APIKey == "" {
		return nil, errors.New("API key is required for Google provider")
	}

	clientOpts := []maps.ClientOption{
		maps.WithAPIKey(config.APIKey),
		maps.WithHTTPClient(NewHTTPClient(config.ConnectTimeout, config.RequestTimeout)),
	}
	if config.BaseURL != "" {
		clientOpts = append(clientOpts, maps.WithBaseURL(config.BaseURL))
	}

	client, err := maps.NewClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return NewGoogleProvider(client, config.Country, config.Logger), nil
}

// newVisicomProvider creates a Visicom geocoding provider.
func newVisicomProvider(config ProviderConfig) (Provider, error) {
	if config.APIKey == "" {
		return nil, errors.New("API key is required for Visicom provider")
	}

	return NewVisicomProvider(
		NewHTTPClient(config.ConnectTimeout, config.RequestTimeout),
		config.BaseURL,
		config.APIKey,
		config.Logger,
	), nil
}
