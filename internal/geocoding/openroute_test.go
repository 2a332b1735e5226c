package geocoding_test

import (
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/UnknownOlympus/hermes/internal/geocoding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRouteServiceProvider_Geocode(t *testing.T) {
	ctx := t.Context()
	logger := slog.Default()
	apiKey := "test-api-key"

	t.Run("successful geocoding", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, http.MethodGet, req.Method)
				assert.Equal(t, "/geocode/search", req.URL.Path)
				assert.Equal(t, "940 William Street London Ontario", req.URL.Query().Get("text"))
				assert.Equal(t, "1", req.URL.Query().Get("size"))
				assert.Equal(t, "CA", req.URL.Query().Get("boundary.country"))
				assert.Equal(t, apiKey, req.Header.Get("Authorization"))
				assert.Equal(t, "application/json", req.Header.Get("Accept"))

				return respond(http.StatusOK,
					`{"type":"FeatureCollection","features":[{"geometry":{"type":"Point","coordinates":[-81.2453,42.9849]}}]}`), nil
			},
		}

		provider := geocoding.NewOpenRouteServiceProvider(mockClient, "", apiKey, "CA", logger)
		coords, err := provider.Geocode(ctx, "940 William Street London Ontario")

		require.NoError(t, err)
		require.NotNil(t, coords)
		assert.InEpsilon(t, 42.9849, coords.Latitude, 0.0001)
		assert.InEpsilon(t, -81.2453, coords.Longitude, 0.0001)
	})

	t.Run("custom base URL and no country hint", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, "ors.internal", req.URL.Host)
				assert.False(t, req.URL.Query().Has("boundary.country"))
				return respond(http.StatusOK, `{"features":[{"geometry":{"coordinates":[1,2]}}]}`), nil
			},
		}

		provider := geocoding.NewOpenRouteServiceProvider(mockClient, "http://ors.internal/", apiKey, "", logger)
		_, err := provider.Geocode(ctx, "x")

		require.NoError(t, err)
	})

	t.Run("no features", func(t *testing.T) {
		provider := geocoding.NewOpenRouteServiceProvider(
			stubClient(respond(http.StatusOK, `{"features":[]}`)), "", apiKey, "CA", logger)

		coords, err := provider.Geocode(ctx, "nowhere")

		require.ErrorIs(t, err, geocoding.ErrNoResults)
		assert.Nil(t, coords)
	})

	t.Run("short coordinates", func(t *testing.T) {
		provider := geocoding.NewOpenRouteServiceProvider(
			stubClient(respond(http.StatusOK, `{"features":[{"geometry":{"coordinates":[30.5]}}]}`)), "", apiKey, "CA", logger)

		_, err := provider.Geocode(ctx, "bad coords")

		require.ErrorIs(t, err, geocoding.ErrInvalidGeometry)
	})

	t.Run("missing geometry", func(t *testing.T) {
		provider := geocoding.NewOpenRouteServiceProvider(
			stubClient(respond(http.StatusOK, `{"features":[{"properties":{}}]}`)), "", apiKey, "CA", logger)

		_, err := provider.Geocode(ctx, "bad coords")

		require.ErrorIs(t, err, geocoding.ErrInvalidGeometry)
	})

	t.Run("invalid JSON response", func(t *testing.T) {
		provider := geocoding.NewOpenRouteServiceProvider(
			stubClient(respond(http.StatusOK, `invalid json`)), "", apiKey, "CA", logger)

		_, err := provider.Geocode(ctx, "x")

		require.ErrorIs(t, err, geocoding.ErrMalformedResponse)
	})

	t.Run("HTTP error status with long body", func(t *testing.T) {
		body := "{\"error\":\n\"" + strings.Repeat("x", 300) + "\"}"
		provider := geocoding.NewOpenRouteServiceProvider(
			stubClient(respond(http.StatusBadRequest, body)), "", apiKey, "CA", logger)

		_, err := provider.Geocode(ctx, "x")

		var statusErr *geocoding.StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusBadRequest, statusErr.Code)
		assert.False(t, statusErr.Retryable())
		assert.NotContains(t, statusErr.Body, "\n")
		assert.True(t, strings.HasSuffix(statusErr.Body, "..."))
		assert.Len(t, statusErr.Body, 203)
		assert.Contains(t, err.Error(), "openrouteservice error HTTP 400")
	})

	t.Run("HTTP client returns error", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return nil, assert.AnError
			},
		}

		provider := geocoding.NewOpenRouteServiceProvider(mockClient, "", apiKey, "CA", logger)
		_, err := provider.Geocode(ctx, "x")

		require.ErrorIs(t, err, assert.AnError)
		assert.Contains(t, err.Error(), "failed to execute geocoding request")
	})
}

func TestStatusError_Retryable(t *testing.T) {
	cases := map[int]bool{
		http.StatusTooManyRequests:     true,
		http.StatusBadGateway:          true,
		http.StatusServiceUnavailable:  true,
		http.StatusGatewayTimeout:      true,
		http.StatusBadRequest:          false,
		http.StatusUnauthorized:        false,
		http.StatusNotFound:            false,
		http.StatusInternalServerError: false,
	}

	for code, want := range cases {
		err := &geocoding.StatusError{Provider: "test", Code: code}
		assert.Equal(t, want, err.Retryable(), "status %d", code)
	}
}
