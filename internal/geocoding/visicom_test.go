package geocoding_test

import (
	"log/slog"
	"net/http"
	"testing"

	"github.com/UnknownOlympus/hermes/internal/geocoding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisicomProvider_Geocode(t *testing.T) {
	ctx := t.Context()
	logger := slog.Default()
	apiKey := "test-api-key"

	t.Run("successful geocoding", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, "GET", req.Method)
				assert.Contains(t, req.URL.String(), geocoding.VisicomBaseURL)
				assert.Equal(t, "вул. Хрещатик, 1, Київ", req.URL.Query().Get("text"))
				assert.Equal(t, apiKey, req.URL.Query().Get("key"))
				assert.Equal(t, "1", req.URL.Query().Get("limit"))
				assert.Equal(t, "application/json", req.Header.Get("Accept"))

				return respond(http.StatusOK, `{"geo_centroid":{"coordinates":[30.5234,50.4501]}}`), nil
			},
		}

		provider := geocoding.NewVisicomProvider(mockClient, "", apiKey, logger)
		coords, err := provider.Geocode(ctx, "вул. Хрещатик, 1, Київ")

		require.NoError(t, err)
		assert.InEpsilon(t, 50.4501, coords.Latitude, 0.0001)
		assert.InEpsilon(t, 30.5234, coords.Longitude, 0.0001)
	})

	t.Run("empty response", func(t *testing.T) {
		provider := geocoding.NewVisicomProvider(stubClient(respond(http.StatusOK, `{}`)), "", apiKey, logger)
		coords, err := provider.Geocode(ctx, "some address")

		assert.Nil(t, coords)
		assert.ErrorIs(t, err, geocoding.ErrNoResults)
	})

	t.Run("invalid coordinates", func(t *testing.T) {
		provider := geocoding.NewVisicomProvider(
			stubClient(respond(http.StatusOK, `{"geo_centroid":{"coordinates":[30.5]}}`)), "", apiKey, logger)
		_, err := provider.Geocode(ctx, "bad coords")

		assert.ErrorIs(t, err, geocoding.ErrInvalidGeometry)
	})

	t.Run("unauthorized", func(t *testing.T) {
		provider := geocoding.NewVisicomProvider(
			stubClient(respond(http.StatusUnauthorized, `unauthorized`)), "", apiKey, logger)
		_, err := provider.Geocode(ctx, "some address")

		require.ErrorIs(t, err, geocoding.ErrVisicomUnauthorized)
		var statusErr *geocoding.StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.False(t, statusErr.Retryable())
	})

	t.Run("gateway timeout is retryable", func(t *testing.T) {
		provider := geocoding.NewVisicomProvider(stubClient(respond(http.StatusGatewayTimeout, ``)), "", apiKey, logger)
		_, err := provider.Geocode(ctx, "some address")

		var statusErr *geocoding.StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.True(t, statusErr.Retryable())
		assert.Equal(t, "visicom error HTTP 504", err.Error())
	})
}
