package geocoding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/UnknownOlympus/hermes/internal/models"
)

// Provider is an interface that defines a method for geocoding an address.
// Geocode performs exactly one upstream request; retries and caching are the Client's job.
type Provider interface {
	Name() string
	Geocode(ctx context.Context, address string) (*models.Coordinates, error)
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Errors shared by all providers.
var (
	ErrNoResults         = errors.New("no geocode results")
	ErrInvalidGeometry   = errors.New("invalid geometry in response")
	ErrMalformedResponse = errors.New("malformed response")
)

const snippetLength = 200

// StatusError is returned when the upstream answers with a non-200 status.
type StatusError struct {
	Provider string // Provider is the name of the provider that failed.
	Code     int    // Code is the HTTP status code.
	Body     string // Body is a shortened copy of the response body.
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s error HTTP %d", e.Provider, e.Code)
	}
	return fmt.Sprintf("%s error HTTP %d: %s", e.Provider, e.Code, e.Body)
}

// Retryable reports whether the status denotes throttling or a transient upstream failure.
func (e *StatusError) Retryable() bool {
	switch e.Code {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// snippet flattens a response body to one line of at most 200 characters.
func snippet(body []byte) string {
	text := strings.TrimSpace(strings.ReplaceAll(string(body), "\n", " "))
	runes := []rune(text)
	if len(runes) <= snippetLength {
		return text
	}
	return string(runes[:snippetLength]) + "..."
}
