package geocoding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/UnknownOlympus/hermes/internal/cache"
	"github.com/UnknownOlympus/hermes/internal/metrics"
	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

const (
	resolutionFailed = "failed"
	blankAddressMsg  = "blank address"
)

// Client resolves addresses cache-first and falls back to the provider with bounded retries.
// Resolve never returns an error: every condition ends up in the returned Outcome.
type Client struct {
	provider Provider         // provider performs a single upstream attempt
	cache    cache.Cache      // cache is consulted before and written after the provider
	policy   RetryPolicy      // policy bounds attempts and backoff
	sleep    SleepFunc        // sleep pauses between attempts
	limiter  *rate.Limiter    // limiter throttles upstream requests
	metrics  *metrics.Metrics // metrics for tracking resolutions
	log      *slog.Logger     // log is the logger for logging operations
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithRetryPolicy overrides DefaultRetryPolicy.
func WithRetryPolicy(policy RetryPolicy) ClientOption {
	return func(c *Client) { c.policy = policy.normalized() }
}

// WithSleep replaces the pause between attempts, mainly for tests.
func WithSleep(sleep SleepFunc) ClientOption {
	return func(c *Client) { c.sleep = sleep }
}

// WithRateLimit caps upstream requests per second. Zero or less disables the limit.
func WithRateLimit(perSecond float64) ClientOption {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// NewClient creates a Client over provider and cache.
func NewClient(
	provider Provider,
	geoCache cache.Cache,
	metrics *metrics.Metrics,
	log *slog.Logger,
	opts ...ClientOption,
) *Client {
	client := &Client{
		provider: provider,
		cache:    geoCache,
		policy:   DefaultRetryPolicy(),
		sleep:    Sleep,
		limiter:  rate.NewLimiter(rate.Inf, 0),
		metrics:  metrics,
		log:      log,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Resolve converts an address into coordinates.
// Blank addresses fail without any I/O; cached addresses never reach the provider.
func (c *Client) Resolve(ctx context.Context, address string) Outcome {
	normalized := strings.TrimSpace(address)
	if normalized == "" {
		c.metrics.Resolutions.WithLabelValues(resolutionFailed).Inc()
		return failed(address, blankAddressMsg)
	}

	if entry, ok := c.cache.Lookup(ctx, normalized); ok {
		c.log.DebugContext(ctx, "Geocode cache hit", "address", normalized)
		c.metrics.Resolutions.WithLabelValues(string(SourceCache)).Inc()
		coords := entry.Coordinates()
		return succeeded(address, coords.Latitude, coords.Longitude, SourceCache)
	}

	outcome := c.fetch(ctx, address, normalized)
	if outcome.Success {
		c.metrics.Resolutions.WithLabelValues(string(SourceAPI)).Inc()
	} else {
		c.metrics.Resolutions.WithLabelValues(resolutionFailed).Inc()
	}

	return outcome
}

// fetch runs the attempt loop: Attempt -> Success | Retry -> Attempt | Failure.
func (c *Client) fetch(ctx context.Context, address, normalized string) Outcome {
	providerName := c.provider.Name()
	schedule := c.policy.schedule()

	for attempt := 1; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return failed(address, fmt.Sprintf("rate limit wait interrupted: %v", err))
		}

		startTime := time.Now()
		coords, err := c.provider.Geocode(ctx, normalized)
		c.metrics.RequestSeconds.WithLabelValues(providerName).Observe(time.Since(startTime).Seconds())

		if err == nil {
			if storeErr := c.cache.Store(ctx, address, *coords); storeErr != nil {
				c.metrics.CacheErrors.Inc()
				c.log.WarnContext(ctx, "Failed to cache geocode result", "address", normalized, "error", storeErr)
			}
			return succeeded(address, coords.Latitude, coords.Longitude, SourceAPI)
		}

		retryable, message := c.classify(ctx, err)
		if !retryable {
			c.metrics.APIErrors.WithLabelValues(providerName).Inc()
			c.log.WarnContext(ctx, "Geocoding failed", "address", normalized, "attempt", attempt, "error", err)
			return failed(address, message)
		}

		pause := schedule.NextBackOff()
		if pause == backoff.Stop {
			c.metrics.APIErrors.WithLabelValues(providerName).Inc()
			c.log.WarnContext(ctx, "Geocoding retries exhausted", "address", normalized, "attempts", attempt, "error", err)
			return failed(address, fmt.Sprintf("%s (gave up after %d attempts)", message, attempt))
		}

		c.metrics.Retries.WithLabelValues(providerName).Inc()
		c.log.InfoContext(ctx, "Transient geocoding failure, retrying",
			"address", normalized,
			"attempt", attempt,
			"backoff", pause,
			"error", err)

		if err = c.sleep(ctx, pause); err != nil {
			return failed(address, fmt.Sprintf("geocoding interrupted: %v", err))
		}
	}
}

// classify decides whether err is worth another attempt and renders the failure message.
func (c *Client) classify(ctx context.Context, err error) (bool, string) {
	var statusErr *StatusError

	switch {
	case errors.Is(err, ErrNoResults):
		return false, ErrNoResults.Error()
	case errors.Is(err, ErrInvalidGeometry), errors.Is(err, ErrMalformedResponse):
		return false, err.Error()
	case errors.As(err, &statusErr):
		return statusErr.Retryable(), statusErr.Error()
	case ctx.Err() != nil:
		return false, fmt.Sprintf("geocoding interrupted: %v", ctx.Err())
	default:
		return true, "HTTP error: " + err.Error()
	}
}
