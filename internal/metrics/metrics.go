package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors updated while addresses are resolved.
type Metrics struct {
	Resolutions    *prometheus.CounterVec
	APIErrors      *prometheus.CounterVec
	Retries        *prometheus.CounterVec
	RequestSeconds *prometheus.HistogramVec
	CacheErrors    prometheus.Counter
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Resolutions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "geocoding_resolutions_total",
			Help: "Total number of address resolutions by outcome source (cache, api, failed).",
		}, []string{"source"}),
		APIErrors: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "geocoding_provider_api_errors_total",
			Help: "Total number of terminal errors received from the geocoding provider API.",
		}, []string{"provider"}),
		Retries: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "geocoding_provider_retries_total",
			Help: "Total number of retried provider requests.",
		}, []string{"provider"}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "geocoding_provider_request_duration_seconds",
			Help:    "Duration of requests to the geocoding provider API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		CacheErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "geocoding_cache_write_errors_total",
			Help: "Total number of failed geocode cache writes.",
		}),
	}
}

// WriteTextfile dumps every metric gathered by g to path in the Prometheus text format,
// so that a node exporter textfile collector can pick up the results of a finished run.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}

	return nil
}
