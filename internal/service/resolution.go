package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/hermes/internal/geocoding"
	"github.com/UnknownOlympus/hermes/internal/models"
)

// ErrDepotUnresolved is returned when the depot cannot be geocoded; no stop is resolved then.
var ErrDepotUnresolved = errors.New("depot could not be geocoded")

// Resolver turns one address into an outcome. *geocoding.Client implements it.
type Resolver interface {
	Resolve(ctx context.Context, address string) geocoding.Outcome
}

// Progress receives one tick per resolved address.
// *progressbar.ProgressBar satisfies it.
type Progress interface {
	Add(num int) error
}

// Result aggregates the outcomes of one run.
type Result struct {
	Depot       geocoding.Outcome
	Stops       []models.Stop
	FailedStops []string // "{address} | {reason}" in input order
	CacheHits   int
	APIHits     int
}

// ResolutionService resolves the depot and then every candidate stop, strictly in order.
type ResolutionService struct {
	log      *slog.Logger // Logger for logging service activities
	resolver Resolver     // Resolver performs cache-first geocoding
	progress Progress     // Optional progress sink
}

// Option customizes a ResolutionService.
type Option func(*ResolutionService)

// WithProgress reports each resolved address to p.
func WithProgress(p Progress) Option {
	return func(rs *ResolutionService) { rs.progress = p }
}

// NewResolutionService creates a new instance of ResolutionService.
func NewResolutionService(log *slog.Logger, resolver Resolver, opts ...Option) *ResolutionService {
	rs := &ResolutionService{log: log, resolver: resolver}
	for _, opt := range opts {
		opt(rs)
	}

	return rs
}

// Run resolves cfg.DepotAddress and then candidates.
//
// When the depot fails, the returned Result only carries the depot outcome and the
// error wraps ErrDepotUnresolved. Individual stop failures are collected in
// Result.FailedStops and never abort the run. A cancelled context stops the run
// between two addresses and returns the partial result with the context error.
func (rs *ResolutionService) Run(ctx context.Context, cfg models.RunConfig, candidates []string) (*Result, error) {
	rs.log.InfoContext(ctx, "Resolving depot", "run_id", cfg.RunID, "depot", cfg.DepotAddress)

	result := &Result{
		Depot:       rs.resolve(ctx, cfg.DepotAddress),
		Stops:       []models.Stop{},
		FailedStops: []string{},
	}
	if !result.Depot.Success {
		rs.log.ErrorContext(ctx, "Depot resolution failed", "depot", cfg.DepotAddress, "reason", result.Depot.Message)
		return &Result{Depot: result.Depot}, fmt.Errorf("%w: %s", ErrDepotUnresolved, result.Depot.Message)
	}
	result.count(result.Depot)

	rs.log.InfoContext(ctx, "Resolving stops", "run_id", cfg.RunID, "candidates", len(candidates))

	for _, address := range candidates {
		if err := ctx.Err(); err != nil {
			rs.log.WarnContext(ctx, "Run interrupted", "resolved", len(result.Stops)+len(result.FailedStops))
			return result, fmt.Errorf("run interrupted: %w", err)
		}

		outcome := rs.resolve(ctx, address)
		if !outcome.Success {
			result.FailedStops = append(result.FailedStops, address+" | "+outcome.Message)
			continue
		}

		result.count(outcome)
		result.Stops = append(result.Stops, models.Stop{
			ID:      len(result.Stops) + 1,
			Address: address,
			Lat:     outcome.Lat,
			Lng:     outcome.Lng,
		})
	}

	rs.log.InfoContext(ctx, "Resolution finished",
		"run_id", cfg.RunID,
		"stops", len(result.Stops),
		"failed", len(result.FailedStops),
		"cache_hits", result.CacheHits,
		"api_hits", result.APIHits)

	return result, nil
}

func (rs *ResolutionService) resolve(ctx context.Context, address string) geocoding.Outcome {
	outcome := rs.resolver.Resolve(ctx, address)

	if outcome.Success {
		rs.log.DebugContext(ctx, "Address resolved", "address", address, "source", outcome.Source)
	} else {
		rs.log.WarnContext(ctx, "Address not resolved", "address", address, "reason", outcome.Message)
	}

	if rs.progress != nil {
		if err := rs.progress.Add(1); err != nil {
			rs.log.DebugContext(ctx, "Failed to update progress", "error", err)
		}
	}

	return outcome
}

func (r *Result) count(outcome geocoding.Outcome) {
	switch outcome.Source {
	case geocoding.SourceCache:
		r.CacheHits++
	case geocoding.SourceAPI:
		r.APIHits++
	}
}

// Record flattens the result into the row set persisted for a run.
func (r *Result) Record(cfg models.RunConfig) models.RunRecord {
	return models.RunRecord{
		RunID:        cfg.RunID,
		Profile:      cfg.Profile,
		DepotAddress: cfg.DepotAddress,
		Depot:        models.Coordinates{Latitude: r.Depot.Lat, Longitude: r.Depot.Lng},
		Stops:        r.Stops,
		FailedStops:  r.FailedStops,
		CacheHits:    r.CacheHits,
		APIHits:      r.APIHits,
	}
}
