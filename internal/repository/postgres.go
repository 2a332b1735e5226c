package repository

import (
	"context"
	"fmt"

	"github.com/UnknownOlympus/hermes/internal/models"
	"github.com/jackc/pgx/v5"
)

const schemaQuery = `
	CREATE TABLE IF NOT EXISTS runs (
		run_id        TEXT PRIMARY KEY,
		profile       TEXT NOT NULL,
		depot_address TEXT NOT NULL,
		depot_lat     DOUBLE PRECISION NOT NULL,
		depot_lng     DOUBLE PRECISION NOT NULL,
		cache_hits    INTEGER NOT NULL DEFAULT 0,
		api_hits      INTEGER NOT NULL DEFAULT 0,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE TABLE IF NOT EXISTS run_stops (
		run_id    TEXT NOT NULL REFERENCES runs (run_id) ON DELETE CASCADE,
		stop_id   INTEGER NOT NULL,
		address   TEXT NOT NULL,
		latitude  DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (run_id, stop_id)
	);
	CREATE TABLE IF NOT EXISTS run_failures (
		run_id   TEXT NOT NULL REFERENCES runs (run_id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		entry    TEXT NOT NULL,
		PRIMARY KEY (run_id, position)
	);
`

const insertRunQuery = `
	INSERT INTO runs (run_id, profile, depot_address, depot_lat, depot_lng, cache_hits, api_hits)
	VALUES ($1, $2, $3, $4, $5, $6, $7);
`

const insertStopQuery = `
	INSERT INTO run_stops (run_id, stop_id, address, latitude, longitude)
	VALUES ($1, $2, $3, $4, $5);
`

const insertFailureQuery = `
	INSERT INTO run_failures (run_id, position, entry)
	VALUES ($1, $2, $3);
`

const fetchStopsQuery = `
	SELECT stop_id, address, latitude, longitude
	FROM run_stops
	WHERE run_id = $1
	ORDER BY stop_id ASC;
`

// EnsureSchema creates the run tables when they do not exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schemaQuery); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// SaveRun stores the run header, its resolved stops and its failures in one transaction.
// Nothing is written when any insert fails.
func (r *Repository) SaveRun(ctx context.Context, run models.RunRecord) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err = r.insertRun(ctx, tx, run); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			r.log.ErrorContext(ctx, "Failed to rollback transaction", "run_id", run.RunID, "error", rbErr)
		}
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	r.log.DebugContext(ctx, "Run persisted",
		"run_id", run.RunID,
		"stops", len(run.Stops),
		"failed", len(run.FailedStops))

	return nil
}

func (r *Repository) insertRun(ctx context.Context, tx pgx.Tx, run models.RunRecord) error {
	_, err := tx.Exec(ctx, insertRunQuery,
		run.RunID, run.Profile, run.DepotAddress, run.Depot.Latitude, run.Depot.Longitude, run.CacheHits, run.APIHits)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, stop := range run.Stops {
		if _, err = tx.Exec(ctx, insertStopQuery, run.RunID, stop.ID, stop.Address, stop.Lat, stop.Lng); err != nil {
			return fmt.Errorf("failed to insert stop %d: %w", stop.ID, err)
		}
	}

	for idx, entry := range run.FailedStops {
		if _, err = tx.Exec(ctx, insertFailureQuery, run.RunID, idx+1, entry); err != nil {
			return fmt.Errorf("failed to insert failed stop: %w", err)
		}
	}

	return nil
}

// FetchRunStops returns the resolved stops of runID ordered by their id.
func (r *Repository) FetchRunStops(ctx context.Context, runID string) ([]models.Stop, error) {
	var stops []models.Stop

	rows, err := r.db.Query(ctx, fetchStopsQuery, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run stops: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var stop models.Stop
		if errScan := rows.Scan(&stop.ID, &stop.Address, &stop.Lat, &stop.Lng); errScan != nil {
			return nil, fmt.Errorf("failed to scan run stop: %w", errScan)
		}
		stops = append(stops, stop)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return stops, nil
}
