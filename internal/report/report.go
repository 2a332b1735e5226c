// Package report writes the artifacts of a finished run: a human-readable route
// sheet, a machine-readable routes document and a debug report.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/UnknownOlympus/hermes/internal/address"
	"github.com/UnknownOlympus/hermes/internal/geocoding"
	"github.com/UnknownOlympus/hermes/internal/models"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Artifact file names inside a run directory.
const (
	RoutesTxtName   = "routes.txt"
	RoutesJSONName  = "routes.json"
	DebugReportName = "debug_report.txt"
	MetricsName     = "metrics.prom"
)

// RunDirs holds the output locations of a single run.
type RunDirs struct {
	RunDir      string
	RoutesTxt   string
	RoutesJSON  string
	DebugReport string
	Metrics     string
	GeocodeDir  string // GeocodeDir is the file cache directory under the cache root.
}

// NewRunDirs creates the output root, the cache root and the run directory.
func NewRunDirs(cfg models.RunConfig) (RunDirs, error) {
	runDir := filepath.Join(cfg.OutRoot, cfg.RunID)
	geocodeDir := filepath.Join(cfg.CacheRoot, "geocode")

	for _, dir := range []string{cfg.OutRoot, cfg.CacheRoot, geocodeDir, runDir} {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return RunDirs{}, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return RunDirs{
		RunDir:      runDir,
		RoutesTxt:   filepath.Join(runDir, RoutesTxtName),
		RoutesJSON:  filepath.Join(runDir, RoutesJSONName),
		DebugReport: filepath.Join(runDir, DebugReportName),
		Metrics:     filepath.Join(runDir, MetricsName),
		GeocodeDir:  geocodeDir,
	}, nil
}

// Run is everything the writers need to know about a run.
type Run struct {
	Config      models.RunConfig
	Input       address.Result    // Input is the normalized address list.
	Candidates  []string          // Candidates are the stops left after the depot was stripped.
	Depot       geocoding.Outcome // Depot is the depot resolution, possibly failed.
	Stops       []models.Stop
	FailedStops []string
	CacheHits   int
	APIHits     int
	Generated   time.Time
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, filePerm); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
