package report_test

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Flaque/filet"
	"github.com/UnknownOlympus/hermes/internal/address"
	"github.com/UnknownOlympus/hermes/internal/geocoding"
	"github.com/UnknownOlympus/hermes/internal/models"
	"github.com/UnknownOlympus/hermes/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRun(root string) report.Run {
	return report.Run{
		Config: models.RunConfig{
			DepotAddress: "100 Queen St W, Toronto",
			InputFile:    filepath.Join(root, "addresses.txt"),
			OutRoot:      filepath.Join(root, "output"),
			CacheRoot:    filepath.Join(root, "cache"),
			RunID:        "20260301_120000",
			Profile:      "driving-car",
		},
		Input: address.Result{
			Addresses:      []string{"100 Queen St W, Toronto", "1 Yonge St", "nowhere"},
			RawCount:       5,
			BlankCount:     1,
			DuplicateCount: 1,
		},
		Candidates: []string{"1 Yonge St", "nowhere"},
		Depot: geocoding.Outcome{
			Success: true, Address: "100 Queen St W, Toronto",
			Lat: 43.6534, Lng: -79.3841, Source: geocoding.SourceCache, Message: "cache",
		},
		Stops:       []models.Stop{{ID: 1, Address: "1 Yonge St", Lat: 43.6426, Lng: -79.3745}},
		FailedStops: []string{"nowhere | no geocode results"},
		CacheHits:   1,
		APIHits:     1,
		Generated:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNewRunDirs(t *testing.T) {
	defer filet.CleanUp(t)
	root := filet.TmpDir(t, "")
	cfg := models.RunConfig{
		OutRoot:   filepath.Join(root, "output"),
		CacheRoot: filepath.Join(root, "cache"),
		RunID:     "20260301_120000",
	}

	dirs, err := report.NewRunDirs(cfg)

	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(root, "output", "20260301_120000"))
	assert.DirExists(t, filepath.Join(root, "cache", "geocode"))
	assert.Equal(t, filepath.Join(dirs.RunDir, "routes.txt"), dirs.RoutesTxt)
	assert.Equal(t, filepath.Join(dirs.RunDir, "routes.json"), dirs.RoutesJSON)
	assert.Equal(t, filepath.Join(dirs.RunDir, "debug_report.txt"), dirs.DebugReport)
	assert.Equal(t, filepath.Join(dirs.RunDir, "metrics.prom"), dirs.Metrics)

	_, err = report.NewRunDirs(cfg)
	require.NoError(t, err, "existing directories are reused")
}

func TestNewRunDirs_Error(t *testing.T) {
	defer filet.CleanUp(t)
	blocker := filet.TmpFile(t, "", "not a directory")

	_, err := report.NewRunDirs(models.RunConfig{
		OutRoot:   filepath.Join(blocker.Name(), "output"),
		CacheRoot: filepath.Join(blocker.Name(), "cache"),
		RunID:     "r",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create directory")
}

func TestWriteRoutesTxt(t *testing.T) {
	defer filet.CleanUp(t)
	root := filet.TmpDir(t, "")
	path := filepath.Join(root, "routes.txt")

	require.NoError(t, report.WriteRoutesTxt(path, sampleRun(root)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "Run ID: 20260301_120000\n")
	assert.Contains(t, text, "Generated: 2026-03-01 12:00:00 UTC\n")
	assert.Contains(t, text, "- 100 Queen St W, Toronto\n  (43.653400, -79.384100) [cache]\n")
	assert.Contains(t, text, "Stops (geocoded): 1\n")
	assert.Contains(t, text, "  1. 1 Yonge St\n     (43.642600, -79.374500)\n")
}

func TestWriteDebugReport(t *testing.T) {
	defer filet.CleanUp(t)
	root := filet.TmpDir(t, "")
	path := filepath.Join(root, "debug_report.txt")

	t.Run("successful run", func(t *testing.T) {
		require.NoError(t, report.WriteDebugReport(path, sampleRun(root)))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		text := string(data)
		assert.Contains(t, text, "- Raw lines: 5\n")
		assert.Contains(t, text, "- Blank lines removed: 1\n")
		assert.Contains(t, text, "- Exact duplicates removed: 1\n")
		assert.Contains(t, text, "- Cleaned lines: 3\n")
		assert.Contains(t, text, "- Stops after depot strip: 2\n")
		assert.Contains(t, text, "- Depot: OK (\"100 Queen St W, Toronto\")\n  Details: cache\n")
		assert.Contains(t, text, "- Cache hits: 1\n- API hits: 1\n- Failed stops: 1\n")
		assert.Contains(t, text, "Failed stop list:\n- nowhere | no geocode results\n")
	})

	t.Run("failed depot", func(t *testing.T) {
		run := sampleRun(root)
		run.Depot = geocoding.Outcome{Address: run.Config.DepotAddress, Lat: math.NaN(), Lng: math.NaN(),
			Message: "no geocode results"}
		run.Stops, run.FailedStops, run.CacheHits, run.APIHits = nil, nil, 0, 0

		require.NoError(t, report.WriteDebugReport(path, run))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		text := string(data)
		assert.Contains(t, text, "- Depot: FAILED")
		assert.Contains(t, text, "Details: no geocode results")
		assert.NotContains(t, text, "Failed stop list")
	})
}

func TestWriteRoutesJSON(t *testing.T) {
	defer filet.CleanUp(t)
	root := filet.TmpDir(t, "")
	path := filepath.Join(root, "routes.json")

	t.Run("document layout", func(t *testing.T) {
		require.NoError(t, report.WriteRoutesJSON(path, sampleRun(root)))

		data, err := os.ReadFile(path)
		require.NoError(t, err)

		var doc map[string]any
		require.NoError(t, json.Unmarshal(data, &doc))
		assert.Equal(t, report.FormatVersion, doc["version"])
		assert.Equal(t, "20260301_120000", doc["runId"])
		assert.Equal(t, "driving-car", doc["profile"])
		assert.Equal(t, map[string]any{"address": "100 Queen St W, Toronto", "lat": 43.6534, "lng": -79.3841}, doc["depot"])
		assert.Equal(t, map[string]any{
			"inputFile": filepath.Join(root, "addresses.txt"),
			"outDir":    root,
			"cacheDir":  filepath.Join(root, "cache"),
		}, doc["io"])
		assert.Equal(t, []any{map[string]any{"id": 1.0, "address": "1 Yonge St", "lat": 43.6426, "lng": -79.3745}}, doc["stops"])
		assert.Equal(t, []any{"nowhere | no geocode results"}, doc["failedStops"])

		routes, ok := doc["routes"].([]any)
		require.True(t, ok)
		require.Len(t, routes, 4)
		assert.Equal(t, map[string]any{
			"routeIndex":            1.0,
			"orderedStopIds":        []any{},
			"googleMapsUrlPrimary":  nil,
			"googleMapsUrlFallback": []any{},
		}, routes[0])
	})

	t.Run("empty run keeps arrays", func(t *testing.T) {
		run := sampleRun(root)
		run.Stops, run.FailedStops = nil, nil

		require.NoError(t, report.WriteRoutesJSON(path, run))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"stops": []`)
		assert.Contains(t, string(data), `"failedStops": []`)
	})

	t.Run("unresolved depot", func(t *testing.T) {
		run := sampleRun(root)
		run.Depot = geocoding.Outcome{Lat: math.NaN(), Lng: math.NaN(), Message: "blank address"}

		err := report.WriteRoutesJSON(filepath.Join(root, "other.json"), run)

		require.Error(t, err)
		assert.NoFileExists(t, filepath.Join(root, "other.json"))
	})
}
