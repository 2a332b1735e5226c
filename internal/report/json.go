package report

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/UnknownOlympus/hermes/internal/models"
)

// FormatVersion is the version of the routes.json layout.
const FormatVersion = "0.2.0"

// plannedRoutes is the number of empty route slots left for the route planner.
const plannedRoutes = 4

type routesDocument struct {
	Version     string        `json:"version"`
	RunID       string        `json:"runId"`
	Profile     string        `json:"profile"`
	Depot       depotJSON     `json:"depot"`
	IO          ioJSON        `json:"io"`
	Stops       []models.Stop `json:"stops"`
	FailedStops []string      `json:"failedStops"`
	Routes      []routeJSON   `json:"routes"`
}

type depotJSON struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

type ioJSON struct {
	InputFile string `json:"inputFile"`
	OutDir    string `json:"outDir"`
	CacheDir  string `json:"cacheDir"`
}

type routeJSON struct {
	RouteIndex            int      `json:"routeIndex"`
	OrderedStopIDs        []int    `json:"orderedStopIds"`
	GoogleMapsURLPrimary  *string  `json:"googleMapsUrlPrimary"`
	GoogleMapsURLFallback []string `json:"googleMapsUrlFallback"`
}

// WriteRoutesJSON writes the routes document consumed by the route planner.
// The depot must have been resolved.
func WriteRoutesJSON(path string, run Run) error {
	if !run.Depot.Success {
		return fmt.Errorf("cannot write %s without a resolved depot", filepath.Base(path))
	}

	doc := routesDocument{
		Version: FormatVersion,
		RunID:   run.Config.RunID,
		Profile: run.Config.Profile,
		Depot: depotJSON{
			Address: run.Config.DepotAddress,
			Lat:     run.Depot.Lat,
			Lng:     run.Depot.Lng,
		},
		IO: ioJSON{
			InputFile: run.Config.InputFile,
			OutDir:    filepath.Dir(path),
			CacheDir:  run.Config.CacheRoot,
		},
		Stops:       append([]models.Stop{}, run.Stops...),
		FailedStops: append([]string{}, run.FailedStops...),
		Routes:      make([]routeJSON, 0, plannedRoutes),
	}

	for idx := 1; idx <= plannedRoutes; idx++ {
		doc.Routes = append(doc.Routes, routeJSON{
			RouteIndex:            idx,
			OrderedStopIDs:        []int{},
			GoogleMapsURLFallback: []string{},
		})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode routes document: %w", err)
	}

	return writeFile(path, append(data, '\n'))
}
