package report

import (
	"fmt"
	"strings"
)

const generatedLayout = "2006-01-02 15:04:05 MST"

// WriteRoutesTxt writes the route sheet: the depot followed by every resolved stop.
func WriteRoutesTxt(path string, run Run) error {
	var sb strings.Builder

	sb.WriteString("Hermes Route Prep\n")
	fmt.Fprintf(&sb, "Run ID: %s\n", run.Config.RunID)
	fmt.Fprintf(&sb, "Profile: %s\n", run.Config.Profile)
	fmt.Fprintf(&sb, "Generated: %s\n\n", run.Generated.Format(generatedLayout))

	sb.WriteString("Depot (start/end):\n")
	fmt.Fprintf(&sb, "- %s\n", run.Config.DepotAddress)
	if run.Depot.Success {
		fmt.Fprintf(&sb, "  (%.6f, %.6f) [%s]\n", run.Depot.Lat, run.Depot.Lng, run.Depot.Source)
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "Stops (geocoded): %d\n", len(run.Stops))
	for _, stop := range run.Stops {
		fmt.Fprintf(&sb, "%3d. %s\n     (%.6f, %.6f)\n", stop.ID, stop.Address, stop.Lat, stop.Lng)
	}

	sb.WriteString("\nNOTE: route optimization is not part of this run.\n")

	return writeFile(path, []byte(sb.String()))
}

// WriteDebugReport writes input statistics, the depot status, hit counters and the failed stops.
// It is also written when the depot could not be resolved.
func WriteDebugReport(path string, run Run) error {
	var sb strings.Builder

	sb.WriteString("Hermes Route Prep - Debug Report\n")
	fmt.Fprintf(&sb, "Run ID: %s\n", run.Config.RunID)
	fmt.Fprintf(&sb, "Input: %s\n", run.Config.InputFile)
	fmt.Fprintf(&sb, "Profile: %s\n\n", run.Config.Profile)

	sb.WriteString("Input stats\n")
	fmt.Fprintf(&sb, "- Raw lines: %d\n", run.Input.RawCount)
	fmt.Fprintf(&sb, "- Blank lines removed: %d\n", run.Input.BlankCount)
	fmt.Fprintf(&sb, "- Exact duplicates removed: %d\n", run.Input.DuplicateCount)
	fmt.Fprintf(&sb, "- Cleaned lines: %d\n", len(run.Input.Addresses))
	fmt.Fprintf(&sb, "- Stops after depot strip: %d\n\n", len(run.Candidates))

	status := "FAILED"
	if run.Depot.Success {
		status = "OK"
	}
	sb.WriteString("Geocoding\n")
	fmt.Fprintf(&sb, "- Depot: %s (%q)\n", status, run.Config.DepotAddress)
	fmt.Fprintf(&sb, "  Details: %s\n", run.Depot.Message)
	fmt.Fprintf(&sb, "- Cache hits: %d\n", run.CacheHits)
	fmt.Fprintf(&sb, "- API hits: %d\n", run.APIHits)
	fmt.Fprintf(&sb, "- Failed stops: %d\n\n", len(run.FailedStops))

	if len(run.FailedStops) > 0 {
		sb.WriteString("Failed stop list:\n")
		for _, failure := range run.FailedStops {
			fmt.Fprintf(&sb, "- %s\n", failure)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Notes\n")
	sb.WriteString("- Geocoding results are cached under the cache root and reused by later runs.\n")
	sb.WriteString("- Stops that fail geocoding are skipped and listed above.\n")

	return writeFile(path, []byte(sb.String()))
}
