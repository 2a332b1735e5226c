package models

// RunConfig is the immutable configuration of a single run.
// It is built once from external configuration before resolution starts.
type RunConfig struct {
	DepotAddress string // DepotAddress is the start/end location of the run.
	InputFile    string // InputFile is the absolute path of the address list.
	OutRoot      string // OutRoot is the absolute root for run output directories.
	CacheRoot    string // CacheRoot is the absolute root for cached geocoding results.
	RunID        string // RunID names the output directory of this run.
	APIKey       string // APIKey is the geocoding provider credential.
	Profile      string // Profile is the routing profile recorded with the run.
}

// RunRecord is what gets persisted for downstream route planning.
type RunRecord struct {
	RunID        string
	Profile      string
	DepotAddress string
	Depot        Coordinates
	Stops        []Stop
	FailedStops  []string
	CacheHits    int
	APIHits      int
}
