package geocoding

import "math"

// Source tells where a successful resolution came from.
type Source string

const (
	// SourceCache marks an outcome served from the geocode cache.
	SourceCache Source = "cache"
	// SourceAPI marks an outcome served by the upstream provider.
	SourceAPI Source = "api"
)

// Outcome is the immutable result of resolving one address.
// Failed outcomes carry NaN coordinates and an empty Source.
type Outcome struct {
	Success bool
	Address string
	Lat     float64
	Lng     float64
	Source  Source
	Message string
}

func succeeded(address string, lat, lng float64, source Source) Outcome {
	return Outcome{
		Success: true,
		Address: address,
		Lat:     lat,
		Lng:     lng,
		Source:  source,
		Message: string(source),
	}
}

func failed(address, message string) Outcome {
	return Outcome{
		Address: address,
		Lat:     math.NaN(),
		Lng:     math.NaN(),
		Message: message,
	}
}
