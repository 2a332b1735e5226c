package models

import "time"

// CacheEntry is a previously resolved address stored by a geocode cache.
// Address is informational only; entries are located by the hash of the normalized address.
type CacheEntry struct {
	Address  string    `json:"address"`
	Lat      float64   `json:"lat"`
	Lng      float64   `json:"lng"`
	CachedAt time.Time `json:"cachedAt"`
}

// Coordinates returns the cached point.
func (e CacheEntry) Coordinates() Coordinates {
	return Coordinates{Latitude: e.Lat, Longitude: e.Lng}
}
