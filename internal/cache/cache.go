// Package cache stores previously resolved geocoding results keyed by a hash of the address.
package cache

import (
	"context"
	"crypto/sha1" //nolint:gosec // content addressing only
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/UnknownOlympus/hermes/internal/models"
)

// Cache is a lookup table from a normalized address to resolved coordinates.
// A corrupt or unreadable entry is reported as a miss, never as an error.
type Cache interface {
	Lookup(ctx context.Context, address string) (*models.CacheEntry, bool)
	Store(ctx context.Context, address string, coords models.Coordinates) error
}

// Key returns the cache key of an address: the hex SHA-1 of its trimmed text.
func Key(address string) string {
	sum := sha1.Sum([]byte(strings.TrimSpace(address))) //nolint:gosec // content addressing only
	return hex.EncodeToString(sum[:])
}

// storedEntry mirrors models.CacheEntry with optional coordinates so that
// entries missing lat or lng can be told apart from a point at 0,0.
type storedEntry struct {
	Address  string    `json:"address"`
	Lat      *float64  `json:"lat"`
	Lng      *float64  `json:"lng"`
	CachedAt time.Time `json:"cachedAt"`
}

func decodeEntry(data []byte) (*models.CacheEntry, bool) {
	var stored storedEntry
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, false
	}
	if stored.Lat == nil || stored.Lng == nil {
		return nil, false
	}

	return &models.CacheEntry{
		Address:  stored.Address,
		Lat:      *stored.Lat,
		Lng:      *stored.Lng,
		CachedAt: stored.CachedAt,
	}, true
}

func encodeEntry(address string, coords models.Coordinates, now time.Time) ([]byte, error) {
	return json.MarshalIndent(models.CacheEntry{
		Address:  address,
		Lat:      coords.Latitude,
		Lng:      coords.Longitude,
		CachedAt: now.UTC(),
	}, "", "  ")
}
