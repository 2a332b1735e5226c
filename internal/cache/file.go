package cache

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/UnknownOlympus/hermes/internal/models"
)

const dirPerm = 0o755

// FileCache keeps one JSON file per address under dir.
// Writes go through a temporary file and a rename, so a reader never sees a partial entry
// even when several runs share the same directory.
type FileCache struct {
	dir string
	log *slog.Logger
	now func() time.Time
}

// NewFileCache creates a cache rooted at dir. The directory is created on the first Store.
func NewFileCache(dir string, log *slog.Logger) *FileCache {
	return &FileCache{dir: dir, log: log, now: time.Now}
}

// NewFileCacheWithClock is NewFileCache with a custom clock for the cachedAt timestamp.
func NewFileCacheWithClock(dir string, log *slog.Logger, now func() time.Time) *FileCache {
	return &FileCache{dir: dir, log: log, now: now}
}

// Path returns the file that holds the entry for address.
func (fc *FileCache) Path(address string) string {
	return filepath.Join(fc.dir, Key(address)+".json")
}

// Lookup reads the entry for address.
func (fc *FileCache) Lookup(ctx context.Context, address string) (*models.CacheEntry, bool) {
	path := fc.Path(address)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			fc.log.WarnContext(ctx, "Unreadable cache entry, treating as miss", "path", path, "error", err)
		}
		return nil, false
	}

	entry, ok := decodeEntry(data)
	if !ok {
		fc.log.WarnContext(ctx, "Corrupted cache entry, treating as miss", "path", path)
		return nil, false
	}

	return entry, true
}

// Store writes the entry for address, replacing any previous one.
func (fc *FileCache) Store(ctx context.Context, address string, coords models.Coordinates) error {
	if err := os.MkdirAll(fc.dir, dirPerm); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := encodeEntry(address, coords, fc.now())
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	key := Key(address)
	tmp, err := os.CreateTemp(fc.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary cache file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close cache entry: %w", err)
	}
	if err = os.Rename(tmpName, filepath.Join(fc.dir, key+".json")); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to commit cache entry: %w", err)
	}

	fc.log.DebugContext(ctx, "Stored geocode cache entry", "address", address, "key", key)

	return nil
}
