// Package cache provides the file-backed JSON caches that make scrape stages
// resumable. A cache is a flat key/value map persisted as one JSON object;
// a key that is present, even with a null or empty value, counts as done and
// is never fetched again.
package cache

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Cache is a resumable key/value store persisted to a single JSON file.
// Values must be JSON-serializable. Not safe for concurrent use; the stage
// loops that own a cache are sequential.
type Cache[V any] struct {
	path    string
	entries map[string]V
	dirty   int
	// FlushEvery persists the file after this many Puts. Zero disables
	// interval flushing; Flush must then be called explicitly.
	FlushEvery int
}

// Load opens the cache at path. A missing or unreadable file yields an empty
// cache, never an error, so a corrupt cache only costs re-fetching.
func Load[V any](path string, flushEvery int) *Cache[V] {
	c := &Cache[V]{
		path:       path,
		entries:    map[string]V{},
		FlushEvery: flushEvery,
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			zap.L().Warn("cache: read failed, starting empty", zap.String("path", path), zap.Error(err))
		}
		return c
	}
	if err := json.Unmarshal(raw, &c.entries); err != nil {
		zap.L().Warn("cache: decode failed, starting empty", zap.String("path", path), zap.Error(err))
		c.entries = map[string]V{}
	}
	return c
}

// Get returns the cached value and whether the key has been recorded. The
// second return is true for negative entries too.
func (c *Cache[V]) Get(key string) (V, bool) {
	v, ok := c.entries[key]
	return v, ok
}

// Put records a value and flushes when the interval is reached.
func (c *Cache[V]) Put(key string, value V) error {
	c.entries[key] = value
	c.dirty++
	if c.FlushEvery > 0 && c.dirty >= c.FlushEvery {
		return c.Flush()
	}
	return nil
}

// Len returns the number of recorded keys, negative entries included.
func (c *Cache[V]) Len() int { return len(c.entries) }

// Snapshot returns a copy of the current entries.
func (c *Cache[V]) Snapshot() map[string]V {
	out := make(map[string]V, len(c.entries))
	for k, v := range c.entries {
		out[k] = v
	}
	return out
}

// Flush persists the cache via a temp file rename so a crash mid-write
// cannot truncate the previous state.
func (c *Cache[V]) Flush() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return eris.Wrap(err, "cache: create dir")
	}
	raw, err := json.Marshal(c.entries)
	if err != nil {
		return eris.Wrap(err, "cache: encode")
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return eris.Wrap(err, "cache: write temp")
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return eris.Wrap(err, "cache: rename")
	}
	c.dirty = 0
	return nil
}
