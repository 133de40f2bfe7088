// Package localcache is a drone-side local key-value cache, backed by
// github.com/df-mc/goleveldb - the teacher's own world-save engine,
// repurposed here from Minecraft chunk persistence to a small embedded
// store. cmd/simworker opens one at start-up and closes it on exit; no
// other code in this module reads from or writes to it.
package localcache

import (
	"fmt"

	"github.com/df-mc/goleveldb/leveldb"
)

// Cache wraps a leveldb database at a local path.
type Cache struct {
	db *leveldb.DB
}

// Open opens (creating if absent) the leveldb database at path.
func Open(path string) (*Cache, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("localcache: open %s: %w", path, err)
	}
	return &Cache{db: db}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error { return c.db.Close() }

// Put stores value under key.
func (c *Cache) Put(key string, value []byte) error {
	return c.db.Put([]byte(key), value, nil)
}

// Get returns the value stored under key, if any.
func (c *Cache) Get(key string) ([]byte, bool, error) {
	v, err := c.db.Get([]byte(key), nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("localcache: get %s: %w", key, err)
	}
	return v, true, nil
}

// Delete removes key, if present.
func (c *Cache) Delete(key string) error {
	return c.db.Delete([]byte(key), nil)
}

// TerrainKey builds the cache key for a room's terrain blob.
func TerrainKey(room string) string { return "terrain:" + room }

// ScriptKey builds the cache key for a compiled script's cached bytecode.
func ScriptKey(scriptID string) string { return "script:" + scriptID }
