// Package cache persists the set of controllers ever seen to a JSON file
// next to the executable. The manager writes a record on every successful
// connect; it does not read the cache back, so every connection still
// starts from a fresh advertisement scan.
package cache

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map"

	log "github.com/sirupsen/logrus"
)

// Record is one cached controller, matching spec.md's persisted schema.
type Record struct {
	MAC       string `json:"mac_address"`
	Side      string `json:"side"`
	Name      string `json:"name,omitempty"`
	LastSeen  int64  `json:"last_seen"`
}

// Cache is the mutex-guarded, ordered MAC→Record table. The ordered map
// keeps insertion order stable across Save/Load round trips, the same way
// the teacher relies on go-ordered-map for deterministic sysfs write order.
type Cache struct {
	mu   sync.Mutex
	path string
	data *orderedmap.OrderedMap
}

// New builds an empty cache that will persist to path.
func New(path string) *Cache {
	return &Cache{path: path, data: orderedmap.New()}
}

// Load reads the cache file at path, tolerating a missing file by
// returning an empty cache.
func Load(path string) (*Cache, error) {
	c := New(path)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, err
	}

	var doc struct {
		Controllers json.RawMessage `json:"controllers"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if len(doc.Controllers) == 0 {
		return c, nil
	}
	// Walk the controllers object token by token so records are re-inserted
	// in file order; a plain Go map would lose that order.
	dec := json.NewDecoder(bytes.NewReader(doc.Controllers))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		mac, _ := tok.(string)
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			return nil, err
		}
		c.data.Set(mac, rec)
	}
	return c, nil
}

// Upsert inserts or updates rec keyed by its MAC and persists the result.
// A failed save is logged but not fatal — the in-memory cache still
// reflects the update for the remainder of this run.
func (c *Cache) Upsert(rec Record) {
	c.mu.Lock()
	c.data.Set(rec.MAC, rec)
	err := c.saveLocked()
	c.mu.Unlock()
	if err != nil {
		log.Warnf("cache: save failed: %v", err)
	}
}

// Get looks up a cached record by MAC.
func (c *Cache) Get(mac string) (Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data.Get(mac)
	if !ok {
		return Record{}, false
	}
	return v.(Record), true
}

// Save writes the cache to disk via a temp-file-then-rename, avoiding a
// partially-written file if the process dies mid-write.
func (c *Cache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveLocked()
}

func (c *Cache) saveLocked() error {
	// c.data marshals via OrderedMap's own json.Marshaler, preserving
	// insertion order; rebuilding a plain map here would lose it,
	// since encoding/json always sorts plain-map keys alphabetically.
	doc := struct {
		Controllers *orderedmap.OrderedMap `json:"controllers"`
	}{Controllers: c.data}

	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.path)
	tmp, err := os.CreateTemp(dir, ".joycon_cache-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, c.path)
}
