package cache

import (
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsEmptyCache(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "joycon_cache.json"))
	if err != nil {
		t.Fatalf("Load on missing file returned error: %v", err)
	}
	if _, ok := c.Get("aa:bb:cc:dd:ee:ff"); ok {
		t.Fatalf("expected empty cache")
	}
}

func TestUpsertThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "joycon_cache.json")
	c := New(path)
	c.Upsert(Record{MAC: "aa:bb:cc:dd:ee:ff", Side: "left", LastSeen: 1000})

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	rec, ok := reloaded.Get("aa:bb:cc:dd:ee:ff")
	if !ok {
		t.Fatalf("expected record to round-trip")
	}
	if rec.Side != "left" || rec.LastSeen != 1000 {
		t.Fatalf("record mismatch: %+v", rec)
	}
}

func TestUpsertOverwritesExistingRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "joycon_cache.json")
	c := New(path)
	c.Upsert(Record{MAC: "aa:bb:cc:dd:ee:ff", Side: "left", LastSeen: 1000})
	c.Upsert(Record{MAC: "aa:bb:cc:dd:ee:ff", Side: "left", LastSeen: 2000})

	rec, ok := c.Get("aa:bb:cc:dd:ee:ff")
	if !ok || rec.LastSeen != 2000 {
		t.Fatalf("expected updated record, got %+v ok=%v", rec, ok)
	}
}
