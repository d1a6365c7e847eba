package cache

import (
	"testing"
	"time"
)

func TestKey_Deterministic(t *testing.T) {
	a := Key("/abs/path/index.d.ts")
	b := Key("/abs/path/index.d.ts")
	if a != b {
		t.Error("expected identical keys for identical input")
	}
	if a == Key("/abs/path/other.d.ts") {
		t.Error("expected distinct keys for distinct input")
	}
	if Key("a", "b") == Key("ab") {
		t.Error("part boundaries must affect the key")
	}
}

func TestMemoryCache_RoundTrip(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for unset key")
	}
	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok := c.Get("k")
	if !ok || string(v) != "v" {
		t.Errorf("expected hit with v, got %q ok=%v", v, ok)
	}
	_ = c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after delete")
	}
}

func TestDiskCache_RoundTripAndExpiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	if err := c.Set(Key("x"), []byte("data"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok := c.Get(Key("x"))
	if !ok || string(v) != "data" {
		t.Errorf("expected hit, got %q ok=%v", v, ok)
	}

	// An already-expired entry must read as a miss.
	if err := c.Set(Key("stale"), []byte("old"), -time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok := c.Get(Key("stale")); ok {
		t.Error("expected miss for expired entry")
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	c := NewLayeredCache(time.Minute, dir, time.Hour)
	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	// A fresh layered cache over the same dir has a cold memory layer but
	// must still hit via disk.
	c2 := NewLayeredCache(time.Minute, dir, time.Hour)
	v, ok := c2.Get("k")
	if !ok || string(v) != "v" {
		t.Fatalf("expected disk hit, got ok=%v", ok)
	}
	if v, ok := c2.memory.Get("k"); !ok || string(v) != "v" {
		t.Error("expected disk hit to be promoted to memory")
	}
}
