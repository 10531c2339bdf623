package cache

import (
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/truthlens/internal/model"
)

func TestCacheKey(t *testing.T) {
	a := CacheKey("factcheck", "Vaccines  cause autism")
	b := CacheKey("factcheck", "vaccines cause AUTISM ")
	c := CacheKey("wikipedia", "vaccines cause autism")

	if a != b {
		t.Errorf("expected normalized queries to share a key: %s != %s", a, b)
	}
	if a == c {
		t.Error("expected different sources to have different keys")
	}
	if !strings.HasPrefix(a, "truthlens:v1:factcheck:") {
		t.Errorf("unexpected key format: %s", a)
	}
}

func TestMemoryCache_SetGetExpire(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if err := c.Set("k", []byte("v"), 20*time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, ok := c.Get("k"); !ok || string(v) != "v" {
		t.Fatalf("expected hit, got %q %v", v, ok)
	}

	time.Sleep(40 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expected entry to expire")
	}
}

func TestMemoryCache_DeleteClear(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	_ = c.Set("a", []byte("1"), 0)
	_ = c.Set("b", []byte("2"), 0)

	_ = c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("expected a deleted")
	}

	_ = c.Clear()
	if _, ok := c.Get("b"); ok {
		t.Error("expected b cleared")
	}
}

func TestDiskCache_SetGetExpire(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	now := time.Now()
	c.now = func() time.Time { return now }

	key := CacheKey("factcheck", "claim")
	if err := c.Set(key, []byte(`{"x":1}`), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, ok := c.Get(key); !ok || string(v) != `{"x":1}` {
		t.Fatalf("expected hit, got %q %v", v, ok)
	}

	now = now.Add(2 * time.Hour)
	if _, ok := c.Get(key); ok {
		t.Error("expected entry past default TTL to expire")
	}
}

func TestDiskCache_DeleteMissing(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	if err := c.Delete("missing"); err != nil {
		t.Errorf("expected no error deleting missing key, got %v", err)
	}
}

func TestLayeredCache_PromotesFromDisk(t *testing.T) {
	dir := t.TempDir()

	// Populate disk through one instance, read through a fresh one
	first := NewLayeredCache(time.Minute, dir, time.Hour)
	if err := first.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	second := NewLayeredCache(time.Minute, dir, time.Hour)
	if _, ok := second.memory.Get("k"); ok {
		t.Fatal("expected fresh memory layer to be empty")
	}
	if v, ok := second.Get("k"); !ok || string(v) != "v" {
		t.Fatalf("expected disk hit, got %q %v", v, ok)
	}
	if _, ok := second.memory.Get("k"); !ok {
		t.Error("expected disk hit to be promoted to memory")
	}
}

func TestJSONHelpers(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	in := []model.CandidateClaim{{Text: "claim", Rating: "False"}}
	if err := SetJSON(c, "k", in, 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	var out []model.CandidateClaim
	if !GetJSON(c, "k", &out) || len(out) != 1 || out[0].Rating != "False" {
		t.Errorf("unexpected round trip: %+v", out)
	}

	_ = c.Set("bad", []byte("{"), 0)
	if GetJSON(c, "bad", &out) {
		t.Error("expected undecodable entry to be a miss")
	}
}

func TestNew(t *testing.T) {
	if New(model.CacheConfig{Enabled: false}) != nil {
		t.Error("expected nil cache when disabled")
	}
	if _, ok := New(model.CacheConfig{Enabled: true, MemoryTTL: time.Minute}).(*MemoryCache); !ok {
		t.Error("expected memory cache without dir")
	}
	if _, ok := New(model.CacheConfig{Enabled: true, Dir: t.TempDir()}).(*LayeredCache); !ok {
		t.Error("expected layered cache with dir")
	}
}
