package cache

import (
	"context"
	"testing"
	"time"
)

func TestLRUCacheGetSetDelete(t *testing.T) {
	ctx := context.Background()
	c := NewLRUCache[int](2, time.Minute)

	if _, ok := c.Get(ctx, "a"); ok {
		t.Fatalf("expected miss on empty cache")
	}
	c.Set(ctx, "a", 1)
	c.Set(ctx, "b", 2)
	if v, ok := c.Get(ctx, "a"); !ok || v != 1 {
		t.Fatalf("expected a=1, got %d (ok=%v)", v, ok)
	}

	// "b" is now least recently used and must be evicted.
	c.Set(ctx, "c", 3)
	if _, ok := c.Get(ctx, "b"); ok {
		t.Fatalf("expected b to be evicted")
	}
	if c.Size() != 2 {
		t.Fatalf("expected size 2, got %d", c.Size())
	}

	c.Set(ctx, "a", 10)
	if v, _ := c.Get(ctx, "a"); v != 10 {
		t.Fatalf("expected overwrite, got %d", v)
	}

	c.Delete(ctx, "a")
	if _, ok := c.Get(ctx, "a"); ok {
		t.Fatalf("expected a to be deleted")
	}
}

func TestLRUCacheExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewLRUCache[string](10, time.Second)
	c.now = func() time.Time { return now }

	c.Set(ctx, "k", "v")
	c.Set(ctx, "k2", "v2")
	now = now.Add(2 * time.Second)

	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatalf("expected expired entry to miss")
	}
	if removed := c.CleanExpired(); removed != 1 {
		t.Fatalf("expected 1 expired entry cleaned, got %d", removed)
	}
	if c.Size() != 0 {
		t.Fatalf("expected empty cache, got %d", c.Size())
	}
}

func TestManagerCleanNow(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	c := NewLRUCache[int](10, time.Millisecond)
	c.now = func() time.Time { return now }
	c.Set(ctx, "x", 1)
	now = now.Add(time.Second)

	m := NewManager(nil)
	m.Register(c)
	if n := m.CleanNow(); n != 1 {
		t.Fatalf("expected 1 cleaned, got %d", n)
	}

	m.Stop()
	m.Start(time.Hour)
	m.Stop()
	m.Stop()
}

func TestLRUCacheStats(t *testing.T) {
	ctx := context.Background()
	c := NewLRUCache[int](1, time.Minute)

	c.Get(ctx, "a")
	c.Set(ctx, "a", 1)
	c.Get(ctx, "a")
	c.Set(ctx, "b", 2)

	got := c.Stats()
	want := Stats{Entries: 1, Hits: 1, Misses: 1, Evictions: 1}
	if got != want {
		t.Fatalf("Stats() = %+v, want %+v", got, want)
	}
}

func TestLRUCacheMinimumSize(t *testing.T) {
	c := NewLRUCache[int](0, time.Minute)
	c.Set(context.Background(), "a", 1)
	if _, ok := c.Get(context.Background(), "a"); !ok {
		t.Fatalf("a cache built with size 0 must still hold one entry")
	}
}

func TestNop(t *testing.T) {
	var c Cache[int] = Nop[int]{}
	c.Set(context.Background(), "a", 1)
	if _, ok := c.Get(context.Background(), "a"); ok {
		t.Fatalf("nop cache must never hit")
	}
	c.Delete(context.Background(), "a")
}
