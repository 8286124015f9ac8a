package cache

import (
	"fmt"
	"sync"
	"testing"
)

func TestGetSet(t *testing.T) {
	c := New[int](8)
	if _, ok := c.Get("a"); ok {
		t.Fatal("empty cache reported a hit")
	}
	c.Set("a", 1)
	c.Set("b", 2)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v; want 1, true", v, ok)
	}
	c.Set("a", 3)
	if v, _ := c.Get("a"); v != 3 {
		t.Errorf("overwrite lost: Get(a) = %d, want 3", v)
	}
	if got := c.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[int](2)

	// Capacity is per shard, so the keys must collide on one shard for
	// the third insert to evict.
	same := sameShardKeys(c, 3)

	c.Set(same[0], 0)
	c.Set(same[1], 1)
	c.Get(same[0]) // refresh: same[1] becomes the eviction candidate
	c.Set(same[2], 2)

	if _, ok := c.Get(same[1]); ok {
		t.Error("least recently used entry survived eviction")
	}
	if _, ok := c.Get(same[0]); !ok {
		t.Error("recently used entry was evicted")
	}
	if _, ok := c.Get(same[2]); !ok {
		t.Error("newest entry missing")
	}
}

// sameShardKeys probes for n distinct keys that map to one shard.
func sameShardKeys[V any](c *Sharded[V], n int) []string {
	target := c.shardFor("k0")
	keys := []string{"k0"}
	for i := 1; len(keys) < n; i++ {
		k := fmt.Sprintf("k%d", i)
		if c.shardFor(k) == target {
			keys = append(keys, k)
		}
	}
	return keys
}

func TestGetOrCreateComputesOnce(t *testing.T) {
	c := New[string](8)
	calls := 0
	build := func() string {
		calls++
		return "built"
	}
	if v := c.GetOrCreate("k", build); v != "built" {
		t.Fatalf("GetOrCreate = %q", v)
	}
	if v := c.GetOrCreate("k", build); v != "built" {
		t.Fatalf("GetOrCreate = %q", v)
	}
	if calls != 1 {
		t.Errorf("build ran %d times, want 1", calls)
	}
}

func TestGetOrCreateConcurrent(t *testing.T) {
	c := New[int](8)
	var mu sync.Mutex
	calls := 0

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := c.GetOrCreate("k", func() int {
				mu.Lock()
				calls++
				mu.Unlock()
				return 42
			})
			if got != 42 {
				t.Errorf("GetOrCreate = %d, want 42", got)
			}
		}()
	}
	wg.Wait()
	if calls != 1 {
		t.Errorf("build ran %d times under contention, want 1", calls)
	}
}

func TestRemove(t *testing.T) {
	c := New[int](8)
	c.Set("a", 1)
	c.Remove("a")
	c.Remove("a") // double remove is harmless
	if _, ok := c.Get("a"); ok {
		t.Error("removed entry still present")
	}
	if got := c.Len(); got != 0 {
		t.Errorf("Len() = %d, want 0", got)
	}
}

func TestStats(t *testing.T) {
	c := New[int](8)
	c.Set("a", 1)
	c.Get("a")
	c.Get("a")
	c.Get("missing")
	hits, misses := c.Stats()
	if hits != 2 || misses != 1 {
		t.Errorf("Stats() = %d, %d; want 2, 1", hits, misses)
	}
}
