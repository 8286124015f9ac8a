// Package cache provides a small sharded LRU used for decoded asset
// bitmaps and hit-test opacity grids.
package cache

import (
	"container/list"
	"hash/fnv"
	"sync"
	"sync/atomic"
)

const (
	// shardCount must stay a power of two so shard selection is a
	// bitwise AND.
	shardCount = 16
	shardMask  = shardCount - 1

	// DefaultCapacity is the per-shard entry limit when none is given.
	DefaultCapacity = 64
)

// Sharded is a thread-safe LRU cache with string keys, split into
// shards to reduce lock contention between the interactive thread and
// worker goroutines delivering decoded assets.
type Sharded[V any] struct {
	shards   [shardCount]*shard[V]
	capacity int

	hits   atomic.Uint64
	misses atomic.Uint64
}

type shard[V any] struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // front = most recently used
}

type entry[V any] struct {
	key   string
	value V
}

// New creates a sharded cache holding up to capacity entries per shard.
// capacity <= 0 selects DefaultCapacity.
func New[V any](capacity int) *Sharded[V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &Sharded[V]{capacity: capacity}
	for i := range c.shards {
		c.shards[i] = &shard[V]{
			entries: make(map[string]*list.Element),
			order:   list.New(),
		}
	}
	return c
}

func (c *Sharded[V]) shardFor(key string) *shard[V] {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return c.shards[h.Sum64()&shardMask]
}

// Get returns the cached value and whether it was present. Hits refresh
// the entry's LRU position.
func (c *Sharded[V]) Get(key string) (V, bool) {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.entries[key]
	if !ok {
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	s.order.MoveToFront(el)
	c.hits.Add(1)
	return el.Value.(*entry[V]).value, true
}

// Set stores a value, evicting the least recently used entries when the
// shard is full. The value is stored as-is, not copied.
func (c *Sharded[V]) Set(key string, value V) {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.entries[key]; ok {
		el.Value.(*entry[V]).value = value
		s.order.MoveToFront(el)
		return
	}
	for s.order.Len() >= c.capacity {
		oldest := s.order.Back()
		if oldest == nil {
			break
		}
		s.order.Remove(oldest)
		delete(s.entries, oldest.Value.(*entry[V]).key)
	}
	s.entries[key] = s.order.PushFront(&entry[V]{key: key, value: value})
}

// GetOrCreate returns the cached value, building and storing it on miss.
// The build function runs with the shard lock held so concurrent misses
// for one key compute once.
func (c *Sharded[V]) GetOrCreate(key string, build func() V) V {
	if v, ok := c.Get(key); ok {
		return v
	}
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.entries[key]; ok {
		s.order.MoveToFront(el)
		return el.Value.(*entry[V]).value
	}
	v := build()
	for s.order.Len() >= c.capacity {
		oldest := s.order.Back()
		if oldest == nil {
			break
		}
		s.order.Remove(oldest)
		delete(s.entries, oldest.Value.(*entry[V]).key)
	}
	s.entries[key] = s.order.PushFront(&entry[V]{key: key, value: v})
	return v
}

// Remove drops a key if present.
func (c *Sharded[V]) Remove(key string) {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if el, ok := s.entries[key]; ok {
		s.order.Remove(el)
		delete(s.entries, key)
	}
}

// Len returns the total number of cached entries.
func (c *Sharded[V]) Len() int {
	n := 0
	for _, s := range c.shards {
		s.mu.Lock()
		n += s.order.Len()
		s.mu.Unlock()
	}
	return n
}

// Stats returns cumulative hit and miss counts.
func (c *Sharded[V]) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}
