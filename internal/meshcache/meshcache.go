// Package meshcache caches sampled vertex clouds.
//
// Sampling an object's mesh is deterministic for a given object and pose,
// and the same object is often requested many times (every alternate and
// every retry re-samples it). Entries are keyed by object identity and
// pose, kept under a soft limit, and the oldest quarter is dropped when
// the limit is exceeded.
//
// The fitter mutates vertex slices in place, so the cache only ever hands
// out copies.
package meshcache

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// Key identifies a sampled cloud.
type Key struct {
	// Object is the identity of the sampled instance.
	Object uint64
	// Pose is the transform the object was sampled with.
	Pose mgl64.Mat4
}

// Cache is a soft-limit LRU of vertex clouds. It is safe for concurrent use.
type Cache struct {
	mu        sync.Mutex
	entries   map[Key]*entry
	softLimit int
	tick      int64

	hits, misses, evictions uint64
}

type entry struct {
	points []mgl64.Vec3
	atime  int64
}

// New creates a cache holding about softLimit clouds. 0 means unlimited.
func New(softLimit int) *Cache {
	return &Cache{
		entries:   make(map[Key]*entry),
		softLimit: softLimit,
	}
}

// Get returns a copy of the cached cloud.
func (c *Cache) Get(key Key) ([]mgl64.Vec3, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	c.tick++
	e.atime = c.tick
	return clone(e.points), true
}

// Set stores a copy of points.
func (c *Cache) Set(key Key, points []mgl64.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store(key, clone(points))
}

// GetOrSample returns a copy of the cached cloud, calling sample on a miss.
// Errors are returned and not cached. sample runs under the cache lock.
func (c *Cache) GetOrSample(key Key, sample func() ([]mgl64.Vec3, error)) ([]mgl64.Vec3, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		c.hits++
		c.tick++
		e.atime = c.tick
		return clone(e.points), nil
	}
	c.misses++

	points, err := sample()
	if err != nil {
		return nil, err
	}
	c.store(key, clone(points))
	return points, nil
}

// Forget drops every pose cached for the object.
func (c *Cache) Forget(object uint64) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for k := range c.entries {
		if k.Object == object {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[Key]*entry)
	c.tick = 0
}

// Len returns the number of cached clouds.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats contains cache statistics.
type Stats struct {
	Len       int
	Capacity  int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Stats returns cache statistics.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Len:       len(c.entries),
		Capacity:  c.softLimit,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}

// store inserts e and evicts if needed. Caller must hold c.mu.
func (c *Cache) store(key Key, points []mgl64.Vec3) {
	c.tick++
	c.entries[key] = &entry{points: points, atime: c.tick}
	if c.softLimit > 0 && len(c.entries) > c.softLimit {
		c.evictOldest()
	}
}

// evictOldest removes the least recently used entries until the cache is
// at three quarters of the soft limit. Caller must hold c.mu.
func (c *Cache) evictOldest() {
	target := max(c.softLimit*3/4, 1)
	toEvict := len(c.entries) - target
	if toEvict <= 0 {
		return
	}

	type aged struct {
		key   Key
		atime int64
	}
	all := make([]aged, 0, len(c.entries))
	for k, e := range c.entries {
		all = append(all, aged{k, e.atime})
	}

	// Selection of the toEvict oldest; batches are small.
	for i := 0; i < toEvict; i++ {
		oldest := i
		for j := i + 1; j < len(all); j++ {
			if all[j].atime < all[oldest].atime {
				oldest = j
			}
		}
		all[i], all[oldest] = all[oldest], all[i]
		delete(c.entries, all[i].key)
		c.evictions++
	}
}

func clone(points []mgl64.Vec3) []mgl64.Vec3 {
	if points == nil {
		return nil
	}
	out := make([]mgl64.Vec3, len(points))
	copy(out, points)
	return out
}
