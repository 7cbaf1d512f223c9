package cache

import (
	"sync"
	"time"
)

// Clock supplies the current time; tests inject a fake one.
type Clock func() time.Time

type entry[V any] struct {
	value  V
	bucket int64
}

// Bucketed is a time-windowed cache. Keys live inside coarse time buckets:
// an entry written in bucket N is invisible from bucket N+1 on, so eviction
// happens implicitly at bucket rollover. A capacity cap bounds the number of
// distinct keys retained, dropping the oldest insertions first.
type Bucketed[V any] struct {
	mu       sync.Mutex
	items    map[string]entry[V]
	order    []string
	window   time.Duration
	capacity int
	now      Clock
}

// New creates a cache with the given bucket width and key capacity.
// A nil clock uses time.Now.
func New[V any](window time.Duration, capacity int, now Clock) *Bucketed[V] {
	if window <= 0 {
		window = 5 * time.Minute
	}
	if capacity <= 0 {
		capacity = 1
	}
	if now == nil {
		now = time.Now
	}
	return &Bucketed[V]{
		items:    make(map[string]entry[V], capacity),
		order:    make([]string, 0, capacity),
		window:   window,
		capacity: capacity,
		now:      now,
	}
}

// Get returns the value stored for key, but only while the entry's bucket
// matches the current one.
func (c *Bucketed[V]) Get(key string) (V, bool) {
	bucket := c.bucket()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok || e.bucket != bucket {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Put stores value under key in the current bucket, overwriting any previous
// entry for the key.
func (c *Bucketed[V]) Put(key string, value V) {
	bucket := c.bucket()

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists {
		c.order = append(c.order, key)
	}
	c.items[key] = entry[V]{value: value, bucket: bucket}
	c.compact(bucket)
}

// Len reports the number of distinct keys retained, stale buckets included.
func (c *Bucketed[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Bucketed[V]) bucket() int64 {
	return c.now().UnixNano() / int64(c.window)
}

// compact drops stale-bucket keys first, then the oldest insertions, until
// the capacity cap holds. Caller must hold c.mu.
func (c *Bucketed[V]) compact(current int64) {
	if len(c.items) <= c.capacity {
		return
	}

	kept := c.order[:0]
	for _, key := range c.order {
		e, ok := c.items[key]
		if !ok {
			continue
		}
		if len(c.items) > c.capacity && e.bucket != current {
			delete(c.items, key)
			continue
		}
		kept = append(kept, key)
	}
	c.order = kept

	for len(c.items) > c.capacity && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.items, oldest)
	}
}
