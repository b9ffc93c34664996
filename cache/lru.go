package cache

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/lazycdf/resource"
	"golang.org/x/sync/singleflight"
)

// DefaultCapacity is the default number of entries held by an LRU.
const DefaultCapacity = 10

// Config configures an LRU.
type Config[V any] struct {
	// Capacity is the maximum number of entries. Defaults to DefaultCapacity.
	Capacity int
	// MaxBytes additionally bounds the accounted size. 0 means unbounded.
	MaxBytes int64
	// Controller accounts entry memory. Entries are not cached when it denies
	// the reservation.
	Controller *resource.Controller
	// Spill receives evicted entries. Optional.
	Spill Spill[V]
	// SizeOf returns the accounted size of a value.
	SizeOf func(V) int64
}

// LRU is a least-recently-used cache of immutable values.
// Returned values must be treated as read-only.
type LRU[V any] struct {
	mu        sync.Mutex
	capacity  int
	maxBytes  int64
	size      int64
	items     map[Key]*list.Element
	evictList *list.List
	rc        *resource.Controller
	spill     Spill[V]
	sizeOf    func(V) int64

	group singleflight.Group

	hits       atomic.Int64
	misses     atomic.Int64
	loads      atomic.Int64
	loadErrors atomic.Int64
	evictions  atomic.Int64
	spillHits  atomic.Int64
}

type entry[V any] struct {
	key   Key
	value V
	size  int64
}

// New creates an LRU.
func New[V any](cfg Config[V]) *LRU[V] {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.SizeOf == nil {
		cfg.SizeOf = func(V) int64 { return 0 }
	}
	return &LRU[V]{
		capacity:  cfg.Capacity,
		maxBytes:  cfg.MaxBytes,
		items:     make(map[Key]*list.Element),
		evictList: list.New(),
		rc:        cfg.Controller,
		spill:     cfg.Spill,
		sizeOf:    cfg.SizeOf,
	}
}

// Samples is the cache of vetted variable samples.
type Samples = LRU[[]float64]

// NewSamples creates a sample cache accounting eight bytes per value.
func NewSamples(capacity int, rc *resource.Controller, spill Spill[[]float64]) *Samples {
	return New(Config[[]float64]{
		Capacity:   capacity,
		Controller: rc,
		Spill:      spill,
		SizeOf:     func(v []float64) int64 { return int64(len(v)) * 8 },
	})
}

// Blocks is the cache of raw blob blocks.
type Blocks = LRU[[]byte]

// NewBlocks creates a byte block cache bounded by maxBytes.
func NewBlocks(maxBytes int64, rc *resource.Controller) *Blocks {
	return New(Config[[]byte]{
		Capacity:   1 << 30,
		MaxBytes:   maxBytes,
		Controller: rc,
		SizeOf:     func(v []byte) int64 { return int64(len(v)) },
	})
}

// Get returns a cached value.
func (c *LRU[V]) Get(key Key) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		c.hits.Add(1)
		c.evictList.MoveToFront(ent)
		return ent.Value.(*entry[V]).value, true
	}
	c.misses.Add(1)
	var zero V
	return zero, false
}

// Contains reports whether key is cached without touching recency or counters.
func (c *LRU[V]) Contains(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[key]
	return ok
}

// Set caches a value. Existing entries are kept: values are immutable per key.
func (c *LRU[V]) Set(ctx context.Context, key Key, v V) {
	evicted := c.set(key, v)
	c.spillAll(ctx, evicted)
}

func (c *LRU[V]) set(key Key, v V) []*entry[V] {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		c.evictList.MoveToFront(ent)
		return nil
	}

	itemSize := c.sizeOf(v)
	if c.maxBytes > 0 && itemSize > c.maxBytes {
		return nil
	}

	// Evict locally first, releasing memory to the controller before reserving.
	var evicted []*entry[V]
	for c.evictList.Len() >= c.capacity || (c.maxBytes > 0 && c.size+itemSize > c.maxBytes) {
		back := c.evictList.Back()
		if back == nil {
			break
		}
		evicted = append(evicted, c.removeElement(back))
		c.evictions.Add(1)
	}

	if !c.rc.TryAcquireMemory(itemSize) {
		return evicted
	}

	c.items[key] = c.evictList.PushFront(&entry[V]{key: key, value: v, size: itemSize})
	c.size += itemSize
	return evicted
}

func (c *LRU[V]) spillAll(ctx context.Context, evicted []*entry[V]) {
	if c.spill == nil {
		return
	}
	for _, e := range evicted {
		c.spill.Put(ctx, e.key, e.value)
	}
}

// GetOrLoad returns the cached value for key, or calls load once for all concurrent
// callers missing the same key. A failed load caches nothing and every waiting caller
// receives the error.
func (c *LRU[V]) GetOrLoad(ctx context.Context, key Key, load func(ctx context.Context) (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	res, err, _ := c.group.Do(key.String(), func() (any, error) {
		c.mu.Lock()
		if ent, ok := c.items[key]; ok {
			c.mu.Unlock()
			return ent.Value.(*entry[V]).value, nil
		}
		c.mu.Unlock()

		if c.spill != nil {
			if v, ok := c.spill.Get(ctx, key); ok {
				c.spillHits.Add(1)
				c.Set(ctx, key, v)
				return v, nil
			}
		}

		v, err := load(ctx)
		if err != nil {
			c.loadErrors.Add(1)
			return nil, err
		}
		c.loads.Add(1)
		c.Set(ctx, key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

// Invalidate removes entries matching the predicate, including spilled ones.
func (c *LRU[V]) Invalidate(predicate func(key Key) bool) {
	c.mu.Lock()
	var toRemove []*list.Element
	for key, element := range c.items {
		if predicate(key) {
			toRemove = append(toRemove, element)
		}
	}
	for _, e := range toRemove {
		c.removeElement(e)
	}
	c.mu.Unlock()

	if c.spill != nil {
		c.spill.Invalidate(predicate)
	}
}

// Purge removes every entry and releases its memory.
func (c *LRU[V]) Purge() {
	c.Invalidate(func(Key) bool { return true })
}

// Len returns the number of cached entries.
func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictList.Len()
}

// Size returns the accounted size of the cache in bytes.
func (c *LRU[V]) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Stats returns cache statistics.
func (c *LRU[V]) Stats() Stats {
	c.mu.Lock()
	entries, size := c.evictList.Len(), c.size
	c.mu.Unlock()
	return Stats{
		Hits:       c.hits.Load(),
		Misses:     c.misses.Load(),
		Loads:      c.loads.Load(),
		LoadErrors: c.loadErrors.Load(),
		Evictions:  c.evictions.Load(),
		SpillHits:  c.spillHits.Load(),
		Entries:    entries,
		Bytes:      size,
	}
}

// Close purges the cache and closes the spill.
func (c *LRU[V]) Close() error {
	c.mu.Lock()
	for c.evictList.Len() > 0 {
		c.removeElement(c.evictList.Back())
	}
	c.mu.Unlock()
	if c.spill != nil {
		return c.spill.Close()
	}
	return nil
}

func (c *LRU[V]) removeElement(e *list.Element) *entry[V] {
	c.evictList.Remove(e)
	kv := e.Value.(*entry[V])
	delete(c.items, kv.key)
	c.size -= kv.size
	c.rc.ReleaseMemory(kv.size)
	return kv
}
