package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/dwml-forecast/internal/observability"
)

// CachedGenerator wraps a Generator with an in-memory LRU cache. Entries are
// keyed by document digest, format, legend and base hour, so a cached report
// is never served once the clock moves into the next hour.
type CachedGenerator struct {
	inner   Generator
	clock   clockwork.Clock
	metrics *observability.Metrics
	cache   *lruCache
}

// NewCachedGenerator creates a cache decorator around a generator.
func NewCachedGenerator(inner Generator, clock clockwork.Clock, metrics *observability.Metrics, maxEntries int) *CachedGenerator {
	return &CachedGenerator{
		inner:   inner,
		clock:   clock,
		metrics: metrics,
		cache:   newLRUCache(maxEntries),
	}
}

func (c *CachedGenerator) Generate(ctx context.Context, req Request) (Result, error) {
	// Pin the base hour so the key and the rendered report agree even when
	// the clock crosses an hour boundary mid-render.
	if req.BaseTime.IsZero() {
		req.BaseTime = c.clock.Now()
	}
	req.BaseTime = req.BaseTime.Truncate(time.Hour)
	key := cacheKey(req)
	if res, ok := c.cache.get(key); ok {
		c.metrics.ReportCache.WithLabelValues("hit").Inc()
		return res, nil
	}
	c.metrics.ReportCache.WithLabelValues("miss").Inc()

	res, err := c.inner.Generate(ctx, req)
	if err != nil {
		return res, err
	}
	c.cache.put(key, res)
	return res, nil
}

func cacheKey(req Request) string {
	sum := sha256.Sum256(req.Document)
	return hex.EncodeToString(sum[:]) + "|" + string(req.Format) + "|" + string(req.Legend) + "|" + req.BaseTime.UTC().Format(time.RFC3339)
}

// lruCache is a simple thread-safe LRU cache of rendered reports.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value Result
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache) get(key string) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return Result{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value Result) {
	if c.maxEntries <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	tail := c.tail
	delete(c.entries, tail.key)
	c.remove(tail)
}
