package cache

import (
	"container/list"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/helmcode/coderabbit-agent/pkg/metrics"
	"github.com/helmcode/coderabbit-agent/pkg/model"
)

// ResultCache stores full pipeline results by fingerprint.
//
// Thread Safety:
//
//	ResultCache is safe for concurrent use.
type ResultCache struct {
	mu       sync.Mutex
	entries  map[Fingerprint]*list.Element
	lru      *list.List
	capacity int
	logger   *slog.Logger

	hits       int64
	misses     int64
	collisions int64
	evictions  int64
}

type entry struct {
	key      Fingerprint
	language string
	code     string
	result   *model.Result
}

// Option configures a ResultCache.
type Option func(*ResultCache)

// WithCapacity bounds the cache to n entries, evicting the least recently
// used. n <= 0 means unbounded.
func WithCapacity(n int) Option {
	return func(c *ResultCache) { c.capacity = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *ResultCache) { c.logger = l }
}

func New(opts ...Option) *ResultCache {
	c := &ResultCache{
		entries: make(map[Fingerprint]*list.Element),
		lru:     list.New(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the result stored under the request's fingerprint. An entry
// whose stored language or code differs from the request is a collision and
// is reported as a miss.
func (c *ResultCache) Get(language, code string) (*model.Result, bool) {
	key := NewFingerprint(language, code)

	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		atomic.AddInt64(&c.misses, 1)
		metrics.ObserveCacheLookup(metrics.LookupMiss)
		return nil, false
	}
	e := el.Value.(*entry)
	if e.code != code || e.language != normalizeLanguage(language) {
		atomic.AddInt64(&c.collisions, 1)
		metrics.ObserveCacheLookup(metrics.LookupCollision)
		c.logger.Warn("fingerprint collision, treating as miss", slog.String("fingerprint", key.String()))
		return nil, false
	}
	c.lru.MoveToFront(el)
	atomic.AddInt64(&c.hits, 1)
	metrics.ObserveCacheLookup(metrics.LookupHit)
	return e.result, true
}

// Put stores result, replacing any entry with the same fingerprint.
func (c *ResultCache) Put(language, code string, result *model.Result) Fingerprint {
	key := NewFingerprint(language, code)
	e := &entry{key: key, language: normalizeLanguage(language), code: code, result: result}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value = e
		c.lru.MoveToFront(el)
		return key
	}
	c.entries[key] = c.lru.PushFront(e)

	for c.capacity > 0 && c.lru.Len() > c.capacity {
		oldest := c.lru.Back()
		c.lru.Remove(oldest)
		delete(c.entries, oldest.Value.(*entry).key)
		atomic.AddInt64(&c.evictions, 1)
		metrics.ObserveCacheEviction()
	}
	return key
}

// Clear drops every entry. Statistics are kept.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[Fingerprint]*list.Element)
	c.lru.Init()
}

func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Entries    int   `json:"entries" yaml:"entries"`
	Capacity   int   `json:"capacity" yaml:"capacity"`
	Hits       int64 `json:"hits" yaml:"hits"`
	Misses     int64 `json:"misses" yaml:"misses"`
	Collisions int64 `json:"collisions" yaml:"collisions"`
	Evictions  int64 `json:"evictions" yaml:"evictions"`
}

func (c *ResultCache) Stats() Stats {
	return Stats{
		Entries:    c.Len(),
		Capacity:   c.capacity,
		Hits:       atomic.LoadInt64(&c.hits),
		Misses:     atomic.LoadInt64(&c.misses),
		Collisions: atomic.LoadInt64(&c.collisions),
		Evictions:  atomic.LoadInt64(&c.evictions),
	}
}
