package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"vsearch/internal/domain"
	"vsearch/internal/port"
)

type QueryCache struct {
	mu       sync.RWMutex
	entries  map[string]*cacheEntry
	order    []string
	maxSize  int
	ttl      time.Duration
	indexGen uint64
	now      func() time.Time
}

type cacheEntry struct {
	results   []domain.RankedResult[string]
	timestamp time.Time
	indexGen  uint64
}

func NewQueryCache(maxSize int, ttl time.Duration) *QueryCache {
	if maxSize <= 0 {
		maxSize = 100
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &QueryCache{
		entries: make(map[string]*cacheEntry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

func cacheKey(query string) string {
	hash := sha256.Sum256([]byte(query))
	return hex.EncodeToString(hash[:16])
}

// Get returns a copy of the cached results for query.
func (c *QueryCache) Get(query string) ([]domain.RankedResult[string], bool) {
	key := cacheKey(query)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		return nil, false
	}
	if c.now().Sub(entry.timestamp) > c.ttl || entry.indexGen != c.indexGen {
		delete(c.entries, key)
		c.removeFromOrder(key)
		return nil, false
	}

	c.moveToEnd(key)
	return cloneResults(entry.results), true
}

func (c *QueryCache) Put(query string, results []domain.RankedResult[string]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.putLocked(query, results)
}

// Generation returns the current index generation.
func (c *QueryCache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.indexGen
}

// putAt stores results computed against generation gen. The write is
// dropped if the cache was invalidated since.
func (c *QueryCache) putAt(query string, results []domain.RankedResult[string], gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.indexGen {
		return
	}
	c.putLocked(query, results)
}

func (c *QueryCache) putLocked(query string, results []domain.RankedResult[string]) {
	key := cacheKey(query)
	entry := &cacheEntry{
		results:   cloneResults(results),
		timestamp: c.now(),
		indexGen:  c.indexGen,
	}

	if _, exists := c.entries[key]; exists {
		c.entries[key] = entry
		c.moveToEnd(key)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}
	c.entries[key] = entry
	c.order = append(c.order, key)
}

// Invalidate drops every entry. Call it whenever the index is replaced.
func (c *QueryCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
	c.order = c.order[:0]
	c.indexGen++
}

func (c *QueryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *QueryCache) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}

func (c *QueryCache) moveToEnd(key string) {
	c.removeFromOrder(key)
	c.order = append(c.order, key)
}

func (c *QueryCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

func cloneResults(results []domain.RankedResult[string]) []domain.RankedResult[string] {
	if results == nil {
		return nil
	}
	out := make([]domain.RankedResult[string], len(results))
	copy(out, results)
	return out
}

// CachedSearcher serves repeated queries from a QueryCache and collapses
// concurrent identical misses into one search.
type CachedSearcher struct {
	searcher port.Searcher
	cache    *QueryCache
	group    singleflight.Group
	hits     atomic.Int64
	misses   atomic.Int64
}

var _ port.Searcher = (*CachedSearcher)(nil)

func NewCachedSearcher(searcher port.Searcher, cache *QueryCache) *CachedSearcher {
	return &CachedSearcher{
		searcher: searcher,
		cache:    cache,
	}
}

func (s *CachedSearcher) Search(query string) ([]domain.RankedResult[string], error) {
	if results, hit := s.cache.Get(query); hit {
		s.hits.Add(1)
		return results, nil
	}
	s.misses.Add(1)

	gen := s.cache.Generation()
	v, err, _ := s.group.Do(strconv.FormatUint(gen, 10)+":"+cacheKey(query), func() (any, error) {
		results, err := s.searcher.Search(query)
		if err != nil {
			return nil, err
		}
		s.cache.putAt(query, results, gen)
		return results, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneResults(v.([]domain.RankedResult[string])), nil
}

// Stats returns the number of cache hits and misses so far.
func (s *CachedSearcher) Stats() (hits, misses int64) {
	return s.hits.Load(), s.misses.Load()
}
