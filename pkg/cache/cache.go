package cache

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/arthur-debert/bundler/pkg/logging"
	"github.com/arthur-debert/bundler/pkg/types"
	"github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Entry is a cached result together with what it was derived from
type Entry struct {
	Key    Key
	Result *types.TransformResult
	// DepHashes maps each dependency path to its content hash at compute time
	DepHashes map[string]string
	Size      int64
}

// ComputeFunc produces the result for a missing key
type ComputeFunc func() *types.TransformResult

// Cache is a process wide transform result cache safe for concurrent use
type Cache struct {
	mu         sync.Mutex
	lru        *simplelru.LRU[Key, *Entry]
	bytes      int64
	maxEntries int
	maxBytes   int64
	hooks      []EvictionHook
	store      Store
	evicting   EvictReason

	group  singleflight.Group
	stats  counters
	logger zerolog.Logger
}

type counters struct {
	hits      atomic.Int64
	misses    atomic.Int64
	computes  atomic.Int64
	evictions atomic.Int64
	storeHits atomic.Int64
}

// Stats is a snapshot of cache activity
type Stats struct {
	Entries   int
	Bytes     int64
	Hits      int64
	Misses    int64
	Computes  int64
	Evictions int64
	StoreHits int64
}

// New creates a cache. Without limits it never evicts.
func New(opts ...Option) *Cache {
	c := &Cache{logger: logging.GetLogger("cache")}
	for _, opt := range opts {
		opt(c)
	}

	size := math.MaxInt
	if c.maxEntries > 0 {
		size = c.maxEntries
	}
	// simplelru only fails on a non-positive size
	c.lru, _ = simplelru.NewLRU[Key, *Entry](size, c.onEvict)
	return c
}

// onEvict runs under c.mu for every entry leaving the LRU
func (c *Cache) onEvict(key Key, entry *Entry) {
	c.bytes -= entry.Size
	c.stats.evictions.Add(1)
	c.logger.Debug().
		Str("key", key.String()).
		Int64("size", entry.Size).
		Str("reason", c.evicting.String()).
		Msg("Cache entry evicted")
	for _, hook := range c.hooks {
		hook(key, entry.Size, c.evicting)
	}
}

// GetOrCompute returns the result cached for the file's content hash and
// chain identity, or runs compute and caches what it returns. Concurrent
// callers asking for the same key wait for one shared computation. Results
// with fatal errors are returned but not cached. The boolean reports a hit.
func (c *Cache) GetOrCompute(file *types.SourceFile, chain string, compute ComputeFunc, opts ...LookupOption) (*types.TransformResult, bool) {
	var lo lookupOptions
	for _, opt := range opts {
		opt(&lo)
	}
	key := Key{Hash: file.Hash, Chain: chain}

	if res, ok := c.lookup(key, lo); ok {
		c.stats.hits.Add(1)
		return res, true
	}

	computed := false
	v, _, _ := c.group.Do(key.String(), func() (interface{}, error) {
		// A caller that missed may arrive after the entry was stored
		if res, ok := c.lookup(key, lo); ok {
			return res, nil
		}
		computed = true
		c.stats.computes.Add(1)
		res := compute()
		if res != nil && !res.Failed() {
			c.put(key, res, dependencyHashes(res, lo))
		}
		return res, nil
	})

	if computed {
		c.stats.misses.Add(1)
	} else {
		c.stats.hits.Add(1)
	}
	res, _ := v.(*types.TransformResult)
	return res, !computed
}

func (c *Cache) lookup(key Key, lo lookupOptions) (*types.TransformResult, bool) {
	c.mu.Lock()
	entry, ok := c.lru.Get(key)
	c.mu.Unlock()

	if !ok && c.store != nil {
		stored, err := c.store.Load(key)
		if err != nil {
			c.logger.Warn().Err(err).Str("key", key.String()).Msg("Failed to read cache store")
		}
		if stored != nil {
			c.stats.storeHits.Add(1)
			c.add(stored)
			entry, ok = stored, true
		}
	}
	if !ok {
		return nil, false
	}

	if lo.depHash != nil && !fresh(entry, lo.depHash) {
		c.logger.Debug().Str("key", key.String()).Msg("Cached dependencies changed")
		c.remove(key, EvictStale)
		if c.store != nil {
			if err := c.store.Delete(key); err != nil {
				c.logger.Warn().Err(err).Str("key", key.String()).Msg("Failed to delete stale store entry")
			}
		}
		return nil, false
	}
	return entry.Result, true
}

func (c *Cache) put(key Key, res *types.TransformResult, deps map[string]string) {
	entry := &Entry{Key: key, Result: res, DepHashes: deps, Size: res.Size()}
	c.add(entry)
	if c.store != nil {
		if err := c.store.Save(entry); err != nil {
			c.logger.Warn().Err(err).Str("key", key.String()).Msg("Failed to write cache store")
		}
	}
}

func (c *Cache) add(entry *Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.evicting = EvictCapacity
	if old, ok := c.lru.Peek(entry.Key); ok {
		c.bytes -= old.Size
	}
	c.lru.Add(entry.Key, entry)
	c.bytes += entry.Size

	for c.maxBytes > 0 && c.bytes > c.maxBytes && c.lru.Len() > 0 {
		c.lru.RemoveOldest()
	}
}

func (c *Cache) remove(key Key, reason EvictReason) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evicting = reason
	c.lru.Remove(key)
}

// Remove drops a single key from memory
func (c *Cache) Remove(key Key) {
	c.remove(key, EvictManual)
}

// Purge empties the memory cache. The store is left untouched.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evicting = EvictManual
	c.lru.Purge()
}

// Len returns the number of entries held in memory
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Stats returns a snapshot of the counters
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	entries, bytes := c.lru.Len(), c.bytes
	c.mu.Unlock()

	return Stats{
		Entries:   entries,
		Bytes:     bytes,
		Hits:      c.stats.hits.Load(),
		Misses:    c.stats.misses.Load(),
		Computes:  c.stats.computes.Load(),
		Evictions: c.stats.evictions.Load(),
		StoreHits: c.stats.storeHits.Load(),
	}
}

func fresh(entry *Entry, lookup LookupFunc) bool {
	for dep, want := range entry.DepHashes {
		// A missing dependency reads as an empty hash
		got, _ := lookup(dep)
		if got != want {
			return false
		}
	}
	return true
}

func dependencyHashes(res *types.TransformResult, lo lookupOptions) map[string]string {
	if lo.depHash == nil || len(res.Dependencies) == 0 {
		return nil
	}
	deps := make(map[string]string, len(res.Dependencies))
	for _, dep := range res.Dependencies {
		hash, _ := lo.depHash(dep)
		deps[dep] = hash
	}
	return deps
}
