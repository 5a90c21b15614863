package cache

// EvictReason tells an eviction hook why an entry left the cache
type EvictReason int

const (
	// EvictCapacity means an entry or byte limit was exceeded
	EvictCapacity EvictReason = iota
	// EvictStale means a dependency of the entry changed
	EvictStale
	// EvictManual means the entry was removed through Remove or Purge
	EvictManual
)

func (r EvictReason) String() string {
	switch r {
	case EvictCapacity:
		return "capacity"
	case EvictStale:
		return "stale"
	case EvictManual:
		return "manual"
	default:
		return "unknown"
	}
}

// EvictionHook observes entries leaving the memory cache
type EvictionHook func(key Key, size int64, reason EvictReason)

// Option configures a Cache
type Option func(*Cache)

// WithMaxEntries bounds the number of entries kept in memory
func WithMaxEntries(n int) Option {
	return func(c *Cache) {
		c.maxEntries = n
	}
}

// WithMaxBytes bounds the total output bytes kept in memory
func WithMaxBytes(n int64) Option {
	return func(c *Cache) {
		c.maxBytes = n
	}
}

// WithEvictionHook registers a callback for evicted entries
func WithEvictionHook(hook EvictionHook) Option {
	return func(c *Cache) {
		c.hooks = append(c.hooks, hook)
	}
}

// WithStore adds a persistent layer consulted on memory misses
func WithStore(store Store) Option {
	return func(c *Cache) {
		c.store = store
	}
}

// LookupFunc returns the current content hash of a source path, or an empty
// hash and false when the path does not exist
type LookupFunc func(path string) (hash string, ok bool)

type lookupOptions struct {
	depHash LookupFunc
}

// LookupOption configures a single GetOrCompute call
type LookupOption func(*lookupOptions)

// WithDependencyHashes makes the lookup validate the dependencies a cached
// result recorded. An entry whose dependencies changed is recomputed.
func WithDependencyHashes(fn LookupFunc) LookupOption {
	return func(o *lookupOptions) {
		o.depHash = fn
	}
}
