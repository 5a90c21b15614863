// Package cache memoizes transform results across builds.
//
// Entries are keyed by the content hash of a source file and the identity of
// the chain that transformed it, so a changed file or a changed chain simply
// misses; nothing has to be invalidated by hand. Concurrent requests for the
// same key share a single computation.
//
// The cache is unbounded unless an eviction limit is set. Limits evict the
// least recently used entries by count or by total output bytes, and an
// eviction hook observes every removal. An optional disk store keeps results
// between processes.
package cache
