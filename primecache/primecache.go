// Package primecache memoizes "is dh_prime safe" decisions across
// concurrent handshakes. The set of DH primes in use by any deployment
// is small and stable, so the cache never evicts.
package primecache

import (
	"sync"

	"github.com/golang/groupcache/lru"
)

// Status is a three-valued verdict for a cached prime.
type Status int

const (
	// Miss means the prime has not been checked yet.
	Miss Status = iota
	// Good means a prior check found the prime (and its Sophie-Germain
	// half) both prime.
	Good
	// Bad means a prior check rejected the prime.
	Bad
)

// Cache is a process-wide dh_prime -> is_safe memoization table,
// guarded by a single mutex (§4.4). lru.New(0) means "never evict":
// groupcache/lru treats a MaxEntries of zero as unbounded.
type Cache struct {
	mu sync.Mutex
	c  *lru.Cache
}

// New returns an empty, non-evicting cache.
func New() *Cache {
	return &Cache{c: lru.New(0)}
}

// Lookup reports the cached verdict for prime's big-endian encoding.
func (c *Cache) Lookup(prime []byte) Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.c.Get(string(prime))
	if !ok {
		return Miss
	}
	if v.(bool) {
		return Good
	}
	return Bad
}

// Record stores the verdict for prime's big-endian encoding.
func (c *Cache) Record(prime []byte, good bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.c.Add(string(prime), good)
}

var (
	defaultOnce  sync.Once
	defaultCache *Cache
)

// Default returns the lazily-initialized process-wide singleton (§9
// "Global prime cache"). Callers that would rather thread an explicit
// cache through the handshake driver may construct their own with
// New; both realizations are acceptable per the design notes.
func Default() *Cache {
	defaultOnce.Do(func() {
		defaultCache = New()
	})
	return defaultCache
}
