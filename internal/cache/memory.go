// Package cache provides the two caching layers behind the Omega
// registries: a process-local LRU front with optional per-entry TTL, and
// a file-backed persistent store shared between processes. Registries
// combine both through Cache, giving the lookup order process map →
// persistent store → recompute.
package cache

import (
	"sync"
	"sync/atomic"
	"time"
)

// MemoryCache caches serialized descriptor payloads with LRU eviction.
// Entries are permanent unless stored with SetTemporary, which attaches
// a TTL (used for the discovery exclusion rules).
type MemoryCache struct {
	entries     map[string]*memoryEntry
	mutex       sync.Mutex
	maxSize     int64
	currentSize int64
	// LRU implementation
	head *memoryEntry
	tail *memoryEntry
	// Statistics tracking (atomic for thread safety)
	hits      int64
	misses    int64
	sets      int64
	evictions int64
}

type memoryEntry struct {
	key       string
	value     []byte
	size      int64
	expiresAt time.Time // zero means no expiry
	// LRU doubly-linked list pointers
	prev *memoryEntry
	next *memoryEntry
}

// DefaultMaxSize bounds the in-process cache; descriptor payloads are
// small so this is generous.
const DefaultMaxSize = 16 * 1024 * 1024

// NewMemoryCache creates a new in-process cache. maxSize <= 0 selects
// DefaultMaxSize.
func NewMemoryCache(maxSize int64) *MemoryCache {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	c := &MemoryCache{
		entries: make(map[string]*memoryEntry),
		maxSize: maxSize,
	}

	// Initialize LRU doubly-linked list with dummy head and tail
	c.head = &memoryEntry{}
	c.tail = &memoryEntry{}
	c.head.next = c.tail
	c.tail.prev = c.head

	return c
}

// Get retrieves a value from the cache.
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}

	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		c.removeLocked(entry)
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}

	c.moveToFront(entry)
	atomic.AddInt64(&c.hits, 1)
	return entry.value, true
}

// Set stores a value with no expiry.
func (c *MemoryCache) Set(key string, value []byte) {
	c.set(key, value, time.Time{})
}

// SetTemporary stores a value that expires after ttl, matching the
// platform's temporary-cache policy for exclusion rules.
func (c *MemoryCache) SetTemporary(key string, value []byte, ttl time.Duration) {
	c.set(key, value, time.Now().Add(ttl))
}

func (c *MemoryCache) set(key string, value []byte, expiresAt time.Time) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	size := int64(len(key) + len(value))

	if existing, exists := c.entries[key]; exists {
		c.currentSize += size - existing.size
		existing.value = value
		existing.size = size
		existing.expiresAt = expiresAt
		c.moveToFront(existing)
		atomic.AddInt64(&c.sets, 1)
		return
	}

	c.evictIfNeeded(size)

	entry := &memoryEntry{
		key:       key,
		value:     value,
		size:      size,
		expiresAt: expiresAt,
	}
	c.entries[key] = entry
	c.currentSize += size
	c.addToFront(entry)
	atomic.AddInt64(&c.sets, 1)
}

// Delete removes a single entry.
func (c *MemoryCache) Delete(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if entry, exists := c.entries[key]; exists {
		c.removeLocked(entry)
	}
}

// Clear drops all entries and resets statistics.
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = make(map[string]*memoryEntry)
	c.currentSize = 0
	c.head.next = c.tail
	c.tail.prev = c.head

	atomic.StoreInt64(&c.hits, 0)
	atomic.StoreInt64(&c.misses, 0)
	atomic.StoreInt64(&c.sets, 0)
	atomic.StoreInt64(&c.evictions, 0)
}

// evictIfNeeded evicts least recently used entries until newSize fits.
func (c *MemoryCache) evictIfNeeded(newSize int64) {
	for c.currentSize+newSize > c.maxSize && c.tail.prev != c.head {
		lru := c.tail.prev
		c.removeLocked(lru)
		atomic.AddInt64(&c.evictions, 1)
	}
}

func (c *MemoryCache) removeLocked(entry *memoryEntry) {
	c.removeFromList(entry)
	delete(c.entries, entry.key)
	c.currentSize -= entry.size
}

// LRU doubly-linked list operations
func (c *MemoryCache) addToFront(entry *memoryEntry) {
	entry.prev = c.head
	entry.next = c.head.next
	c.head.next.prev = entry
	c.head.next = entry
}

func (c *MemoryCache) removeFromList(entry *memoryEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
}

func (c *MemoryCache) moveToFront(entry *memoryEntry) {
	c.removeFromList(entry)
	c.addToFront(entry)
}

// Hits returns the number of cache hits.
func (c *MemoryCache) Hits() int64 { return atomic.LoadInt64(&c.hits) }

// Misses returns the number of cache misses.
func (c *MemoryCache) Misses() int64 { return atomic.LoadInt64(&c.misses) }

// Evictions returns the number of LRU evictions.
func (c *MemoryCache) Evictions() int64 { return atomic.LoadInt64(&c.evictions) }

// Len returns the number of live entries.
func (c *MemoryCache) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.entries)
}
