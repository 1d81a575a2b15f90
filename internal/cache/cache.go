package cache

import "time"

// Cache combines the process-local front with the persistent store.
// Lookups check memory first, then the store, promoting hits into
// memory. Temporary entries never reach the store.
type Cache struct {
	mem   *MemoryCache
	store *FileStore // nil when persistence is disabled
}

// New wires a memory front to an optional persistent store.
func New(mem *MemoryCache, store *FileStore) *Cache {
	if mem == nil {
		mem = NewMemoryCache(0)
	}
	return &Cache{mem: mem, store: store}
}

// Get returns the payload for key from the first layer that has it.
func (c *Cache) Get(key string) ([]byte, bool) {
	if data, ok := c.mem.Get(key); ok {
		return data, true
	}
	if c.store == nil {
		return nil, false
	}
	data, ok := c.store.Get(key)
	if !ok {
		return nil, false
	}
	c.mem.Set(key, data)
	return data, true
}

// Set writes the payload to both layers. Store errors are returned but
// the memory layer is always updated first, so the running process
// keeps working even when the cache directory is unwritable.
func (c *Cache) Set(key string, value []byte) error {
	c.mem.Set(key, value)
	if c.store == nil {
		return nil
	}
	return c.store.Set(key, value)
}

// SetTemporary stores a TTL-bounded entry in the memory layer only.
func (c *Cache) SetTemporary(key string, value []byte, ttl time.Duration) {
	c.mem.SetTemporary(key, value, ttl)
}

// Delete removes key from both layers.
func (c *Cache) Delete(key string) error {
	c.mem.Delete(key)
	if c.store == nil {
		return nil
	}
	return c.store.Delete(key)
}

// Clear empties both layers.
func (c *Cache) Clear() error {
	c.mem.Clear()
	if c.store == nil {
		return nil
	}
	return c.store.Clear()
}

// Memory exposes the process-local layer for statistics.
func (c *Cache) Memory() *MemoryCache { return c.mem }
