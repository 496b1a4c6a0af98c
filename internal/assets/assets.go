// Package assets loads shader sources from disk with caching.
package assets

import (
	"fmt"
	"os"
	"sync"
)

// Manager loads shader source files and caches their contents so a reload
// only touches disk for invalidated entries.
type Manager struct {
	cache *Cache
}

// NewManager creates a new source manager.
func NewManager() *Manager {
	return &Manager{
		cache: NewCache(),
	}
}

// LoadSource returns the contents of a shader source file.
func (m *Manager) LoadSource(path string) (string, error) {
	if data, ok := m.cache.Get(path); ok {
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading shader source %s: %w", path, err)
	}

	src := string(data)
	m.cache.Set(path, src)
	return src, nil
}

// LoadPair returns the vertex and fragment sources for a program.
func (m *Manager) LoadPair(vertPath, fragPath string) (vert, frag string, err error) {
	vert, err = m.LoadSource(vertPath)
	if err != nil {
		return "", "", err
	}
	frag, err = m.LoadSource(fragPath)
	if err != nil {
		return "", "", err
	}
	return vert, frag, nil
}

// Invalidate drops the cache entries for the given paths so the next load
// re-reads them from disk.
func (m *Manager) Invalidate(paths ...string) {
	for _, path := range paths {
		m.cache.Delete(path)
	}
}

// Stats returns cache hit/miss counts.
func (m *Manager) Stats() (hits, misses int) {
	return m.cache.Stats()
}

// Cache is a simple in-memory cache for loaded sources.
type Cache struct {
	data map[string]string
	mu   sync.RWMutex

	hits   int
	misses int
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]string),
	}
}

// Get returns a cached entry if present.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an entry.
func (c *Cache) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
}

// Delete removes an entry.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

// Stats returns hit/miss counts.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
