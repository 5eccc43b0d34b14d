package manifest

import (
	"github.com/agentx-labs/bootkeeper/internal/storage"
)

// CacheFileName is the manifest cache file inside the state directory.
const CacheFileName = "manifest-cache.json"

// Cache persists the last successfully fetched manifest in its canonical
// serialization.
type Cache struct {
	store storage.Storage
	path  string
}

// NewCache returns a Cache reading and writing path through store.
func NewCache(store storage.Storage, path string) *Cache {
	return &Cache{store: store, path: path}
}

// Path returns the cache file path.
func (c *Cache) Path() string {
	return c.path
}

// Load reads the cached manifest.
// Returns nil, nil if no cache exists (first boot). A cache that does not
// parse yields an error wrapping faults.ErrParse.
func (c *Cache) Load() (*Manifest, error) {
	data, err := c.store.ReadFile(c.path)
	if storage.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Save overwrites the cache with the canonical serialization of m.
func (c *Cache) Save(m *Manifest) error {
	data, err := m.Canonical()
	if err != nil {
		return err
	}
	return c.store.WriteFile(c.path, data)
}
