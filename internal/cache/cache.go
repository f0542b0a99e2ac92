package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/verdara/siteops/pkg/types"
)

// Cache is the in-memory view of the persisted embedding cache.
type Cache struct {
	path  string
	files map[string]types.CacheEntry
}

// Load reads the cache file at path. Missing or unparseable files are
// treated as an empty cache, never an error.
func Load(path string) *Cache {
	c := &Cache{
		path:  path,
		files: make(map[string]types.CacheEntry),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return c
	}

	var file types.CacheFile
	if err := json.Unmarshal(data, &file); err != nil {
		return c
	}
	if file.Files != nil {
		c.files = file.Files
	}
	return c
}

// IsValid reports whether the stored entry for path can be reused for a
// file with the given content hash and current chunk count. An entry
// whose count disagrees with its stored vectors is internally
// inconsistent and treated as a miss.
func (c *Cache) IsValid(path, hash string, count int) bool {
	entry, ok := c.files[path]
	return ok && entry.Hash == hash && entry.Count == count &&
		entry.Count == len(entry.Embeddings)
}

// Embeddings returns the stored vectors for path, or nil when absent.
func (c *Cache) Embeddings(path string) [][]float32 {
	entry, ok := c.files[path]
	if !ok {
		return nil
	}
	return entry.Embeddings
}

// Put upserts the entry for path.
func (c *Cache) Put(path, hash string, count int, embeddings [][]float32) {
	c.files[path] = types.CacheEntry{
		Hash:       hash,
		Count:      count,
		Embeddings: embeddings,
	}
}

// Len returns the number of stored entries.
func (c *Cache) Len() int {
	return len(c.files)
}

// Save persists the whole cache atomically: the JSON document is written
// to a temp file in the target directory, then renamed over the cache
// path.
func (c *Cache) Save() error {
	data, err := json.Marshal(types.CacheFile{Files: c.files})
	if err != nil {
		return fmt.Errorf("%w: marshal cache: %v", types.ErrPersistence, err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create cache dir: %v", types.ErrPersistence, err)
	}

	tmp, err := os.CreateTemp(dir, ".cache-*.json")
	if err != nil {
		return fmt.Errorf("%w: create temp cache: %v", types.ErrPersistence, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: write cache: %v", types.ErrPersistence, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: close cache: %v", types.ErrPersistence, err)
	}

	if err := os.Rename(tmpName, c.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: replace cache: %v", types.ErrPersistence, err)
	}
	return nil
}
