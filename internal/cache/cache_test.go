package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	c := Load(filepath.Join(t.TempDir(), "nope", "cache.json"))
	assert.Equal(t, 0, c.Len())
	assert.False(t, c.IsValid("a.pdf", "hash", 1))
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	c := Load(path)
	assert.Equal(t, 0, c.Len())
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	c := Load(path)
	c.Put("reports/audit.pdf", "abc123", 2, [][]float32{{0.1, 0.2}, {0.3, 0.4}})
	c.Put("brochure.pdf", "def456", 1, [][]float32{{0.5}})
	require.NoError(t, c.Save())

	reloaded := Load(path)
	assert.Equal(t, 2, reloaded.Len())
	assert.True(t, reloaded.IsValid("reports/audit.pdf", "abc123", 2))
	assert.True(t, reloaded.IsValid("brochure.pdf", "def456", 1))

	embs := reloaded.Embeddings("reports/audit.pdf")
	require.Len(t, embs, 2)
	assert.Equal(t, []float32{0.3, 0.4}, embs[1])
}

func TestIsValid(t *testing.T) {
	c := Load(filepath.Join(t.TempDir(), "cache.json"))
	c.Put("a.pdf", "hash-1", 3, [][]float32{{1}, {2}, {3}})

	tests := []struct {
		name  string
		path  string
		hash  string
		count int
		want  bool
	}{
		{name: "exact match", path: "a.pdf", hash: "hash-1", count: 3, want: true},
		{name: "unknown path", path: "b.pdf", hash: "hash-1", count: 3, want: false},
		{name: "changed hash", path: "a.pdf", hash: "hash-2", count: 3, want: false},
		{name: "changed chunk count", path: "a.pdf", hash: "hash-1", count: 4, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsValid(tt.path, tt.hash, tt.count))
		})
	}
}

func TestIsValidRejectsInconsistentEntry(t *testing.T) {
	// A cache file can be well-formed JSON yet carry an entry whose count
	// disagrees with its stored vectors. Reusing such an entry would hand
	// the indexer fewer embeddings than chunks, so it must read as a miss.
	path := filepath.Join(t.TempDir(), "cache.json")
	doc := `{"files":{"a.pdf":{"hash":"hash-1","count":3,"embeddings":[[0.1,0.2]]}}}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	c := Load(path)
	assert.Equal(t, 1, c.Len(), "the entry still loads")
	assert.False(t, c.IsValid("a.pdf", "hash-1", 3))
}

func TestPutOverwrites(t *testing.T) {
	c := Load(filepath.Join(t.TempDir(), "cache.json"))
	c.Put("a.pdf", "old", 1, [][]float32{{1}})
	c.Put("a.pdf", "new", 2, [][]float32{{1}, {2}})

	assert.Equal(t, 1, c.Len())
	assert.False(t, c.IsValid("a.pdf", "old", 1))
	assert.True(t, c.IsValid("a.pdf", "new", 2))
}

func TestStaleEntriesSurviveSave(t *testing.T) {
	// Entries for deleted source files are deliberately kept.
	path := filepath.Join(t.TempDir(), "cache.json")

	c := Load(path)
	c.Put("deleted.pdf", "gone", 1, [][]float32{{9}})
	require.NoError(t, c.Save())

	reloaded := Load(path)
	reloaded.Put("current.pdf", "here", 1, [][]float32{{1}})
	require.NoError(t, reloaded.Save())

	final := Load(path)
	assert.Equal(t, 2, final.Len())
	assert.True(t, final.IsValid("deleted.pdf", "gone", 1))
}

func TestSaveWireFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	c := Load(path)
	c.Put("a.pdf", "h", 1, [][]float32{{0.5}})
	require.NoError(t, c.Save())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]map[string]struct {
		Hash       string      `json:"hash"`
		Count      int         `json:"count"`
		Embeddings [][]float32 `json:"embeddings"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	entry := doc["files"]["a.pdf"]
	assert.Equal(t, "h", entry.Hash)
	assert.Equal(t, 1, entry.Count)

	// No stray temp files left behind.
	matches, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".cache-*"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}
