package types

// CacheEntry records what was embedded for one source file: the content
// hash at embedding time, the number of chunks the chunker produced, and
// the embedding vectors in chunk order. An entry is reusable only when
// both the hash and the chunk count still match; the count check catches
// chunker parameter changes that the hash alone would miss.
type CacheEntry struct {
	Hash       string      `json:"hash"`
	Count      int         `json:"count"`
	Embeddings [][]float32 `json:"embeddings"`
}

// CacheFile is the on-disk embedding cache, keyed by source-relative path.
// Entries for files that no longer exist are kept; the cache only ever
// grows.
type CacheFile struct {
	Files map[string]CacheEntry `json:"files"`
}
