// Package cache persists embedding vectors between ingestion runs so
// unchanged files are not re-embedded.
//
// The cache maps source-relative paths to {content hash, chunk count,
// embeddings}. An entry is reusable only when both the file's current
// hash and the chunker's current output count match; the count check
// invalidates entries after a chunk-size or overlap change even though
// the file bytes are identical.
//
// Load never fails: a missing or corrupt cache file yields an empty
// cache and the run proceeds from scratch. Save writes the whole file
// through a temp-file rename so a crash cannot leave a truncated cache.
// Entries for files that have since been deleted are never pruned.
package cache
