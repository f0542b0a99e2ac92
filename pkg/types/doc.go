// Package types defines the shared data model for the knowledge-base
// pipeline: chunks, the persisted vector index, embedding cache entries,
// and the error taxonomy used across the ingestion packages.
//
// The JSON tags on Index, Chunk, and CacheFile fix the on-disk formats.
// Both files are rewritten wholesale on every ingestion run; nothing in
// this package is merged incrementally.
package types
