// Package indexer builds the knowledge-base vector index from a directory
// of PDF documents.
//
// # Pipeline
//
// A run processes files one at a time, in sorted path order:
//
//  1. Discover every *.pdf under the source directory, recursively.
//  2. Read the file and compute its SHA-256 content hash.
//  3. Extract and chunk the text. This always happens, even for cached
//     files: cache validity depends on the current chunk count, which is
//     only known after chunking.
//  4. Reuse the cached embeddings when the hash and chunk count match;
//     otherwise embed the chunk texts in fixed-size batches through the
//     gateway and update the cache entry.
//  5. Append the file's chunks to the index with run-global sequential
//     IDs (c1, c2, ...).
//
// After the last file the assembled index is written atomically, then the
// updated cache. IDs restart at c1 each run, so they are stable within a
// run but not across runs.
//
// # Failure behavior
//
// Extraction failures and post-failover provider failures abort the run;
// no partial index is written. A missing or corrupt cache file is not an
// error (the run re-embeds everything), and an empty source directory
// produces an index with zero chunks, with a warning logged.
//
// There is no cross-run locking: two concurrent runs against the same
// output paths can corrupt each other's cache and index.
package indexer
