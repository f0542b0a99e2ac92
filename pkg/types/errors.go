package types

import "errors"

// Error taxonomy for the ingestion pipeline. Packages wrap these with %w
// so callers can classify failures with errors.Is.
var (
	// Configuration errors: fatal before any network or file-write activity.
	ErrNoProviderConfigured = errors.New("no embedding provider configured")
	ErrBadChunkConfig       = errors.New("invalid chunk configuration")

	// ErrExtraction marks a byte buffer that could not be parsed as a PDF.
	ErrExtraction = errors.New("text extraction failed")

	// Provider errors. Transient failures (rate limits, server errors,
	// exhausted quota) are retried and may fail over to another provider;
	// anything else aborts immediately.
	ErrProviderTransient = errors.New("embedding provider transient failure")
	ErrProviderFatal     = errors.New("embedding provider failed")

	// ErrPersistence marks an unreadable or unwritable cache/index file.
	ErrPersistence = errors.New("persistence failure")

	// Chunk validation errors.
	ErrEmptyChunkID     = errors.New("chunk ID cannot be empty")
	ErrEmptyChunkSource = errors.New("chunk source cannot be empty")
	ErrEmptyChunkText   = errors.New("chunk text cannot be empty")
)
