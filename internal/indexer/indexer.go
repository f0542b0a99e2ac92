package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/verdara/siteops/internal/cache"
	"github.com/verdara/siteops/internal/chunker"
	"github.com/verdara/siteops/internal/extractor"
	"github.com/verdara/siteops/pkg/types"
)

// Embedder is the slice of the gateway the indexer needs.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
}

// Config locates the inputs and outputs of a run.
type Config struct {
	SourceDir string
	IndexPath string
	CachePath string
	BatchSize int // texts per gateway call; default 16
}

// Stats summarizes a completed run.
type Stats struct {
	FilesProcessed int
	FilesReused    int
	FilesEmbedded  int
	Chunks         int
	Duration       time.Duration
}

// Indexer orchestrates the hash -> extract -> chunk -> embed pipeline and
// assembles the persisted index.
type Indexer struct {
	cfg       Config
	extractor extractor.Extractor
	chunker   *chunker.Chunker
	embedder  Embedder
	logger    *slog.Logger
}

// New creates an Indexer. A nil logger falls back to slog.Default.
func New(cfg Config, ext extractor.Extractor, ch *chunker.Chunker, emb Embedder, logger *slog.Logger) *Indexer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 16
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{
		cfg:       cfg,
		extractor: ext,
		chunker:   ch,
		embedder:  emb,
		logger:    logger,
	}
}

// Run executes one full ingestion pass and returns its stats. Any
// extraction or post-failover provider error aborts the run before the
// index file is touched.
func (ix *Indexer) Run(ctx context.Context) (*Stats, error) {
	start := time.Now()

	files, err := ix.discover()
	if err != nil {
		return nil, fmt.Errorf("discover source files: %w", err)
	}
	if len(files) == 0 {
		ix.logger.Warn("no PDF files found in source directory", "dir", ix.cfg.SourceDir)
	}

	store := cache.Load(ix.cfg.CachePath)

	index := types.Index{
		Model:     ix.embedder.Model(),
		Dimension: types.IndexDimension,
		Chunks:    make([]types.Chunk, 0),
	}
	stats := &Stats{}
	nextID := 1

	for _, rel := range files {
		embeddings, texts, err := ix.processFile(ctx, store, rel, stats)
		if err != nil {
			return nil, fmt.Errorf("process %s: %w", rel, err)
		}

		for i, text := range texts {
			index.Chunks = append(index.Chunks, types.Chunk{
				ID:        fmt.Sprintf("c%d", nextID),
				Source:    rel,
				Text:      text,
				Embedding: embeddings[i],
			})
			nextID++
		}
		stats.FilesProcessed++
	}
	stats.Chunks = len(index.Chunks)

	if err := ix.writeIndex(&index); err != nil {
		return nil, err
	}
	if err := store.Save(); err != nil {
		return nil, err
	}

	stats.Duration = time.Since(start)
	ix.logger.Info("ingestion complete",
		"files", stats.FilesProcessed,
		"reused", stats.FilesReused,
		"embedded", stats.FilesEmbedded,
		"chunks", stats.Chunks,
		"duration", stats.Duration,
	)
	return stats, nil
}

// processFile runs the per-file pipeline and returns the file's chunk
// texts with their embeddings, in chunk order.
func (ix *Indexer) processFile(ctx context.Context, store *cache.Cache, rel string, stats *Stats) ([][]float32, []string, error) {
	data, err := os.ReadFile(filepath.Join(ix.cfg.SourceDir, rel))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read source: %v", types.ErrPersistence, err)
	}
	hash := ContentHash(data)

	text, err := ix.extractor.Extract(data)
	if err != nil {
		return nil, nil, err
	}
	texts := ix.chunker.Chunks(text)

	if store.IsValid(rel, hash, len(texts)) {
		ix.logger.Debug("cache hit, reusing embeddings", "file", rel, "chunks", len(texts))
		stats.FilesReused++
		return store.Embeddings(rel), texts, nil
	}

	ix.logger.Info("embedding file", "file", rel, "chunks", len(texts))
	embeddings, err := ix.embedAll(ctx, texts)
	if err != nil {
		return nil, nil, err
	}

	store.Put(rel, hash, len(texts), embeddings)
	stats.FilesEmbedded++
	return embeddings, texts, nil
}

// embedAll sends texts to the gateway in fixed-size batches, sequentially,
// accumulating vectors in chunk order.
func (ix *Indexer) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += ix.cfg.BatchSize {
		end := start + ix.cfg.BatchSize
		if end > len(texts) {
			end = len(texts)
		}
		vectors, err := ix.embedder.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		embeddings = append(embeddings, vectors...)
	}
	return embeddings, nil
}

// discover returns the source-relative paths of every PDF under the
// source directory, sorted for deterministic chunk IDs.
func (ix *Indexer) discover() ([]string, error) {
	var files []string
	err := filepath.WalkDir(ix.cfg.SourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != ix.cfg.SourceDir {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".pdf") {
			return nil
		}
		rel, err := filepath.Rel(ix.cfg.SourceDir, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// writeIndex persists the assembled index atomically, mirroring the
// cache's temp-file-then-rename scheme.
func (ix *Indexer) writeIndex(index *types.Index) error {
	data, err := json.Marshal(index)
	if err != nil {
		return fmt.Errorf("%w: marshal index: %v", types.ErrPersistence, err)
	}

	dir := filepath.Dir(ix.cfg.IndexPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create index dir: %v", types.ErrPersistence, err)
	}

	tmp, err := os.CreateTemp(dir, ".index-*.json")
	if err != nil {
		return fmt.Errorf("%w: create temp index: %v", types.ErrPersistence, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: write index: %v", types.ErrPersistence, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: close index: %v", types.ErrPersistence, err)
	}

	if err := os.Rename(tmpName, ix.cfg.IndexPath); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: replace index: %v", types.ErrPersistence, err)
	}
	return nil
}
