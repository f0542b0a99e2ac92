// Command ingest builds the knowledge-base embedding index from the PDF
// documents under the configured source directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/verdara/siteops/internal/chunker"
	"github.com/verdara/siteops/internal/config"
	"github.com/verdara/siteops/internal/embedder"
	"github.com/verdara/siteops/internal/extractor"
	"github.com/verdara/siteops/internal/indexer"
)

func main() {
	sourceDir := flag.String("source", "", "directory of PDFs to index (overrides SOURCE_DIR)")
	indexPath := flag.String("index", "", "index output path (overrides INDEX_PATH)")
	flag.Parse()

	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()
	if *sourceDir != "" {
		cfg.SourceDir = *sourceDir
	}
	if *indexPath != "" {
		cfg.IndexPath = *indexPath
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := run(cfg, logger); err != nil {
		fmt.Fprintf(os.Stderr, "ingest: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ch, err := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return err
	}

	gateway, err := embedder.New(embedder.Config{
		Provider:    cfg.EmbeddingProvider,
		Model:       cfg.EmbeddingModel,
		OpenAIKey:   cfg.OpenAIKey,
		JinaKey:     cfg.JinaKey,
		MaxAttempts: cfg.EmbedMaxRetries,
	})
	if err != nil {
		return err
	}

	ix := indexer.New(indexer.Config{
		SourceDir: cfg.SourceDir,
		IndexPath: cfg.IndexPath,
		CachePath: cfg.CachePath,
		BatchSize: cfg.EmbedBatchSize,
	}, extractor.NewPDF(), ch, gateway, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, err := ix.Run(ctx)
	if err != nil {
		return err
	}

	logger.Info("index built",
		"files", stats.FilesProcessed,
		"reused", stats.FilesReused,
		"embedded", stats.FilesEmbedded,
		"chunks", stats.Chunks,
		"took", stats.Duration,
	)
	return nil
}
