// Command siteops serves the consultancy site API: chat proxy, evidence
// uploads, document extraction, and the leads viewer.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/verdara/siteops/internal/blob"
	"github.com/verdara/siteops/internal/chat"
	"github.com/verdara/siteops/internal/config"
	"github.com/verdara/siteops/internal/extractor"
	"github.com/verdara/siteops/internal/server"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		fmt.Fprintf(os.Stderr, "siteops: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	store := blob.NewHTTPStore(cfg.BlobEndpoint, cfg.BlobToken, cfg.BlobPublicBase)
	completer := chat.NewOpenAIClient(cfg.OpenAIKey, cfg.ChatModel)
	srv := server.New(cfg, store, completer, extractor.NewPDF(), logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "port", cfg.Port)
		return srv.Listen()
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
