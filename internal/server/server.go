// Package server exposes the public site API: evidence-document upload,
// the leads CSV viewer, the chat proxy, and text extraction. Every route
// is thin glue over an external collaborator; the knowledge-base pipeline
// runs separately through cmd/ingest.
package server

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/verdara/siteops/internal/blob"
	"github.com/verdara/siteops/internal/chat"
	"github.com/verdara/siteops/internal/config"
	"github.com/verdara/siteops/internal/extractor"
)

// Server is the HTTP application.
type Server struct {
	app    *fiber.App
	cfg    *config.Config
	blob   blob.Store
	chat   chat.Completer
	pdf    extractor.Extractor
	logger *slog.Logger
}

// New wires the Fiber app and its routes.
func New(cfg *config.Config, store blob.Store, completer chat.Completer, pdf extractor.Extractor, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		app: fiber.New(fiber.Config{
			AppName:      "siteops",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			BodyLimit:    32 << 20, // evidence PDFs can be large scans
		}),
		cfg:    cfg,
		blob:   store,
		chat:   completer,
		pdf:    pdf,
		logger: logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Use(recover.New())

	api := s.app.Group("/api")
	api.Get("/health", s.handleHealth)
	api.Post("/chat", s.handleChat)
	api.Post("/extract", s.handleExtract)
	api.Post("/upload", s.requireAdmin(s.handleUpload))
	api.Get("/leads", s.requireAdmin(s.handleLeads))
}

// Listen serves until the listener fails or Shutdown is called.
func (s *Server) Listen() error {
	return s.app.Listen(":" + s.cfg.Port)
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// App exposes the Fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// requireAdmin gates a handler behind the X-Admin-Token header. With no
// token configured the route is disabled outright.
func (s *Server) requireAdmin(next fiber.Handler) fiber.Handler {
	return func(c fiber.Ctx) error {
		if s.cfg.AdminToken == "" {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "admin access not configured",
			})
		}
		token := c.Get("X-Admin-Token")
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.AdminToken)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}
		return next(c)
	}
}
