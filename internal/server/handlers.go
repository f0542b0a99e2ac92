package server

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/verdara/siteops/internal/chat"
	"github.com/verdara/siteops/internal/extractor"
)

func (s *Server) handleHealth(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// handleUpload stores an evidence document in the blob store and returns
// its public URL.
func (s *Server) handleUpload(c fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing file field"})
	}

	f, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unreadable upload"})
	}
	defer func() {
		_ = f.Close()
	}()

	data, err := io.ReadAll(f)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unreadable upload"})
	}

	name := fmt.Sprintf("%s-%s",
		time.Now().UTC().Format("20060102T150405"),
		filepath.Base(fileHeader.Filename),
	)
	contentType := fileHeader.Header.Get("Content-Type")

	url, err := s.blob.Put(c.Context(), name, contentType, data)
	if err != nil {
		s.logger.Error("blob upload failed", "name", name, "err", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "upload failed"})
	}

	s.logger.Info("evidence uploaded", "name", name, "bytes", len(data))
	return c.JSON(fiber.Map{"url": url, "name": name})
}

// handleLeads returns the leads CSV as structured JSON.
func (s *Server) handleLeads(c fiber.Ctx) error {
	f, err := os.Open(s.cfg.LeadsCSVPath)
	if err != nil {
		if os.IsNotExist(err) {
			return c.JSON(fiber.Map{"headers": []string{}, "rows": [][]string{}, "count": 0})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "leads file unreadable"})
	}
	defer func() {
		_ = f.Close()
	}()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // exported CSVs are not always rectangular
	records, err := reader.ReadAll()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "leads file malformed"})
	}

	if len(records) == 0 {
		return c.JSON(fiber.Map{"headers": []string{}, "rows": [][]string{}, "count": 0})
	}
	return c.JSON(fiber.Map{
		"headers": records[0],
		"rows":    records[1:],
		"count":   len(records) - 1,
	})
}

// handleChat proxies one conversation turn to the remote model.
func (s *Server) handleChat(c fiber.Ctx) error {
	var body struct {
		Message string         `json:"message"`
		History []chat.Message `json:"history"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}
	if strings.TrimSpace(body.Message) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "message is required"})
	}

	messages := append(body.History, chat.Message{Role: "user", Content: body.Message})

	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Minute)
	defer cancel()

	reply, err := s.chat.Complete(ctx, messages)
	if err != nil {
		s.logger.Error("chat completion failed", "err", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "assistant unavailable"})
	}
	return c.JSON(fiber.Map{"reply": reply})
}

// handleExtract returns the plain text of an uploaded document. PDFs go
// through the real extractor; CSV and plain text are truncated previews.
func (s *Server) handleExtract(c fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing file field"})
	}

	f, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unreadable upload"})
	}
	defer func() {
		_ = f.Close()
	}()

	data, err := io.ReadAll(f)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unreadable upload"})
	}

	var text string
	switch strings.ToLower(filepath.Ext(fileHeader.Filename)) {
	case ".pdf":
		text, err = s.pdf.Extract(data)
		if err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "not a parseable PDF"})
		}
	case ".csv":
		text = extractor.CSVText(data)
	default:
		text = extractor.PlainText(data)
	}

	return c.JSON(fiber.Map{"text": text, "chars": len(text)})
}
