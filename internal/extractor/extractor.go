// Package extractor turns uploaded document bytes into plain text.
//
// PDF is the only format the ingestion pipeline consumes; CSV and plain
// text are handled for the upload/extract route with simple truncation
// rather than real parsing.
package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/verdara/siteops/pkg/types"
)

const (
	// PageSeparator joins per-page text in the extracted output.
	PageSeparator = "\n\n"

	// MaxCSVLines bounds how much of a CSV upload is returned as text.
	MaxCSVLines = 400

	// MaxPlainChars bounds how much of a plain-text upload is returned.
	MaxPlainChars = 120000
)

// Extractor produces text from raw document bytes.
type Extractor interface {
	Extract(data []byte) (string, error)
}

// PDF extracts text from PDF byte buffers, page by page.
type PDF struct{}

// NewPDF creates a PDF extractor.
func NewPDF() *PDF {
	return &PDF{}
}

// Extract walks every page in order, joins the text fragments within a
// page with single spaces, and joins pages with PageSeparator. The result
// is cleaned with CleanText. A buffer that cannot be parsed as a PDF
// returns an error wrapping types.ErrExtraction.
func (p *PDF) Extract(data []byte) (text string, err error) {
	// The pdf library panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", types.ErrExtraction, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrExtraction, err)
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		fragments := page.Content().Text
		parts := make([]string, 0, len(fragments))
		for _, frag := range fragments {
			if frag.S != "" {
				parts = append(parts, frag.S)
			}
		}
		pages = append(pages, strings.Join(parts, " "))
	}

	return CleanText(strings.Join(pages, PageSeparator)), nil
}

// CleanText strips carriage returns and embedded NUL bytes and trims
// surrounding whitespace.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\x00", "")
	return strings.TrimSpace(s)
}

// CSVText returns the first MaxCSVLines lines of a CSV upload as text.
func CSVText(data []byte) string {
	lines := strings.Split(string(data), "\n")
	if len(lines) > MaxCSVLines {
		lines = lines[:MaxCSVLines]
	}
	return CleanText(strings.Join(lines, "\n"))
}

// PlainText returns the first MaxPlainChars characters of a text upload.
func PlainText(data []byte) string {
	s := string(data)
	if len(s) > MaxPlainChars {
		s = s[:MaxPlainChars]
	}
	return CleanText(s)
}
