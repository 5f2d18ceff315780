package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"pdf-knowledge-assistant/internal/logger"
	"pdf-knowledge-assistant/utils"

	"github.com/ledongthuc/pdf"
)

// Page is one page of a PDF during ingestion. Text is empty when extraction
// yields nothing for that page; pages are not persisted.
type Page struct {
	Number int
	Text   string
}

// PDFExtractor reads per-page plain text from PDF files on disk.
type PDFExtractor struct {
	maxFileSize int64
}

// NewPDFExtractor creates a new PDF extractor. maxFileSize caps in-memory
// parsing; zero means no cap.
func NewPDFExtractor(maxFileSize int64) *PDFExtractor {
	return &PDFExtractor{maxFileSize: maxFileSize}
}

// ExtractPages returns all pages of the PDF in page order (1-indexed). A
// file that cannot be parsed fails the whole call; a single page whose text
// extraction fails contributes an empty page instead of an error.
func (e *PDFExtractor) ExtractPages(ctx context.Context, filePath string) ([]Page, error) {
	if deadline, ok := ctx.Deadline(); ok {
		if time.Until(deadline) <= 0 {
			return nil, utils.ProcessingError("context deadline exceeded before extraction", ctx.Err())
		}
	}

	stat, err := os.Stat(filePath)
	if err != nil {
		return nil, utils.ProcessingError("failed to stat PDF file", err)
	}
	if e.maxFileSize > 0 && stat.Size() > e.maxFileSize {
		return nil, utils.ProcessingError(
			fmt.Sprintf("pdf too large for in-memory extraction (%d bytes)", stat.Size()), nil)
	}

	f, reader, err := pdf.Open(filePath)
	if err != nil {
		return nil, utils.ProcessingError("failed to parse PDF", err)
	}
	defer f.Close()

	total := reader.NumPage()
	pages := make([]Page, 0, total)

	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, Page{Number: i})
			continue
		}

		fonts := make(map[string]*pdf.Font)
		text, err := page.GetPlainText(fonts)
		if err != nil {
			logger.Warn("Failed to extract text from page", "page", i, "file", filePath, "error", err)
			pages = append(pages, Page{Number: i})
			continue
		}

		pages = append(pages, Page{Number: i, Text: text})
	}

	return pages, nil
}
