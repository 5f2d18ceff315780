package services

import (
	"context"
	"path/filepath"
	"strings"

	"pdf-knowledge-assistant/internal/logger"
	"pdf-knowledge-assistant/internal/vectorstore"
	"pdf-knowledge-assistant/utils"

	"github.com/google/uuid"
)

// Embedder maps text to a unit vector. A nil vector is the "do not index"
// sentinel for empty input.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex is the vector store surface the pipeline needs. Implemented by
// *vectorstore.Client; tests substitute doubles.
type VectorIndex interface {
	EnsureCollection(ctx context.Context) error
	Upsert(ctx context.Context, p vectorstore.Point) error
	Search(ctx context.Context, vector []float32, topK int) ([]vectorstore.Hit, error)
}

// PageExtractor yields per-page text from a document on disk.
type PageExtractor interface {
	ExtractPages(ctx context.Context, filePath string) ([]Page, error)
}

// IngestStats summarizes one ingestion run for the document record.
type IngestStats struct {
	Pages        int
	ChunksStored int
}

// IngestionService converts a PDF into stored vector records: per page in
// order, extract text, chunk it, embed each non-empty chunk, and upsert it
// with provenance. Not atomic and not resumable: a failure partway leaves
// earlier records in place, and re-running duplicates them (every record
// gets a fresh identifier). The content_hash payload field makes such
// duplicates detectable.
type IngestionService struct {
	extractor PageExtractor
	embedder  Embedder
	index     VectorIndex
	chunkSize int
	overlap   int
}

func NewIngestionService(extractor PageExtractor, embedder Embedder, index VectorIndex, chunkSize, overlap int) *IngestionService {
	return &IngestionService{
		extractor: extractor,
		embedder:  embedder,
		index:     index,
		chunkSize: chunkSize,
		overlap:   overlap,
	}
}

// Ingest runs the pipeline for one file. The first error aborts the run; no
// cleanup of already-stored records is attempted.
func (s *IngestionService) Ingest(ctx context.Context, filePath string) (*IngestStats, error) {
	if err := s.index.EnsureCollection(ctx); err != nil {
		return nil, err
	}

	pages, err := s.extractor.ExtractPages(ctx, filePath)
	if err != nil {
		return nil, err
	}

	fileName := filepath.Base(filePath)
	stats := &IngestStats{Pages: len(pages)}

	for _, page := range pages {
		logger.Debug("Processing page", "page", page.Number, "file", fileName)

		for _, chunk := range ChunkText(page.Text, s.chunkSize, s.overlap) {
			if strings.TrimSpace(chunk) == "" {
				continue
			}

			vector, err := s.embedder.Embed(ctx, chunk)
			if err != nil {
				return stats, err
			}
			if len(vector) == 0 {
				continue
			}

			point := vectorstore.Point{
				ID:     uuid.NewString(),
				Vector: vector,
				Payload: map[string]any{
					"file_name":    fileName,
					"page_number":  page.Number,
					"content":      chunk,
					"content_hash": utils.ContentHash(chunk),
				},
			}
			if err := s.index.Upsert(ctx, point); err != nil {
				return stats, err
			}
			stats.ChunksStored++
		}
	}

	logger.Info("Finished processing file", "file", fileName, "pages", stats.Pages, "chunks", stats.ChunksStored)
	return stats, nil
}
