package services

import (
	"context"
	"strings"

	"pdf-knowledge-assistant/models"
	"pdf-knowledge-assistant/utils"
)

// RetrievalService embeds a query and returns the top-matching stored chunks
// in descending similarity order. Read-only and safe to call concurrently.
type RetrievalService struct {
	embedder    Embedder
	index       VectorIndex
	defaultTopK int
}

func NewRetrievalService(embedder Embedder, index VectorIndex, defaultTopK int) *RetrievalService {
	if defaultTopK <= 0 {
		defaultTopK = 5
	}
	return &RetrievalService{
		embedder:    embedder,
		index:       index,
		defaultTopK: defaultTopK,
	}
}

// Retrieve returns up to topK results for the query. topK <= 0 selects the
// configured default. A whitespace-only query is rejected as a validation
// error rather than searching with a degenerate vector.
func (s *RetrievalService) Retrieve(ctx context.Context, query string, topK int) ([]models.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, utils.ValidationError("query must not be empty")
	}
	if topK <= 0 {
		topK = s.defaultTopK
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	hits, err := s.index.Search(ctx, vector, topK)
	if err != nil {
		return nil, err
	}

	results := make([]models.SearchResult, 0, len(hits))
	for _, hit := range hits {
		// Missing payload fields get defensive defaults, not errors.
		results = append(results, models.SearchResult{
			Content:    hit.PayloadString("content", ""),
			Score:      hit.Score,
			PageNumber: hit.PayloadInt("page_number", -1),
			FileName:   hit.PayloadString("file_name", ""),
		})
	}
	return results, nil
}
