package ai

import (
	"context"
	"math"
	"strings"

	"pdf-knowledge-assistant/internal/config"
	"pdf-knowledge-assistant/utils"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// EmbeddingService maps text to fixed-length unit vectors using the
// configured Gemini embedding model. Constructed once at startup and shared;
// the underlying model is frozen, so identical text yields identical vectors.
type EmbeddingService struct {
	client *genai.Client
	model  string
	dim    int
}

func NewEmbeddingService(ctx context.Context, cfg *config.Config) (*EmbeddingService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, err
	}
	return &EmbeddingService{
		client: client,
		model:  cfg.EmbeddingsModel,
		dim:    cfg.VectorDimensions,
	}, nil
}

// Embed returns the L2-normalized embedding of text. Empty or
// whitespace-only input returns a nil vector without touching the model;
// callers must treat a nil vector as "do not index" and skip it.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	model := s.client.EmbeddingModel(s.model)
	resp, err := model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, utils.UpstreamError("embedding model call failed", err)
	}
	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, utils.UpstreamError("embedding model returned no vector", nil)
	}

	return normalize(resp.Embedding.Values), nil
}

// Dimensions reports the configured vector size of the target collection.
func (s *EmbeddingService) Dimensions() int {
	return s.dim
}

func (s *EmbeddingService) Close() error {
	return s.client.Close()
}

// normalize scales v to unit L2 norm so cosine similarity downstream is a
// plain dot product. A zero vector is returned unchanged.
func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := math.Sqrt(sum)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}
