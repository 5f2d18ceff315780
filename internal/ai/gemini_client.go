package ai

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"pdf-knowledge-assistant/internal/config"
	"pdf-knowledge-assistant/internal/telemetry"
	"pdf-knowledge-assistant/models"
	"pdf-knowledge-assistant/utils"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	genai "github.com/google/generative-ai-go/genai"
)

const (
	knowledgeOnlyPrompt = "You are an analytical assistant. " +
		"Answer the user's question using only your own general knowledge. " +
		"Do not rely on any external documents or context. " +
		"If you genuinely do not know the answer, respond that you are unable to answer."

	agentPrompt = "You are an analytical assistant. " +
		"Use the extracted document chunks to answer the user's query. " +
		"Only use information present in the extracted data. " +
		"If the answer is not in the data, say that it was not found."
)

// GeminiClient synthesizes answers, either from the model's own knowledge or
// grounded in retrieved document chunks. Wraps the Gemini SDK with a circuit
// breaker and a client-side rate limiter.
type GeminiClient struct {
	client      *genai.Client
	model       string
	breaker     *gobreaker.CircuitBreaker
	rateLimiter *rate.Limiter
	metrics     *telemetry.Metrics
}

type RateLimits struct {
	RPM int // Requests per minute
	TPM int // Tokens per minute
	RPD int // Requests per day
}

// NewGeminiClient builds the shared answer-generation client. metrics may be
// nil, in which case token usage is not recorded.
func NewGeminiClient(ctx context.Context, cfg *config.Config, metrics *telemetry.Metrics) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, err
	}

	limits := getRateLimits(cfg.GeminiTier)

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "GeminiAPI",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Printf("Circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	// RPM limit with some buffer
	rateLimiter := rate.NewLimiter(rate.Limit(float64(limits.RPM)*0.9/60.0), limits.RPM/10+1)

	return &GeminiClient{
		client:      client,
		model:       cfg.GeminiModel,
		breaker:     breaker,
		rateLimiter: rateLimiter,
		metrics:     metrics,
	}, nil
}

func getRateLimits(tier string) RateLimits {
	switch tier {
	case "free":
		return RateLimits{RPM: 10, TPM: 250000, RPD: 250}
	case "tier1":
		return RateLimits{RPM: 1000, TPM: 1000000, RPD: 10000}
	case "tier2":
		return RateLimits{RPM: 2000, TPM: 4000000, RPD: 50000}
	default:
		return RateLimits{RPM: 10, TPM: 250000, RPD: 250}
	}
}

// Answer responds to the query from the model's general knowledge alone. No
// retrieval context is consulted.
func (gc *GeminiClient) Answer(ctx context.Context, query string) (string, error) {
	userPrompt := fmt.Sprintf("User Query:\n%s\n\nProvide the best possible answer.", query)
	return gc.generate(ctx, knowledgeOnlyPrompt, userPrompt, 0)
}

// AnswerWithContext responds to the query grounded only in the supplied
// search results. Retrieval order is relevance order and is preserved in the
// prompt.
func (gc *GeminiClient) AnswerWithContext(ctx context.Context, query string, results []models.SearchResult) (string, error) {
	blocks := make([]string, 0, len(results))
	for _, r := range results {
		blocks = append(blocks, fmt.Sprintf("From file: %s (page %d)\nContent:\n%s", r.FileName, r.PageNumber, r.Content))
	}
	contextText := strings.Join(blocks, "\n\n---\n\n")

	userPrompt := fmt.Sprintf(
		"User query:\n%s\n\nExtracted data:\n%s\n\nPlease analyze the above and provide the best possible answer.",
		query, contextText,
	)
	return gc.generate(ctx, agentPrompt, userPrompt, len(results))
}

func (gc *GeminiClient) generate(ctx context.Context, systemPrompt, userPrompt string, contextChunks int) (string, error) {
	tracer := otel.Tracer("gemini-client")
	ctx, span := tracer.Start(ctx, "gemini.generate_content")
	defer span.End()

	span.SetAttributes(
		attribute.String("gemini.model", gc.model),
		attribute.Int("gemini.context_chunks", contextChunks),
	)

	if err := gc.rateLimiter.Wait(ctx); err != nil {
		span.SetAttributes(attribute.Bool("gemini.rate_limited", true))
		return "", utils.UpstreamError("rate limiter interrupted", err)
	}

	result, err := gc.breaker.Execute(func() (interface{}, error) {
		model := gc.client.GenerativeModel(gc.model)
		model.SetTemperature(0.1)
		model.SetMaxOutputTokens(2048)
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemPrompt)},
		}

		resp, err := model.GenerateContent(ctx, genai.Text(userPrompt))
		if err != nil {
			return nil, err
		}
		return resp, nil
	})

	if err != nil {
		span.SetAttributes(attribute.Bool("gemini.error", true))
		if err == gobreaker.ErrOpenState {
			span.SetAttributes(attribute.Bool("gemini.circuit_breaker_open", true))
		}
		return "", utils.UpstreamError("language model call failed", err)
	}

	resp := result.(*genai.GenerateContentResponse)
	text := extractText(resp)
	if text == "" {
		return "", utils.UpstreamError("language model returned no answer", nil)
	}

	tokens := TokensUsed(resp)
	span.SetAttributes(
		attribute.Bool("gemini.success", true),
		attribute.Int("gemini.tokens_used", tokens),
	)
	if gc.metrics != nil {
		gc.metrics.RecordTokensUsed(int64(tokens), gc.model)
	}
	return text, nil
}

// extractText concatenates the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}

// TokensUsed extracts total token usage from a response, estimating from
// text length when the metadata is absent.
func TokensUsed(resp *genai.GenerateContentResponse) int {
	if resp.UsageMetadata != nil {
		return int(resp.UsageMetadata.TotalTokenCount)
	}
	estimated := len(extractText(resp)) / 4
	if estimated < 1 {
		estimated = 1
	}
	return estimated
}

// Close the client
func (gc *GeminiClient) Close() error {
	if gc.client != nil {
		return gc.client.Close()
	}
	return nil
}
