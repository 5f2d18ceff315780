package vectorstore

import (
	"context"
	"fmt"
	"time"

	"pdf-knowledge-assistant/internal/config"
	"pdf-knowledge-assistant/internal/logger"

	qdrant "github.com/qdrant/go-client/qdrant"
)

// Client wraps the official Qdrant Go client with the three operations this
// system needs: ensure-collection, upsert-point, and similarity search. All
// transport and server failures propagate to the caller unmodified in
// meaning; nothing here retries.
type Client struct {
	api        *qdrant.Client
	collection string
	dimensions int
}

// NewClient connects to Qdrant and validates connectivity with an immediate
// health check. The API key is optional; its presence toggles authenticated
// client construction (Qdrant Cloud).
func NewClient(cfg *config.Config) (*Client, error) {
	api, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.QdrantHost,
		Port:   cfg.QdrantPort,
		APIKey: cfg.QdrantAPIKey,
		UseTLS: cfg.QdrantUseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize qdrant client: %w", err)
	}

	c := &Client{
		api:        api,
		collection: cfg.CollectionName,
		dimensions: cfg.VectorDimensions,
	}

	if err := c.healthCheck(); err != nil {
		return nil, err
	}

	logger.Info("Qdrant client connected", "host", cfg.QdrantHost, "port", cfg.QdrantPort, "collection", cfg.CollectionName)
	return c, nil
}

func (c *Client) healthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	resp, err := c.api.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("qdrant health check failed: %w", err)
	}

	logger.Debug("Qdrant health check passed", "version", resp.Version)
	return nil
}

// Collection returns the configured target collection name.
func (c *Client) Collection() string {
	return c.collection
}

func (c *Client) Close() error {
	return c.api.Close()
}
