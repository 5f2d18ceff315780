package main

import (
	"context"
	"log"
	"time"

	"pdf-knowledge-assistant/internal/ai"
	"pdf-knowledge-assistant/internal/config"
	"pdf-knowledge-assistant/internal/logger"
	"pdf-knowledge-assistant/internal/queue"
	"pdf-knowledge-assistant/internal/vectorstore"
	"pdf-knowledge-assistant/services"

	"github.com/hibiken/asynq"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	// Connect to MongoDB
	mongoClient, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		mongoClient.Disconnect(ctx)
	}()
	documents := mongoClient.Database(cfg.DBName).Collection("documents")

	// Vector store
	vectorClient, err := vectorstore.NewClient(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Qdrant:", err)
	}
	defer vectorClient.Close()

	// Gemini embeddings
	embedder, err := ai.NewEmbeddingService(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize embedding service:", err)
	}
	defer embedder.Close()

	// Ingestion pipeline
	extractor := services.NewPDFExtractor(cfg.MaxFileSize)
	ingestor := services.NewIngestionService(extractor, embedder, vectorClient, cfg.MaxChunkSize, cfg.ChunkOverlap)

	// Redis options for Asynq
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	// Create Asynq server
	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			StrictPriority: true,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("Task failed", "type", task.Type(), "error", err)
			}),
		},
	)

	// Create task processor
	processor := queue.NewTaskProcessor(ingestor, documents)

	// Create mux and register handlers
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskIngestPDF, processor.ProcessPDF)

	logger.Info("Starting ingestion worker",
		"concurrency", 10,
		"redis", redisOpt.Addr,
	)

	// Start the server
	if err := server.Run(mux); err != nil {
		log.Fatal("Failed to start worker:", err)
	}
}
