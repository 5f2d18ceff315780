package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pdf-knowledge-assistant/internal/ai"
	"pdf-knowledge-assistant/internal/config"
	"pdf-knowledge-assistant/internal/logger"
	"pdf-knowledge-assistant/internal/telemetry"
	"pdf-knowledge-assistant/internal/vectorstore"
	"pdf-knowledge-assistant/middleware"
	"pdf-knowledge-assistant/routes"
	"pdf-knowledge-assistant/services"

	"github.com/gin-gonic/gin"
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

	// Initialize tracing
	shutdownTracer, err := telemetry.InitTracer("pdf-knowledge-assistant")
	if err != nil {
		logger.Warn("Tracing disabled", "error", err)
	} else {
		defer shutdownTracer()
	}

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		logger.Warn("Metrics disabled", "error", err)
	}

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

	// Connect to Redis (rate limiting + task queue)
	redisClient, err := config.ConnectRedis(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	// Vector store
	vectorClient, err := vectorstore.NewClient(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Qdrant:", err)
	}
	defer vectorClient.Close()

	// Gemini embeddings and answer generation
	embedder, err := ai.NewEmbeddingService(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize embedding service:", err)
	}
	defer embedder.Close()

	geminiClient, err := ai.NewGeminiClient(ctx, cfg, metrics)
	if err != nil {
		log.Fatal("Failed to initialize Gemini client:", err)
	}
	defer geminiClient.Close()

	// Ingestion and retrieval pipelines
	extractor := services.NewPDFExtractor(cfg.MaxFileSize)
	ingestor := services.NewIngestionService(extractor, embedder, vectorClient, cfg.MaxChunkSize, cfg.ChunkOverlap)
	retriever := services.NewRetrievalService(embedder, vectorClient, cfg.SearchTopK)

	// Asynq client for async uploads
	queueClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer queueClient.Close()

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddlewareWithOrigins(cfg.CORSOrigins))
	router.Use(middleware.TracingMiddleware())
	router.Use(middleware.EnrichTrace())
	if metrics != nil {
		router.Use(middleware.MetricsMiddleware(metrics))
	}
	router.Use(middleware.RateLimitMiddleware(redisClient, cfg))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})

	// Setup routes
	routes.SetupSearchRoutes(router, cfg, retriever, geminiClient, metrics)
	routes.SetupUploadRoutes(router, cfg, ingestor, documents, queueClient, metrics)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
