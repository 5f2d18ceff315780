package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	GinMode     string
	CORSOrigins []string

	// Mongo holds document ingestion records
	MongoURI string
	DBName   string

	// Redis backs the task queue and rate limiting
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// Qdrant vector store
	QdrantHost       string
	QdrantPort       int
	QdrantAPIKey     string
	QdrantUseTLS     bool
	CollectionName   string
	VectorDimensions int

	// Gemini
	GeminiAPIKey    string
	GeminiModel     string
	EmbeddingsModel string
	GeminiTier      string

	// Ingestion pipeline
	DataDir      string
	MaxFileSize  int64
	MaxChunkSize int
	ChunkOverlap int
	SearchTopK   int

	RateLimitReqs   int
	RateLimitWindow int
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8501"), ","),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017/pdf_assistant"),
		DBName:   getEnv("DB_NAME", "pdf_assistant"),

		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		QdrantHost:       getEnv("QDRANT_HOST", "localhost"),
		QdrantPort:       getEnvInt("QDRANT_PORT", 6334),
		QdrantAPIKey:     getEnv("QDRANT_API_KEY", ""),
		QdrantUseTLS:     getEnvBool("QDRANT_USE_TLS", false),
		CollectionName:   getEnv("PDF_COLLECTION", "pdf-collection"),
		VectorDimensions: getEnvInt("VECTOR_DIMENSIONS", 384),

		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		EmbeddingsModel: getEnv("EMBEDDINGS_MODEL", "text-embedding-004"),
		GeminiTier:      getEnv("GEMINI_TIER", "free"),

		DataDir:      getEnv("DATA_DIR", "data"),
		MaxFileSize:  getEnvInt64("MAX_FILE_SIZE", 104857600), // 100MB
		MaxChunkSize: getEnvInt("MAX_CHUNK_SIZE", 500),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 100),
		SearchTopK:   getEnvInt("SEARCH_TOP_K", 5),

		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),
	}

	// Validate required fields
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.MaxChunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP must be non-negative and smaller than MAX_CHUNK_SIZE")
	}

	return cfg, nil
}
