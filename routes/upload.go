package routes

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"pdf-knowledge-assistant/internal/config"
	"pdf-knowledge-assistant/internal/queue"
	"pdf-knowledge-assistant/internal/telemetry"
	"pdf-knowledge-assistant/models"
	"pdf-knowledge-assistant/services"
	"pdf-knowledge-assistant/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Ingestor runs the ingestion pipeline for one saved file.
type Ingestor interface {
	Ingest(ctx context.Context, filePath string) (*services.IngestStats, error)
}

// SetupUploadRoutes registers the upload and document-status endpoints.
// queueClient may be nil, in which case the async endpoint is not exposed.
func SetupUploadRoutes(router *gin.Engine, cfg *config.Config, ingestor Ingestor, documents *mongo.Collection, queueClient *asynq.Client, metrics *telemetry.Metrics) {
	router.POST("/upload-pdf", handlePDFUpload(cfg, ingestor, documents, metrics))
	if queueClient != nil {
		router.POST("/upload-pdf/async", handleAsyncPDFUpload(cfg, documents, queueClient))
	}
	router.GET("/documents/:id/status", checkDocumentStatus(documents))
	router.GET("/documents", listDocuments(documents))
}

// savePDFUpload validates the multipart upload and writes it flat under the
// data directory by original filename; collisions silently overwrite. A nil
// document pointer means validation failed and nothing was written.
func savePDFUpload(c *gin.Context, cfg *config.Config) *models.Document {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "no_file", "No PDF file provided", nil)
		return nil
	}
	defer file.Close()

	if header.Header.Get("Content-Type") != "application/pdf" {
		utils.RespondWithError(c, http.StatusBadRequest, "invalid_file_type", "File must be a PDF.", nil)
		return nil
	}

	if header.Size > cfg.MaxFileSize {
		utils.RespondWithError(c, http.StatusBadRequest, "file_too_large", "File size exceeds maximum limit", nil)
		return nil
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		utils.RespondWithInternalError(c, "Failed to create upload directory", nil)
		return nil
	}

	savePath := filepath.Join(cfg.DataDir, filepath.Base(header.Filename))
	dst, err := os.OpenFile(savePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		utils.RespondWithInternalError(c, "Failed to open destination", nil)
		return nil
	}
	defer dst.Close()
	if _, err := io.Copy(dst, io.LimitReader(file, cfg.MaxFileSize)); err != nil {
		utils.RespondWithInternalError(c, "Failed to save file", nil)
		return nil
	}

	return &models.Document{
		ID:         uuid.NewString(),
		FileName:   filepath.Base(header.Filename),
		FilePath:   savePath,
		Size:       header.Size,
		UploadedAt: time.Now(),
	}
}

func handlePDFUpload(cfg *config.Config, ingestor Ingestor, documents *mongo.Collection, metrics *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc := savePDFUpload(c, cfg)
		if doc == nil {
			return
		}
		doc.Status = models.StatusProcessing

		if hash, err := utils.FileHash(doc.FilePath); err == nil {
			doc.FileHash = hash
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Minute)
		defer cancel()

		if documents != nil {
			if _, err := documents.InsertOne(ctx, doc); err != nil {
				utils.RespondWithInternalError(c, "Failed to create document record", gin.H{"error": err.Error()})
				return
			}
		}

		start := time.Now()
		stats, err := ingestor.Ingest(ctx, doc.FilePath)
		if err != nil {
			// The file stays saved; only the processing outcome is reported.
			markDocument(ctx, documents, doc.ID, bson.M{
				"status":        models.StatusFailed,
				"error_message": err.Error(),
			})
			if metrics != nil {
				metrics.RecordIngestion(time.Since(start).Seconds(), 0, "failed")
			}
			utils.RespondWithAppError(c, err)
			return
		}

		now := time.Now()
		markDocument(ctx, documents, doc.ID, bson.M{
			"status":       models.StatusCompleted,
			"pages":        stats.Pages,
			"chunk_count":  stats.ChunksStored,
			"processed_at": now,
		})
		if metrics != nil {
			metrics.RecordIngestion(time.Since(start).Seconds(), int64(stats.ChunksStored), "completed")
		}

		c.JSON(http.StatusOK, models.UploadResponse{Status: "ok", SavedPath: doc.FilePath})
	}
}

func handleAsyncPDFUpload(cfg *config.Config, documents *mongo.Collection, queueClient *asynq.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc := savePDFUpload(c, cfg)
		if doc == nil {
			return
		}
		doc.Status = models.StatusPending

		if hash, err := utils.FileHash(doc.FilePath); err == nil {
			doc.FileHash = hash
		}

		ctx := c.Request.Context()
		if _, err := documents.InsertOne(ctx, doc); err != nil {
			utils.RespondWithInternalError(c, "Failed to create document record", gin.H{"error": err.Error()})
			return
		}

		task, err := queue.NewPDFIngestTask(doc.ID, doc.FilePath)
		if err != nil {
			markDocument(ctx, documents, doc.ID, bson.M{"status": models.StatusFailed, "error_message": err.Error()})
			utils.RespondWithInternalError(c, "Failed to create ingestion task", nil)
			return
		}

		info, err := queueClient.Enqueue(task)
		if err != nil {
			markDocument(ctx, documents, doc.ID, bson.M{"status": models.StatusFailed, "error_message": err.Error()})
			utils.RespondWithInternalError(c, "Failed to enqueue ingestion task", nil)
			return
		}

		c.JSON(http.StatusAccepted, gin.H{
			"message":     "PDF upload accepted for processing",
			"document_id": doc.ID,
			"task_id":     info.ID,
			"status":      doc.Status,
			"saved_path":  doc.FilePath,
		})
	}
}

func checkDocumentStatus(documents *mongo.Collection) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		var doc models.Document
		err := documents.FindOne(c.Request.Context(), bson.M{"_id": id}).Decode(&doc)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				utils.RespondWithNotFound(c, "Document not found")
				return
			}
			utils.RespondWithInternalError(c, "Failed to retrieve document status", nil)
			return
		}

		c.JSON(http.StatusOK, doc)
	}
}

func listDocuments(documents *mongo.Collection) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		cursor, err := documents.Find(ctx, bson.M{},
			options.Find().SetSort(bson.M{"uploaded_at": -1}).SetLimit(100))
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to retrieve documents", nil)
			return
		}
		defer cursor.Close(ctx)

		docs := []models.Document{}
		if err := cursor.All(ctx, &docs); err != nil {
			utils.RespondWithInternalError(c, "Failed to decode documents", nil)
			return
		}

		c.JSON(http.StatusOK, gin.H{"documents": docs})
	}
}

func markDocument(ctx context.Context, documents *mongo.Collection, id string, update bson.M) {
	if documents == nil {
		return
	}
	// Best effort; the upload outcome is reported regardless.
	documents.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
}
