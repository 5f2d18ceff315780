package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"pdf-knowledge-assistant/internal/logger"
	"pdf-knowledge-assistant/models"
	"pdf-knowledge-assistant/services"
)

const TaskIngestPDF = "pdf:ingest"

type PDFIngestPayload struct {
	DocumentID string `json:"document_id"`
	FilePath   string `json:"file_path"`
}

// NewPDFIngestTask builds the background ingestion task for one uploaded
// document. Retries are disabled: re-running a partially ingested file
// duplicates its already-stored chunks, so failures stay terminal and
// visible in the document record instead.
func NewPDFIngestTask(documentID, filePath string) (*asynq.Task, error) {
	payload, err := json.Marshal(PDFIngestPayload{
		DocumentID: documentID,
		FilePath:   filePath,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskIngestPDF,
		payload,
		asynq.MaxRetry(0),
		asynq.Timeout(10*time.Minute),
		asynq.Queue("critical"),
	), nil
}

// TaskProcessor executes ingestion tasks, tracking progress in the Mongo
// document record.
type TaskProcessor struct {
	ingestor  *services.IngestionService
	documents *mongo.Collection
}

func NewTaskProcessor(ingestor *services.IngestionService, documents *mongo.Collection) *TaskProcessor {
	return &TaskProcessor{
		ingestor:  ingestor,
		documents: documents,
	}
}

func (p *TaskProcessor) ProcessPDF(ctx context.Context, t *asynq.Task) error {
	var payload PDFIngestPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	logger.Info("Starting background ingestion", "document_id", payload.DocumentID, "file", payload.FilePath)
	p.setStatus(ctx, payload.DocumentID, bson.M{"status": models.StatusProcessing})

	stats, err := p.ingestor.Ingest(ctx, payload.FilePath)
	if err != nil {
		update := bson.M{
			"status":        models.StatusFailed,
			"error_message": err.Error(),
		}
		if stats != nil {
			update["pages"] = stats.Pages
			update["chunk_count"] = stats.ChunksStored
		}
		p.setStatus(ctx, payload.DocumentID, update)
		return fmt.Errorf("ingestion failed for %s: %v: %w", payload.DocumentID, err, asynq.SkipRetry)
	}

	now := time.Now()
	p.setStatus(ctx, payload.DocumentID, bson.M{
		"status":       models.StatusCompleted,
		"pages":        stats.Pages,
		"chunk_count":  stats.ChunksStored,
		"processed_at": now,
	})

	logger.Info("Background ingestion completed", "document_id", payload.DocumentID, "chunks", stats.ChunksStored)
	return nil
}

func (p *TaskProcessor) setStatus(ctx context.Context, documentID string, update bson.M) {
	_, err := p.documents.UpdateOne(ctx, bson.M{"_id": documentID}, bson.M{"$set": update})
	if err != nil {
		// Status tracking must not fail the pipeline itself.
		logger.Error("Failed to update document status", "document_id", documentID, "error", err)
	}
}
