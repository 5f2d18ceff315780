package models

import "time"

// Document is the Mongo record tracking one uploaded PDF through ingestion.
// The vector store holds the chunks; this record holds only metadata and
// processing status so clients can poll async ingestion.
type Document struct {
	ID           string     `bson:"_id" json:"id"`
	FileName     string     `bson:"file_name" json:"file_name"`
	FilePath     string     `bson:"file_path" json:"file_path"`
	Size         int64      `bson:"size" json:"size"`
	FileHash     string     `bson:"file_hash,omitempty" json:"file_hash,omitempty"`
	Status       string     `bson:"status" json:"status"`
	Pages        int        `bson:"pages" json:"pages"`
	ChunkCount   int        `bson:"chunk_count" json:"chunk_count"`
	ErrorMessage string     `bson:"error_message,omitempty" json:"error_message,omitempty"`
	UploadedAt   time.Time  `bson:"uploaded_at" json:"uploaded_at"`
	ProcessedAt  *time.Time `bson:"processed_at,omitempty" json:"processed_at,omitempty"`
}

// Document status lifecycle. Sync uploads go straight from processing to a
// terminal state; async uploads start at pending.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// UploadResponse is returned by POST /upload-pdf on success.
type UploadResponse struct {
	Status    string `json:"status"`
	SavedPath string `json:"saved_path"`
}
