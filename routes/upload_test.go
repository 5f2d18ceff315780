package routes

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"pdf-knowledge-assistant/internal/config"
	"pdf-knowledge-assistant/services"
	"pdf-knowledge-assistant/utils"

	"github.com/gin-gonic/gin"
)

type stubIngestor struct {
	calls int
	stats *services.IngestStats
	err   error
}

func (s *stubIngestor) Ingest(ctx context.Context, filePath string) (*services.IngestStats, error) {
	s.calls++
	if s.err != nil {
		return &services.IngestStats{}, s.err
	}
	return s.stats, nil
}

func newUploadRouter(t *testing.T, ingestor Ingestor) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	dataDir := t.TempDir()
	cfg := &config.Config{DataDir: dataDir, MaxFileSize: 1 << 20}
	SetupUploadRoutes(router, cfg, ingestor, nil, nil, nil)
	return router, dataDir
}

func multipartPDF(t *testing.T, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("creating multipart part: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("writing part content: %v", err)
	}
	writer.Close()
	return &buf, writer.FormDataContentType()
}

func postUpload(router *gin.Engine, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/upload-pdf", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUploadPDFSuccess(t *testing.T) {
	ingestor := &stubIngestor{stats: &services.IngestStats{Pages: 2, ChunksStored: 5}}
	router, dataDir := newUploadRouter(t, ingestor)

	body, contentType := multipartPDF(t, "report.pdf", "application/pdf", []byte("%PDF-1.4 fake"))
	w := postUpload(router, body, contentType)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ingestor.calls != 1 {
		t.Fatalf("expected 1 ingestion, got %d", ingestor.calls)
	}

	saved := filepath.Join(dataDir, "report.pdf")
	data, err := os.ReadFile(saved)
	if err != nil {
		t.Fatalf("uploaded file not saved: %v", err)
	}
	if string(data) != "%PDF-1.4 fake" {
		t.Errorf("saved content mismatch: %q", data)
	}
}

func TestUploadRejectsNonPDFWithoutSideEffects(t *testing.T) {
	ingestor := &stubIngestor{}
	router, dataDir := newUploadRouter(t, ingestor)

	body, contentType := multipartPDF(t, "notes.txt", "text/plain", []byte("plain text"))
	w := postUpload(router, body, contentType)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if ingestor.calls != 0 {
		t.Errorf("rejected upload reached the ingestor")
	}

	entries, err := os.ReadDir(dataDir)
	if err == nil && len(entries) != 0 {
		t.Errorf("rejected upload left %d files on disk", len(entries))
	}
}

func TestUploadRejectsMissingFile(t *testing.T) {
	router, _ := newUploadRouter(t, &stubIngestor{})

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	writer.WriteField("other", "value")
	writer.Close()

	w := postUpload(router, &buf, writer.FormDataContentType())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing file field, got %d", w.Code)
	}
}

func TestUploadOverwritesOnCollision(t *testing.T) {
	ingestor := &stubIngestor{stats: &services.IngestStats{Pages: 1, ChunksStored: 1}}
	router, dataDir := newUploadRouter(t, ingestor)

	for _, content := range []string{"first version", "second version"} {
		body, contentType := multipartPDF(t, "same.pdf", "application/pdf", []byte(content))
		w := postUpload(router, body, contentType)
		if w.Code != http.StatusOK {
			t.Fatalf("upload failed: %d %s", w.Code, w.Body.String())
		}
	}

	data, err := os.ReadFile(filepath.Join(dataDir, "same.pdf"))
	if err != nil {
		t.Fatalf("reading saved file: %v", err)
	}
	if string(data) != "second version" {
		t.Errorf("collision did not overwrite: %q", data)
	}
}

func TestUploadIngestionFailureKeepsFile(t *testing.T) {
	ingestor := &stubIngestor{err: utils.ProcessingError("failed to parse file", nil)}
	router, dataDir := newUploadRouter(t, ingestor)

	body, contentType := multipartPDF(t, "broken.pdf", "application/pdf", []byte("not really a pdf"))
	w := postUpload(router, body, contentType)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for processing failure, got %d: %s", w.Code, w.Body.String())
	}
	if _, err := os.Stat(filepath.Join(dataDir, "broken.pdf")); err != nil {
		t.Errorf("file should survive a failed ingestion: %v", err)
	}
}

func TestUploadUpstreamFailureMapsTo502(t *testing.T) {
	ingestor := &stubIngestor{err: utils.UpstreamError("embedding model call failed", nil)}
	router, _ := newUploadRouter(t, ingestor)

	body, contentType := multipartPDF(t, "doc.pdf", "application/pdf", []byte("%PDF"))
	w := postUpload(router, body, contentType)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", w.Code, w.Body.String())
	}
}
