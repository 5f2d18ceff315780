package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"pdf-knowledge-assistant/internal/vectorstore"
)

type stubExtractor struct {
	pages []Page
	err   error
}

func (s *stubExtractor) ExtractPages(ctx context.Context, filePath string) ([]Page, error) {
	return s.pages, s.err
}

type stubEmbedder struct {
	err   error
	calls []string
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.calls = append(s.calls, text)
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	// Deterministic dummy vector keyed on length.
	return []float32{float32(len(text)), 1, 0}, nil
}

type stubIndex struct {
	ensured   int
	points    []vectorstore.Point
	hits      []vectorstore.Hit
	upsertErr error
	searchErr error
}

func (s *stubIndex) EnsureCollection(ctx context.Context) error {
	s.ensured++
	return nil
}

func (s *stubIndex) Upsert(ctx context.Context, p vectorstore.Point) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.points = append(s.points, p)
	return nil
}

func (s *stubIndex) Search(ctx context.Context, vector []float32, topK int) ([]vectorstore.Hit, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	if topK < len(s.hits) {
		return s.hits[:topK], nil
	}
	return s.hits, nil
}

func TestIngestStoresChunksWithProvenance(t *testing.T) {
	extractor := &stubExtractor{pages: []Page{
		{Number: 1, Text: "The capital of France is Paris."},
		{Number: 2, Text: "   "},
	}}
	index := &stubIndex{}
	svc := NewIngestionService(extractor, &stubEmbedder{}, index, 500, 100)

	stats, err := svc.Ingest(context.Background(), "/tmp/report.pdf")
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if index.ensured == 0 {
		t.Fatal("collection was never ensured")
	}
	if stats.Pages != 2 {
		t.Errorf("expected 2 pages, got %d", stats.Pages)
	}
	if stats.ChunksStored != 1 {
		t.Fatalf("expected 1 stored chunk, got %d", stats.ChunksStored)
	}

	p := index.points[0]
	if p.ID == "" {
		t.Error("point has no identifier")
	}
	if got := p.Payload["file_name"]; got != "report.pdf" {
		t.Errorf("file_name: expected report.pdf, got %v", got)
	}
	if got := p.Payload["page_number"]; got != 1 {
		t.Errorf("page_number: expected 1, got %v", got)
	}
	if got := p.Payload["content"]; got != "The capital of France is Paris." {
		t.Errorf("content: got %v", got)
	}
	if hash, ok := p.Payload["content_hash"].(string); !ok || hash == "" {
		t.Errorf("content_hash missing: %v", p.Payload["content_hash"])
	}
}

func TestIngestReingestDuplicatesWithFreshIDs(t *testing.T) {
	extractor := &stubExtractor{pages: []Page{{Number: 1, Text: "same content"}}}
	index := &stubIndex{}
	svc := NewIngestionService(extractor, &stubEmbedder{}, index, 500, 100)

	for i := 0; i < 2; i++ {
		if _, err := svc.Ingest(context.Background(), "doc.pdf"); err != nil {
			t.Fatalf("ingest %d failed: %v", i, err)
		}
	}

	if len(index.points) != 2 {
		t.Fatalf("expected 2 stored points, got %d", len(index.points))
	}
	if index.points[0].ID == index.points[1].ID {
		t.Error("re-ingestion reused a point identifier")
	}
	if index.points[0].Payload["content_hash"] != index.points[1].Payload["content_hash"] {
		t.Error("identical content produced different hashes")
	}
}

func TestIngestSkipsWhitespaceChunks(t *testing.T) {
	// Window sized so the middle chunk is pure whitespace.
	extractor := &stubExtractor{pages: []Page{{Number: 1, Text: "abc   xyz"}}}
	index := &stubIndex{}
	embedder := &stubEmbedder{}
	svc := NewIngestionService(extractor, embedder, index, 3, 0)

	stats, err := svc.Ingest(context.Background(), "doc.pdf")
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if stats.ChunksStored != 2 {
		t.Fatalf("expected 2 stored chunks, got %d", stats.ChunksStored)
	}
	for _, call := range embedder.calls {
		if strings.TrimSpace(call) == "" {
			t.Errorf("whitespace chunk %q reached the embedder", call)
		}
	}
}

func TestIngestSkipsNilVectorSentinel(t *testing.T) {
	extractor := &stubExtractor{pages: []Page{{Number: 1, Text: "abc"}}}
	index := &stubIndex{}
	svc := NewIngestionService(extractor, &nilVectorEmbedder{}, index, 500, 0)

	stats, err := svc.Ingest(context.Background(), "doc.pdf")
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if stats.ChunksStored != 0 {
		t.Errorf("expected 0 stored chunks, got %d", stats.ChunksStored)
	}
	if len(index.points) != 0 {
		t.Errorf("nil vector was indexed: %v", index.points)
	}
}

type nilVectorEmbedder struct{}

func (nilVectorEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, nil
}

func TestIngestAbortsOnEmbedderError(t *testing.T) {
	extractor := &stubExtractor{pages: []Page{
		{Number: 1, Text: "first page"},
		{Number: 2, Text: "second page"},
	}}
	index := &stubIndex{}
	embedder := &failAfterEmbedder{failAfter: 1}
	svc := NewIngestionService(extractor, embedder, index, 500, 0)

	stats, err := svc.Ingest(context.Background(), "doc.pdf")
	if err == nil {
		t.Fatal("expected an error from the failing embedder")
	}
	// Records stored before the failure stay in place.
	if stats == nil || stats.ChunksStored != 1 {
		t.Fatalf("expected 1 chunk stored before the failure, got %+v", stats)
	}
	if len(index.points) != 1 {
		t.Fatalf("expected 1 surviving point, got %d", len(index.points))
	}
}

type failAfterEmbedder struct {
	failAfter int
	calls     int
}

func (e *failAfterEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.calls++
	if e.calls > e.failAfter {
		return nil, errors.New("embedding model unavailable")
	}
	return []float32{1, 0, 0}, nil
}

func TestIngestAbortsOnUpsertError(t *testing.T) {
	extractor := &stubExtractor{pages: []Page{{Number: 1, Text: "content"}}}
	index := &stubIndex{upsertErr: errors.New("qdrant unavailable")}
	svc := NewIngestionService(extractor, &stubEmbedder{}, index, 500, 0)

	stats, err := svc.Ingest(context.Background(), "doc.pdf")
	if err == nil {
		t.Fatal("expected upsert error to propagate")
	}
	if stats == nil || stats.ChunksStored != 0 {
		t.Fatalf("expected 0 stored chunks, got %+v", stats)
	}
}
