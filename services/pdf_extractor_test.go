package services

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"pdf-knowledge-assistant/utils"
)

func TestExtractPagesMissingFile(t *testing.T) {
	extractor := NewPDFExtractor(0)

	_, err := extractor.ExtractPages(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if utils.KindOf(err) != utils.KindProcessing {
		t.Errorf("expected processing kind, got %v", utils.KindOf(err))
	}
}

func TestExtractPagesSizeCap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.pdf")
	if err := os.WriteFile(path, bytes.Repeat([]byte("a"), 2048), 0600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	extractor := NewPDFExtractor(1024)
	_, err := extractor.ExtractPages(context.Background(), path)
	if err == nil {
		t.Fatal("expected error for oversized file")
	}
	if utils.KindOf(err) != utils.KindProcessing {
		t.Errorf("expected processing kind, got %v", utils.KindOf(err))
	}
}

func TestExtractPagesUnparseableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.pdf")
	if err := os.WriteFile(path, []byte("this is not a pdf"), 0600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	extractor := NewPDFExtractor(0)
	_, err := extractor.ExtractPages(context.Background(), path)
	if err == nil {
		t.Fatal("expected parse error for corrupt file")
	}
	if utils.KindOf(err) != utils.KindProcessing {
		t.Errorf("expected processing kind, got %v", utils.KindOf(err))
	}
}

func TestExtractPagesExpiredContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), -1)
	defer cancel()

	extractor := NewPDFExtractor(0)
	_, err := extractor.ExtractPages(ctx, "irrelevant.pdf")
	if err == nil {
		t.Fatal("expected error for expired context")
	}
}
