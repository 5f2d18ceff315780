package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestContentHashDeterministic(t *testing.T) {
	a := ContentHash("The capital of France is Paris.")
	b := ContentHash("The capital of France is Paris.")
	if a != b {
		t.Fatalf("identical content hashed differently: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
	if c := ContentHash("different content"); c == a {
		t.Error("different content collided")
	}
}

func TestFileHash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(path, []byte("file body"), 0600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	h1, err := FileHash(path)
	if err != nil {
		t.Fatalf("hashing file: %v", err)
	}
	h2, err := FileHash(path)
	if err != nil {
		t.Fatalf("hashing file: %v", err)
	}
	if h1 != h2 {
		t.Error("file hash not deterministic")
	}
	if h1 != ContentHash("file body") {
		t.Error("file hash differs from content hash of the same bytes")
	}

	if _, err := FileHash(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}
