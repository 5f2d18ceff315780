package utils

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	if got := KindOf(ValidationError("bad input")); got != KindValidation {
		t.Errorf("expected KindValidation, got %v", got)
	}
	if got := KindOf(UpstreamError("gateway down", nil)); got != KindUpstream {
		t.Errorf("expected KindUpstream, got %v", got)
	}
	if got := KindOf(ProcessingError("parse failed", nil)); got != KindProcessing {
		t.Errorf("expected KindProcessing, got %v", got)
	}
	if got := KindOf(errors.New("unclassified")); got != KindProcessing {
		t.Errorf("unclassified errors should default to KindProcessing, got %v", got)
	}
}

func TestKindOfWrappedError(t *testing.T) {
	wrapped := fmt.Errorf("pipeline step: %w", UpstreamError("model unavailable", nil))
	if got := KindOf(wrapped); got != KindUpstream {
		t.Errorf("kind lost through wrapping: got %v", got)
	}
}

func TestAppErrorMessage(t *testing.T) {
	cause := errors.New("connection refused")
	err := UpstreamError("vector store unreachable", cause)

	if !errors.Is(err, cause) {
		t.Error("cause not reachable through Unwrap")
	}
	msg := err.Error()
	if msg != "vector store unreachable: connection refused" {
		t.Errorf("unexpected message: %q", msg)
	}

	bare := ValidationError("query must not be empty")
	if bare.Error() != "query must not be empty" {
		t.Errorf("unexpected message without cause: %q", bare.Error())
	}
}
