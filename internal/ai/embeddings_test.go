package ai

import (
	"context"
	"math"
	"testing"
)

func TestEmbedEmptyInputSkipsModel(t *testing.T) {
	// Empty input must be answered before any model call, so a service with
	// no client is safe here.
	svc := &EmbeddingService{model: "text-embedding-004", dim: 384}

	for _, text := range []string{"", "   ", "\n\t "} {
		vec, err := svc.Embed(context.Background(), text)
		if err != nil {
			t.Errorf("input %q: unexpected error %v", text, err)
		}
		if vec != nil {
			t.Errorf("input %q: expected nil sentinel, got %v", text, vec)
		}
	}
}

func TestNormalizeUnitLength(t *testing.T) {
	cases := [][]float32{
		{3, 4},
		{1, 0, 0},
		{0.1, -0.2, 0.3, -0.4},
	}
	for _, v := range cases {
		out := normalize(v)
		if len(out) != len(v) {
			t.Fatalf("length changed: %d -> %d", len(v), len(out))
		}
		var sum float64
		for _, x := range out {
			sum += float64(x) * float64(x)
		}
		if math.Abs(math.Sqrt(sum)-1) > 1e-5 {
			t.Errorf("normalize(%v): norm %v, want 1", v, math.Sqrt(sum))
		}
	}
}

func TestNormalizeZeroVectorUnchanged(t *testing.T) {
	v := []float32{0, 0, 0}
	out := normalize(v)
	for i, x := range out {
		if x != 0 {
			t.Fatalf("component %d changed: %v", i, x)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	once := normalize([]float32{2, -5, 11})
	twice := normalize(once)
	for i := range once {
		if math.Abs(float64(once[i]-twice[i])) > 1e-6 {
			t.Fatalf("component %d drifted: %v vs %v", i, once[i], twice[i])
		}
	}
}
