package domain

import (
	"context"
	"math"
	"testing"
)

func TestRandomEmbedder_Deterministic(t *testing.T) {
	e := NewRandomEmbedder(8)
	ctx := context.Background()

	a, err := e.Embed(ctx, "golang concurrency")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := e.Embed(ctx, "golang concurrency")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range a.Vector {
		if a.Vector[i] != b.Vector[i] {
			t.Fatalf("expected identical vectors for identical text, differ at %d", i)
		}
	}
}

func TestRandomEmbedder_DifferentTextsDiffer(t *testing.T) {
	e := NewRandomEmbedder(8)
	ctx := context.Background()

	a, _ := e.Embed(ctx, "golang")
	b, _ := e.Embed(ctx, "rustlang")

	same := true
	for i := range a.Vector {
		if a.Vector[i] != b.Vector[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("expected different vectors for different texts")
	}
}

func TestRandomEmbedder_DimensionsAndNorm(t *testing.T) {
	e := NewRandomEmbedder(384)

	result, err := e.Embed(context.Background(), "some document text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Vector) != 384 {
		t.Fatalf("expected 384 dimensions, got %d", len(result.Vector))
	}

	var norm float64
	for _, v := range result.Vector {
		norm += float64(v) * float64(v)
	}
	if math.Abs(math.Sqrt(norm)-1) > 1e-3 {
		t.Errorf("expected unit-length vector, got norm %f", math.Sqrt(norm))
	}
}
