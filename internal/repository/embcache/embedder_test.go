package embcache

import (
	"context"
	"errors"
	"testing"

	"github.com/indexify/indexify/internal/cache"
)

func TestEmbed_CacheMiss(t *testing.T) {
	inner := &mockEmbedder{}
	inner.result.Vector = []float32{0.1, 0.2, 0.3}
	inner.result.TotalTokens = 10
	ce, ms := newTestCachedEmbedder(t, inner)
	ctx := context.Background()

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return nil, cache.ErrCacheMiss
	}

	var setCalled bool
	ms.setFn = func(_ context.Context, _ string, _ []byte) error {
		setCalled = true
		return nil
	}

	result, err := ce.Embed(ctx, "test text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Vector) != 3 || result.Vector[0] != 0.1 {
		t.Fatalf("unexpected vector: %v", result.Vector)
	}
	if result.TotalTokens != 10 {
		t.Fatalf("expected TotalTokens=10, got %d", result.TotalTokens)
	}
	if !setCalled {
		t.Fatal("expected SET to be called for cache put")
	}
	if inner.calls != 1 {
		t.Fatalf("expected one inner call, got %d", inner.calls)
	}
}

func TestEmbed_CacheHit(t *testing.T) {
	inner := &mockEmbedder{}
	inner.result.Vector = []float32{0.1, 0.2, 0.3}
	ce, ms := newTestCachedEmbedder(t, inner)
	ctx := context.Background()

	cached := encodeVector([]float32{0.4, 0.5, 0.6})
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return cached, nil
	}

	result, err := ce.Embed(ctx, "test text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Vector) != 3 || result.Vector[0] != 0.4 {
		t.Fatalf("expected cached vector, got: %v", result.Vector)
	}
	if result.TotalTokens != 0 {
		t.Fatalf("expected TotalTokens=0 on cache hit, got %d", result.TotalTokens)
	}
	if inner.calls != 0 {
		t.Fatalf("expected no inner call on hit, got %d", inner.calls)
	}
}

func TestEmbed_InnerError(t *testing.T) {
	inner := &mockEmbedder{err: errors.New("provider down")}
	ce, _ := newTestCachedEmbedder(t, inner)

	_, err := ce.Embed(context.Background(), "test text")
	if err == nil {
		t.Fatal("expected inner error to surface")
	}
}

func TestEmbed_CacheGetFailureDegradesToInner(t *testing.T) {
	inner := &mockEmbedder{}
	inner.result.Vector = []float32{0.7}
	ce, ms := newTestCachedEmbedder(t, inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return nil, errors.New("connection reset")
	}

	result, err := ce.Embed(context.Background(), "test text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Vector) != 1 || result.Vector[0] != 0.7 {
		t.Fatalf("expected inner vector, got %v", result.Vector)
	}
}

func TestEmbed_CorruptCachedPayloadDegradesToInner(t *testing.T) {
	inner := &mockEmbedder{}
	inner.result.Vector = []float32{0.7}
	ce, ms := newTestCachedEmbedder(t, inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return []byte{0x01, 0x02, 0x03}, nil // not a multiple of 4
	}

	result, err := ce.Embed(context.Background(), "test text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Vector) != 1 || result.Vector[0] != 0.7 {
		t.Fatalf("expected inner vector, got %v", result.Vector)
	}
}

func TestEmbed_CacheSetFailureIsNotFatal(t *testing.T) {
	inner := &mockEmbedder{}
	inner.result.Vector = []float32{0.7}
	ce, ms := newTestCachedEmbedder(t, inner)

	ms.setFn = func(_ context.Context, _ string, _ []byte) error {
		return errors.New("write failed")
	}

	if _, err := ce.Embed(context.Background(), "test text"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestVectorRoundTrip(t *testing.T) {
	vec := []float32{0.1, -2.5, 3.75, 0}
	decoded, err := decodeVector(encodeVector(vec))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(decoded) != len(vec) {
		t.Fatalf("expected %d values, got %d", len(vec), len(decoded))
	}
	for i := range vec {
		if decoded[i] != vec[i] {
			t.Errorf("value %d: expected %v, got %v", i, vec[i], decoded[i])
		}
	}
}
