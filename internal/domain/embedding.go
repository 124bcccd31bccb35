package domain

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
)

// Embedder is the shared text vectorization contract between layers.
// The vector width is fixed per index and must match the configured
// dense_vector dimensionality.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token usage through the
// provider decorator chain. Token counts are zero for local providers and
// cache hits.
type EmbeddingResult struct {
	Vector       []float32
	PromptTokens int
	TotalTokens  int
}

// RandomEmbedder is the placeholder provider used when no sentence-embedding
// model is configured. Vectors are pseudo-random but deterministic per input
// text, so repeated queries and their indexed documents embed identically.
type RandomEmbedder struct {
	dimensions int
}

// NewRandomEmbedder creates a placeholder embedder with the given vector width.
func NewRandomEmbedder(dimensions int) *RandomEmbedder {
	return &RandomEmbedder{dimensions: dimensions}
}

// Embed returns a unit-length vector seeded by a hash of the input text.
func (e *RandomEmbedder) Embed(_ context.Context, text string) (EmbeddingResult, error) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))

	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	vec := make([]float32, e.dimensions)
	var norm float64
	for i := range vec {
		v := rng.Float64()*2 - 1
		vec[i] = float32(v)
		norm += v * v
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}

	return EmbeddingResult{Vector: vec}, nil
}
