package domain

import (
	"context"
	"math"
)

// KeyPrefix namespaces every key mattdex writes to the store.
const KeyPrefix = "mattdex:"

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Normalize scales v to unit length in place and returns it, so cosine
// distances from the store translate directly into similarity scores.
// The zero vector is returned unchanged.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	if sum == 0 {
		return v
	}
	norm := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= norm
	}
	return v
}

// NormalizedEmbedder is a domain decorator that unit-normalizes every vector
// produced by the inner embedder.
type NormalizedEmbedder struct {
	inner Embedder
}

// NewNormalizedEmbedder creates a normalizing decorator.
func NewNormalizedEmbedder(inner Embedder) *NormalizedEmbedder {
	return &NormalizedEmbedder{inner: inner}
}

// Embed delegates to the inner embedder and normalizes the result.
func (e *NormalizedEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	res, err := e.inner.Embed(ctx, text)
	if err != nil {
		return EmbeddingResult{}, err
	}
	res.Embedding = Normalize(res.Embedding)
	return res, nil
}
