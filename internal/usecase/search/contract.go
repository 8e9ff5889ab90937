package search

import (
	"context"

	"github.com/kailas-cloud/mattdex/internal/domain"
	domsearch "github.com/kailas-cloud/mattdex/internal/domain/search"
)

// Vectorizer turns query text into an embedding at a given enrichment level.
type Vectorizer interface {
	Vectorize(ctx context.Context, text string, level domain.EnrichmentLevel) (domain.EmbeddingResult, error)
}

// Retriever runs a raw KNN lookup over the document collection.
type Retriever interface {
	Query(ctx context.Context, vector []float32, k int) ([]domsearch.Hit, error)
}
