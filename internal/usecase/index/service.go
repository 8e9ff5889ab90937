// Package index builds the mattress collection at startup: it renders every
// catalog record into search text, embeds it, and writes the documents to the
// vector store.
package index

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mattdex/internal/domain"
	"github.com/kailas-cloud/mattdex/internal/domain/catalog"
	"github.com/kailas-cloud/mattdex/internal/domain/search"
	"github.com/kailas-cloud/mattdex/internal/enrich"
)

// Embedder turns document text into a vector. Documents are embedded as-is,
// without query enrichment.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Writer is the vector store side of indexing.
type Writer interface {
	EnsureCollection(ctx context.Context, reset bool) (reused bool, err error)
	Upsert(ctx context.Context, docs []search.Document) error
	Count(ctx context.Context) (int, error)
}

// Service performs the startup indexing run.
type Service struct {
	embedder Embedder
	writer   Writer
	log      *zap.Logger
}

func NewService(embedder Embedder, writer Writer, log *zap.Logger) *Service {
	return &Service{embedder: embedder, writer: writer, log: log}
}

// Run indexes the catalog. A populated collection is reused as-is unless
// reset is set; reuse skips all embedding work.
func (s *Service) Run(ctx context.Context, records []catalog.Record, reset bool) error {
	reused, err := s.writer.EnsureCollection(ctx, reset)
	if err != nil {
		return fmt.Errorf("ensure collection: %w", err)
	}
	if reused {
		count, err := s.writer.Count(ctx)
		if err != nil {
			return err
		}
		s.log.Info("reusing existing collection",
			zap.Int("documents", count))
		return nil
	}

	docs := make([]search.Document, 0, len(records))
	for _, rec := range records {
		text := enrich.BuildSearchText(rec)
		emb, err := s.embedder.Embed(ctx, text)
		if err != nil {
			return fmt.Errorf("embed document %s: %w", rec.ID, err)
		}
		docs = append(docs, search.Document{
			Record: rec,
			Text:   text,
			Vector: emb.Embedding,
		})
	}

	if err := s.writer.Upsert(ctx, docs); err != nil {
		return fmt.Errorf("write documents: %w", err)
	}

	s.log.Info("catalog indexed",
		zap.Int("documents", len(docs)),
		zap.Bool("reset", reset))
	return nil
}
