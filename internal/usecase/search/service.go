// Package search runs multi-pass vector retrieval over the mattress
// collection and fuses the passes into one ranking.
package search

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mattdex/internal/domain"
	domsearch "github.com/kailas-cloud/mattdex/internal/domain/search"
	"github.com/kailas-cloud/mattdex/internal/metrics"
)

// passLevels are the retrieval passes in execution order. Every search tries
// all of them; a failing pass is skipped, not fatal.
var passLevels = []domain.EnrichmentLevel{
	domain.EnrichFull,
	domain.EnrichExpansion,
	domain.EnrichNone,
}

// candidateFactors oversample the enriched passes so fusion has enough
// overlap to work with before the ranking is cut to k. The raw pass queries
// exactly k.
var candidateFactors = map[domain.EnrichmentLevel]int{
	domain.EnrichFull:      2,
	domain.EnrichExpansion: 2,
	domain.EnrichNone:      1,
}

// Params are the inputs of one search.
type Params struct {
	Query      string
	K          int // 0 means the configured default
	PriceRange *domsearch.PriceRange
}

// Service is the retrieval engine.
type Service struct {
	vectorizer Vectorizer
	retriever  Retriever
	defaultK   int
	maxK       int
	log        *zap.Logger
}

func NewService(vectorizer Vectorizer, retriever Retriever, defaultK, maxK int, log *zap.Logger) *Service {
	return &Service{
		vectorizer: vectorizer,
		retriever:  retriever,
		defaultK:   defaultK,
		maxK:       maxK,
		log:        log,
	}
}

// Search runs all retrieval passes and returns the fused top-k ranking.
// Pass failures degrade the ranking, down to an empty result when every
// pass fails; only an invalid request is an error.
func (s *Service) Search(ctx context.Context, p Params) ([]domsearch.RankedResult, error) {
	if strings.TrimSpace(p.Query) == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrValidation)
	}
	if p.PriceRange != nil && p.PriceRange.Min > p.PriceRange.Max {
		return nil, fmt.Errorf("%w: price range min %g exceeds max %g",
			domain.ErrValidation, p.PriceRange.Min, p.PriceRange.Max)
	}

	k := p.K
	if k <= 0 {
		k = s.defaultK
	}
	if k > s.maxK {
		k = s.maxK
	}

	passes := make([]passResult, 0, len(passLevels))
	for _, level := range passLevels {
		hits, err := s.runPass(ctx, p.Query, level, k*candidateFactors[level])
		if err != nil {
			metrics.SearchPassesTotal.WithLabelValues(level.String(), "error").Inc()
			s.log.Warn("retrieval pass failed",
				zap.String("strategy", level.String()),
				zap.String("query", p.Query),
				zap.Error(err))
			continue
		}
		metrics.SearchPassesTotal.WithLabelValues(level.String(), "ok").Inc()
		passes = append(passes, passResult{level: level, hits: hits})
	}

	// Backend unavailability degrades to fewer or no results. Even with
	// every pass down the caller gets an empty ranking, not an error.
	if len(passes) == 0 {
		s.log.Error("all retrieval passes failed", zap.String("query", p.Query))
		return nil, nil
	}

	results := fuse(passes, p.PriceRange, k)
	s.log.Info("search completed",
		zap.String("query", p.Query),
		zap.Int("passes", len(passes)),
		zap.Int("results", len(results)))
	return results, nil
}

func (s *Service) runPass(ctx context.Context, query string, level domain.EnrichmentLevel, k int) ([]domsearch.Hit, error) {
	emb, err := s.vectorizer.Vectorize(ctx, query, level)
	if err != nil {
		return nil, fmt.Errorf("vectorize: %w", err)
	}
	hits, err := s.retriever.Query(ctx, emb.Embedding, k)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	return hits, nil
}
