package enrich

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mattdex/internal/domain"
)

// Expansion is the result of query enrichment.
type Expansion struct {
	Original string   // the raw user query
	Expanded string   // LLM-rewritten form, empty when the expander is off
	Synonyms []string // domain synonyms gathered per keyword
	Enriched string   // final text handed to the embedder
}

// Service builds embedding vectors from query text at a chosen enrichment
// level. The synonym provider and expander are optional; when either is nil
// or failing, the service degrades to the best enrichment it can still do.
type Service struct {
	embedder domain.Embedder
	synonyms SynonymProvider
	expander QueryExpander
	log      *zap.Logger
}

func NewService(embedder domain.Embedder, synonyms SynonymProvider, expander QueryExpander, log *zap.Logger) *Service {
	return &Service{
		embedder: embedder,
		synonyms: synonyms,
		expander: expander,
		log:      log,
	}
}

// Vectorize embeds text prepared at the given enrichment level.
func (s *Service) Vectorize(ctx context.Context, text string, level domain.EnrichmentLevel) (domain.EmbeddingResult, error) {
	prepared, err := s.Prepare(ctx, text, level)
	if err != nil {
		return domain.EmbeddingResult{}, err
	}

	res, err := s.embedder.Embed(ctx, prepared)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed %s text: %w", level, err)
	}
	return res, nil
}

// Prepare returns the text that Vectorize would embed at the given level.
// EnrichNone embeds the normalized text, EnrichExpansion the LLM-expanded
// query without synonym injection, EnrichFull the expanded query with
// per-keyword synonym enhancement.
func (s *Service) Prepare(ctx context.Context, text string, level domain.EnrichmentLevel) (string, error) {
	switch level {
	case domain.EnrichNone:
		return NormalizeText(text), nil
	case domain.EnrichExpansion:
		base := text
		if expanded := s.expand(ctx, text); expanded != "" {
			base = expanded
		}
		return NormalizeText(base), nil
	case domain.EnrichFull:
		exp, err := s.ExpandQuery(ctx, text)
		if err != nil {
			return "", err
		}
		return exp.Enriched, nil
	default:
		return "", fmt.Errorf("%w: unknown enrichment level %d", domain.ErrValidation, level)
	}
}

// ExpandQuery runs the full enrichment pipeline: LLM query rewrite plus
// per-keyword synonym enhancement. A failing or absent expander degrades to
// enhancement of the original query.
func (s *Service) ExpandQuery(ctx context.Context, query string) (Expansion, error) {
	exp := Expansion{Original: query}

	base := query
	if expanded := s.expand(ctx, query); expanded != "" {
		exp.Expanded = expanded
		base = expanded
	}

	exp.Enriched = EnhanceQuery(base, s.synonymLookup(ctx, &exp))
	return exp, nil
}

// expand rewrites the query through the LLM expander. Absence or failure
// returns the empty string so callers fall back to the original query.
func (s *Service) expand(ctx context.Context, query string) string {
	if s.expander == nil {
		return ""
	}
	expanded, err := s.expander.Expand(ctx, query)
	if err != nil {
		s.log.Warn("query expansion failed, using original query",
			zap.String("query", query),
			zap.Error(err))
		return ""
	}
	return strings.TrimSpace(expanded)
}

// synonymLookup returns a per-keyword lookup for EnhanceQuery. A failing
// lookup skips that keyword. Gathered synonyms accumulate on exp.
func (s *Service) synonymLookup(ctx context.Context, exp *Expansion) func(keyword string) []string {
	if s.synonyms == nil {
		return nil
	}
	return func(keyword string) []string {
		syns, err := s.synonyms.Synonyms(ctx, keyword)
		if err != nil {
			s.log.Warn("synonym lookup failed, skipping keyword",
				zap.String("keyword", keyword),
				zap.Error(err))
			return nil
		}
		if exp != nil {
			exp.Synonyms = append(exp.Synonyms, syns...)
		}
		return syns
	}
}
