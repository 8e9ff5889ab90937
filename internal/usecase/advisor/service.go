// Package advisor is the conversational layer: it gates queries for domain
// relevance, runs search, and composes a natural-language recommendation.
package advisor

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	domsearch "github.com/kailas-cloud/mattdex/internal/domain/search"
	"github.com/kailas-cloud/mattdex/internal/relevance"
	"github.com/kailas-cloud/mattdex/internal/usecase/search"
)

// Gate decides whether a query is about mattress shopping.
type Gate interface {
	Check(ctx context.Context, query string) relevance.Decision
}

// Searcher runs the retrieval engine.
type Searcher interface {
	Search(ctx context.Context, p search.Params) ([]domsearch.RankedResult, error)
}

// Composer writes a recommendation text for search results, typically via an
// LLM.
type Composer interface {
	ComposeAnswer(ctx context.Context, query string, results []domsearch.RankedResult) (string, error)
}

// Recommendation is the advisor's response to one query.
type Recommendation struct {
	Answer   string
	Results  []domsearch.RankedResult
	Rejected bool
	Method   string // gate decision method, for observability
}

// Service wires the gate, the search engine and the answer composer.
type Service struct {
	gate     Gate
	searcher Searcher
	composer Composer // nil when no LLM is configured
	log      *zap.Logger
}

func NewService(gate Gate, searcher Searcher, composer Composer, log *zap.Logger) *Service {
	return &Service{gate: gate, searcher: searcher, composer: composer, log: log}
}

// Recommend answers a user query. Off-domain queries are rejected with
// guidance before any retrieval work. A missing or failing composer degrades
// to a templated answer.
func (s *Service) Recommend(ctx context.Context, p search.Params) (Recommendation, error) {
	decision := s.gate.Check(ctx, p.Query)
	if !decision.Relevant {
		return Recommendation{
			Answer:   decision.Guidance,
			Rejected: true,
			Method:   decision.Method,
		}, nil
	}

	results, err := s.searcher.Search(ctx, p)
	if err != nil {
		return Recommendation{}, err
	}

	rec := Recommendation{Results: results, Method: decision.Method}

	if s.composer != nil && len(results) > 0 {
		answer, err := s.composer.ComposeAnswer(ctx, p.Query, results)
		if err == nil && answer != "" {
			rec.Answer = answer
			return rec, nil
		}
		if err != nil {
			s.log.Warn("answer composition failed, using template",
				zap.String("query", p.Query),
				zap.Error(err))
		}
	}

	rec.Answer = templateAnswer(p.Query, results)
	return rec, nil
}

// templateAnswer is the LLM-free fallback answer.
func templateAnswer(query string, results []domsearch.RankedResult) string {
	if len(results) == 0 {
		return "조건에 맞는 매트리스를 찾지 못했습니다. 가격대나 조건을 조금 바꿔서 다시 질문해 주세요."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\"%s\" 조건으로 찾은 추천 매트리스입니다.\n", query)
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s %s (%s, %g만원)",
			i+1, r.Record.Brand, r.Record.Name, r.Record.Type, r.Record.Price)
		if len(r.Record.Features) > 0 {
			fmt.Fprintf(&b, " - %s", strings.Join(r.Record.Features, ", "))
		}
		b.WriteByte('\n')
	}
	return strings.TrimSpace(b.String())
}
