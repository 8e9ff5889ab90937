// Package enrich prepares text for embedding: document building for catalog
// records and multi-level query enrichment for searches.
package enrich

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/kailas-cloud/mattdex/internal/domain/catalog"
)

var (
	priceUnitRegex  = regexp.MustCompile(`(\d+)\s*만\s*원`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
	tokenSplitRegex = regexp.MustCompile(`[\s,.!?~()\[\]{}"':;]+`)
)

// stopwords are query particles and filler words that carry no retrieval
// signal for mattress search.
var stopwords = map[string]struct{}{
	"은": {}, "는": {}, "이": {}, "가": {}, "을": {}, "를": {},
	"에": {}, "의": {}, "로": {}, "으로": {}, "와": {}, "과": {},
	"도": {}, "만": {}, "좀": {}, "그": {}, "저": {}, "것": {},
	"추천": {}, "추천해줘": {}, "추천해주세요": {}, "알려줘": {}, "알려주세요": {},
	"해주세요": {}, "해줘": {}, "주세요": {}, "있나요": {}, "있어요": {},
	"어떤": {}, "어떻게": {}, "뭐가": {}, "무엇": {}, "좋을까요": {}, "좋나요": {},
}

// keywordWeights ranks domain terms by retrieval importance. Matching is by
// substring so inflected forms ("딱딱한", "부드러운") still hit.
var keywordWeights = []struct {
	terms  []string
	weight float64
}{
	{[]string{"허리", "목", "통증", "디스크"}, 5.0},
	{[]string{"요추", "척추", "경추"}, 4.5},
	{[]string{"메모리폼", "라텍스", "스프링"}, 4.0},
	{[]string{"템퍼", "코일"}, 3.5},
	{[]string{"딱딱", "부드러", "시원"}, 3.5},
	{[]string{"하드", "소프트", "쿨링"}, 3.0},
}

const (
	maxWeightedKeywords = 5
	maxSynonyms         = 6
	maxSynonymRepeat    = 3
	priorityWeight      = 3.0
)

// BuildSearchText renders a catalog record as the document text that gets
// embedded and stored alongside it.
func BuildSearchText(rec catalog.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "매트리스 이름: %s\n", rec.Name)
	fmt.Fprintf(&b, "브랜드: %s\n", rec.Brand)
	fmt.Fprintf(&b, "타입: %s\n", rec.Type)
	fmt.Fprintf(&b, "가격: %g만원\n", rec.Price)
	if len(rec.Features) > 0 {
		fmt.Fprintf(&b, "특징: %s\n", catalog.JoinList(rec.Features))
	}
	if len(rec.TargetUsers) > 0 {
		fmt.Fprintf(&b, "추천 대상: %s\n", catalog.JoinList(rec.TargetUsers))
	}
	if rec.Description != "" {
		fmt.Fprintf(&b, "설명: %s", rec.Description)
	}
	return strings.TrimSpace(b.String())
}

// NormalizeText canonicalizes query text: trimmed, single-spaced,
// lowercased, with "N 만 원" collapsed to "N만원".
func NormalizeText(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = priceUnitRegex.ReplaceAllString(s, "${1}만원")
	return whitespaceRegex.ReplaceAllString(s, " ")
}

// KeywordWeight returns the retrieval weight of a token, 1.0 when the token
// matches no domain term.
func KeywordWeight(token string) float64 {
	for _, group := range keywordWeights {
		for _, term := range group.terms {
			if strings.Contains(token, term) {
				return group.weight
			}
		}
	}
	return 1.0
}

type weightedToken struct {
	token  string
	weight float64
	pos    int
}

// extractTokens tokenizes a normalized query and returns all surviving
// tokens in weight order, ties broken by query position.
func extractTokens(query string) []weightedToken {
	seen := make(map[string]struct{})
	var tokens []weightedToken
	for i, tok := range tokenSplitRegex.Split(query, -1) {
		if tok == "" {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		tokens = append(tokens, weightedToken{token: tok, weight: KeywordWeight(tok), pos: i})
	}

	sort.SliceStable(tokens, func(i, j int) bool {
		if tokens[i].weight != tokens[j].weight {
			return tokens[i].weight > tokens[j].weight
		}
		return tokens[i].pos < tokens[j].pos
	})
	return tokens
}

// ExtractKeywords returns the highest-weight query tokens, at most five.
func ExtractKeywords(query string) []weightedToken {
	tokens := extractTokens(query)
	if len(tokens) > maxWeightedKeywords {
		tokens = tokens[:maxWeightedKeywords]
	}
	return tokens
}

// EnhanceQuery reinforces a query with domain synonyms looked up per
// keyword. Each of the top keywords gets its synonym list (first six)
// repeated min(int(weight), 3) times, and high-weight keywords themselves
// are appended twice at the end. synonymsFor may be nil.
func EnhanceQuery(query string, synonymsFor func(keyword string) []string) string {
	normalized := NormalizeText(query)
	parts := []string{normalized}

	tokens := extractTokens(normalized)

	if synonymsFor != nil {
		top := tokens
		if len(top) > maxWeightedKeywords {
			top = top[:maxWeightedKeywords]
		}
		for _, kw := range top {
			syns := synonymsFor(kw.token)
			if len(syns) == 0 {
				continue
			}
			if len(syns) > maxSynonyms {
				syns = syns[:maxSynonyms]
			}
			repeat := int(kw.weight)
			if repeat > maxSynonymRepeat {
				repeat = maxSynonymRepeat
			}
			for i := 0; i < repeat; i++ {
				parts = append(parts, syns...)
			}
		}
	}

	var priority []string
	for _, kw := range tokens {
		if kw.weight >= priorityWeight {
			priority = append(priority, kw.token)
		}
	}
	parts = append(parts, priority...)
	parts = append(parts, priority...)

	return strings.Join(parts, " ")
}
