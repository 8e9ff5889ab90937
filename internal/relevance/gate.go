// Package relevance decides whether a query belongs to the mattress domain
// before any retrieval work is spent on it.
package relevance

import (
	"context"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mattdex/internal/metrics"
)

// Decision methods, recorded in logs and metrics.
const (
	MethodLength              = "length"
	MethodCertainAllow        = "certain-allow"
	MethodCertainDeny         = "certain-deny"
	MethodLLM                 = "llm"
	MethodServiceFailure      = "service-failure"
	MethodConservativeDefault = "conservative-default"
)

// Rejection guidance, in the language the service answers in.
const (
	guidanceTooShort  = "질문이 너무 짧습니다. 어떤 매트리스를 찾으시는지 조금 더 자세히 알려주세요."
	guidanceOffTopic  = "매트리스 추천과 관련된 질문을 해주세요. 예: \"허리 아픈 사람에게 좋은 매트리스 추천해줘\""
	guidanceFurniture = "저는 매트리스 전문 상담 서비스입니다. 소파나 책상 같은 다른 가구는 도와드리기 어려워요. 매트리스 관련 질문을 해주세요."
)

const minQueryRunes = 3

// domainKeywords make a query certainly on-topic without consulting the LLM.
var domainKeywords = []string{
	"매트리스", "침대", "베드", "침구", "베개", "이불",
	"수면", "숙면", "꿀잠", "잠자리", "취침", "불면",
	"메모리폼", "라텍스", "스프링", "포켓스프링", "본넬", "하이브리드", "템퍼", "코일",
	"싱글", "더블", "퀸", "킹사이즈",
}

// furnitureKeywords are adjacent-but-off-topic products that get their own
// guidance message.
var furnitureKeywords = []string{
	"소파", "쇼파", "책상", "의자", "옷장", "식탁", "서랍", "책장",
}

// offTopicKeywords make a query certainly irrelevant.
var offTopicKeywords = []string{
	"날씨", "주식", "비트코인", "코인", "환율",
	"영화", "드라마", "음악", "게임", "축구", "야구",
	"정치", "선거", "뉴스",
	"요리", "레시피", "맛집",
	"여행", "항공권", "호텔",
	"코딩", "프로그래밍", "수학 문제",
}

// ambiguousKeywords are terms with a plausible sleep connection. Only these
// are worth an LLM call; anything else the keyword tiers missed is rejected
// outright to keep classification cheap.
var ambiguousKeywords = []string{
	"허리", "목", "어깨", "척추", "요추", "경추", "디스크", "통증", "아픈",
	"편안", "딱딱", "부드러", "푹신", "단단", "하드", "소프트",
	"시원", "따뜻", "쿨링", "통기",
	"가격", "추천", "브랜드", "좋은", "크기", "사이즈",
	"높은", "낮은", "무거운", "가벼운",
}

// Decision is the outcome of a relevance check.
type Decision struct {
	Relevant bool
	Method   string
	Guidance string // set when Relevant is false
}

// Judge asks an LLM whether a query is about mattress shopping.
type Judge interface {
	JudgeRelevance(ctx context.Context, query string) (bool, error)
}

// Gate classifies queries in tiers: cheap keyword checks first, the LLM only
// for queries carrying an ambiguous term, and a conservative reject for
// everything else. Decisions are cached per query text.
type Gate struct {
	judge Judge // nil when no LLM is configured
	log   *zap.Logger

	mu    sync.RWMutex
	cache map[string]Decision
}

func NewGate(judge Judge, log *zap.Logger) *Gate {
	return &Gate{
		judge: judge,
		log:   log,
		cache: make(map[string]Decision),
	}
}

// Check decides whether the query is in-domain.
func (g *Gate) Check(ctx context.Context, query string) Decision {
	normalized := strings.ToLower(strings.TrimSpace(query))

	g.mu.RLock()
	cached, ok := g.cache[normalized]
	g.mu.RUnlock()
	if ok {
		return cached
	}

	d := g.classify(ctx, normalized)

	g.mu.Lock()
	g.cache[normalized] = d
	g.mu.Unlock()

	metrics.RelevanceDecisionsTotal.WithLabelValues(d.Method, verdict(d.Relevant)).Inc()
	g.log.Debug("relevance decision",
		zap.String("query", query),
		zap.String("method", d.Method),
		zap.Bool("relevant", d.Relevant))
	return d
}

func (g *Gate) classify(ctx context.Context, query string) Decision {
	if utf8.RuneCountInString(query) < minQueryRunes {
		return Decision{Method: MethodLength, Guidance: guidanceTooShort}
	}

	if containsAny(query, domainKeywords) {
		return Decision{Relevant: true, Method: MethodCertainAllow}
	}

	if containsAny(query, furnitureKeywords) {
		return Decision{Method: MethodCertainDeny, Guidance: guidanceFurniture}
	}
	if containsAny(query, offTopicKeywords) {
		return Decision{Method: MethodCertainDeny, Guidance: guidanceOffTopic}
	}

	if g.judge != nil && containsAny(query, ambiguousKeywords) {
		relevant, err := g.judge.JudgeRelevance(ctx, query)
		if err != nil {
			g.log.Warn("relevance judgment failed, rejecting conservatively",
				zap.String("query", query),
				zap.Error(err))
			return Decision{Method: MethodServiceFailure, Guidance: guidanceOffTopic}
		}
		if !relevant {
			return Decision{Method: MethodLLM, Guidance: guidanceOffTopic}
		}
		return Decision{Relevant: true, Method: MethodLLM}
	}

	return Decision{Method: MethodConservativeDefault, Guidance: guidanceOffTopic}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func verdict(relevant bool) string {
	if relevant {
		return "allow"
	}
	return "deny"
}
