package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mattdex/internal/domain"
	domsearch "github.com/kailas-cloud/mattdex/internal/domain/search"
	"github.com/kailas-cloud/mattdex/internal/metrics"
)

// LLM is the generative-language collaborator: synonym generation, query
// expansion, relevance judgment and answer composition.
type LLM struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// LLMConfig holds the collaborator settings.
type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// NewLLM creates an OpenAI-compatible chat client.
func NewLLM(cfg *LLMConfig) *LLM {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &LLM{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: cfg.Logger,
	}
}

const synonymSystemPrompt = `당신은 매트리스 도메인 전문가입니다.
주어진 키워드의 동의어와 유사어를 매트리스 쇼핑 맥락에서 생성하세요.
JSON 문자열 배열만 출력하세요. 예: 키워드 "허리" → ["요추", "척추", "허리통증", "back"]`

// GenerateSynonyms asks for domain synonyms of a keyword. The response must
// be a JSON string array; anything else is an error so the caller can degrade.
func (l *LLM) GenerateSynonyms(ctx context.Context, keyword string) ([]string, error) {
	out, err := l.chat(ctx, "synonyms", synonymSystemPrompt, "키워드: "+keyword, 150, 0.3)
	if err != nil {
		return nil, err
	}

	var syns []string
	if err := json.Unmarshal([]byte(stripCodeFence(out)), &syns); err != nil {
		return nil, fmt.Errorf("unparseable synonym response %q: %w", out, domain.ErrExternalService)
	}
	return syns, nil
}

const expandSystemPrompt = `당신은 매트리스 검색 질의 확장 전문가입니다.
사용자 질문을 벡터 검색에 적합한 구체적인 설명 문장으로 바꾸세요.
확장된 검색 문장만 출력하세요.

예시:
질문: 허리 아픈 사람
확장: 허리 통증 완화 척추 지지력 좋은 단단한 매트리스 요추 지지

질문: 시원한 매트리스
확장: 통기성 좋은 쿨링 기능 열 배출 시원한 소재 매트리스

질문: 푹신한 거
확장: 부드러운 쿠션감 푹신한 메모리폼 라텍스 매트리스`

// Expand rewrites a user query into a retrieval-friendly description.
func (l *LLM) Expand(ctx context.Context, query string) (string, error) {
	out, err := l.chat(ctx, "expansion", expandSystemPrompt, "질문: "+query, 120, 0.3)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(out), "확장:")), nil
}

const relevanceSystemPrompt = `당신은 매트리스 추천 서비스의 분류기입니다.
질문이 매트리스, 침대, 수면과 관련이 있으면 "예", 관련이 없으면 "아니오"만 답하세요.`

// JudgeRelevance asks whether a query belongs to the mattress domain.
func (l *LLM) JudgeRelevance(ctx context.Context, query string) (bool, error) {
	out, err := l.chat(ctx, "relevance", relevanceSystemPrompt, query, 5, 0)
	if err != nil {
		return false, err
	}
	answer := strings.TrimSpace(out)
	return strings.HasPrefix(answer, "예") || strings.HasPrefix(strings.ToLower(answer), "yes"), nil
}

const answerSystemPrompt = `당신은 친절한 매트리스 전문 상담사입니다.
검색 결과를 바탕으로 사용자에게 매트리스를 추천하는 답변을 한국어로 작성하세요.
검색 결과에 없는 제품은 언급하지 마세요.`

// ComposeAnswer writes a recommendation text grounded on the search results.
func (l *LLM) ComposeAnswer(ctx context.Context, query string, results []domsearch.RankedResult) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "질문: %s\n\n검색 결과:\n", query)
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s %s / %s / %g만원", i+1,
			r.Record.Brand, r.Record.Name, r.Record.Type, r.Record.Price)
		if len(r.Record.Features) > 0 {
			fmt.Fprintf(&b, " / 특징: %s", strings.Join(r.Record.Features, ", "))
		}
		if len(r.Record.TargetUsers) > 0 {
			fmt.Fprintf(&b, " / 추천 대상: %s", strings.Join(r.Record.TargetUsers, ", "))
		}
		b.WriteByte('\n')
	}

	return l.chat(ctx, "answer", answerSystemPrompt, b.String(), 500, 0.7)
}

// HealthCheck verifies API availability.
func (l *LLM) HealthCheck(ctx context.Context) error {
	if _, err := l.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func (l *LLM) chat(ctx context.Context, purpose, system, user string, maxTokens int, temperature float32) (string, error) {
	resp, err := l.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       l.model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(purpose, "error").Inc()
		return "", parseAPIError("chat", domain.ErrExternalService, err)
	}
	if len(resp.Choices) == 0 {
		metrics.LLMRequestsTotal.WithLabelValues(purpose, "error").Inc()
		return "", fmt.Errorf("empty chat response: %w", domain.ErrExternalService)
	}

	metrics.LLMRequestsTotal.WithLabelValues(purpose, "success").Inc()
	return resp.Choices[0].Message.Content, nil
}

// stripCodeFence removes a markdown code fence around a JSON payload, which
// some models add despite instructions.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
