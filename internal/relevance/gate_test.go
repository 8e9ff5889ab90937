package relevance

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

type stubJudge struct {
	relevant bool
	err      error
	calls    int
}

func (s *stubJudge) JudgeRelevance(context.Context, string) (bool, error) {
	s.calls++
	return s.relevant, s.err
}

func TestGateTiers(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		judge        *stubJudge
		wantRelevant bool
		wantMethod   string
		wantJudged   int
	}{
		{
			name:       "too short",
			query:      "음",
			judge:      &stubJudge{relevant: true},
			wantMethod: MethodLength,
		},
		{
			name:         "domain keyword allows without llm",
			query:        "허리 아픈 사람용 매트리스",
			judge:        &stubJudge{},
			wantRelevant: true,
			wantMethod:   MethodCertainAllow,
		},
		{
			name:       "furniture denied without llm",
			query:      "거실에 둘 소파 추천해줘",
			judge:      &stubJudge{relevant: true},
			wantMethod: MethodCertainDeny,
		},
		{
			name:       "off-topic denied without llm",
			query:      "오늘 날씨 어때",
			judge:      &stubJudge{relevant: true},
			wantMethod: MethodCertainDeny,
		},
		{
			name:         "ambiguous body term goes to llm",
			query:        "옆으로 누우면 어깨가 배기는데요",
			judge:        &stubJudge{relevant: true},
			wantRelevant: true,
			wantMethod:   MethodLLM,
			wantJudged:   1,
		},
		{
			name:       "ambiguous denied by llm",
			query:      "좋은 선물 있을까요",
			judge:      &stubJudge{relevant: false},
			wantMethod: MethodLLM,
			wantJudged: 1,
		},
		{
			name:       "no ambiguous term skips llm",
			query:      "오늘 회의가 너무 길었어요",
			judge:      &stubJudge{relevant: true},
			wantMethod: MethodConservativeDefault,
		},
		{
			name:       "llm failure rejects conservatively",
			query:      "딱딱한 걸로 주세요",
			judge:      &stubJudge{err: errors.New("llm down")},
			wantMethod: MethodServiceFailure,
			wantJudged: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := NewGate(tt.judge, zap.NewNop())

			d := gate.Check(context.Background(), tt.query)
			if d.Relevant != tt.wantRelevant {
				t.Errorf("relevant = %v, want %v", d.Relevant, tt.wantRelevant)
			}
			if d.Method != tt.wantMethod {
				t.Errorf("method = %q, want %q", d.Method, tt.wantMethod)
			}
			if !d.Relevant && d.Guidance == "" {
				t.Error("rejected query must carry guidance")
			}
			if tt.judge.calls != tt.wantJudged {
				t.Errorf("judge calls = %d, want %d", tt.judge.calls, tt.wantJudged)
			}
		})
	}
}

func TestGateWithoutJudgeRejectsAmbiguous(t *testing.T) {
	gate := NewGate(nil, zap.NewNop())

	d := gate.Check(context.Background(), "딱딱한 게 좋을까요")
	if d.Relevant {
		t.Error("ambiguous query must be rejected without a judge")
	}
	if d.Method != MethodConservativeDefault {
		t.Errorf("method = %q, want %q", d.Method, MethodConservativeDefault)
	}
}

func TestGateCachesDecisions(t *testing.T) {
	judge := &stubJudge{relevant: true}
	gate := NewGate(judge, zap.NewNop())

	ctx := context.Background()
	gate.Check(ctx, "딱딱한 게 좋을까요")
	gate.Check(ctx, "딱딱한 게 좋을까요")

	if judge.calls != 1 {
		t.Errorf("judge calls = %d, want 1 (decision must be cached)", judge.calls)
	}
}

func TestGateFurnitureGuidanceIsSpecific(t *testing.T) {
	gate := NewGate(nil, zap.NewNop())

	furniture := gate.Check(context.Background(), "사무실 책상 추천")
	generic := gate.Check(context.Background(), "오늘 날씨 어때")

	if furniture.Guidance == generic.Guidance {
		t.Error("furniture rejection should use its own guidance message")
	}
}
