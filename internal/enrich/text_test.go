package enrich

import (
	"strings"
	"testing"

	"github.com/kailas-cloud/mattdex/internal/domain/catalog"
)

func TestBuildSearchText(t *testing.T) {
	rec := catalog.Record{
		ID:          "ace_hybrid_z3",
		Name:        "하이브리드 Z3",
		Brand:       "에이스침대",
		Type:        "하이브리드",
		Price:       120,
		Features:    []string{"항균", "통기성"},
		TargetUsers: []string{"허리통증"},
		Description: "독립 포켓스프링 모델",
	}

	doc := BuildSearchText(rec)

	for _, want := range []string{
		"매트리스 이름: 하이브리드 Z3",
		"브랜드: 에이스침대",
		"타입: 하이브리드",
		"가격: 120만원",
		"특징: 항균, 통기성",
		"추천 대상: 허리통증",
		"설명: 독립 포켓스프링 모델",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q:\n%s", want, doc)
		}
	}
}

func TestBuildSearchTextOmitsEmptySections(t *testing.T) {
	doc := BuildSearchText(catalog.Record{Name: "Basic", Brand: "Zinus", Type: "폼", Price: 45})

	if strings.Contains(doc, "특징:") || strings.Contains(doc, "추천 대상:") || strings.Contains(doc, "설명:") {
		t.Errorf("empty sections rendered:\n%s", doc)
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"price unit collapsed", "100 만 원 이하", "100만원 이하"},
		{"whitespace collapsed", "  허리   아픈\n사람  ", "허리 아픈 사람"},
		{"ascii lowered", "TEMPUR 매트리스", "tempur 매트리스"},
		{"already clean", "메모리폼", "메모리폼"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeText(tt.in); got != tt.want {
				t.Errorf("NormalizeText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestKeywordWeight(t *testing.T) {
	tests := []struct {
		token string
		want  float64
	}{
		{"허리", 5.0},
		{"허리통증", 5.0},
		{"척추", 4.5},
		{"메모리폼", 4.0},
		{"템퍼", 3.5},
		{"딱딱한", 3.5},
		{"쿨링", 3.0},
		{"침대", 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			if got := KeywordWeight(tt.token); got != tt.want {
				t.Errorf("KeywordWeight(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}

func TestExtractKeywords(t *testing.T) {
	got := ExtractKeywords("허리 아픈 사람 메모리폼 추천")

	if len(got) != 4 {
		t.Fatalf("got %d keywords, want 4 (stopword dropped): %v", len(got), got)
	}
	if got[0].token != "허리" || got[1].token != "메모리폼" {
		t.Errorf("keyword order = [%s %s ...], want weight-descending", got[0].token, got[1].token)
	}
	for _, kw := range got {
		if kw.token == "추천" {
			t.Error("stopword survived extraction")
		}
	}
}

func TestExtractKeywordsCapsAtFive(t *testing.T) {
	got := ExtractKeywords("하나 둘 셋 넷 다섯 여섯 일곱")
	if len(got) != 5 {
		t.Errorf("got %d keywords, want 5", len(got))
	}
}

func TestEnhanceQuery(t *testing.T) {
	synonymsFor := func(keyword string) []string {
		switch keyword {
		case "허리":
			return []string{"요추", "척추보호"}
		case "사람":
			return []string{"인간"}
		default:
			return nil
		}
	}

	got := EnhanceQuery("허리 아픈 사람", synonymsFor)

	// weight 5.0 keyword: synonym list repeated min(int(5.0), 3) = 3 times.
	if n := strings.Count(got, "요추"); n != 3 {
		t.Errorf("요추 appears %d times, want 3:\n%s", n, got)
	}
	if n := strings.Count(got, "척추보호"); n != 3 {
		t.Errorf("척추보호 appears %d times, want 3:\n%s", n, got)
	}
	// weight 1.0 keyword: synonym list appears once.
	if n := strings.Count(got, "인간"); n != 1 {
		t.Errorf("인간 appears %d times, want 1:\n%s", n, got)
	}
	// high-weight keyword itself is appended twice after the synonyms.
	if n := strings.Count(got, "허리"); n != 3 {
		t.Errorf("허리 appears %d times, want 3 (query + two priority repeats):\n%s", n, got)
	}
	if !strings.HasPrefix(got, "허리 아픈 사람") {
		t.Errorf("enhanced text does not start with the normalized query:\n%s", got)
	}
}

func TestEnhanceQueryNilProvider(t *testing.T) {
	got := EnhanceQuery("허리 아픈 사람", nil)

	if got != "허리 아픈 사람 허리 허리" {
		t.Errorf("enhanced without provider = %q", got)
	}
}

func TestEnhanceQueryLimitsSynonyms(t *testing.T) {
	syns := []string{"s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8"}
	got := EnhanceQuery("침대", func(string) []string { return syns })

	if strings.Contains(got, "s7") || strings.Contains(got, "s8") {
		t.Errorf("synonyms past the cap were included:\n%s", got)
	}
	if !strings.Contains(got, "s6") {
		t.Errorf("sixth synonym missing:\n%s", got)
	}
}
