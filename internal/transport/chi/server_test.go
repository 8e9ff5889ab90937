package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mattdex/internal/catalog"
	"github.com/kailas-cloud/mattdex/internal/domain"
	domcat "github.com/kailas-cloud/mattdex/internal/domain/catalog"
	domsearch "github.com/kailas-cloud/mattdex/internal/domain/search"
	"github.com/kailas-cloud/mattdex/internal/repository/vectorstore"
	"github.com/kailas-cloud/mattdex/internal/usecase/advisor"
	searchuc "github.com/kailas-cloud/mattdex/internal/usecase/search"
)

type stubAdvisor struct {
	rec advisor.Recommendation
	err error
}

func (s *stubAdvisor) Recommend(context.Context, searchuc.Params) (advisor.Recommendation, error) {
	return s.rec, s.err
}

type stubSearcher struct {
	results []domsearch.RankedResult
	err     error
	lastP   searchuc.Params
}

func (s *stubSearcher) Search(_ context.Context, p searchuc.Params) ([]domsearch.RankedResult, error) {
	s.lastP = p
	return s.results, s.err
}

type stubCollection struct {
	rec     domcat.Record
	getErr  error
	info    vectorstore.Info
	infoErr error
}

func (s *stubCollection) Get(context.Context, string) (domcat.Record, error) {
	return s.rec, s.getErr
}

func (s *stubCollection) Info(context.Context) (vectorstore.Info, error) {
	return s.info, s.infoErr
}

func testServer(adv *stubAdvisor, srch *stubSearcher, col *stubCollection, keys ...string) http.Handler {
	return NewServer(ServerConfig{
		Advisor:    adv,
		Search:     srch,
		Collection: col,
		Stats:      catalog.Stats{Total: 30},
		Model:      "text-embedding-3-small",
		LLMEnabled: true,
		Version:    "test",
		APIKeys:    keys,
		Logger:     zap.NewNop(),
	}).Router()
}

func sampleResult() domsearch.RankedResult {
	return domsearch.RankedResult{
		Record: domcat.Record{
			ID: "ace_hybrid_z3", Name: "하이브리드 Z3", Brand: "에이스침대",
			Type: "하이브리드", Price: 120, PriceWon: 1200000,
		},
		Score:      0.93,
		Strategies: []string{"full", "raw"},
	}
}

func TestRecommendEndpoint(t *testing.T) {
	adv := &stubAdvisor{rec: advisor.Recommendation{
		Answer:  "하이브리드 Z3를 추천합니다.",
		Method:  "certain-allow",
		Results: []domsearch.RankedResult{sampleResult()},
	}}
	router := testServer(adv, &stubSearcher{}, &stubCollection{})

	req := httptest.NewRequest(http.MethodPost, "/v1/recommend",
		strings.NewReader(`{"query": "허리 아픈 사람"}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var resp recommendResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Answer == "" || resp.Rejected {
		t.Errorf("response = %+v", resp)
	}
	if len(resp.Results) != 1 || resp.Results[0].ID != "ace_hybrid_z3" {
		t.Errorf("results = %+v", resp.Results)
	}
	if resp.Results[0].Score != 0.93 {
		t.Errorf("score = %v", resp.Results[0].Score)
	}
}

func TestSearchEndpointForwardsPriceRange(t *testing.T) {
	srch := &stubSearcher{results: []domsearch.RankedResult{sampleResult()}}
	router := testServer(&stubAdvisor{}, srch, &stubCollection{})

	body := `{"query": "메모리폼", "k": 3, "price_range": {"min": 50, "max": 150}}`
	req := httptest.NewRequest(http.MethodPost, "/v1/search", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if srch.lastP.K != 3 {
		t.Errorf("k = %d, want 3", srch.lastP.K)
	}
	if srch.lastP.PriceRange == nil || srch.lastP.PriceRange.Min != 50 || srch.lastP.PriceRange.Max != 150 {
		t.Errorf("price range = %+v", srch.lastP.PriceRange)
	}

	var resp searchResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 1 {
		t.Errorf("total = %d", resp.Total)
	}
}

func TestSearchEndpointValidation(t *testing.T) {
	router := testServer(&stubAdvisor{}, &stubSearcher{}, &stubCollection{})

	tests := []struct {
		name string
		body string
	}{
		{"missing query", `{}`},
		{"broken json", `{"query": `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/search", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rr.Code)
			}
		})
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", fmt.Errorf("bad: %w", domain.ErrValidation), http.StatusBadRequest, "validation_failed"},
		{"provider down", fmt.Errorf("x: %w", domain.ErrEmbeddingProviderError), http.StatusBadGateway, "embedding_provider_error"},
		{"storage down", fmt.Errorf("x: %w", domain.ErrStorageUnavailable), http.StatusServiceUnavailable, "storage_unavailable"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := testServer(&stubAdvisor{}, &stubSearcher{err: tt.err}, &stubCollection{})

			req := httptest.NewRequest(http.MethodPost, "/v1/search",
				strings.NewReader(`{"query": "q"}`))
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			var resp errorResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
			}
			if tt.name == "unknown" && resp.Message != "internal error" {
				t.Errorf("unknown errors must not leak details, got %q", resp.Message)
			}
		})
	}
}

func TestGetMattress(t *testing.T) {
	col := &stubCollection{rec: domcat.Record{ID: "ace_hybrid_z3", Name: "하이브리드 Z3"}}
	router := testServer(&stubAdvisor{}, &stubSearcher{}, col)

	req := httptest.NewRequest(http.MethodGet, "/v1/mattresses/ace_hybrid_z3", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp mattressResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.ID != "ace_hybrid_z3" {
		t.Errorf("id = %q", resp.ID)
	}
}

func TestGetMattressNotFound(t *testing.T) {
	col := &stubCollection{getErr: fmt.Errorf("document x: %w", domain.ErrNotFound)}
	router := testServer(&stubAdvisor{}, &stubSearcher{}, col)

	req := httptest.NewRequest(http.MethodGet, "/v1/mattresses/missing", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestStatusEndpoint(t *testing.T) {
	col := &stubCollection{info: vectorstore.Info{Collection: "mattress_collection", Documents: 30, Dimensions: 1536}}
	router := testServer(&stubAdvisor{}, &stubSearcher{}, col)

	req := httptest.NewRequest(http.MethodGet, "/v1/status", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["embedding_model"] != "text-embedding-3-small" {
		t.Errorf("embedding_model = %v", resp["embedding_model"])
	}
	if resp["llm_enabled"] != true {
		t.Errorf("llm_enabled = %v", resp["llm_enabled"])
	}
}

func TestBearerAuth(t *testing.T) {
	router := testServer(&stubAdvisor{}, &stubSearcher{}, &stubCollection{}, "sk-key")

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer sk-key", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/status", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
		})
	}
}

func TestHealthEndpointBypassesAuth(t *testing.T) {
	server := NewServer(ServerConfig{
		Advisor:    &stubAdvisor{},
		Search:     &stubSearcher{},
		Collection: &stubCollection{},
		APIKeys:    []string{"sk-key"},
		Checks: []HealthCheck{
			{Name: "database", Check: func(context.Context) error { return nil }},
		},
		Logger: zap.NewNop(),
	})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	server.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"database":"ok"`) {
		t.Errorf("body = %s", rr.Body.String())
	}
}

func TestHealthEndpointDegraded(t *testing.T) {
	server := NewServer(ServerConfig{
		Advisor:    &stubAdvisor{},
		Search:     &stubSearcher{},
		Collection: &stubCollection{},
		Checks: []HealthCheck{
			{Name: "database", Check: func(context.Context) error { return errors.New("down") }},
		},
		Logger: zap.NewNop(),
	})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	server.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rr.Code)
	}
}
