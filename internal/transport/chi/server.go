// Package chi exposes the recommendation service over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mattdex/internal/catalog"
	"github.com/kailas-cloud/mattdex/internal/domain"
	domcat "github.com/kailas-cloud/mattdex/internal/domain/catalog"
	domsearch "github.com/kailas-cloud/mattdex/internal/domain/search"
	"github.com/kailas-cloud/mattdex/internal/metrics"
	"github.com/kailas-cloud/mattdex/internal/repository/vectorstore"
	"github.com/kailas-cloud/mattdex/internal/usecase/advisor"
	searchuc "github.com/kailas-cloud/mattdex/internal/usecase/search"
)

// Advisor answers user queries conversationally.
type Advisor interface {
	Recommend(ctx context.Context, p searchuc.Params) (advisor.Recommendation, error)
}

// Searcher runs raw ranked retrieval.
type Searcher interface {
	Search(ctx context.Context, p searchuc.Params) ([]domsearch.RankedResult, error)
}

// CollectionReader serves single documents and collection status.
type CollectionReader interface {
	Get(ctx context.Context, id string) (domcat.Record, error)
	Info(ctx context.Context) (vectorstore.Info, error)
}

// HealthCheck is a named dependency probe.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the HTTP API server.
type Server struct {
	advisor       Advisor
	search        Searcher
	collection    CollectionReader
	stats         catalog.Stats
	model         string
	llmEnabled    bool
	version       string
	checks        []HealthCheck
	apiKeys       []string
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// ServerConfig wires the server's collaborators.
type ServerConfig struct {
	Advisor    Advisor
	Search     Searcher
	Collection CollectionReader
	Stats      catalog.Stats
	Model      string
	LLMEnabled bool
	Version    string
	Checks     []HealthCheck
	APIKeys    []string
	Logger     *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(cfg ServerConfig) *Server {
	s := &Server{
		advisor:    cfg.Advisor,
		search:     cfg.Search,
		collection: cfg.Collection,
		stats:      cfg.Stats,
		model:      cfg.Model,
		llmEnabled: cfg.LLMEnabled,
		version:    cfg.Version,
		checks:     cfg.Checks,
		apiKeys:    cfg.APIKeys,
		logger:     cfg.Logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, "validation_failed"),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, "not_found"),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, "vector_dim_mismatch"),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, "embedding_provider_error"),
		sentinelHandler(domain.ErrExternalService, http.StatusBadGateway, "external_service_error"),
		sentinelHandler(domain.ErrStorageUnavailable, http.StatusServiceUnavailable, "storage_unavailable"),
	}
	return s
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(wideEvent(s.logger))
	r.Use(metrics.Middleware())

	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/v1", func(r chi.Router) {
		r.Use(bearerAuth(s.apiKeys))
		r.Post("/recommend", s.handleRecommend)
		r.Post("/search", s.handleSearch)
		r.Get("/status", s.handleStatus)
		r.Get("/mattresses/{id}", s.handleGetMattress)
	})

	return r
}

// handleRecommend handles POST /v1/recommend.
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	params, ok := s.decodeSearchParams(w, r)
	if !ok {
		return
	}

	rec, err := s.advisor.Recommend(r.Context(), params)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, recommendResponse{
		Answer:   rec.Answer,
		Rejected: rec.Rejected,
		Method:   rec.Method,
		Results:  resultsToResponse(rec.Results),
	})
}

// handleSearch handles POST /v1/search.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	params, ok := s.decodeSearchParams(w, r)
	if !ok {
		return
	}

	results, err := s.search.Search(r.Context(), params)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Results: resultsToResponse(results),
		Total:   len(results),
	})
}

// handleStatus handles GET /v1/status.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	info, err := s.collection.Info(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"version":         s.version,
		"collection":      info,
		"embedding_model": s.model,
		"llm_enabled":     s.llmEnabled,
		"catalog":         s.stats,
	})
}

// handleGetMattress handles GET /v1/mattresses/{id}.
func (s *Server) handleGetMattress(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := s.collection.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, mattressToResponse(rec))
}

// handleHealth handles GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	httpStatus := http.StatusOK
	checks := make(map[string]string, len(s.checks))

	for _, c := range s.checks {
		if err := c.Check(r.Context()); err != nil {
			checks[c.Name] = "fail"
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
			s.logger.Warn("health check failed",
				zap.String("check", c.Name),
				zap.Error(err))
			continue
		}
		checks[c.Name] = "ok"
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": status,
		"checks": checks,
	})
}

func (s *Server) decodeSearchParams(w http.ResponseWriter, r *http.Request) (searchuc.Params, bool) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return searchuc.Params{}, false
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "query is required")
		return searchuc.Params{}, false
	}

	params := searchuc.Params{Query: req.Query, K: req.K}
	if req.PriceRange != nil {
		params.PriceRange = &domsearch.PriceRange{
			Min: req.PriceRange.Min,
			Max: req.PriceRange.Max,
		}
	}
	return params, true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrValidation,
		domain.ErrNotFound,
		domain.ErrVectorDimMismatch,
		domain.ErrEmbeddingProviderError,
		domain.ErrExternalService,
		domain.ErrStorageUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
