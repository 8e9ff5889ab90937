package metrics

import "github.com/prometheus/client_golang/prometheus"

// Prometheus metrics for embedding, enrichment, and search.
var (
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mattdex",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"provider", "model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mattdex",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "model"},
	)

	EmbeddingTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mattdex",
			Name:      "embedding_tokens_total",
			Help:      "Total embedding tokens consumed",
		},
		[]string{"provider", "model", "type"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mattdex",
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	SynonymCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mattdex",
			Name:      "synonym_cache_total",
			Help:      "Synonym cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	LLMRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mattdex",
			Name:      "llm_requests_total",
			Help:      "Total language collaborator requests",
		},
		[]string{"purpose", "status"}, // purpose: synonyms/expansion/relevance/answer
	)

	SearchPassesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mattdex",
			Name:      "search_passes_total",
			Help:      "Retrieval passes by strategy and outcome",
		},
		[]string{"strategy", "status"}, // status: ok/degraded
	)

	RelevanceDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mattdex",
			Name:      "relevance_decisions_total",
			Help:      "Relevance gate decisions by method and verdict",
		},
		[]string{"method", "verdict"}, // verdict: accept/reject
	)
)

var metricsRegistered bool

// Register registers mattdex Prometheus metrics. Must be called once from main.
func Register() {
	if metricsRegistered {
		return
	}
	prometheus.MustRegister(EmbeddingRequestsTotal)
	prometheus.MustRegister(EmbeddingRequestDuration)
	prometheus.MustRegister(EmbeddingTokensTotal)
	prometheus.MustRegister(EmbeddingCacheTotal)
	prometheus.MustRegister(SynonymCacheTotal)
	prometheus.MustRegister(LLMRequestsTotal)
	prometheus.MustRegister(SearchPassesTotal)
	prometheus.MustRegister(RelevanceDecisionsTotal)
	metricsRegistered = true
}
