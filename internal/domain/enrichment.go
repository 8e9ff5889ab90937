package domain

import "fmt"

// EnrichmentLevel selects how much query enrichment a retrieval pass applies.
type EnrichmentLevel int

const (
	// EnrichNone embeds the normalized text as-is.
	EnrichNone EnrichmentLevel = iota
	// EnrichExpansion embeds the LLM-expanded query without synonym
	// injection.
	EnrichExpansion
	// EnrichFull rewrites the query with the LLM, then applies per-keyword
	// synonym enhancement.
	EnrichFull
)

// String returns the strategy name used in fused results and cache keys.
func (l EnrichmentLevel) String() string {
	switch l {
	case EnrichNone:
		return "raw"
	case EnrichExpansion:
		return "expansion"
	case EnrichFull:
		return "full"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}
