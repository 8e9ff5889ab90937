package enrich

import "context"

// SynonymProvider supplies domain synonyms for a single query keyword.
type SynonymProvider interface {
	Synonyms(ctx context.Context, keyword string) ([]string, error)
}

// QueryExpander rewrites a user query into a retrieval-friendly form.
type QueryExpander interface {
	Expand(ctx context.Context, query string) (string, error)
}
