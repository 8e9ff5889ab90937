// Package search holds the value types returned by the retrieval engine.
package search

import "github.com/kailas-cloud/mattdex/internal/domain/catalog"

// PriceRange is an inclusive [Min, Max] filter in 만원.
type PriceRange struct {
	Min float64
	Max float64
}

// Contains reports whether p falls inside the inclusive range.
func (r PriceRange) Contains(p float64) bool {
	return p >= r.Min && p <= r.Max
}

// Document pairs a catalog record with its rendered search text and the
// embedding of that text.
type Document struct {
	Record catalog.Record
	Text   string
	Vector []float32
}

// Hit is a single raw KNN match. Distance is the cosine distance reported by
// the index, smaller is closer.
type Hit struct {
	ID       string
	Distance float64
	Record   catalog.Record
	Document string
}

// RankedResult is one fused search hit. Ownership passes to the caller; the
// engine never mutates it after return.
type RankedResult struct {
	Record     catalog.Record
	Score      float64  // fused similarity, always in [0, 1]
	Strategies []string // names of the passes that surfaced this candidate
	Document   string   // the stored search text
}
