package search

import (
	"sort"

	"github.com/kailas-cloud/mattdex/internal/domain"
	domsearch "github.com/kailas-cloud/mattdex/internal/domain/search"
)

// Pass weights: the richer the enrichment that produced a pass, the more its
// similarities count in the fused score.
var passWeights = map[domain.EnrichmentLevel]float64{
	domain.EnrichFull:      1.0,
	domain.EnrichExpansion: 0.8,
	domain.EnrichNone:      0.6,
}

// Presence bonuses reward candidates surfaced by the enriched passes and by
// agreement across passes.
const (
	fullPassBonus      = 0.15
	expansionPassBonus = 0.10
	perPassBonus       = 0.05
	maxMultiPassBonus  = 0.15
)

// passResult is the outcome of one retrieval pass.
type passResult struct {
	level domain.EnrichmentLevel
	hits  []domsearch.Hit
}

type candidate struct {
	hit         domsearch.Hit
	weightedSum float64
	passes      int
	levels      map[domain.EnrichmentLevel]struct{}
}

// fuse merges the hits of up to three retrieval passes into a single ranking.
//
// For each candidate: the cosine distances become similarities (1 - d), each
// pass contributes its similarity scaled by the pass weight, and the sum is
// averaged over the passes that actually saw the candidate. On top of the
// average come fixed bonuses for appearing in the full and expansion passes
// and a capped per-pass agreement bonus. Scores clip at 1.0. Ties order by
// id ascending so rankings are stable across runs.
func fuse(passes []passResult, priceRange *domsearch.PriceRange, k int) []domsearch.RankedResult {
	candidates := make(map[string]*candidate)

	for _, p := range passes {
		weight := passWeights[p.level]
		for _, hit := range p.hits {
			c, ok := candidates[hit.ID]
			if !ok {
				c = &candidate{hit: hit, levels: make(map[domain.EnrichmentLevel]struct{})}
				candidates[hit.ID] = c
			}
			if _, seen := c.levels[p.level]; seen {
				continue
			}
			c.levels[p.level] = struct{}{}
			c.weightedSum += (1 - hit.Distance) * weight
			c.passes++
		}
	}

	results := make([]domsearch.RankedResult, 0, len(candidates))
	for _, c := range candidates {
		if priceRange != nil && !priceRange.Contains(c.hit.Record.Price) {
			continue
		}

		score := c.weightedSum / float64(c.passes)
		if _, ok := c.levels[domain.EnrichFull]; ok {
			score += fullPassBonus
		}
		if _, ok := c.levels[domain.EnrichExpansion]; ok {
			score += expansionPassBonus
		}
		multi := float64(c.passes) * perPassBonus
		if multi > maxMultiPassBonus {
			multi = maxMultiPassBonus
		}
		score += multi
		if score > 1 {
			score = 1
		}

		results = append(results, domsearch.RankedResult{
			Record:     c.hit.Record,
			Score:      score,
			Strategies: strategyNames(c.levels),
			Document:   c.hit.Document,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Record.ID < results[j].Record.ID
	})

	if len(results) > k {
		results = results[:k]
	}
	return results
}

// strategyNames lists the passes that saw a candidate, richest first.
func strategyNames(levels map[domain.EnrichmentLevel]struct{}) []string {
	names := make([]string, 0, len(levels))
	for _, lvl := range []domain.EnrichmentLevel{domain.EnrichFull, domain.EnrichExpansion, domain.EnrichNone} {
		if _, ok := levels[lvl]; ok {
			names = append(names, lvl.String())
		}
	}
	return names
}
