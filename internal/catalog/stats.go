package catalog

import (
	"sort"

	domcat "github.com/kailas-cloud/mattdex/internal/domain/catalog"
)

// Stats summarizes a catalog for status reporting.
type Stats struct {
	Total      int            `json:"total"`
	Brands     map[string]int `json:"brands"`
	Types      map[string]int `json:"types"`
	PriceMin   float64        `json:"price_min"`
	PriceMax   float64        `json:"price_max"`
	PriceMean  float64        `json:"price_mean"`
	BrandNames []string       `json:"brand_names"`
}

// ComputeStats aggregates brand, type and price distributions.
func ComputeStats(records []domcat.Record) Stats {
	s := Stats{
		Brands: make(map[string]int),
		Types:  make(map[string]int),
	}
	if len(records) == 0 {
		return s
	}

	s.Total = len(records)
	s.PriceMin = records[0].Price
	s.PriceMax = records[0].Price

	var sum float64
	for _, r := range records {
		s.Brands[r.Brand]++
		s.Types[r.Type]++
		sum += r.Price
		if r.Price < s.PriceMin {
			s.PriceMin = r.Price
		}
		if r.Price > s.PriceMax {
			s.PriceMax = r.Price
		}
	}
	s.PriceMean = sum / float64(len(records))

	s.BrandNames = make([]string, 0, len(s.Brands))
	for b := range s.Brands {
		s.BrandNames = append(s.BrandNames, b)
	}
	sort.Strings(s.BrandNames)

	return s
}
