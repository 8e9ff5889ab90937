package chi

import (
	"github.com/kailas-cloud/mattdex/internal/domain/catalog"
	domsearch "github.com/kailas-cloud/mattdex/internal/domain/search"
)

type priceRangeRequest struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type searchRequest struct {
	Query      string             `json:"query"`
	K          int                `json:"k,omitempty"`
	PriceRange *priceRangeRequest `json:"price_range,omitempty"`
}

type mattressResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Brand       string   `json:"brand"`
	Type        string   `json:"type"`
	Price       float64  `json:"price"`
	PriceWon    int      `json:"price_won"`
	Features    []string `json:"features,omitempty"`
	TargetUsers []string `json:"target_users,omitempty"`
	Description string   `json:"description,omitempty"`
}

type resultResponse struct {
	mattressResponse
	Score      float64  `json:"score"`
	Strategies []string `json:"strategies"`
}

type searchResponse struct {
	Results []resultResponse `json:"results"`
	Total   int              `json:"total"`
}

type recommendResponse struct {
	Answer   string           `json:"answer"`
	Rejected bool             `json:"rejected"`
	Method   string           `json:"method"`
	Results  []resultResponse `json:"results"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func mattressToResponse(rec catalog.Record) mattressResponse {
	return mattressResponse{
		ID:          rec.ID,
		Name:        rec.Name,
		Brand:       rec.Brand,
		Type:        rec.Type,
		Price:       rec.Price,
		PriceWon:    rec.PriceWon,
		Features:    rec.Features,
		TargetUsers: rec.TargetUsers,
		Description: rec.Description,
	}
}

func resultsToResponse(results []domsearch.RankedResult) []resultResponse {
	out := make([]resultResponse, len(results))
	for i, r := range results {
		out[i] = resultResponse{
			mattressResponse: mattressToResponse(r.Record),
			Score:            r.Score,
			Strategies:       r.Strategies,
		}
	}
	return out
}
