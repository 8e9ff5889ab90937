// Package catalog holds the product entities the search engine ranks.
package catalog

import "strings"

// Placeholder values substituted for missing required fields so one malformed
// record never aborts a catalog load.
const (
	UnknownName  = "Unknown Mattress"
	UnknownBrand = "Unknown Brand"
	UnknownType  = "Unknown Type"
)

// ListDelimiter joins list-valued attributes into a single metadata string.
// The store only accepts primitive values, so features and target users are
// flattened on write and split back on read.
const ListDelimiter = ", "

// Record is one mattress. Immutable after load: the ID is assigned once per
// catalog snapshot and never changes for that snapshot.
type Record struct {
	ID          string
	Name        string
	Brand       string
	Type        string
	Price       float64 // normalized to 만원 (10,000 KRW units)
	PriceWon    int     // original 원 price when known
	Features    []string
	TargetUsers []string
	Description string
}

// JoinList flattens a list attribute for metadata storage.
func JoinList(items []string) string {
	return strings.Join(items, ListDelimiter)
}

// SplitList reconstructs a list attribute from its flattened form. Each
// element is trimmed; empties are dropped. Round-trips exactly for inputs
// that do not themselves contain the delimiter.
func SplitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
