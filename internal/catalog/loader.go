// Package catalog loads and normalizes mattress product data.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mattdex/internal/domain"
	domcat "github.com/kailas-cloud/mattdex/internal/domain/catalog"
)

// rawRecord mirrors the loosely-typed source JSON. Prices appear both as
// numbers and as strings with currency suffixes; list fields appear both as
// arrays and as comma-joined strings.
type rawRecord struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Brand       string          `json:"brand"`
	Type        string          `json:"type"`
	Price       json.RawMessage `json:"price"`
	Features    json.RawMessage `json:"features"`
	TargetUsers json.RawMessage `json:"target_users"`
	Target      json.RawMessage `json:"target"`
	Description string          `json:"description"`
}

// Load reads the catalog file at path and returns normalized records.
// The file may contain an object with a "mattresses" or "data" array,
// a bare array, or a single object.
func Load(path string, log *zap.Logger) ([]domcat.Record, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data, log)
}

// Parse decodes catalog JSON in any of the accepted shapes and normalizes
// every entry. Malformed entries are normalized with placeholder values,
// never dropped.
func Parse(data []byte, log *zap.Logger) ([]domcat.Record, error) {
	raws, err := decodeAnyShape(data)
	if err != nil {
		return nil, err
	}

	n := NewNormalizer(log)
	records := make([]domcat.Record, 0, len(raws))
	for _, raw := range raws {
		records = append(records, n.Normalize(raw))
	}
	return records, nil
}

func decodeAnyShape(data []byte) ([]rawRecord, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty catalog file", domain.ErrValidation)
	}

	if strings.HasPrefix(trimmed, "[") {
		var raws []rawRecord
		if err := json.Unmarshal(data, &raws); err != nil {
			return nil, fmt.Errorf("%w: parse catalog array: %v", domain.ErrValidation, err)
		}
		return raws, nil
	}

	// Object shape: look for a known wrapper key first.
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("%w: parse catalog object: %v", domain.ErrValidation, err)
	}
	for _, key := range []string{"mattresses", "data"} {
		inner, ok := wrapper[key]
		if !ok {
			continue
		}
		var raws []rawRecord
		if err := json.Unmarshal(inner, &raws); err != nil {
			return nil, fmt.Errorf("%w: parse catalog %q array: %v", domain.ErrValidation, key, err)
		}
		return raws, nil
	}

	// No wrapper key: treat the object as a single record.
	var single rawRecord
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("%w: parse catalog record: %v", domain.ErrValidation, err)
	}
	return []rawRecord{single}, nil
}

// parseList accepts a JSON array of strings or a comma-joined string.
func parseList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var items []string
	if err := json.Unmarshal(raw, &items); err == nil {
		out := make([]string, 0, len(items))
		for _, it := range items {
			if it = strings.TrimSpace(it); it != "" {
				out = append(out, it)
			}
		}
		return out
	}

	var joined string
	if err := json.Unmarshal(raw, &joined); err == nil {
		return domcat.SplitList(joined)
	}
	return nil
}

// parsePrice accepts a JSON number or a string with non-digit decoration
// ("89만원", "1,200,000원") and returns the bare numeric value.
func parsePrice(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 {
		return 0, nil
	}

	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return num, nil
	}

	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		return 0, fmt.Errorf("unsupported price value %s", string(raw))
	}

	var digits strings.Builder
	for _, r := range str {
		if r >= '0' && r <= '9' || r == '.' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, nil
	}
	val, err := strconv.ParseFloat(digits.String(), 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable price %q", str)
	}
	return val, nil
}
