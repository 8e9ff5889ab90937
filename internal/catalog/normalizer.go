package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"go.uber.org/zap"

	domcat "github.com/kailas-cloud/mattdex/internal/domain/catalog"
)

const (
	fallbackID = "mattress_unknown"
	idPrefix   = "mattress"

	// Identifiers longer than maxIDLen runes are cut to truncatedIDLen and
	// get a short content hash appended to stay unique.
	maxIDLen       = 100
	truncatedIDLen = 80

	// maxIDAttempts bounds collision numbering before falling back to a
	// content hash.
	maxIDAttempts = 1000

	// Prices at or below this value are assumed to already be in units
	// of 10,000 KRW; larger values are raw KRW and get scaled down.
	wonThreshold = 1000
)

var collapseUnderscores = regexp.MustCompile(`_+`)

// Normalizer turns raw catalog entries into domain records with stable,
// storage-safe identifiers. Identifiers are deduplicated across a single
// Normalizer instance.
type Normalizer struct {
	seen map[string]int
	log  *zap.Logger
}

func NewNormalizer(log *zap.Logger) *Normalizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Normalizer{seen: make(map[string]int), log: log}
}

// Normalize turns a single raw entry into a record. Malformed fields never
// fail the record: an unparseable price defaults to zero with a warning.
func (n *Normalizer) Normalize(raw rawRecord) domcat.Record {
	price, err := parsePrice(raw.Price)
	if err != nil {
		n.log.Warn("unparseable price, defaulting to 0",
			zap.String("name", raw.Name),
			zap.Error(err))
		price = 0
	}
	priceMan := normalizePrice(price)

	features := parseList(raw.Features)
	targets := parseList(raw.TargetUsers)
	if len(targets) == 0 {
		targets = parseList(raw.Target)
	}

	id := raw.ID
	if id == "" {
		if base := strings.TrimSpace(raw.Brand + " " + raw.Name); base != "" {
			id = idPrefix + " " + base
		}
	}

	rec := domcat.Record{
		ID:          n.uniqueID(SanitizeID(id)),
		Name:        orDefault(raw.Name, domcat.UnknownName),
		Brand:       orDefault(raw.Brand, domcat.UnknownBrand),
		Type:        orDefault(raw.Type, domcat.UnknownType),
		Price:       priceMan,
		PriceWon:    int(priceMan * 10000),
		Features:    features,
		TargetUsers: targets,
		Description: strings.TrimSpace(raw.Description),
	}
	return rec
}

// uniqueID appends a numeric suffix when the sanitized id was already
// issued. Numbering is bounded; pathological inputs fall back to a content
// hash so issuing always terminates.
func (n *Normalizer) uniqueID(id string) string {
	count, dup := n.seen[id]
	n.seen[id] = count + 1
	if !dup {
		return id
	}
	for ; count <= maxIDAttempts; count++ {
		candidate := fmt.Sprintf("%s_%d", id, count)
		if _, taken := n.seen[candidate]; !taken {
			n.seen[candidate] = 1
			return candidate
		}
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s_%d", id, count)))
	return idPrefix + "_" + hex.EncodeToString(sum[:])[:8]
}

// SanitizeID produces a storage-safe identifier: lowercase ASCII letters,
// digits, Hangul and underscores. Empty input falls back to a fixed placeholder,
// identifiers starting with a digit get a prefix, and overlong identifiers
// are truncated with a content hash suffix to stay unique.
func SanitizeID(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.Is(unicode.Hangul, r):
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	id := strings.Trim(collapseUnderscores.ReplaceAllString(b.String(), "_"), "_")
	if id == "" {
		return fallbackID
	}
	if id[0] >= '0' && id[0] <= '9' {
		id = idPrefix + "_" + id
	}
	if runes := []rune(id); len(runes) > maxIDLen {
		sum := sha256.Sum256([]byte(id))
		id = string(runes[:truncatedIDLen]) + "_" + hex.EncodeToString(sum[:])[:8]
	}
	return id
}

// normalizePrice converts a raw price into units of 10,000 KRW. Source data
// mixes both units; values above the threshold are raw KRW.
func normalizePrice(p float64) float64 {
	if p > wonThreshold {
		return p / 10000
	}
	return p
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}
