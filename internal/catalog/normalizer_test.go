package catalog

import (
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestSanitizeID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Simmons Beautyrest", "simmons_beautyrest"},
		{"punctuation collapsed", "Ace -- Hybrid!! Z3", "ace_hybrid_z3"},
		{"hangul preserved", "에이스 침대", "에이스_침대"},
		{"empty falls back", "", "mattress_unknown"},
		{"only punctuation falls back", "!!??--", "mattress_unknown"},
		{"leading digit prefixed", "3zone Pocket", "mattress_3zone_pocket"},
		{"edge underscores trimmed", "__edge__", "edge"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeID(tt.in); got != tt.want {
				t.Errorf("SanitizeID(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeIDLongInput(t *testing.T) {
	long := strings.Repeat("a", 200)
	got := SanitizeID(long)

	if len([]rune(got)) != 89 {
		t.Fatalf("sanitized length = %d runes, want 89", len([]rune(got)))
	}
	if !strings.HasPrefix(got, strings.Repeat("a", 80)+"_") {
		t.Errorf("truncated id %q missing expected prefix + hash separator", got)
	}

	// Two different overlong inputs must not collide after truncation.
	other := SanitizeID(strings.Repeat("a", 199) + "b")
	if other == got {
		t.Error("distinct overlong inputs produced the same id")
	}
}

func TestNormalizerDuplicateIDs(t *testing.T) {
	n := NewNormalizer(zap.NewNop())

	first := n.Normalize(rawRecord{Name: "Hybrid Z", Brand: "Ace"})
	second := n.Normalize(rawRecord{Name: "Hybrid Z", Brand: "Ace"})

	if first.ID != "mattress_ace_hybrid_z" {
		t.Errorf("first id = %q, want mattress_ace_hybrid_z", first.ID)
	}
	if second.ID != "mattress_ace_hybrid_z_1" {
		t.Errorf("second id = %q, want mattress_ace_hybrid_z_1", second.ID)
	}
}

func TestNormalizePrice(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"already in man-won", 89, 89},
		{"threshold stays", 1000, 1000},
		{"raw won scaled", 890000, 89},
		{"large raw won", 1200000, 120},
		{"zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizePrice(tt.in); got != tt.want {
				t.Errorf("normalizePrice(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeDefaults(t *testing.T) {
	n := NewNormalizer(zap.NewNop())
	rec := n.Normalize(rawRecord{Price: json.RawMessage(`"89만원"`)})

	if rec.ID != "mattress_unknown" {
		t.Errorf("id = %q, want mattress_unknown", rec.ID)
	}
	if rec.Name != "Unknown Mattress" || rec.Brand != "Unknown Brand" || rec.Type != "Unknown Type" {
		t.Errorf("defaults not applied: %+v", rec)
	}
	if rec.Price != 89 {
		t.Errorf("price = %v, want 89", rec.Price)
	}
	if rec.PriceWon != 890000 {
		t.Errorf("price_won = %d, want 890000", rec.PriceWon)
	}
}
