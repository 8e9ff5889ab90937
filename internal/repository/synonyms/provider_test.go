package synonyms

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mattdex/internal/db"
)

type stubGenerator struct {
	syns  []string
	err   error
	calls int
}

func (s *stubGenerator) GenerateSynonyms(context.Context, string) ([]string, error) {
	s.calls++
	return s.syns, s.err
}

type memKV struct {
	data   map[string][]byte
	getErr error
}

func newMemKV() *memKV { return &memKV{data: make(map[string][]byte)} }

func (m *memKV) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memKV) Set(_ context.Context, key string, value []byte) error {
	m.data[key] = value
	return nil
}

func (m *memKV) SetWithTTL(ctx context.Context, key string, value []byte, _ time.Duration) error {
	return m.Set(ctx, key, value)
}

func TestSynonymsCached(t *testing.T) {
	gen := &stubGenerator{syns: []string{"요추", "척추"}}
	prov := NewCachedProvider(gen, newMemKV(), zap.NewNop())

	ctx := context.Background()
	first, err := prov.Synonyms(ctx, "허리")
	if err != nil {
		t.Fatal(err)
	}
	second, err := prov.Synonyms(ctx, "허리")
	if err != nil {
		t.Fatal(err)
	}

	if gen.calls != 1 {
		t.Fatalf("generator calls = %d, want 1", gen.calls)
	}
	if len(second) != 2 || second[0] != first[0] {
		t.Errorf("cached synonyms = %v, want %v", second, first)
	}
}

func TestSynonymsDistinctKeywords(t *testing.T) {
	gen := &stubGenerator{syns: []string{"요추"}}
	prov := NewCachedProvider(gen, newMemKV(), zap.NewNop())

	ctx := context.Background()
	if _, err := prov.Synonyms(ctx, "허리"); err != nil {
		t.Fatal(err)
	}
	if _, err := prov.Synonyms(ctx, "목"); err != nil {
		t.Fatal(err)
	}

	if gen.calls != 2 {
		t.Errorf("generator calls = %d, want 2", gen.calls)
	}
}

func TestSynonymsCacheReadFailureDegrades(t *testing.T) {
	gen := &stubGenerator{syns: []string{"요추"}}
	kv := newMemKV()
	kv.getErr = errors.New("connection reset")
	prov := NewCachedProvider(gen, kv, zap.NewNop())

	syns, err := prov.Synonyms(context.Background(), "허리")
	if err != nil {
		t.Fatalf("cache failure must not fail the request: %v", err)
	}
	if len(syns) != 1 {
		t.Errorf("synonyms = %v", syns)
	}
}

func TestSynonymsGeneratorError(t *testing.T) {
	wantErr := errors.New("llm down")
	prov := NewCachedProvider(&stubGenerator{err: wantErr}, newMemKV(), zap.NewNop())

	if _, err := prov.Synonyms(context.Background(), "허리"); !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want %v", err, wantErr)
	}
}

func TestSynonymsCorruptEntryRegenerates(t *testing.T) {
	gen := &stubGenerator{syns: []string{"요추"}}
	kv := newMemKV()
	kv.data[cacheKey("허리")] = []byte("{not json")
	prov := NewCachedProvider(gen, kv, zap.NewNop())

	syns, err := prov.Synonyms(context.Background(), "허리")
	if err != nil {
		t.Fatal(err)
	}
	if gen.calls != 1 || len(syns) != 1 {
		t.Errorf("calls = %d, synonyms = %v", gen.calls, syns)
	}
}
