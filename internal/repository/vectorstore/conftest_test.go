package vectorstore

import (
	"context"
	"strings"

	"github.com/kailas-cloud/mattdex/internal/db"
)

// mockStore implements Store in memory for repository tests.
type mockStore struct {
	hashes  map[string]map[string]string
	indexes map[string]*db.IndexDefinition

	searchResult *db.SearchResult
	searchErr    error
	countErr     error

	createCalls int
	dropCalls   int
	searchCalls int
	lastKNN     *db.KNNQuery
}

func newMockStore() *mockStore {
	return &mockStore{
		hashes:  make(map[string]map[string]string),
		indexes: make(map[string]*db.IndexDefinition),
	}
}

func (m *mockStore) HSet(_ context.Context, key string, fields map[string]string) error {
	m.hashes[key] = fields
	return nil
}

func (m *mockStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	for _, it := range items {
		if err := m.HSet(ctx, it.Key, it.Fields); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	return m.hashes[key], nil
}

func (m *mockStore) Del(_ context.Context, key string) error {
	delete(m.hashes, key)
	return nil
}

func (m *mockStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.hashes[key]
	return ok, nil
}

func (m *mockStore) Scan(_ context.Context, pattern string) ([]string, error) {
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for k := range m.hashes {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (m *mockStore) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	m.createCalls++
	if _, ok := m.indexes[def.Name]; ok {
		return db.ErrIndexExists
	}
	m.indexes[def.Name] = def
	return nil
}

func (m *mockStore) DropIndex(_ context.Context, name string) error {
	m.dropCalls++
	if _, ok := m.indexes[name]; !ok {
		return db.ErrIndexNotFound
	}
	delete(m.indexes, name)
	return nil
}

func (m *mockStore) IndexExists(_ context.Context, name string) (bool, error) {
	_, ok := m.indexes[name]
	return ok, nil
}

func (m *mockStore) SearchKNN(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	m.searchCalls++
	m.lastKNN = q
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if m.searchResult != nil {
		return m.searchResult, nil
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchCount(_ context.Context, _, _ string) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return len(m.hashes), nil
}
