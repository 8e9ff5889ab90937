// Package vectorstore persists mattress documents with their embeddings and
// serves KNN retrieval over them.
package vectorstore

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mattdex/internal/db"
	"github.com/kailas-cloud/mattdex/internal/domain"
	"github.com/kailas-cloud/mattdex/internal/domain/catalog"
	"github.com/kailas-cloud/mattdex/internal/domain/search"
)

// Info describes the collection state.
type Info struct {
	Collection string `json:"collection"`
	Documents  int    `json:"documents"`
	Dimensions int    `json:"dimensions"`
}

// Store is the storage contract the repository needs.
type Store interface {
	db.HashStore
	db.IndexManager
	db.Searcher
}

// Repo stores mattress documents as hashes under a collection prefix with an
// FT vector index over them.
type Repo struct {
	store      Store
	collection string
	dims       int
	log        *zap.Logger
}

func New(store Store, collection string, dims int, log *zap.Logger) *Repo {
	return &Repo{store: store, collection: collection, dims: dims, log: log}
}

func (r *Repo) indexName() string    { return domain.KeyPrefix + "idx:" + r.collection }
func (r *Repo) keyPrefix() string    { return domain.KeyPrefix + r.collection + ":" }
func (r *Repo) key(id string) string { return r.keyPrefix() + id }

// EnsureCollection creates the vector index if needed. With reset it drops
// any existing index and documents first. It reports whether the collection
// already held documents and was left untouched.
func (r *Repo) EnsureCollection(ctx context.Context, reset bool) (reused bool, err error) {
	exists, err := r.store.IndexExists(ctx, r.indexName())
	if err != nil {
		return false, fmt.Errorf("check index: %w", err)
	}

	if exists && !reset {
		count, err := r.Count(ctx)
		if err != nil {
			return false, err
		}
		if count > 0 {
			return true, nil
		}
		return false, nil
	}

	if exists {
		if err := r.dropAll(ctx); err != nil {
			return false, err
		}
	}

	def := &db.IndexDefinition{
		Name:        r.indexName(),
		StorageType: db.StorageHash,
		Prefixes:    []string{r.keyPrefix()},
		Fields: []db.IndexField{
			{Name: fieldBrand, Type: db.IndexFieldTag},
			{Name: fieldType, Type: db.IndexFieldTag},
			{Name: fieldPriceWon, Type: db.IndexFieldNumeric},
			{
				Name:           fieldVector,
				Type:           db.IndexFieldVector,
				VectorAlgo:     db.VectorFlat,
				VectorDim:      r.dims,
				VectorDistance: db.DistanceCosine,
			},
		},
	}
	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return false, fmt.Errorf("create index: %w", err)
	}
	return false, nil
}

func (r *Repo) dropAll(ctx context.Context) error {
	if err := r.store.DropIndex(ctx, r.indexName()); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index: %w", err)
	}
	keys, err := r.store.Scan(ctx, r.keyPrefix()+"*")
	if err != nil {
		return fmt.Errorf("scan documents: %w", err)
	}
	for _, k := range keys {
		if err := r.store.Del(ctx, k); err != nil {
			return fmt.Errorf("delete %s: %w", k, err)
		}
	}
	return nil
}

// Upsert writes documents in a single pipelined batch.
func (r *Repo) Upsert(ctx context.Context, docs []search.Document) error {
	items := make([]db.HashSetItem, 0, len(docs))
	for _, d := range docs {
		if len(d.Vector) != r.dims {
			return fmt.Errorf("%w: document %s has %d dimensions, index expects %d",
				domain.ErrVectorDimMismatch, d.Record.ID, len(d.Vector), r.dims)
		}
		items = append(items, db.HashSetItem{
			Key:    r.key(d.Record.ID),
			Fields: recordToFields(d.Record, d.Text, encodeVector(d.Vector)),
		})
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("upsert documents: %w", err)
	}
	return nil
}

// Query runs a KNN search and returns hits ordered by ascending distance.
func (r *Repo) Query(ctx context.Context, vector []float32, k int) ([]search.Hit, error) {
	if len(vector) != r.dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, index expects %d",
			domain.ErrVectorDimMismatch, len(vector), r.dims)
	}

	res, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.indexName(),
		Vector:       vector,
		K:            k,
		ReturnFields: returnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("knn search: %w: %v", domain.ErrStorageUnavailable, err)
	}

	hits := make([]search.Hit, 0, len(res.Entries))
	for _, e := range res.Entries {
		id := strings.TrimPrefix(e.Key, r.keyPrefix())
		hits = append(hits, search.Hit{
			ID:       id,
			Distance: e.Distance,
			Record:   fieldsToRecord(id, e.Fields),
			Document: e.Fields[fieldDocument],
		})
	}
	return hits, nil
}

// Get fetches a single document by id.
func (r *Repo) Get(ctx context.Context, id string) (catalog.Record, error) {
	fields, err := r.store.HGetAll(ctx, r.key(id))
	if err != nil {
		return catalog.Record{}, fmt.Errorf("get document %s: %w: %v", id, domain.ErrStorageUnavailable, err)
	}
	if len(fields) == 0 {
		return catalog.Record{}, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	return fieldsToRecord(id, fields), nil
}

// Count returns the number of indexed documents.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, r.indexName(), "*")
	if err != nil {
		return 0, fmt.Errorf("count documents: %w: %v", domain.ErrStorageUnavailable, err)
	}
	return n, nil
}

// Dimensions returns the vector dimensionality of the collection.
func (r *Repo) Dimensions() int { return r.dims }

// Info reports collection status for the status endpoint.
func (r *Repo) Info(ctx context.Context) (Info, error) {
	count, err := r.Count(ctx)
	if err != nil {
		return Info{}, err
	}
	return Info{Collection: r.collection, Documents: count, Dimensions: r.dims}, nil
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}
