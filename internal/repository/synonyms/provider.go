// Package synonyms caches LLM-generated domain synonyms per keyword.
package synonyms

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mattdex/internal/db"
	"github.com/kailas-cloud/mattdex/internal/domain"
	"github.com/kailas-cloud/mattdex/internal/metrics"
)

const keyPrefix = domain.KeyPrefix + "synonyms:"

// Generator produces synonyms for a single keyword, typically via an LLM.
type Generator interface {
	GenerateSynonyms(ctx context.Context, keyword string) ([]string, error)
}

// CachedProvider decorates a Generator with a persistent per-keyword cache.
// Generation errors propagate; cache errors degrade to generation.
type CachedProvider struct {
	inner Generator
	kv    db.KVStore
	log   *zap.Logger
}

func NewCachedProvider(inner Generator, kv db.KVStore, log *zap.Logger) *CachedProvider {
	return &CachedProvider{inner: inner, kv: kv, log: log}
}

func (p *CachedProvider) Synonyms(ctx context.Context, keyword string) ([]string, error) {
	key := cacheKey(keyword)

	if data, err := p.kv.Get(ctx, key); err == nil {
		var syns []string
		if decErr := json.Unmarshal(data, &syns); decErr == nil {
			metrics.SynonymCacheTotal.WithLabelValues("hit").Inc()
			return syns, nil
		}
		p.log.Warn("corrupt synonym cache entry, regenerating",
			zap.String("key", key))
	} else if !errors.Is(err, db.ErrKeyNotFound) {
		p.log.Warn("synonym cache read failed",
			zap.String("key", key),
			zap.Error(err))
	}
	metrics.SynonymCacheTotal.WithLabelValues("miss").Inc()

	syns, err := p.inner.GenerateSynonyms(ctx, keyword)
	if err != nil {
		return nil, fmt.Errorf("generate synonyms: %w", err)
	}

	data, err := json.Marshal(syns)
	if err == nil {
		if err := p.kv.Set(ctx, key, data); err != nil {
			p.log.Warn("synonym cache write failed",
				zap.String("key", key),
				zap.Error(err))
		}
	}
	return syns, nil
}

func cacheKey(keyword string) string {
	sum := sha256.Sum256([]byte(keyword))
	return fmt.Sprintf("%s%x", keyPrefix, sum)
}
