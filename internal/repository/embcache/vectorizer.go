// Package embcache caches embedding vectors in the key-value store so that
// repeated queries at the same enrichment level never hit the provider twice.
package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mattdex/internal/db"
	"github.com/kailas-cloud/mattdex/internal/domain"
	"github.com/kailas-cloud/mattdex/internal/metrics"
)

const keyPrefix = domain.KeyPrefix + "embcache:"

// Vectorizer is the consumer-side contract for anything that turns text into
// an embedding at a given enrichment level.
type Vectorizer interface {
	Vectorize(ctx context.Context, text string, level domain.EnrichmentLevel) (domain.EmbeddingResult, error)
}

// CachedVectorizer decorates a Vectorizer with a persistent cache keyed on
// the (enrichment level, text) pair. Cache failures degrade to the inner
// vectorizer; they never fail the request.
type CachedVectorizer struct {
	inner Vectorizer
	kv    db.KVStore
	ttl   time.Duration // 0 means no expiry
	log   *zap.Logger
}

func NewCachedVectorizer(inner Vectorizer, kv db.KVStore, ttl time.Duration, log *zap.Logger) *CachedVectorizer {
	return &CachedVectorizer{inner: inner, kv: kv, ttl: ttl, log: log}
}

func (c *CachedVectorizer) Vectorize(ctx context.Context, text string, level domain.EnrichmentLevel) (domain.EmbeddingResult, error) {
	key := cacheKey(text, level)

	if data, err := c.kv.Get(ctx, key); err == nil {
		vec, decErr := bytesToVector(data)
		if decErr == nil {
			metrics.EmbeddingCacheTotal.WithLabelValues("hit").Inc()
			return domain.EmbeddingResult{Embedding: vec}, nil
		}
		c.log.Warn("corrupt embedding cache entry, recomputing",
			zap.String("key", key),
			zap.Error(decErr))
	} else if !errors.Is(err, db.ErrKeyNotFound) {
		c.log.Warn("embedding cache read failed",
			zap.String("key", key),
			zap.Error(err))
	}
	metrics.EmbeddingCacheTotal.WithLabelValues("miss").Inc()

	res, err := c.inner.Vectorize(ctx, text, level)
	if err != nil {
		return domain.EmbeddingResult{}, err
	}

	if err := c.store(ctx, key, res.Embedding); err != nil {
		c.log.Warn("embedding cache write failed",
			zap.String("key", key),
			zap.Error(err))
	}
	return res, nil
}

func (c *CachedVectorizer) store(ctx context.Context, key string, vec []float32) error {
	data := vectorToBytes(vec)
	if c.ttl > 0 {
		return c.kv.SetWithTTL(ctx, key, data, c.ttl)
	}
	return c.kv.Set(ctx, key, data)
}

func cacheKey(text string, level domain.EnrichmentLevel) string {
	sum := sha256.Sum256([]byte(level.String() + "|" + text))
	return fmt.Sprintf("%s%x", keyPrefix, sum)
}

func vectorToBytes(vec []float32) []byte {
	buf := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func bytesToVector(data []byte) ([]float32, error) {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid vector payload length %d", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
