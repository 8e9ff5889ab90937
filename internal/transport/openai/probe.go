package openai

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mattdex/internal/domain"
)

const probeText = "매트리스"

// ProbeEmbedder tries the candidate models in order with a one-shot embedding
// request. The first model that answers is selected and the length of its
// vector becomes the collection dimensionality. When no candidate answers,
// the service cannot start.
func ProbeEmbedder(ctx context.Context, cfg *EmbedderConfig, models []string) (*Embedder, int, error) {
	var lastErr error
	for _, model := range models {
		c := *cfg
		c.Model = model
		emb := NewEmbedder(&c)

		res, err := emb.Embed(ctx, probeText)
		if err != nil {
			lastErr = err
			cfg.Logger.Warn("embedding model probe failed",
				zap.String("model", model),
				zap.Error(err))
			continue
		}

		cfg.Logger.Info("embedding model selected",
			zap.String("model", model),
			zap.Int("dimensions", len(res.Embedding)))
		return emb, len(res.Embedding), nil
	}

	return nil, 0, fmt.Errorf("%w: no embedding model among %v is usable: %v",
		domain.ErrConfigInvalid, models, lastErr)
}
