package generator

import (
	"context"

	"go.uber.org/zap"

	"github.com/user/alttext-service/internal/cache"
	"github.com/user/alttext-service/internal/domain"
	"github.com/user/alttext-service/internal/monitoring"
	"github.com/user/alttext-service/pkg/utils"
)

// Cached wraps a Describer with a cache keyed by the hash of the image URL.
// Cache errors are logged and fall through to the inner Describer.
type Cached struct {
	inner   Describer
	store   cache.Cache
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

func NewCached(inner Describer, store cache.Cache, logger *zap.Logger, metrics *monitoring.Metrics) *Cached {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cached{inner: inner, store: store, logger: logger, metrics: metrics}
}

func (c *Cached) Generate(ctx context.Context, imageURL, extra string) domain.GenerationResult {
	key := utils.HashURL(imageURL)

	text, ok, err := c.store.Get(ctx, key)
	switch {
	case err != nil:
		c.logger.Warn("failed to check alt text cache", zap.String("url", imageURL), zap.Error(err))
	case ok:
		c.logger.Debug("alt text cache hit", zap.String("hash", key[:16]))
		c.metrics.IncCacheLookups("hit")
		c.metrics.IncGenerations(string(domain.StatusCached))
		return domain.GenerationResult{URL: imageURL, Text: text, Status: domain.StatusCached}
	default:
		c.metrics.IncCacheLookups("miss")
	}

	res := c.inner.Generate(ctx, imageURL, extra)
	if err := c.store.Put(ctx, key, res.Text); err != nil {
		c.logger.Warn("failed to cache alt text", zap.String("url", imageURL), zap.Error(err))
	}
	return res
}

// Clear empties the underlying cache.
func (c *Cached) Clear(ctx context.Context) error {
	return c.store.Clear(ctx)
}
