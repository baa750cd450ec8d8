// Package ai provides completion-client decorators shared by all providers.
package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/recipetalk/v1/internal/ports/outbound"
	"go.uber.org/zap"
)

// CachedClient wraps a CompletionClient with a byte cache keyed by prompt
// hash. Only successful completions are cached; failures always pass through.
// A nil cache makes the decorator a transparent passthrough.
type CachedClient struct {
	inner  outbound.CompletionClient
	cache  outbound.CacheRepository
	ttl    time.Duration
	logger *zap.Logger
}

var _ outbound.CompletionClient = (*CachedClient)(nil)

// NewCachedClient creates the caching decorator.
func NewCachedClient(inner outbound.CompletionClient, cache outbound.CacheRepository, ttl time.Duration, logger *zap.Logger) *CachedClient {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &CachedClient{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: logger.Named("cached-completion"),
	}
}

// Complete serves deterministic completions from cache when possible.
// Non-zero temperatures are never cached: their outputs are intentionally
// non-deterministic.
func (c *CachedClient) Complete(ctx context.Context, prompt string, opts outbound.CompletionOptions) (string, error) {
	cacheable := c.cache != nil && opts.Temperature <= 0.2
	key := completionKey(prompt, opts)

	if cacheable {
		if cached, err := c.cache.Get(ctx, key); err == nil && len(cached) > 0 {
			c.logger.Debug("Completion served from cache", zap.String("key", key))
			return string(cached), nil
		}
	}

	result, err := c.inner.Complete(ctx, prompt, opts)
	if err != nil {
		return "", err
	}

	if cacheable {
		if err := c.cache.Set(ctx, key, []byte(result), c.ttl); err != nil {
			c.logger.Debug("Completion cache write failed", zap.Error(err))
		}
	}
	return result, nil
}

// HealthCheck delegates to the wrapped client.
func (c *CachedClient) HealthCheck(ctx context.Context) error {
	return c.inner.HealthCheck(ctx)
}

func completionKey(prompt string, opts outbound.CompletionOptions) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%.2f|%d", prompt, opts.Temperature, opts.MaxTokens)))
	return "completion:" + hex.EncodeToString(sum[:16])
}
