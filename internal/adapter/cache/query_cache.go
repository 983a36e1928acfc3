package cache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"foodrec/internal/port"
)

// CacheMetrics records cache hit/miss counts.
type CacheMetrics interface {
	RecordHit(ctx context.Context, cacheName string)
	RecordMiss(ctx context.Context, cacheName string)
}

const queryCacheName = "query_vectors"

// QueryCache keeps recently encoded query vectors. Concurrent requests for
// the same uncached text share one encode call.
type QueryCache struct {
	inner   port.Embedder
	cache   *lru.Cache[string, []float32]
	group   singleflight.Group
	metrics CacheMetrics
}

func NewQueryCache(inner port.Embedder, size int, metrics CacheMetrics) (*QueryCache, error) {
	if size <= 0 {
		size = 1000
	}
	c, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("create query cache: %w", err)
	}
	return &QueryCache{
		inner:   inner,
		cache:   c,
		metrics: metrics,
	}, nil
}

// EncodeQuery returns the vector for text. Callers must not modify it.
func (c *QueryCache) EncodeQuery(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := c.cache.Get(text); ok {
		if c.metrics != nil {
			c.metrics.RecordHit(ctx, queryCacheName)
		}
		return vec, nil
	}
	if c.metrics != nil {
		c.metrics.RecordMiss(ctx, queryCacheName)
	}

	v, err, _ := c.group.Do(text, func() (interface{}, error) {
		vecs, err := c.inner.Embed(ctx, []string{text})
		if err != nil {
			return nil, err
		}
		if len(vecs) != 1 {
			return nil, fmt.Errorf("embedder returned %d vectors for 1 text", len(vecs))
		}
		c.cache.Add(text, vecs[0])
		return vecs[0], nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]float32), nil
}

func (c *QueryCache) Len() int {
	return c.cache.Len()
}
