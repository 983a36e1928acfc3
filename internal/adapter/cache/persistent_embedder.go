package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strconv"

	"foodrec/internal/adapter/store"
	"foodrec/internal/port"
)

// PersistentEmbedder serves vectors from the bbolt cache and only sends
// misses to the wrapped embedder. Newly encoded vectors are written back.
type PersistentEmbedder struct {
	inner   port.Embedder
	store   *store.EmbeddingCache
	metrics CacheMetrics
	logger  *slog.Logger
}

// NewPersistentEmbedder stamps the cache with the inner model, clearing
// vectors left by a different model.
func NewPersistentEmbedder(inner port.Embedder, cache *store.EmbeddingCache, metrics CacheMetrics, logger *slog.Logger) (*PersistentEmbedder, error) {
	if logger == nil {
		logger = slog.Default()
	}
	reason, err := cache.Prepare(inner.ModelName(), inner.Dimension())
	if err != nil {
		return nil, fmt.Errorf("prepare embedding cache: %w", err)
	}
	if reason != "" {
		logger.Info("embedding cache cleared", "reason", reason, "model", inner.ModelName())
	}
	return &PersistentEmbedder{
		inner:   inner,
		store:   cache,
		metrics: metrics,
		logger:  logger,
	}, nil
}

func (e *PersistentEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	keys := make([]string, len(texts))
	for i, t := range texts {
		keys[i] = e.key(t)
	}

	found, err := e.store.GetMany(keys)
	if err != nil {
		e.logger.Warn("embedding cache read failed", "error", err)
		found = map[string][]float32{}
	}

	out := make([][]float32, len(texts))
	var missTexts []string
	var missIdx []int
	for i, k := range keys {
		if vec, ok := found[k]; ok && len(vec) == e.inner.Dimension() {
			out[i] = vec
			continue
		}
		missTexts = append(missTexts, texts[i])
		missIdx = append(missIdx, i)
	}

	if e.metrics != nil {
		for range len(texts) - len(missTexts) {
			e.metrics.RecordHit(ctx, "catalog_vectors")
		}
		for range missTexts {
			e.metrics.RecordMiss(ctx, "catalog_vectors")
		}
	}

	if len(missTexts) == 0 {
		return out, nil
	}

	vecs, err := e.inner.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missTexts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(vecs), len(missTexts))
	}

	fresh := make(map[string][]float32, len(vecs))
	for j, vec := range vecs {
		i := missIdx[j]
		out[i] = vec
		fresh[keys[i]] = vec
	}
	if err := e.store.PutMany(fresh); err != nil {
		e.logger.Warn("embedding cache write failed", "error", err)
	}

	return out, nil
}

func (e *PersistentEmbedder) key(text string) string {
	sum := sha256.Sum256([]byte(e.inner.ModelName() + "|" + strconv.Itoa(e.inner.Dimension()) + "|" + text))
	return hex.EncodeToString(sum[:])
}

func (e *PersistentEmbedder) Dimension() int {
	return e.inner.Dimension()
}

func (e *PersistentEmbedder) ModelName() string {
	return e.inner.ModelName()
}
