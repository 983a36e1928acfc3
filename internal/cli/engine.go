package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"foodrec/config"
	"foodrec/internal/adapter/cache"
	"foodrec/internal/adapter/catalog"
	"foodrec/internal/adapter/embedding"
	"foodrec/internal/adapter/store"
	"foodrec/internal/domain"
	"foodrec/internal/port"
	"foodrec/internal/usecase"
)

// runtime bundles what a command needs plus the resources to release.
type runtime struct {
	catalog  *catalog.MemoryStore
	embedder port.Embedder
	// base is the model without the bbolt layer. Queries use it.
	base    port.Embedder
	closers []io.Closer
}

func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i].Close(); err != nil {
			slog.Warn("failed to release resource", "error", err)
		}
	}
}

// openRuntime loads the catalog and the configured embedder. With
// forceCache, the bbolt encode cache is used even if cache.enabled is false.
func openRuntime(cfg *config.Config, root string, metrics cache.CacheMetrics, forceCache bool) (*runtime, error) {
	catalogStore, err := catalog.Load(catalog.Options{
		Dir:             cfg.CatalogDir(root),
		LabelPatterns:   cfg.Catalog.LabelPatterns,
		ExcludePatterns: cfg.Catalog.ExcludePatterns,
		NutrientsFile:   cfg.Catalog.NutrientsFile,
		Logger:          slog.Default(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	rt := &runtime{catalog: catalogStore}

	base, err := embedding.New(cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	if c, ok := base.(io.Closer); ok {
		rt.closers = append(rt.closers, c)
	}
	rt.embedder = base
	rt.base = base

	if cfg.Cache.Enabled || forceCache {
		if err := config.EnsureDataDir(root); err != nil {
			rt.Close()
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		db, err := store.OpenEmbeddingCache(config.CacheDBPath(root))
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("failed to open encode cache: %w", err)
		}
		rt.closers = append(rt.closers, db)

		persistent, err := cache.NewPersistentEmbedder(base, db, metrics, slog.Default())
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.embedder = persistent
	}

	return rt, nil
}

func engineOptions(cfg *config.Config, rt *runtime, progress func(done, total int)) usecase.EngineOptions {
	return usecase.EngineOptions{
		Weights:        domain.NutrientWeights(cfg.Scoring.Weights),
		Scale:          cfg.Scoring.Scale,
		BatchSize:      cfg.Embedding.BatchSize,
		QueryCacheSize: cfg.Cache.QuerySize,
		QueryEmbedder:  rt.base,
		Recommend: usecase.RecommendOptions{
			TopK:         cfg.Recommend.TopK,
			UnknownScore: cfg.Recommend.UnknownScore,
		},
		Search: usecase.SearchOptions{
			DefaultK: cfg.Search.TopK,
			MaxK:     cfg.Search.MaxTopK,
		},
		Progress: progress,
	}
}

// buildEngine loads everything and builds the engine for one-shot commands.
func buildEngine(ctx context.Context, withProgress bool) (*usecase.Engine, *runtime, error) {
	cfg := GetConfig()
	rt, err := openRuntime(cfg, GetRootDir(), nil, false)
	if err != nil {
		return nil, nil, err
	}

	var progress func(done, total int)
	if withProgress {
		progress = newProgress("Encoding catalog")
	}

	eng, err := usecase.NewEngine(ctx, rt.catalog, rt.embedder, engineOptions(cfg, rt, progress), nil, slog.Default())
	if err != nil {
		rt.Close()
		return nil, nil, err
	}
	return eng, rt, nil
}
