package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"foodrec/internal/adapter/cache"
	"foodrec/internal/adapter/retriever"
	"foodrec/internal/adapter/scoring"
	"foodrec/internal/domain"
	"foodrec/internal/port"
)

// Metrics is what the engine reports; observability.Metrics satisfies it.
type Metrics interface {
	cache.CacheMetrics
	retriever.EncodeRecorder
	FallbackRecorder
}

type EngineOptions struct {
	Weights   domain.NutrientWeights
	Scale     float64
	BatchSize int
	// QueryCacheSize enables the query vector LRU when positive.
	QueryCacheSize int
	// QueryEmbedder encodes search and recommendation queries. It must use
	// the same model as the catalog embedder; nil means the catalog embedder.
	QueryEmbedder port.Embedder
	Recommend     RecommendOptions
	Search        SearchOptions
	// Progress reports catalog encoding progress.
	Progress func(done, total int)
}

// Engine owns the state derived from one catalog snapshot: health scores
// and the label index. Nothing in it changes after NewEngine returns, so it
// is safe for concurrent use.
type Engine struct {
	Catalog   *CatalogUseCase
	Search    *SearchUseCase
	Recommend *RecommendUseCase

	scores    *scoring.ScoreTable
	index     *retriever.Index
	retriever *retriever.SemanticRetriever
}

// NewEngine scores every catalog item and encodes every label with embedder.
// Queries are encoded by opts.QueryEmbedder, falling back to embedder.
func NewEngine(
	ctx context.Context,
	catalog port.CatalogStore,
	embedder port.Embedder,
	opts EngineOptions,
	metrics Metrics,
	logger *slog.Logger,
) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}

	scores, err := scoring.NewScoreTable(ctx, catalog, opts.Weights, opts.Scale, logger)
	if err != nil {
		return nil, fmt.Errorf("compute health scores: %w", err)
	}

	start := time.Now()
	index, err := retriever.BuildIndex(ctx, catalog.ListFoodItems(), embedder, retriever.BuildOptions{
		BatchSize: opts.BatchSize,
		Progress:  opts.Progress,
	})
	if err != nil {
		return nil, fmt.Errorf("build label index: %w", err)
	}
	if metrics != nil {
		metrics.RecordEncode(ctx, "catalog", time.Since(start))
	}
	logger.Info("label index built",
		"items", index.Len(),
		"dimension", index.Dimension(),
		"model", embedder.ModelName(),
		"duration", time.Since(start),
	)

	queryEmbedder := opts.QueryEmbedder
	if queryEmbedder == nil {
		queryEmbedder = embedder
	}
	if queryEmbedder.Dimension() != index.Dimension() {
		return nil, fmt.Errorf("%w: query embedder dimension %d does not match index dimension %d",
			domain.ErrModelUnavailable, queryEmbedder.Dimension(), index.Dimension())
	}

	var encoder port.QueryEncoder = retriever.NewQueryEncoder(queryEmbedder)
	if opts.QueryCacheSize > 0 {
		var cacheMetrics cache.CacheMetrics
		if metrics != nil {
			cacheMetrics = metrics
		}
		qc, err := cache.NewQueryCache(queryEmbedder, opts.QueryCacheSize, cacheMetrics)
		if err != nil {
			return nil, err
		}
		encoder = qc
	}

	var recorder retriever.EncodeRecorder
	var fallbacks FallbackRecorder
	if metrics != nil {
		recorder = metrics
		fallbacks = metrics
	}
	semantic := retriever.NewSemanticRetriever(index, encoder, recorder)

	return &Engine{
		Catalog:   NewCatalogUseCase(catalog, scores),
		Search:    NewSearchUseCase(semantic, opts.Search),
		Recommend: NewRecommendUseCase(semantic, scores, opts.Recommend, fallbacks, logger),
		scores:    scores,
		index:     index,
		retriever: semantic,
	}, nil
}

func (e *Engine) Scores() *scoring.ScoreTable {
	return e.scores
}

func (e *Engine) Index() *retriever.Index {
	return e.index
}

// EngineOnce builds an Engine at most once. Every caller of Get receives the
// same engine or the same error.
type EngineOnce struct {
	once   sync.Once
	build  func(ctx context.Context) (*Engine, error)
	engine *Engine
	err    error
}

func NewEngineOnce(build func(ctx context.Context) (*Engine, error)) *EngineOnce {
	return &EngineOnce{build: build}
}

// Get runs the build on first call and blocks concurrent callers until it
// finishes.
func (o *EngineOnce) Get(ctx context.Context) (*Engine, error) {
	o.once.Do(func() {
		o.engine, o.err = o.build(ctx)
	})
	return o.engine, o.err
}
