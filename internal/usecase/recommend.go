package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"foodrec/internal/domain"
	"foodrec/internal/port"
)

// FallbackRecorder counts recommendations that found no healthier candidate.
type FallbackRecorder interface {
	RecordRecommendFallback(ctx context.Context)
}

type RecommendOptions struct {
	// TopK is the neighbor count passed to the retriever, which returns up to TopK+1.
	TopK int
	// UnknownScore is the health score assumed for a source item missing from the score table.
	UnknownScore float64
}

// RecommendUseCase proposes label-similar items with a strictly better health score.
type RecommendUseCase struct {
	retriever port.Retriever
	scores    port.HealthScores
	opts      RecommendOptions
	metrics   FallbackRecorder
	logger    *slog.Logger
}

func NewRecommendUseCase(
	retriever port.Retriever,
	scores port.HealthScores,
	opts RecommendOptions,
	metrics FallbackRecorder,
	logger *slog.Logger,
) *RecommendUseCase {
	if opts.TopK <= 0 {
		opts.TopK = 10
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RecommendUseCase{
		retriever: retriever,
		scores:    scores,
		opts:      opts,
		metrics:   metrics,
		logger:    logger,
	}
}

// RecommendAlternative returns the healthier neighbors of item in similarity
// order. When there are none it returns []FoodItem{item}, so the result is
// never empty.
func (u *RecommendUseCase) RecommendAlternative(ctx context.Context, item domain.FoodItem) ([]domain.FoodItem, error) {
	candidates, err := u.healthier(ctx, item)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		u.fallback(ctx, item)
		return []domain.FoodItem{item}, nil
	}
	return domain.Items(candidates), nil
}

// BestAlternative returns the single healthiest qualifying neighbor, or item
// itself when none qualifies. Equal scores keep similarity order.
func (u *RecommendUseCase) BestAlternative(ctx context.Context, item domain.FoodItem) (domain.FoodItem, error) {
	candidates, err := u.healthier(ctx, item)
	if err != nil {
		return domain.FoodItem{}, err
	}
	if len(candidates) == 0 {
		u.fallback(ctx, item)
		return item, nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return u.score(candidates[i].Item.URI) > u.score(candidates[j].Item.URI)
	})
	return candidates[0].Item, nil
}

// healthier filters the retriever's neighbors down to those scoring strictly
// above the source item, excluding the source itself.
func (u *RecommendUseCase) healthier(ctx context.Context, item domain.FoodItem) ([]domain.ScoredFoodItem, error) {
	neighbors, err := u.retriever.Search(ctx, item.Label, u.opts.TopK)
	if err != nil {
		return nil, fmt.Errorf("retrieve candidates for %s: %w", item.URI, err)
	}

	source, ok := u.scores.Lookup(item.URI)
	if !ok {
		u.logger.Warn("no health score for source item, using default",
			"food_item_uri", item.URI,
			"default_score", u.opts.UnknownScore,
		)
		source = u.opts.UnknownScore
	}

	out := make([]domain.ScoredFoodItem, 0, len(neighbors))
	for _, n := range neighbors {
		if n.Item.URI == item.URI {
			continue
		}
		s, ok := u.scores.Lookup(n.Item.URI)
		if !ok {
			continue
		}
		if s > source {
			out = append(out, n)
		}
	}
	return out, nil
}

func (u *RecommendUseCase) score(uri string) float64 {
	s, _ := u.scores.Lookup(uri)
	return s
}

func (u *RecommendUseCase) fallback(ctx context.Context, item domain.FoodItem) {
	u.logger.Debug("no healthier alternative found", "food_item_uri", item.URI)
	if u.metrics != nil {
		u.metrics.RecordRecommendFallback(ctx)
	}
}
