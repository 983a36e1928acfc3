package usecase

import (
	"context"
	"fmt"
	"strings"

	"foodrec/internal/domain"
	"foodrec/internal/port"
)

type SearchOptions struct {
	DefaultK int
	MaxK     int
}

// SearchUseCase runs free-text semantic search over food labels.
type SearchUseCase struct {
	retriever port.Retriever
	opts      SearchOptions
}

func NewSearchUseCase(retriever port.Retriever, opts SearchOptions) *SearchUseCase {
	if opts.DefaultK <= 0 {
		opts.DefaultK = 20
	}
	if opts.MaxK <= 0 {
		opts.MaxK = 100
	}
	if opts.DefaultK > opts.MaxK {
		opts.DefaultK = opts.MaxK
	}
	return &SearchUseCase{retriever: retriever, opts: opts}
}

// Search returns up to k+1 items ordered by label similarity to queryText.
// k above the configured maximum is capped; negative k is rejected.
func (u *SearchUseCase) Search(ctx context.Context, queryText string, k int) ([]domain.FoodItem, error) {
	if strings.TrimSpace(queryText) == "" {
		return nil, domain.NewInvalidArgumentError("search_text", "search text must not be empty")
	}
	if k < 0 {
		return nil, domain.NewInvalidArgumentError("k", fmt.Sprintf("k must not be negative, got %d", k))
	}
	if k > u.opts.MaxK {
		k = u.opts.MaxK
	}

	results, err := u.retriever.Search(ctx, queryText, k)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", queryText, err)
	}
	return domain.Items(results), nil
}

func (u *SearchUseCase) DefaultK() int {
	return u.opts.DefaultK
}

func (u *SearchUseCase) MaxK() int {
	return u.opts.MaxK
}
