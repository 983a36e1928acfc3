package port

import (
	"context"

	"foodrec/internal/domain"
)

// Retriever finds catalog entries whose labels are semantically close to text.
type Retriever interface {
	// Search returns at most k+1 items ordered by descending similarity.
	Search(ctx context.Context, text string, k int) ([]domain.ScoredFoodItem, error)
}

// HealthScores exposes precomputed health scores by food item URI.
type HealthScores interface {
	Lookup(uri string) (float64, bool)
}
