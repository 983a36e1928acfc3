package scoring

import (
	"context"
	"errors"
	"log/slog"
	"math"

	"foodrec/internal/domain"
	"foodrec/internal/port"
)

// DefaultScale keeps exp() in range for realistic nutrient sums.
const DefaultScale = 0.01

var (
	minScore = math.Nextafter(0, 1)
	maxScore = math.Nextafter(1, 0)
)

// Score reduces a nutrient profile to a health value in the open interval (0,1).
// Labels missing from weights contribute nothing. Non-finite values are skipped.
func Score(amounts []domain.NutrientAmount, weights domain.NutrientWeights) float64 {
	return ScaledScore(amounts, weights, DefaultScale)
}

// ScaledScore is Score with an explicit sigmoid scale.
func ScaledScore(amounts []domain.NutrientAmount, weights domain.NutrientWeights, scale float64) float64 {
	raw := RawScore(amounts, weights)
	s := 1 / (1 + math.Exp(-raw*scale))
	if s < minScore {
		return minScore
	}
	if s > maxScore {
		return maxScore
	}
	return s
}

// RawScore is the weighted nutrient sum before the sigmoid.
func RawScore(amounts []domain.NutrientAmount, weights domain.NutrientWeights) float64 {
	var raw float64
	for _, a := range amounts {
		w, ok := weights[a.NutrientLabel]
		if !ok || math.IsNaN(a.Value) || math.IsInf(a.Value, 0) {
			continue
		}
		raw += w * a.Value
	}
	if math.IsNaN(raw) {
		return 0
	}
	return raw
}

// ScoreTable holds the precomputed health score of every catalog item.
type ScoreTable struct {
	scores map[string]float64
}

// NewScoreTable scores every item in the catalog. Items without nutrient data
// get the neutral score 0.5.
func NewScoreTable(ctx context.Context, catalog port.CatalogStore, weights domain.NutrientWeights, scale float64, logger *slog.Logger) (*ScoreTable, error) {
	if scale <= 0 {
		scale = DefaultScale
	}
	if logger == nil {
		logger = slog.Default()
	}

	items := catalog.ListFoodItems()
	scores := make(map[string]float64, len(items))
	missing := 0
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		amounts, err := catalog.NutrientAmountsFor(item.URI)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				return nil, err
			}
			missing++
			logger.Debug("food item has no nutrient data", "uri", item.URI)
		}
		scores[item.URI] = ScaledScore(amounts, weights, scale)
	}

	logger.Info("health scores computed", "items", len(scores), "without_nutrients", missing)
	return &ScoreTable{scores: scores}, nil
}

// NewScoreTableFromMap wraps precomputed scores.
func NewScoreTableFromMap(scores map[string]float64) *ScoreTable {
	cp := make(map[string]float64, len(scores))
	for k, v := range scores {
		cp[k] = v
	}
	return &ScoreTable{scores: cp}
}

func (t *ScoreTable) Lookup(uri string) (float64, bool) {
	s, ok := t.scores[uri]
	return s, ok
}

func (t *ScoreTable) Len() int {
	return len(t.scores)
}
