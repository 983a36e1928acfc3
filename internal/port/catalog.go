package port

import "foodrec/internal/domain"

// CatalogStore is the read-only food catalog. Lookups of unknown URIs fail
// with an error matching domain.ErrNotFound.
type CatalogStore interface {
	ListFoodItems() []domain.FoodItem

	GetFoodItem(uri string) (domain.FoodItem, error)

	NutrientAmountsFor(uri string) ([]domain.NutrientAmount, error)

	FoodItemURIsWithNutrients() []string
}
