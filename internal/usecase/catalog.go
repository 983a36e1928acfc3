package usecase

import (
	"errors"
	"fmt"
	"strings"

	"foodrec/internal/domain"
	"foodrec/internal/port"
)

// CatalogUseCase serves read-only catalog views.
type CatalogUseCase struct {
	catalog port.CatalogStore
	scores  port.HealthScores
}

func NewCatalogUseCase(catalog port.CatalogStore, scores port.HealthScores) *CatalogUseCase {
	return &CatalogUseCase{catalog: catalog, scores: scores}
}

func (u *CatalogUseCase) ListFoodItems() []domain.FoodItem {
	return u.catalog.ListFoodItems()
}

// FoodItem resolves a URI to its catalog item.
func (u *CatalogUseCase) FoodItem(uri string) (domain.FoodItem, error) {
	if strings.TrimSpace(uri) == "" {
		return domain.FoodItem{}, domain.NewInvalidArgumentError("food_item_uri", "food item uri must not be empty")
	}
	return u.catalog.GetFoodItem(uri)
}

// FoodItemURIs returns the sorted URIs that have nutrient data, from start to
// end inclusive. Both bounds are clamped to the available range; an empty
// slice is returned when start lies past end.
func (u *CatalogUseCase) FoodItemURIs(start, end int) []string {
	uris := u.catalog.FoodItemURIsWithNutrients()
	if len(uris) == 0 {
		return []string{}
	}
	if start < 0 {
		start = 0
	}
	if end >= len(uris) {
		end = len(uris) - 1
	}
	if start > end {
		return []string{}
	}
	return uris[start : end+1]
}

// Detail returns an item with its nutrient amounts and health score. Items
// without nutrient data get an empty amount list.
func (u *CatalogUseCase) Detail(uri string) (domain.FoodItemDetail, error) {
	item, err := u.FoodItem(uri)
	if err != nil {
		return domain.FoodItemDetail{}, err
	}

	amounts, err := u.catalog.NutrientAmountsFor(uri)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return domain.FoodItemDetail{}, fmt.Errorf("load nutrients for %s: %w", uri, err)
		}
		amounts = []domain.NutrientAmount{}
	}

	score, _ := u.scores.Lookup(uri)
	return domain.FoodItemDetail{
		FoodItem:        item,
		NutrientAmounts: amounts,
		HealthScore:     score,
	}, nil
}
