package catalog

import (
	"sort"
	"sync"

	"foodrec/internal/domain"
	"foodrec/internal/port"
)

// MemoryStore keeps the catalog in maps keyed by food-item URI, plus the
// load order of the items.
type MemoryStore struct {
	mu        sync.RWMutex
	order     []string
	items     map[string]domain.FoodItem
	nutrients map[string][]domain.NutrientAmount
}

var _ port.CatalogStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items:     make(map[string]domain.FoodItem),
		nutrients: make(map[string][]domain.NutrientAmount),
	}
}

// PutFoodItem adds an item. A repeated URI keeps its first position and
// takes the new label.
func (s *MemoryStore) PutFoodItem(item domain.FoodItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[item.URI]; !exists {
		s.order = append(s.order, item.URI)
	}
	s.items[item.URI] = item
}

func (s *MemoryStore) PutNutrients(foodItemURI string, amounts []domain.NutrientAmount) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nutrients[foodItemURI] = amounts
}

func (s *MemoryStore) ListFoodItems() []domain.FoodItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]domain.FoodItem, 0, len(s.order))
	for _, uri := range s.order {
		items = append(items, s.items[uri])
	}
	return items
}

func (s *MemoryStore) GetFoodItem(uri string) (domain.FoodItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[uri]
	if !ok {
		return domain.FoodItem{}, domain.NewNotFoundError("food item", uri)
	}
	return item, nil
}

func (s *MemoryStore) NutrientAmountsFor(uri string) ([]domain.NutrientAmount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	amounts, ok := s.nutrients[uri]
	if !ok {
		return nil, domain.NewNotFoundError("nutrient amounts", uri)
	}
	out := make([]domain.NutrientAmount, len(amounts))
	copy(out, amounts)
	return out, nil
}

// FoodItemURIsWithNutrients returns the URIs with nutrient data, sorted.
func (s *MemoryStore) FoodItemURIsWithNutrients() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	uris := make([]string, 0, len(s.nutrients))
	for uri := range s.nutrients {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// NutrientAmountByURI finds a nutrient in a list by its URI. When none
// matches it returns a placeholder amount with Value -1.
func NutrientAmountByURI(amounts []domain.NutrientAmount, nutrientURI string) domain.NutrientAmount {
	for _, a := range amounts {
		if a.NutrientURI == nutrientURI {
			return a
		}
	}
	return domain.NutrientAmount{
		FoodItemURI:   "_",
		NutrientURI:   "_",
		NutrientLabel: "_",
		Unit:          "_",
		Value:         -1,
	}
}
