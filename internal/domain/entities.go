package domain

// FoodItem is a catalog entry. URI is unique, Label is not.
type FoodItem struct {
	URI   string `json:"uri"`
	Label string `json:"label"`
}

// NutrientAmount is one measured nutrient of a food item. Values are stored
// in the catalog's own units; no conversion happens anywhere.
type NutrientAmount struct {
	FoodItemURI   string  `json:"food_item_uri"`
	NutrientURI   string  `json:"nutrient_uri"`
	NutrientLabel string  `json:"nutrient_label"`
	Unit          string  `json:"unit"`
	Value         float64 `json:"value"`
}

// NutrientWeights maps a nutrient label to its weight. Labels missing from
// the map weigh 0.
type NutrientWeights map[string]float64

// CatalogEntry ties a food item to its label embedding. Entries are kept in
// one ordered slice so an item can never drift away from its vector.
type CatalogEntry struct {
	Item   FoodItem
	Vector []float32
}

type ScoredFoodItem struct {
	Item       FoodItem
	Similarity float64
}

type FoodItemDetail struct {
	FoodItem        FoodItem         `json:"food_item"`
	NutrientAmounts []NutrientAmount `json:"nutrient_amounts"`
	HealthScore     float64          `json:"health_score"`
}

// Items strips similarity scores, keeping order.
func Items(scored []ScoredFoodItem) []FoodItem {
	out := make([]FoodItem, len(scored))
	for i, s := range scored {
		out[i] = s.Item
	}
	return out
}
