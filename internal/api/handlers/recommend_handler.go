package handlers

import (
	"context"
	"net/http"

	"foodrec/internal/api/response"
	"foodrec/internal/domain"
)

// RecommendService defines the recommendation operations served over HTTP.
type RecommendService interface {
	RecommendAlternative(ctx context.Context, item domain.FoodItem) ([]domain.FoodItem, error)
	BestAlternative(ctx context.Context, item domain.FoodItem) (domain.FoodItem, error)
}

// FoodItemLookup resolves a URI to a catalog item.
type FoodItemLookup interface {
	FoodItem(uri string) (domain.FoodItem, error)
}

type RecommendHandler struct {
	service RecommendService
	lookup  FoodItemLookup
}

func NewRecommendHandler(service RecommendService, lookup FoodItemLookup) *RecommendHandler {
	return &RecommendHandler{service: service, lookup: lookup}
}

// Alternatives handles GET /recommend-alternative-food-item?food_item_uri=.
func (h *RecommendHandler) Alternatives(w http.ResponseWriter, r *http.Request) {
	item, ok := h.resolve(w, r)
	if !ok {
		return
	}

	items, err := h.service.RecommendAlternative(r.Context(), item)
	if err != nil {
		response.RespondServiceError(w, r, err)
		return
	}
	response.RespondJSON(w, http.StatusOK, items)
}

// Best handles GET /recommend-best-alternative-food-item?food_item_uri=.
func (h *RecommendHandler) Best(w http.ResponseWriter, r *http.Request) {
	item, ok := h.resolve(w, r)
	if !ok {
		return
	}

	best, err := h.service.BestAlternative(r.Context(), item)
	if err != nil {
		response.RespondServiceError(w, r, err)
		return
	}
	response.RespondJSON(w, http.StatusOK, []domain.FoodItem{best})
}

func (h *RecommendHandler) resolve(w http.ResponseWriter, r *http.Request) (domain.FoodItem, bool) {
	uri, ok := requiredParam(w, r, "food_item_uri")
	if !ok {
		return domain.FoodItem{}, false
	}
	item, err := h.lookup.FoodItem(uri)
	if err != nil {
		response.RespondServiceError(w, r, err)
		return domain.FoodItem{}, false
	}
	return item, true
}
