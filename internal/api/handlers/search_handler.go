package handlers

import (
	"context"
	"net/http"

	"foodrec/internal/api/response"
	"foodrec/internal/domain"
)

// SearchService defines semantic search over food labels.
type SearchService interface {
	Search(ctx context.Context, queryText string, k int) ([]domain.FoodItem, error)
	DefaultK() int
	MaxK() int
}

type SearchHandler struct {
	service SearchService
}

func NewSearchHandler(service SearchService) *SearchHandler {
	return &SearchHandler{service: service}
}

// Search handles GET /search?search_text=&k=.
// k defaults to the configured value and is capped at the configured maximum.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	text, ok := requiredParam(w, r, "search_text")
	if !ok {
		return
	}
	k, ok := intParam(w, r, "k", h.service.DefaultK())
	if !ok {
		return
	}
	if k < 0 {
		response.RespondBadRequest(w, "k must not be negative")
		return
	}
	k = min(k, h.service.MaxK())

	items, err := h.service.Search(r.Context(), text, k)
	if err != nil {
		response.RespondServiceError(w, r, err)
		return
	}
	response.RespondJSON(w, http.StatusOK, items)
}
