package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"foodrec/internal/api/response"
	"foodrec/internal/domain"
)

const (
	defaultStartIndex = 0
	defaultEndIndex   = 100
)

// CatalogService defines the catalog views served over HTTP.
type CatalogService interface {
	ListFoodItems() []domain.FoodItem
	FoodItemURIs(start, end int) []string
	Detail(uri string) (domain.FoodItemDetail, error)
}

// FoodItemsHandler handles catalog listing and detail requests.
type FoodItemsHandler struct {
	service CatalogService
}

func NewFoodItemsHandler(service CatalogService) *FoodItemsHandler {
	return &FoodItemsHandler{service: service}
}

// List handles GET /food-items.
func (h *FoodItemsHandler) List(w http.ResponseWriter, _ *http.Request) {
	items := h.service.ListFoodItems()
	if items == nil {
		items = []domain.FoodItem{}
	}
	response.RespondJSON(w, http.StatusOK, items)
}

// URIs handles GET /food-item-uris?start_index=&end_index=.
func (h *FoodItemsHandler) URIs(w http.ResponseWriter, r *http.Request) {
	start, ok := intParam(w, r, "start_index", defaultStartIndex)
	if !ok {
		return
	}
	end, ok := intParam(w, r, "end_index", defaultEndIndex)
	if !ok {
		return
	}
	response.RespondJSON(w, http.StatusOK, h.service.FoodItemURIs(start, end))
}

// Detail handles GET /detail?food_item_uri=.
func (h *FoodItemsHandler) Detail(w http.ResponseWriter, r *http.Request) {
	uri, ok := requiredParam(w, r, "food_item_uri")
	if !ok {
		return
	}

	detail, err := h.service.Detail(uri)
	if err != nil {
		response.RespondServiceError(w, r, err)
		return
	}
	response.RespondJSON(w, http.StatusOK, detail)
}

// requiredParam reads a non-blank query parameter, answering 400 when it is missing.
func requiredParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		response.RespondBadRequest(w, name+" is required")
		return "", false
	}
	return v, true
}

// intParam reads an optional integer query parameter.
func intParam(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		response.RespondBadRequest(w, name+" must be an integer")
		return 0, false
	}
	return n, true
}
