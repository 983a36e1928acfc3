// Package api wires the HTTP routes onto the engine's use cases.
package api

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"foodrec/internal/api/handlers"
	"foodrec/internal/api/middleware"
	"foodrec/internal/api/response"
	"foodrec/internal/usecase"
)

// RouterOptions configures NewRouter. Metrics and MetricsHandler may be nil.
type RouterOptions struct {
	Metrics        middleware.RequestRecorder
	MetricsHandler http.Handler
}

// NewRouter builds the handler chain RequestID -> Logging -> Metrics -> routes.
func NewRouter(engine *usecase.Engine, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics(opts.Metrics))

	health := handlers.NewHealthHandler()
	foodItems := handlers.NewFoodItemsHandler(engine.Catalog)
	recommend := handlers.NewRecommendHandler(engine.Recommend, engine.Catalog)
	search := handlers.NewSearchHandler(engine.Search)

	r.Get("/health", health.Check)
	r.Get("/food-items", foodItems.List)
	r.Get("/food-item-uris", foodItems.URIs)
	r.Get("/detail", foodItems.Detail)
	r.Get("/recommend-alternative-food-item", recommend.Alternatives)
	r.Get("/recommend-best-alternative-food-item", recommend.Best)
	r.Get("/search", search.Search)
	if opts.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", opts.MetricsHandler)
	}

	routes := listRoutes(r)
	r.Get("/", handlers.NewIndexHandler(append([]string{"GET /"}, routes...)).List)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.RespondNotFound(w, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.RespondError(w, http.StatusMethodNotAllowed, "Method Not Allowed", "only GET is supported")
	})

	return r
}

func listRoutes(r chi.Routes) []string {
	var routes []string
	_ = chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, method+" "+route)
		return nil
	})
	sort.Strings(routes)
	return routes
}
