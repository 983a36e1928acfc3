package handlers

import (
	"net/http"

	"foodrec/internal/api/response"
)

// HealthHandler handles health check requests.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Check handles GET /health.
func (h *HealthHandler) Check(w http.ResponseWriter, _ *http.Request) {
	response.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// IndexHandler lists the available routes.
type IndexHandler struct {
	routes []string
}

func NewIndexHandler(routes []string) *IndexHandler {
	return &IndexHandler{routes: routes}
}

// List handles GET /.
func (h *IndexHandler) List(w http.ResponseWriter, _ *http.Request) {
	response.RespondJSON(w, http.StatusOK, map[string][]string{"routes": h.routes})
}
