package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"konservasi-platform/internal/services"
	"konservasi-platform/pkg/logging"
	"konservasi-platform/pkg/metrics"
)

// MapHandler serves the map layer and its style
type MapHandler struct {
	base
	maps *services.MapService
}

// NewMapHandler creates a new map handler
func NewMapHandler(maps *services.MapService, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *MapHandler {
	return &MapHandler{
		base: base{logger: logger, metrics: metricsCollector},
		maps: maps,
	}
}

// GetAreaLayer handles GET /api/map/areas.geojson
func (h *MapHandler) GetAreaLayer(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/map/areas.geojson"
	defer h.observe(endpoint)()

	layer, err := h.maps.AreaLayer(r.Context())
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	data, err := json.Marshal(layer.Collection)
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	h.metrics.RecordAPIRequest(endpoint, r.Method, "200")
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// GetStyle handles GET /api/map/style
func (h *MapHandler) GetStyle(w http.ResponseWriter, r *http.Request) {
	h.sendOK(w, r, "/api/map/style", h.maps.Style())
}

// RegisterRoutes registers the map routes
func (h *MapHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/map/areas.geojson", h.GetAreaLayer).Methods("GET")
	router.HandleFunc("/api/map/style", h.GetStyle).Methods("GET")
}
