package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"konservasi-platform/internal/services"
	"konservasi-platform/pkg/logging"
	"konservasi-platform/pkg/metrics"
)

// HealthHandler reports service and database health
type HealthHandler struct {
	base
	areas *services.AreaService
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(areas *services.AreaService, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *HealthHandler {
	return &HealthHandler{
		base:  base{logger: logger, metrics: metricsCollector},
		areas: areas,
	}
}

// HealthCheck handles GET /health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]string{
		"status":    "healthy",
		"database":  "up",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	code := http.StatusOK

	if err := h.areas.HealthCheck(ctx); err != nil {
		h.logger.Warn(ctx, "[HEALTH_CHECK] Database unreachable", logging.Fields{"error": err.Error()})
		status["status"] = "unhealthy"
		status["database"] = "down"
		code = http.StatusServiceUnavailable
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{})
	h.sendJSON(w, status, code)
}

// Services bundles what the router needs
type Services struct {
	Areas          *services.AreaService
	Assessments    *services.AssessmentService
	Statistics     *services.StatisticsService
	Ingestion      *services.IngestionService
	Export         *services.ExportService
	Maps           *services.MapService
	MaxUploadBytes int64
	ImportRate     float64
	ImportBurst    int
}

// NewRouter registers every route. The returned handler is not yet wrapped with
// middleware; see Wrap.
func NewRouter(svc Services, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *mux.Router {
	router := mux.NewRouter()

	limiter := NewRateLimiter(svc.ImportRate, svc.ImportBurst, metricsCollector)

	NewHealthHandler(svc.Areas, logger, metricsCollector).RegisterRoutes(router)
	NewAreaHandler(svc.Areas, logger, metricsCollector).RegisterRoutes(router)
	NewEfektivitasHandler(svc.Assessments, svc.Statistics, svc.Ingestion, svc.Export, svc.MaxUploadBytes, logger, metricsCollector).
		RegisterRoutes(router, limiter.Middleware)
	NewMapHandler(svc.Maps, logger, metricsCollector).RegisterRoutes(router)
	NewDashboardHandler(svc.Statistics, logger, metricsCollector).RegisterRoutes(router)

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	router.HandleFunc(docsPath, SwaggerUI).Methods("GET")
	router.HandleFunc(openAPIPath, OpenAPISpec).Methods("GET")

	return router
}

// RegisterRoutes registers the health route
func (h *HealthHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
}
