package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"konservasi-platform/internal/efektivitas"
	"konservasi-platform/internal/models"
	"konservasi-platform/internal/services"
	"konservasi-platform/pkg/logging"
	"konservasi-platform/pkg/metrics"
)

// EfektivitasHandler handles assessment, analysis, import and export endpoints
type EfektivitasHandler struct {
	base
	assessments    *services.AssessmentService
	stats          *services.StatisticsService
	ingestion      *services.IngestionService
	export         *services.ExportService
	maxUploadBytes int64
}

// NewEfektivitasHandler creates a new effectiveness handler
func NewEfektivitasHandler(
	assessments *services.AssessmentService,
	stats *services.StatisticsService,
	ingestion *services.IngestionService,
	export *services.ExportService,
	maxUploadBytes int64,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *EfektivitasHandler {
	return &EfektivitasHandler{
		base:           base{logger: logger, metrics: metricsCollector},
		assessments:    assessments,
		stats:          stats,
		ingestion:      ingestion,
		export:         export,
		maxUploadBytes: maxUploadBytes,
	}
}

// assessmentFilter reads the optional area_id and year query parameters
func assessmentFilter(r *http.Request) (models.AssessmentFilter, error) {
	var filter models.AssessmentFilter

	year, err := queryInt(r, "year")
	if err != nil {
		return filter, err
	}
	filter.Year = year

	if raw := r.URL.Query().Get("area_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return filter, &models.ValidationError{Field: "area_id", Value: raw, Message: "ID tidak valid"}
		}
		filter.AreaID = &id
	}
	return filter, nil
}

// ListAssessments handles GET /api/efektivitas
func (h *EfektivitasHandler) ListAssessments(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/efektivitas"
	defer h.observe(endpoint)()

	filter, err := assessmentFilter(r)
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	list, err := h.assessments.List(r.Context(), filter)
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}
	h.sendOK(w, r, endpoint, list)
}

// CreateAssessment handles POST /api/efektivitas
func (h *EfektivitasHandler) CreateAssessment(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/efektivitas"
	defer h.observe(endpoint)()

	var in models.AssessmentInput
	if err := h.decodeJSON(w, r, &in); err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	created, err := h.assessments.Create(r.Context(), &in)
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	h.metrics.RecordAPIRequest(endpoint, r.Method, "201")
	h.sendJSON(w, created, http.StatusCreated)
}

// UpdateAssessment handles PUT /api/efektivitas/{id}
func (h *EfektivitasHandler) UpdateAssessment(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/efektivitas/{id}"
	defer h.observe(endpoint)()

	id, err := pathID(r, "id")
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	var patch models.AssessmentPatch
	if err := h.decodeJSON(w, r, &patch); err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	updated, err := h.assessments.Update(r.Context(), id, &patch)
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}
	h.sendOK(w, r, endpoint, updated)
}

// DeleteAssessment handles DELETE /api/efektivitas/{id}
func (h *EfektivitasHandler) DeleteAssessment(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/efektivitas/{id}"
	defer h.observe(endpoint)()

	id, err := pathID(r, "id")
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	if err := h.assessments.Delete(r.Context(), id); err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	h.metrics.RecordAPIRequest(endpoint, r.Method, "204")
	w.WriteHeader(http.StatusNoContent)
}

// GetPivot handles GET /api/efektivitas/pivot
func (h *EfektivitasHandler) GetPivot(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/efektivitas/pivot"
	defer h.observe(endpoint)()

	view, err := h.stats.Pivot(r.Context())
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}
	h.sendOK(w, r, endpoint, view)
}

// TrendResponse wraps the trend report; Report is null when there is nothing to analyse
type TrendResponse struct {
	Report  *efektivitas.TrendReport `json:"report"`
	Message string                   `json:"message,omitempty"`
}

// GetTrend handles GET /api/efektivitas/trend
func (h *EfektivitasHandler) GetTrend(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/efektivitas/trend"
	defer h.observe(endpoint)()

	filter, err := assessmentFilter(r)
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	report, err := h.stats.Trend(r.Context(), filter)
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	resp := TrendResponse{Report: report}
	if report == nil {
		resp.Message = noTrendData
	}
	h.sendOK(w, r, endpoint, resp)
}

// GetStatistics handles GET /api/efektivitas/statistics
func (h *EfektivitasHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/efektivitas/statistics"
	defer h.observe(endpoint)()

	year, err := queryInt(r, "year")
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	view, err := h.stats.Statistics(r.Context(), year)
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}
	h.sendOK(w, r, endpoint, view)
}

// Export handles GET /api/efektivitas/export
func (h *EfektivitasHandler) Export(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/efektivitas/export"
	defer h.observe(endpoint)()

	q := r.URL.Query()
	req := services.ExportRequest{
		Format: services.FileFormat(q.Get("format")),
		Scope:  efektivitas.ExportScope(q.Get("scope")),
	}
	if req.Format == "" {
		req.Format = services.FormatCSV
	}
	if req.Scope == "" {
		req.Scope = efektivitas.ScopeAll
	}

	year, err := queryInt(r, "year")
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}
	if year != nil {
		req.Year = *year
	}
	filter, err := assessmentFilter(r)
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}
	if filter.AreaID != nil {
		req.AreaID = *filter.AreaID
	}

	file, err := h.export.Export(r.Context(), req)
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	h.metrics.RecordAPIRequest(endpoint, r.Method, "200")
	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(file.Data)
}

// readUpload extracts the "file" part of a multipart upload
func (h *EfektivitasHandler) readUpload(w http.ResponseWriter, r *http.Request) (services.FileFormat, []byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", nil, &models.ValidationError{Field: "file", Message: "Ukuran file melebihi batas"}
		}
		return "", nil, &models.ValidationError{Field: "file", Message: "File harus diunggah sebagai multipart/form-data"}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, &models.ValidationError{Field: "file", Message: "File harus diunggah"}
	}
	defer file.Close()

	format, err := services.DetectFormat(header.Filename)
	if err != nil {
		return "", nil, err
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, &models.ValidationError{Field: "file", Message: "File tidak dapat dibaca"}
	}
	return format, data, nil
}

// PreviewImport handles POST /api/efektivitas/import/preview
func (h *EfektivitasHandler) PreviewImport(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/efektivitas/import/preview"
	defer h.observe(endpoint)()

	format, data, err := h.readUpload(w, r)
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	result, err := h.ingestion.Preview(r.Context(), format, data)
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}
	h.sendOK(w, r, endpoint, result)
}

// Import handles POST /api/efektivitas/import
func (h *EfektivitasHandler) Import(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/efektivitas/import"
	defer h.observe(endpoint)()

	format, data, err := h.readUpload(w, r)
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	result, err := h.ingestion.Import(r.Context(), format, data)
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	h.logger.Info(r.Context(), "[API_IMPORT] Assessments imported", logging.Fields{
		"inserted":  result.Inserted,
		"invalid":   result.Tally.Invalid,
		"duplicate": result.Tally.Duplicate,
	})
	h.sendOK(w, r, endpoint, result)
}

// ImportTemplate handles GET /api/efektivitas/import/template
func (h *EfektivitasHandler) ImportTemplate(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/efektivitas/import/template"
	h.metrics.RecordAPIRequest(endpoint, r.Method, "200")

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="template_import_efektivitas.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(h.ingestion.Template())
}

// RegisterRoutes registers the effectiveness routes. Import uploads go through limit.
func (h *EfektivitasHandler) RegisterRoutes(router *mux.Router, limit func(http.Handler) http.Handler) {
	router.HandleFunc("/api/efektivitas", h.ListAssessments).Methods("GET")
	router.HandleFunc("/api/efektivitas", h.CreateAssessment).Methods("POST")
	router.HandleFunc("/api/efektivitas/pivot", h.GetPivot).Methods("GET")
	router.HandleFunc("/api/efektivitas/trend", h.GetTrend).Methods("GET")
	router.HandleFunc("/api/efektivitas/statistics", h.GetStatistics).Methods("GET")
	router.HandleFunc("/api/efektivitas/export", h.Export).Methods("GET")
	router.HandleFunc("/api/efektivitas/import/template", h.ImportTemplate).Methods("GET")
	router.Handle("/api/efektivitas/import/preview", limit(http.HandlerFunc(h.PreviewImport))).Methods("POST")
	router.Handle("/api/efektivitas/import", limit(http.HandlerFunc(h.Import))).Methods("POST")
	router.HandleFunc("/api/efektivitas/{id:[0-9]+}", h.UpdateAssessment).Methods("PUT")
	router.HandleFunc("/api/efektivitas/{id:[0-9]+}", h.DeleteAssessment).Methods("DELETE")
}
