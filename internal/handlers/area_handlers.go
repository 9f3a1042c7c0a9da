package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"konservasi-platform/internal/models"
	"konservasi-platform/internal/repository"
	"konservasi-platform/internal/services"
	"konservasi-platform/pkg/logging"
	"konservasi-platform/pkg/metrics"
)

// AreaHandler handles the area registry and per-area record endpoints
type AreaHandler struct {
	base
	areas *services.AreaService
}

// NewAreaHandler creates a new area handler
func NewAreaHandler(areas *services.AreaService, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *AreaHandler {
	return &AreaHandler{
		base:  base{logger: logger, metrics: metricsCollector},
		areas: areas,
	}
}

// ListAreas handles GET /api/areas
func (h *AreaHandler) ListAreas(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/areas"
	defer h.observe(endpoint)()

	areas, err := h.areas.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}
	h.sendOK(w, r, endpoint, areas)
}

// CreateArea handles POST /api/areas
func (h *AreaHandler) CreateArea(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/areas"
	defer h.observe(endpoint)()

	var in models.AreaInput
	if err := h.decodeJSON(w, r, &in); err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	area, err := h.areas.Create(r.Context(), &in)
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	h.metrics.RecordAPIRequest(endpoint, r.Method, "201")
	h.sendJSON(w, area, http.StatusCreated)
}

// GetArea handles GET /api/areas/{id}
func (h *AreaHandler) GetArea(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/areas/{id}"
	defer h.observe(endpoint)()

	id, err := pathID(r, "id")
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	area, err := h.areas.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}
	h.sendOK(w, r, endpoint, area)
}

// UpdateArea handles PUT /api/areas/{id}
func (h *AreaHandler) UpdateArea(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/areas/{id}"
	defer h.observe(endpoint)()

	id, err := pathID(r, "id")
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	var patch models.AreaPatch
	if err := h.decodeJSON(w, r, &patch); err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	area, err := h.areas.Update(r.Context(), id, &patch)
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}
	h.sendOK(w, r, endpoint, area)
}

// DeleteArea handles DELETE /api/areas/{id}
func (h *AreaHandler) DeleteArea(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/areas/{id}"
	defer h.observe(endpoint)()

	id, err := pathID(r, "id")
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	if err := h.areas.Delete(r.Context(), id); err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	h.metrics.RecordAPIRequest(endpoint, r.Method, "204")
	w.WriteHeader(http.StatusNoContent)
}

// GetOverview handles GET /api/areas/{id}/overview
func (h *AreaHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/areas/{id}/overview"
	defer h.observe(endpoint)()

	id, err := pathID(r, "id")
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	overview, err := h.areas.Overview(r.Context(), id)
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}
	h.sendOK(w, r, endpoint, overview)
}

// PutBoundary handles PUT /api/areas/{id}/boundary with a GeoJSON geometry body
func (h *AreaHandler) PutBoundary(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/areas/{id}/boundary"
	defer h.observe(endpoint)()

	id, err := pathID(r, "id")
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 32<<20))
	if err != nil {
		h.handleError(w, r, endpoint, &models.ValidationError{Field: "boundary", Message: "Batas kawasan terlalu besar"})
		return
	}

	if err := h.areas.SetBoundary(r.Context(), id, body); err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	h.metrics.RecordAPIRequest(endpoint, r.Method, "204")
	w.WriteHeader(http.StatusNoContent)
}

// ListRecords handles GET /api/areas/{id}/{kind}
func (h *AreaHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/areas/{id}/{kind}"
	defer h.observe(endpoint)()

	id, err := pathID(r, "id")
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	var result interface{}
	switch repository.RecordKind(mux.Vars(r)["kind"]) {
	case repository.KindSKDocument:
		result, err = h.areas.ListSKDocuments(r.Context(), id)
	case repository.KindBlock:
		result, err = h.areas.ListBlocks(r.Context(), id)
	case repository.KindBiodiversity:
		result, err = h.areas.ListBiodiversity(r.Context(), id)
	case repository.KindPlan:
		result, err = h.areas.ListPlans(r.Context(), id)
	case repository.KindEcosystem:
		result, err = h.areas.ListEcosystems(r.Context(), id)
	case repository.KindLandCover:
		result, err = h.areas.ListLandCover(r.Context(), id)
	case repository.KindOpenArea:
		result, err = h.areas.ListOpenAreas(r.Context(), id)
	case repository.KindImportantValue:
		result, err = h.areas.ListImportantValues(r.Context(), id)
	case repository.KindSurvey:
		result, err = h.areas.ListSurveys(r.Context(), id)
	default:
		h.sendError(w, r, endpoint, "unknown record kind", http.StatusNotFound)
		return
	}
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}
	h.sendOK(w, r, endpoint, result)
}

// CreateRecord handles POST /api/areas/{id}/{kind}
func (h *AreaHandler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/areas/{id}/{kind}"
	defer h.observe(endpoint)()

	id, err := pathID(r, "id")
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	var created interface{}
	switch repository.RecordKind(mux.Vars(r)["kind"]) {
	case repository.KindSKDocument:
		var doc models.SKDocument
		if err = h.decodeJSON(w, r, &doc); err == nil {
			doc.AreaID = id
			err = h.areas.CreateSKDocument(r.Context(), &doc)
		}
		created = &doc
	case repository.KindBlock:
		var block models.ManagementBlock
		if err = h.decodeJSON(w, r, &block); err == nil {
			block.AreaID = id
			err = h.areas.CreateBlock(r.Context(), &block)
		}
		created = &block
	case repository.KindBiodiversity:
		var rec models.BiodiversityRecord
		if err = h.decodeJSON(w, r, &rec); err == nil {
			rec.AreaID = id
			err = h.areas.CreateBiodiversity(r.Context(), &rec)
		}
		created = &rec
	case repository.KindPlan:
		var plan models.ManagementPlan
		if err = h.decodeJSON(w, r, &plan); err == nil {
			plan.AreaID = id
			err = h.areas.CreatePlan(r.Context(), &plan)
		}
		created = &plan
	case repository.KindEcosystem:
		var eco models.Ecosystem
		if err = h.decodeJSON(w, r, &eco); err == nil {
			eco.AreaID = id
			err = h.areas.CreateEcosystem(r.Context(), &eco)
		}
		created = &eco
	case repository.KindLandCover:
		var cover models.LandCover
		if err = h.decodeJSON(w, r, &cover); err == nil {
			cover.AreaID = id
			err = h.areas.CreateLandCover(r.Context(), &cover)
		}
		created = &cover
	case repository.KindOpenArea:
		var open models.OpenArea
		if err = h.decodeJSON(w, r, &open); err == nil {
			open.AreaID = id
			err = h.areas.CreateOpenArea(r.Context(), &open)
		}
		created = &open
	case repository.KindImportantValue:
		var value models.ImportantValue
		if err = h.decodeJSON(w, r, &value); err == nil {
			value.AreaID = id
			err = h.areas.CreateImportantValue(r.Context(), &value)
		}
		created = &value
	case repository.KindSurvey:
		var survey models.Survey
		if err = h.decodeJSON(w, r, &survey); err == nil {
			survey.AreaID = id
			err = h.areas.CreateSurvey(r.Context(), &survey)
		}
		created = &survey
	default:
		h.sendError(w, r, endpoint, "unknown record kind", http.StatusNotFound)
		return
	}
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	h.metrics.RecordAPIRequest(endpoint, r.Method, "201")
	h.sendJSON(w, created, http.StatusCreated)
}

// DeleteRecord handles DELETE /api/records/{kind}/{id}
func (h *AreaHandler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/records/{kind}/{id}"
	defer h.observe(endpoint)()

	id, err := pathID(r, "id")
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	if err := h.areas.DeleteRecord(r.Context(), repository.RecordKind(mux.Vars(r)["kind"]), id); err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	h.metrics.RecordAPIRequest(endpoint, r.Method, "204")
	w.WriteHeader(http.StatusNoContent)
}

// RegisterRoutes registers the area routes
func (h *AreaHandler) RegisterRoutes(router *mux.Router) {
	names := make([]string, len(repository.RecordKinds))
	for i, k := range repository.RecordKinds {
		names[i] = string(k)
	}
	kinds := "{kind:" + strings.Join(names, "|") + "}"

	router.HandleFunc("/api/areas", h.ListAreas).Methods("GET")
	router.HandleFunc("/api/areas", h.CreateArea).Methods("POST")
	router.HandleFunc("/api/areas/{id:[0-9]+}", h.GetArea).Methods("GET")
	router.HandleFunc("/api/areas/{id:[0-9]+}", h.UpdateArea).Methods("PUT")
	router.HandleFunc("/api/areas/{id:[0-9]+}", h.DeleteArea).Methods("DELETE")
	router.HandleFunc("/api/areas/{id:[0-9]+}/overview", h.GetOverview).Methods("GET")
	router.HandleFunc("/api/areas/{id:[0-9]+}/boundary", h.PutBoundary).Methods("PUT")
	router.HandleFunc("/api/areas/{id:[0-9]+}/"+kinds, h.ListRecords).Methods("GET")
	router.HandleFunc("/api/areas/{id:[0-9]+}/"+kinds, h.CreateRecord).Methods("POST")
	router.HandleFunc("/api/records/{kind}/{id:[0-9]+}", h.DeleteRecord).Methods("DELETE")
}
