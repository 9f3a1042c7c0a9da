package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"konservasi-platform/internal/models"
	"konservasi-platform/internal/repository"
	"konservasi-platform/pkg/logging"
	"konservasi-platform/pkg/metrics"
)

// maxJSONBody caps JSON request bodies
const maxJSONBody = 1 << 20

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string                    `json:"error"`
	Message string                    `json:"message"`
	Code    int                       `json:"code"`
	Details []*models.ValidationError `json:"details,omitempty"`
}

// base carries the logger and metrics shared by every handler
type base struct {
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// observe records the request duration for endpoint; use with defer
func (b *base) observe(endpoint string) func() {
	start := time.Now()
	return func() {
		b.metrics.APIRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}
}

// sendJSON sends a JSON response
func (b *base) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendOK sends a 200 response and counts the request
func (b *base) sendOK(w http.ResponseWriter, r *http.Request, endpoint string, data interface{}) {
	b.metrics.RecordAPIRequest(endpoint, r.Method, "200")
	b.sendJSON(w, data, http.StatusOK)
}

// sendError sends an error response
func (b *base) sendError(w http.ResponseWriter, r *http.Request, endpoint, message string, statusCode int) {
	b.sendErrorDetails(w, r, endpoint, message, statusCode, nil)
}

func (b *base) sendErrorDetails(w http.ResponseWriter, r *http.Request, endpoint, message string, statusCode int, details []*models.ValidationError) {
	b.metrics.RecordAPIRequest(endpoint, r.Method, strconv.Itoa(statusCode))

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
		Details: details,
	}

	b.sendJSON(w, response, statusCode)
}

// handleError maps service errors to HTTP statuses: validation 400, missing 404,
// conflict 409 and anything else 500
func (b *base) handleError(w http.ResponseWriter, r *http.Request, endpoint string, err error) {
	var (
		verrs    models.ValidationErrors
		verr     *models.ValidationError
		notFound *repository.NotFoundError
		conflict *repository.ConflictError
	)

	switch {
	case errors.As(err, &verrs):
		b.sendErrorDetails(w, r, endpoint, verrs.Error(), http.StatusBadRequest, verrs)
	case errors.As(err, &verr):
		b.sendErrorDetails(w, r, endpoint, verr.Message, http.StatusBadRequest, []*models.ValidationError{verr})
	case errors.As(err, &notFound):
		b.sendError(w, r, endpoint, notFound.Error(), http.StatusNotFound)
	case errors.As(err, &conflict):
		b.sendError(w, r, endpoint, conflict.Message, http.StatusConflict)
	default:
		b.logger.Error(r.Context(), "[API_ERROR] Request failed", logging.Fields{
			"endpoint": endpoint,
			"method":   r.Method,
		}, err)
		b.metrics.RecordAPIError("internal_error", endpoint)
		b.sendError(w, r, endpoint, "internal server error", http.StatusInternalServerError)
	}
}

// decodeJSON reads a JSON body into dst
func (b *base) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &models.ValidationError{Field: "body", Message: "Format data tidak valid: " + err.Error()}
	}
	return nil
}

// pathID parses a positive integer route variable
func pathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &models.ValidationError{Field: name, Value: raw, Message: "ID tidak valid"}
	}
	return id, nil
}

// queryInt parses an optional integer query parameter
func queryInt(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, &models.ValidationError{Field: name, Value: raw, Message: "Parameter " + name + " harus bilangan bulat"}
	}
	return &v, nil
}
