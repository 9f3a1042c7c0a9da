package services

import (
	"context"
	"errors"
	"strconv"

	"konservasi-platform/internal/models"
	"konservasi-platform/internal/repository"
	"konservasi-platform/pkg/logging"
	"konservasi-platform/pkg/metrics"
)

// MsgUnknownArea is reported when a form references an area that does not exist
const MsgUnknownArea = "Kawasan tidak ditemukan"

// AssessmentService handles single assessment operations from forms
type AssessmentService struct {
	assessments repository.AssessmentRepository
	areas       repository.AreaRepository
	logger      *logging.StructuredLogger
	metrics     *metrics.Collector
}

// NewAssessmentService creates a new assessment service
func NewAssessmentService(assessments repository.AssessmentRepository, areas repository.AreaRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *AssessmentService {
	return &AssessmentService{
		assessments: assessments,
		areas:       areas,
		logger:      logger,
		metrics:     metricsCollector,
	}
}

// Create validates the form and stores one assessment
func (s *AssessmentService) Create(ctx context.Context, in *models.AssessmentInput) (*models.Assessment, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.areas.Get(ctx, in.AreaID); err != nil {
		var nf *repository.NotFoundError
		if errors.As(err, &nf) {
			return nil, &models.ValidationError{Field: "area_id", Value: strconv.FormatInt(in.AreaID, 10), Message: MsgUnknownArea}
		}
		return nil, err
	}

	created, err := s.assessments.Create(ctx, in)
	if err != nil {
		return nil, err
	}

	// Re-read to include the joined area columns
	a, err := s.assessments.Get(ctx, created.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "[ASSESSMENT_CREATED] Assessment recorded", logging.Fields{
		"assessment_id": a.ID,
		"area_id":       in.AreaID,
		"year":          a.Year,
		"score":         a.Score,
	})
	return a, nil
}

// Update validates and applies a partial update
func (s *AssessmentService) Update(ctx context.Context, id int64, patch *models.AssessmentPatch) (*models.Assessment, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	return s.assessments.Update(ctx, id, patch)
}

// Delete removes an assessment
func (s *AssessmentService) Delete(ctx context.Context, id int64) error {
	return s.assessments.Delete(ctx, id)
}

// Get retrieves an assessment
func (s *AssessmentService) Get(ctx context.Context, id int64) (*models.Assessment, error) {
	return s.assessments.Get(ctx, id)
}

// List retrieves assessments with filtering
func (s *AssessmentService) List(ctx context.Context, filter models.AssessmentFilter) ([]models.Assessment, error) {
	return s.assessments.List(ctx, filter)
}
