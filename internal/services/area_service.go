package services

import (
	"context"

	"konservasi-platform/internal/geo"
	"konservasi-platform/internal/models"
	"konservasi-platform/internal/repository"
	"konservasi-platform/pkg/logging"
	"konservasi-platform/pkg/metrics"
)

// AreaService handles the conservation area registry and per-area records
type AreaService struct {
	areas   repository.AreaRepository
	records repository.RecordRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewAreaService creates a new area service
func NewAreaService(areas repository.AreaRepository, records repository.RecordRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *AreaService {
	return &AreaService{
		areas:   areas,
		records: records,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// Create validates and registers a new area
func (s *AreaService) Create(ctx context.Context, in *models.AreaInput) (*models.Area, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	area, err := s.areas.Create(ctx, in)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "[AREA_CREATED] Conservation area registered", logging.Fields{
		"area_id":  area.ID,
		"name":     area.Name,
		"category": area.Category,
	})
	return area, nil
}

// Get retrieves an area
func (s *AreaService) Get(ctx context.Context, id int64) (*models.Area, error) {
	return s.areas.Get(ctx, id)
}

// List returns areas, optionally filtered by name
func (s *AreaService) List(ctx context.Context, search string) ([]models.Area, error) {
	return s.areas.List(ctx, search)
}

// Update validates and applies a partial update
func (s *AreaService) Update(ctx context.Context, id int64, patch *models.AreaPatch) (*models.Area, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return s.areas.Get(ctx, id)
	}
	return s.areas.Update(ctx, id, patch)
}

// Delete removes an area together with its assessments and records
func (s *AreaService) Delete(ctx context.Context, id int64) error {
	return s.areas.Delete(ctx, id)
}

// Overview returns an area with its record counts
func (s *AreaService) Overview(ctx context.Context, id int64) (*models.AreaOverview, error) {
	return s.areas.Overview(ctx, id)
}

// SetBoundary stores a GeoJSON boundary after normalising it to a MultiPolygon.
// An empty body clears the boundary.
func (s *AreaService) SetBoundary(ctx context.Context, id int64, raw []byte) error {
	if len(raw) == 0 || string(raw) == "null" {
		return s.areas.UpdateBoundary(ctx, id, nil)
	}

	normalized, err := geo.NormalizeBoundary(raw)
	if err != nil {
		return &models.ValidationError{Field: "boundary", Message: err.Error()}
	}
	return s.areas.UpdateBoundary(ctx, id, &normalized)
}

// CreateSKDocument validates and attaches a decree to an area
func (s *AreaService) CreateSKDocument(ctx context.Context, doc *models.SKDocument) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	return s.records.CreateSKDocument(ctx, doc)
}

// ListSKDocuments lists an area's decrees
func (s *AreaService) ListSKDocuments(ctx context.Context, areaID int64) ([]models.SKDocument, error) {
	if _, err := s.areas.Get(ctx, areaID); err != nil {
		return nil, err
	}
	return s.records.ListSKDocuments(ctx, areaID)
}

// CreateBlock validates and attaches a management block to an area
func (s *AreaService) CreateBlock(ctx context.Context, block *models.ManagementBlock) error {
	if err := block.Validate(); err != nil {
		return err
	}
	return s.records.CreateBlock(ctx, block)
}

// ListBlocks lists an area's management blocks
func (s *AreaService) ListBlocks(ctx context.Context, areaID int64) ([]models.ManagementBlock, error) {
	if _, err := s.areas.Get(ctx, areaID); err != nil {
		return nil, err
	}
	return s.records.ListBlocks(ctx, areaID)
}

// CreateBiodiversity validates and attaches a species record to an area
func (s *AreaService) CreateBiodiversity(ctx context.Context, rec *models.BiodiversityRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	return s.records.CreateBiodiversity(ctx, rec)
}

// ListBiodiversity lists an area's species records
func (s *AreaService) ListBiodiversity(ctx context.Context, areaID int64) ([]models.BiodiversityRecord, error) {
	if _, err := s.areas.Get(ctx, areaID); err != nil {
		return nil, err
	}
	return s.records.ListBiodiversity(ctx, areaID)
}

// CreatePlan validates and attaches a long-term management plan to an area
func (s *AreaService) CreatePlan(ctx context.Context, plan *models.ManagementPlan) error {
	if err := plan.Validate(); err != nil {
		return err
	}
	return s.records.CreatePlan(ctx, plan)
}

// ListPlans lists an area's plans
func (s *AreaService) ListPlans(ctx context.Context, areaID int64) ([]models.ManagementPlan, error) {
	if _, err := s.areas.Get(ctx, areaID); err != nil {
		return nil, err
	}
	return s.records.ListPlans(ctx, areaID)
}

// CreateEcosystem validates and attaches an ecosystem type to an area
func (s *AreaService) CreateEcosystem(ctx context.Context, eco *models.Ecosystem) error {
	if err := eco.Validate(); err != nil {
		return err
	}
	return s.records.CreateEcosystem(ctx, eco)
}

// ListEcosystems lists an area's ecosystem types
func (s *AreaService) ListEcosystems(ctx context.Context, areaID int64) ([]models.Ecosystem, error) {
	if _, err := s.areas.Get(ctx, areaID); err != nil {
		return nil, err
	}
	return s.records.ListEcosystems(ctx, areaID)
}

// CreateLandCover validates and attaches a land-cover measurement to an area
func (s *AreaService) CreateLandCover(ctx context.Context, cover *models.LandCover) error {
	if err := cover.Validate(); err != nil {
		return err
	}
	return s.records.CreateLandCover(ctx, cover)
}

// ListLandCover lists an area's land cover
func (s *AreaService) ListLandCover(ctx context.Context, areaID int64) ([]models.LandCover, error) {
	if _, err := s.areas.Get(ctx, areaID); err != nil {
		return nil, err
	}
	return s.records.ListLandCover(ctx, areaID)
}

// CreateOpenArea validates and attaches an open area to an area
func (s *AreaService) CreateOpenArea(ctx context.Context, open *models.OpenArea) error {
	if err := open.Validate(); err != nil {
		return err
	}
	return s.records.CreateOpenArea(ctx, open)
}

// ListOpenAreas lists an area's open areas
func (s *AreaService) ListOpenAreas(ctx context.Context, areaID int64) ([]models.OpenArea, error) {
	if _, err := s.areas.Get(ctx, areaID); err != nil {
		return nil, err
	}
	return s.records.ListOpenAreas(ctx, areaID)
}

// CreateImportantValue validates and attaches an important value to an area
func (s *AreaService) CreateImportantValue(ctx context.Context, value *models.ImportantValue) error {
	if err := value.Validate(); err != nil {
		return err
	}
	return s.records.CreateImportantValue(ctx, value)
}

// ListImportantValues lists an area's important values
func (s *AreaService) ListImportantValues(ctx context.Context, areaID int64) ([]models.ImportantValue, error) {
	if _, err := s.areas.Get(ctx, areaID); err != nil {
		return nil, err
	}
	return s.records.ListImportantValues(ctx, areaID)
}

// CreateSurvey validates and attaches a monitoring survey to an area
func (s *AreaService) CreateSurvey(ctx context.Context, survey *models.Survey) error {
	if err := survey.Validate(); err != nil {
		return err
	}
	return s.records.CreateSurvey(ctx, survey)
}

// ListSurveys lists an area's surveys
func (s *AreaService) ListSurveys(ctx context.Context, areaID int64) ([]models.Survey, error) {
	if _, err := s.areas.Get(ctx, areaID); err != nil {
		return nil, err
	}
	return s.records.ListSurveys(ctx, areaID)
}

// DeleteRecord removes one record of any kind
func (s *AreaService) DeleteRecord(ctx context.Context, kind repository.RecordKind, id int64) error {
	return s.records.Delete(ctx, kind, id)
}

// HealthCheck checks the underlying store
func (s *AreaService) HealthCheck(ctx context.Context) error {
	return s.areas.HealthCheck(ctx)
}
