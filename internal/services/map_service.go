package services

import (
	"context"
	"errors"

	"konservasi-platform/internal/efektivitas"
	"konservasi-platform/internal/geo"
	"konservasi-platform/internal/models"
	"konservasi-platform/internal/repository"
	"konservasi-platform/pkg/logging"
	"konservasi-platform/pkg/metrics"
)

// MapService serves the area map layer and loads boundaries from shapefiles
type MapService struct {
	assessments repository.AssessmentRepository
	areas       repository.AreaRepository
	style       *geo.Style
	keyField    string
	logger      *logging.StructuredLogger
	metrics     *metrics.Collector
}

// BoundaryImportResult reports how shapefile records matched registered areas
type BoundaryImportResult struct {
	Updated   []string `json:"updated"`
	Unmatched []string `json:"unmatched"`
	Skipped   int      `json:"skipped"`
}

// NewMapService creates a new map service. keyField is the boundary attribute
// holding the registration number.
func NewMapService(assessments repository.AssessmentRepository, areas repository.AreaRepository, style *geo.Style, keyField string, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *MapService {
	if style == nil {
		style = geo.DefaultStyle()
	}
	return &MapService{
		assessments: assessments,
		areas:       areas,
		style:       style,
		keyField:    keyField,
		logger:      logger,
		metrics:     metricsCollector,
	}
}

// Style returns the active map style
func (s *MapService) Style() *geo.Style {
	return s.style
}

// AreaLayer builds the FeatureCollection of areas coloured by latest category
func (s *MapService) AreaLayer(ctx context.Context) (*geo.LayerResult, error) {
	rm, err := loadReadModel(ctx, s.assessments, s.areas, models.AssessmentFilter{})
	if err != nil {
		return nil, err
	}

	timer := s.metrics.NewTimer(s.metrics.EngineDuration.WithLabelValues("map_layer"))
	result := geo.AreaLayer(rm.areas, efektivitas.Pivot(rm.assessments, rm.areas), s.style)
	timer.ObserveDuration()

	if len(result.Skipped) > 0 {
		s.logger.Warn(ctx, "[MAP_LAYER_SKIPPED] Areas with unreadable boundaries", logging.Fields{
			"area_ids": result.Skipped,
		})
	}
	return &result, nil
}

// ImportShapefile stores the boundaries of a shapefile on the areas whose
// registration number matches
func (s *MapService) ImportShapefile(ctx context.Context, path string) (*BoundaryImportResult, error) {
	log := s.logger.WithFields(logging.Fields{"path": path, "key_field": s.keyField})

	shapes, err := geo.ReadShapefile(path, s.keyField)
	if err != nil {
		log.Error(ctx, "[MAP_SHAPEFILE_ERROR] Failed to read shapefile", logging.Fields{}, err)
		return nil, err
	}

	result := &BoundaryImportResult{
		Updated:   []string{},
		Unmatched: []string{},
		Skipped:   shapes.Skipped,
	}

	for _, b := range shapes.Boundaries {
		area, err := s.areas.GetByRegistrationNo(ctx, b.RegistrationNo)
		if err != nil {
			var nf *repository.NotFoundError
			if errors.As(err, &nf) {
				log.Debug(ctx, "[MAP_BOUNDARY_UNMATCHED] No area with registration number", logging.Fields{
					"registration_no": b.RegistrationNo,
				})
				result.Unmatched = append(result.Unmatched, b.RegistrationNo)
				continue
			}
			return nil, err
		}

		encoded, err := geo.EncodeBoundary(b.Geometry)
		if err != nil {
			return nil, err
		}
		if err := s.areas.UpdateBoundary(ctx, area.ID, &encoded); err != nil {
			return nil, err
		}
		result.Updated = append(result.Updated, b.RegistrationNo)
	}

	log.Info(ctx, "[MAP_BOUNDARIES_IMPORTED] Shapefile boundaries applied", logging.Fields{
		"updated":   len(result.Updated),
		"unmatched": len(result.Unmatched),
		"skipped":   result.Skipped,
	})
	return result, nil
}
