package services

import (
	"context"
	"time"

	"konservasi-platform/internal/efektivitas"
	"konservasi-platform/internal/models"
	"konservasi-platform/internal/repository"
	"konservasi-platform/pkg/logging"
	"konservasi-platform/pkg/metrics"
)

// StatisticsService computes the pivot, trend and summary views
type StatisticsService struct {
	assessments repository.AssessmentRepository
	areas       repository.AreaRepository
	logger      *logging.StructuredLogger
	metrics     *metrics.Collector
	now         func() time.Time
}

// PivotView is the area by year matrix with its column years
type PivotView struct {
	Years []int                  `json:"years"`
	Rows  []efektivitas.PivotRow `json:"rows"`
}

// StatisticsView is the summary block plus the breakdown of one selected year
type StatisticsView struct {
	Summary        efektivitas.Summary   `json:"summary"`
	SelectedYear   int                   `json:"selected_year"`
	YearBreakdown  efektivitas.Breakdown `json:"year_breakdown"`
	AvailableYears []int                 `json:"available_years"`
}

// DashboardView bundles every view for the HTML dashboard
type DashboardView struct {
	Statistics StatisticsView           `json:"statistics"`
	Pivot      PivotView                `json:"pivot"`
	Trend      *efektivitas.TrendReport `json:"trend"`
}

// NewStatisticsService creates a new statistics service
func NewStatisticsService(assessments repository.AssessmentRepository, areas repository.AreaRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *StatisticsService {
	return &StatisticsService{
		assessments: assessments,
		areas:       areas,
		logger:      logger,
		metrics:     metricsCollector,
		now:         time.Now,
	}
}

// SetClock replaces the time source used to pick the current year
func (s *StatisticsService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *StatisticsService) pivot(rm *readModel) PivotView {
	timer := s.metrics.NewTimer(s.metrics.EngineDuration.WithLabelValues("pivot"))
	defer timer.ObserveDuration()

	return PivotView{
		Years: efektivitas.AvailableYears(rm.assessments),
		Rows:  efektivitas.Pivot(rm.assessments, rm.areas),
	}
}

func (s *StatisticsService) trend(rm *readModel) *efektivitas.TrendReport {
	timer := s.metrics.NewTimer(s.metrics.EngineDuration.WithLabelValues("trend"))
	defer timer.ObserveDuration()

	return efektivitas.Analyze(rm.assessments)
}

// statistics summarises rm. A nil year selects the current year.
func (s *StatisticsService) statistics(rm *readModel, year *int) StatisticsView {
	timer := s.metrics.NewTimer(s.metrics.EngineDuration.WithLabelValues("summary"))
	defer timer.ObserveDuration()

	currentYear := s.now().Year()
	selected := currentYear
	if year != nil {
		selected = *year
	}

	summary := efektivitas.Summarize(rm.assessments, len(rm.areas), currentYear)
	for c, n := range summary.CategoryCounts {
		s.metrics.AssessmentsByBand.WithLabelValues(string(c)).Set(float64(n))
	}

	return StatisticsView{
		Summary:        summary,
		SelectedYear:   selected,
		YearBreakdown:  efektivitas.YearBreakdown(rm.assessments, selected),
		AvailableYears: efektivitas.AvailableYears(rm.assessments),
	}
}

// Pivot returns the pivot matrix over every assessment
func (s *StatisticsService) Pivot(ctx context.Context) (*PivotView, error) {
	rm, err := loadReadModel(ctx, s.assessments, s.areas, models.AssessmentFilter{})
	if err != nil {
		return nil, err
	}
	view := s.pivot(rm)
	return &view, nil
}

// Trend analyses the assessments matching filter. The report is nil when
// nothing matches.
func (s *StatisticsService) Trend(ctx context.Context, filter models.AssessmentFilter) (*efektivitas.TrendReport, error) {
	list, err := s.assessments.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.trend(&readModel{assessments: list}), nil
}

// Statistics returns the summary and the category breakdown of year
func (s *StatisticsService) Statistics(ctx context.Context, year *int) (*StatisticsView, error) {
	rm, err := loadReadModel(ctx, s.assessments, s.areas, models.AssessmentFilter{})
	if err != nil {
		return nil, err
	}
	view := s.statistics(rm, year)
	return &view, nil
}

// Dashboard computes every view from a single load
func (s *StatisticsService) Dashboard(ctx context.Context, year *int) (*DashboardView, error) {
	start := time.Now()

	rm, err := loadReadModel(ctx, s.assessments, s.areas, models.AssessmentFilter{})
	if err != nil {
		return nil, err
	}

	view := &DashboardView{
		Statistics: s.statistics(rm, year),
		Pivot:      s.pivot(rm),
		Trend:      s.trend(rm),
	}

	s.logger.Debug(ctx, "[STATS_DASHBOARD] Dashboard computed", logging.Fields{
		"assessments": len(rm.assessments),
		"areas":       len(rm.areas),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return view, nil
}
