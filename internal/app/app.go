// Package app wires configuration, logging, metrics, the database and the
// services for the command-line binaries.
package app

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rotisserie/eris"

	"konservasi-platform/internal/config"
	"konservasi-platform/internal/geo"
	"konservasi-platform/internal/repository"
	"konservasi-platform/internal/services"
	"konservasi-platform/migrations"
	"konservasi-platform/pkg/database"
	"konservasi-platform/pkg/logging"
	"konservasi-platform/pkg/metrics"
)

// Version is reported by every binary
const Version = "1.0.0"

// Options controls Open
type Options struct {
	ConfigFile string
	Service    string
	// Migrate applies pending migrations after connecting
	Migrate bool
	// Registerer receives the metrics; nil uses a private registry
	Registerer prometheus.Registerer
}

// App holds the wired components
type App struct {
	Config  *config.Config
	Logger  *logging.StructuredLogger
	Metrics *metrics.Collector
	DB      *database.DB

	Areas       *services.AreaService
	Assessments *services.AssessmentService
	Statistics  *services.StatisticsService
	Ingestion   *services.IngestionService
	Export      *services.ExportService
	Maps        *services.MapService
}

// Open loads configuration, connects to the database and builds the services
func Open(ctx context.Context, opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, eris.Wrap(err, "invalid configuration")
	}

	logger := logging.NewStructuredLoggerWithFormat(opts.Service, Version, logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)

	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	metricsCollector := metrics.NewCollectorWithRegistry("konservasi", reg)

	style, err := geo.LoadStyle(cfg.Map.StylePath)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(cfg.Database.ConnectionConfig(), logger, metricsCollector)
	if err != nil {
		return nil, eris.Wrap(err, "failed to connect to database")
	}

	if opts.Migrate {
		applied, err := migrations.Up(ctx, db, logger)
		if err != nil {
			db.Close()
			return nil, err
		}
		logger.Info(ctx, "[MIGRATE] Migrations applied", logging.Fields{"applied": applied})
	}

	areaRepo := repository.NewAreaRepository(db, logger, metricsCollector)
	assessmentRepo := repository.NewAssessmentRepository(db, logger, metricsCollector)
	recordRepo := repository.NewRecordRepository(db, logger, metricsCollector)

	return &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: metricsCollector,
		DB:      db,

		Areas:       services.NewAreaService(areaRepo, recordRepo, logger, metricsCollector),
		Assessments: services.NewAssessmentService(assessmentRepo, areaRepo, logger, metricsCollector),
		Statistics:  services.NewStatisticsService(assessmentRepo, areaRepo, logger, metricsCollector),
		Ingestion:   services.NewIngestionService(assessmentRepo, areaRepo, logger, metricsCollector),
		Export:      services.NewExportService(assessmentRepo, areaRepo, logger, metricsCollector),
		Maps:        services.NewMapService(assessmentRepo, areaRepo, style, cfg.Map.RegistrationProperty, logger, metricsCollector),
	}, nil
}

// Close flushes the logger and closes the database
func (a *App) Close() error {
	a.Logger.Sync()
	return a.DB.Close()
}
