package services

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"konservasi-platform/internal/efektivitas"
	"konservasi-platform/internal/models"
	"konservasi-platform/internal/repository"
	"konservasi-platform/pkg/logging"
	"konservasi-platform/pkg/metrics"
)

// FileFormat identifies an import or export file type
type FileFormat string

const (
	FormatCSV  FileFormat = "csv"
	FormatXLSX FileFormat = "xlsx"
)

// Valid reports whether f is a supported format
func (f FileFormat) Valid() bool {
	return f == FormatCSV || f == FormatXLSX
}

// DetectFormat picks the format from a filename extension
func DetectFormat(filename string) (FileFormat, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	}
	return "", &models.ValidationError{Field: "file", Value: filepath.Base(filename), Message: "Format file harus CSV atau XLSX"}
}

// IngestionService validates and imports assessment batches from CSV and XLSX files
type IngestionService struct {
	assessments repository.AssessmentRepository
	areas       repository.AreaRepository
	logger      *logging.StructuredLogger
	metrics     *metrics.Collector
}

// IngestionResult contains the per-row outcome of a preview or import
type IngestionResult struct {
	Records  []efektivitas.ValidatedRecord `json:"records"`
	Tally    efektivitas.ImportTally       `json:"tally"`
	Inserted int                           `json:"inserted"`
	Duration time.Duration                 `json:"-"`
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(assessments repository.AssessmentRepository, areas repository.AreaRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *IngestionService {
	return &IngestionService{
		assessments: assessments,
		areas:       areas,
		logger:      logger,
		metrics:     metricsCollector,
	}
}

// Decode parses an uploaded file into raw records
func (s *IngestionService) Decode(format FileFormat, data []byte) ([]efektivitas.RawRecord, error) {
	var (
		raw []efektivitas.RawRecord
		err error
	)

	switch format {
	case FormatCSV:
		raw, err = efektivitas.DecodeCSV(bytes.NewReader(data))
	case FormatXLSX:
		var rows [][]string
		rows, err = readFirstSheet(data)
		if err == nil {
			raw, err = efektivitas.DecodeRows(rows)
		}
	default:
		return nil, &models.ValidationError{Field: "format", Value: string(format), Message: "Format file harus CSV atau XLSX"}
	}

	if err != nil {
		s.metrics.RecordImportError("decode_error")
		if errors.Is(err, efektivitas.ErrNoRecognisedColumns) {
			return nil, &models.ValidationError{Field: "file", Message: err.Error()}
		}
		return nil, &models.ValidationError{Field: "file", Message: "File tidak dapat dibaca: " + eris.Cause(err).Error()}
	}
	return raw, nil
}

func readFirstSheet(data []byte) ([][]string, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("xlsx: workbook has no sheets")
	}

	sheet := f.Sheets[0]
	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// Preview validates a file against the registered areas without storing anything
func (s *IngestionService) Preview(ctx context.Context, format FileFormat, data []byte) (*IngestionResult, error) {
	return s.run(ctx, format, data, false)
}

// Import validates a file and stores its VALID records in one transaction
func (s *IngestionService) Import(ctx context.Context, format FileFormat, data []byte) (*IngestionResult, error) {
	return s.run(ctx, format, data, true)
}

// ImportFile reads a CSV or XLSX file from disk and imports it
func (s *IngestionService) ImportFile(ctx context.Context, path string, commit bool) (*IngestionResult, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read %s", path)
	}
	return s.run(ctx, format, data, commit)
}

func (s *IngestionService) run(ctx context.Context, format FileFormat, data []byte, commit bool) (*IngestionResult, error) {
	timer := s.metrics.NewTimer(s.metrics.ImportDuration)

	stage := "PREVIEW"
	if commit {
		stage = "IMPORT"
	}
	s.logger.Info(ctx, "[IMPORT_START] Validating import file", logging.Fields{
		"format": format,
		"bytes":  len(data),
		"stage":  stage,
	})

	raw, err := s.Decode(format, data)
	if err != nil {
		return nil, err
	}

	areas, err := s.areas.List(ctx, "")
	if err != nil {
		return nil, eris.Wrap(err, "failed to load areas")
	}

	records := efektivitas.ValidateImportBatch(raw, areas)
	result := &IngestionResult{
		Records: records,
		Tally:   efektivitas.Tally(records),
	}

	if commit {
		inputs := efektivitas.ValidRecords(records)
		if len(inputs) > 0 {
			created, err := s.assessments.BulkInsert(ctx, inputs)
			if err != nil {
				s.metrics.RecordImportError("insert_error")
				s.logger.Error(ctx, "[IMPORT_INSERT_ERROR] Bulk insert failed", logging.Fields{
					"valid_records": len(inputs),
				}, err)
				return nil, err
			}
			result.Inserted = len(created)
		}
		s.metrics.RecordImportStatus(string(efektivitas.StatusValid), result.Tally.Valid)
		s.metrics.RecordImportStatus(string(efektivitas.StatusInvalid), result.Tally.Invalid)
		s.metrics.RecordImportStatus(string(efektivitas.StatusDuplicate), result.Tally.Duplicate)
	}

	result.Duration = timer.ObserveDuration()

	s.logger.Info(ctx, "[IMPORT_COMPLETE] Import file processed", logging.Fields{
		"total":       result.Tally.Total,
		"valid":       result.Tally.Valid,
		"invalid":     result.Tally.Invalid,
		"duplicate":   result.Tally.Duplicate,
		"inserted":    result.Inserted,
		"duration_ms": result.Duration.Milliseconds(),
		"stage":       stage,
	})

	return result, nil
}

// Template returns the sample import file
func (s *IngestionService) Template() []byte {
	return []byte(efektivitas.TemplateCSV)
}
