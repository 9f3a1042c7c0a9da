package repository

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"konservasi-platform/internal/models"
	"konservasi-platform/pkg/database"
	"konservasi-platform/pkg/logging"
	"konservasi-platform/pkg/metrics"
)

// RecordKind names a family of per-area records
type RecordKind string

const (
	KindSKDocument   RecordKind = "sk-documents"
	KindBlock        RecordKind = "blocks"
	KindBiodiversity RecordKind = "biodiversity"
	KindPlan           RecordKind = "rpjp"
	KindEcosystem      RecordKind = "ecosystems"
	KindLandCover      RecordKind = "land-cover"
	KindOpenArea       RecordKind = "open-areas"
	KindImportantValue RecordKind = "important-values"
	KindSurvey         RecordKind = "surveys"
)

var recordTables = map[RecordKind]string{
	KindSKDocument:     "sk_documents",
	KindBlock:          "management_blocks",
	KindBiodiversity:   "biodiversity_records",
	KindPlan:           "management_plans",
	KindEcosystem:      "ecosystems",
	KindLandCover:      "land_covers",
	KindOpenArea:       "open_areas",
	KindImportantValue: "important_values",
	KindSurvey:         "surveys",
}

// RecordKinds lists every kind in route order
var RecordKinds = []RecordKind{
	KindSKDocument, KindBlock, KindBiodiversity, KindPlan, KindEcosystem,
	KindLandCover, KindOpenArea, KindImportantValue, KindSurvey,
}

// Valid reports whether k is a known record kind
func (k RecordKind) Valid() bool {
	_, ok := recordTables[k]
	return ok
}

// RecordRepository provides data access for decrees, management blocks and biodiversity records
type RecordRepository interface {
	CreateSKDocument(ctx context.Context, doc *models.SKDocument) error
	ListSKDocuments(ctx context.Context, areaID int64) ([]models.SKDocument, error)
	CreateBlock(ctx context.Context, block *models.ManagementBlock) error
	ListBlocks(ctx context.Context, areaID int64) ([]models.ManagementBlock, error)
	CreateBiodiversity(ctx context.Context, rec *models.BiodiversityRecord) error
	ListBiodiversity(ctx context.Context, areaID int64) ([]models.BiodiversityRecord, error)
	CreatePlan(ctx context.Context, plan *models.ManagementPlan) error
	ListPlans(ctx context.Context, areaID int64) ([]models.ManagementPlan, error)
	CreateEcosystem(ctx context.Context, eco *models.Ecosystem) error
	ListEcosystems(ctx context.Context, areaID int64) ([]models.Ecosystem, error)
	CreateLandCover(ctx context.Context, cover *models.LandCover) error
	ListLandCover(ctx context.Context, areaID int64) ([]models.LandCover, error)
	CreateOpenArea(ctx context.Context, open *models.OpenArea) error
	ListOpenAreas(ctx context.Context, areaID int64) ([]models.OpenArea, error)
	CreateImportantValue(ctx context.Context, value *models.ImportantValue) error
	ListImportantValues(ctx context.Context, areaID int64) ([]models.ImportantValue, error)
	CreateSurvey(ctx context.Context, survey *models.Survey) error
	ListSurveys(ctx context.Context, areaID int64) ([]models.Survey, error)
	Delete(ctx context.Context, kind RecordKind, id int64) error
}

type recordRepository struct {
	db      *database.DB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewRecordRepository creates a new record repository
func NewRecordRepository(db *database.DB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) RecordRepository {
	return &recordRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

func (r *recordRepository) insert(ctx context.Context, queryType string, id *int64, areaID int64, query string, args ...interface{}) error {
	err := r.db.GetContext(ctx, queryType, id, query, args...)
	if err != nil {
		if isForeignKeyViolation(err) {
			return notFound("area", areaID)
		}
		return eris.Wrapf(err, "failed to execute %s", queryType)
	}
	return nil
}

// CreateSKDocument inserts a legal decree
func (r *recordRepository) CreateSKDocument(ctx context.Context, doc *models.SKDocument) error {
	doc.CreatedAt = time.Now().UTC()
	return r.insert(ctx, "insert_sk_document", &doc.ID, doc.AreaID, `
		INSERT INTO sk_documents (area_id, jenis_sk, nomor_sk, tanggal_sk, penerbit, keterangan, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		doc.AreaID, doc.Type, doc.Number, doc.Date, doc.Issuer, doc.Note, doc.CreatedAt,
	)
}

// ListSKDocuments lists an area's decrees, newest first
func (r *recordRepository) ListSKDocuments(ctx context.Context, areaID int64) ([]models.SKDocument, error) {
	docs := []models.SKDocument{}
	err := r.db.SelectContext(ctx, "list_sk_documents", &docs, `
		SELECT id, area_id, jenis_sk, nomor_sk, tanggal_sk, penerbit, keterangan, created_at
		FROM sk_documents WHERE area_id = ?
		ORDER BY created_at DESC, id DESC`, areaID)
	if err != nil {
		return nil, eris.Wrap(err, "failed to list sk documents")
	}
	return docs, nil
}

// CreateBlock inserts a management block
func (r *recordRepository) CreateBlock(ctx context.Context, block *models.ManagementBlock) error {
	block.CreatedAt = time.Now().UTC()
	return r.insert(ctx, "insert_management_block", &block.ID, block.AreaID, `
		INSERT INTO management_blocks (area_id, nama_blok, luas_ha, fungsi, keterangan, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`,
		block.AreaID, block.Name, block.AreaHa, block.Function, block.Note, block.CreatedAt,
	)
}

// ListBlocks lists an area's management blocks by name
func (r *recordRepository) ListBlocks(ctx context.Context, areaID int64) ([]models.ManagementBlock, error) {
	blocks := []models.ManagementBlock{}
	err := r.db.SelectContext(ctx, "list_management_blocks", &blocks, `
		SELECT id, area_id, nama_blok, luas_ha, fungsi, keterangan, created_at
		FROM management_blocks WHERE area_id = ?
		ORDER BY nama_blok, id`, areaID)
	if err != nil {
		return nil, eris.Wrap(err, "failed to list management blocks")
	}
	return blocks, nil
}

// CreateBiodiversity inserts a species record
func (r *recordRepository) CreateBiodiversity(ctx context.Context, rec *models.BiodiversityRecord) error {
	rec.CreatedAt = time.Now().UTC()
	return r.insert(ctx, "insert_biodiversity_record", &rec.ID, rec.AreaID, `
		INSERT INTO biodiversity_records (area_id, kategori, nama_ilmiah, nama_lokal, status_iucn, endemik, tahun_survey, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		rec.AreaID, rec.Kind, rec.ScientificName, rec.LocalName, rec.IUCNStatus, rec.Endemic, rec.SurveyYear, rec.CreatedAt,
	)
}

// ListBiodiversity lists an area's species records grouped by kind
func (r *recordRepository) ListBiodiversity(ctx context.Context, areaID int64) ([]models.BiodiversityRecord, error) {
	records := []models.BiodiversityRecord{}
	err := r.db.SelectContext(ctx, "list_biodiversity_records", &records, `
		SELECT id, area_id, kategori, nama_ilmiah, nama_lokal, status_iucn, endemik, tahun_survey, created_at
		FROM biodiversity_records WHERE area_id = ?
		ORDER BY kategori, id`, areaID)
	if err != nil {
		return nil, eris.Wrap(err, "failed to list biodiversity records")
	}
	return records, nil
}

// CreatePlan inserts a long-term management plan
func (r *recordRepository) CreatePlan(ctx context.Context, plan *models.ManagementPlan) error {
	plan.CreatedAt = time.Now().UTC()
	return r.insert(ctx, "insert_management_plan", &plan.ID, plan.AreaID, `
		INSERT INTO management_plans (area_id, periode_awal, periode_akhir, tujuan, strategi, target_indikator, anggaran, status, file_dokumen, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		plan.AreaID, plan.StartYear, plan.EndYear, plan.Goal, plan.Strategy, plan.TargetIndicator,
		plan.Budget, plan.Status, plan.DocumentFile, plan.CreatedAt,
	)
}

// ListPlans lists an area's plans, latest period first
func (r *recordRepository) ListPlans(ctx context.Context, areaID int64) ([]models.ManagementPlan, error) {
	plans := []models.ManagementPlan{}
	err := r.db.SelectContext(ctx, "list_management_plans", &plans, `
		SELECT id, area_id, periode_awal, periode_akhir, tujuan, strategi, target_indikator, anggaran, status, file_dokumen, created_at
		FROM management_plans WHERE area_id = ?
		ORDER BY COALESCE(periode_awal, 0) DESC, id DESC`, areaID)
	if err != nil {
		return nil, eris.Wrap(err, "failed to list management plans")
	}
	return plans, nil
}

// CreateEcosystem inserts an ecosystem type
func (r *recordRepository) CreateEcosystem(ctx context.Context, eco *models.Ecosystem) error {
	eco.CreatedAt = time.Now().UTC()
	return r.insert(ctx, "insert_ecosystem", &eco.ID, eco.AreaID, `
		INSERT INTO ecosystems (area_id, nama_ekosistem, luas_ha, persentase_kawasan, kondisi, deskripsi, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		eco.AreaID, eco.Name, eco.AreaHa, eco.Percentage, eco.Condition, eco.Description, eco.CreatedAt,
	)
}

// ListEcosystems lists an area's ecosystem types by name
func (r *recordRepository) ListEcosystems(ctx context.Context, areaID int64) ([]models.Ecosystem, error) {
	ecosystems := []models.Ecosystem{}
	err := r.db.SelectContext(ctx, "list_ecosystems", &ecosystems, `
		SELECT id, area_id, nama_ekosistem, luas_ha, persentase_kawasan, kondisi, deskripsi, created_at
		FROM ecosystems WHERE area_id = ?
		ORDER BY nama_ekosistem, id`, areaID)
	if err != nil {
		return nil, eris.Wrap(err, "failed to list ecosystems")
	}
	return ecosystems, nil
}

// CreateLandCover inserts a land-cover measurement
func (r *recordRepository) CreateLandCover(ctx context.Context, cover *models.LandCover) error {
	cover.CreatedAt = time.Now().UTC()
	return r.insert(ctx, "insert_land_cover", &cover.ID, cover.AreaID, `
		INSERT INTO land_covers (area_id, jenis_tutupan, luas_ha, persentase, tahun_data, sumber_data, metode_analisis, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		cover.AreaID, cover.CoverType, cover.AreaHa, cover.Percentage, cover.DataYear, cover.Source, cover.Method, cover.CreatedAt,
	)
}

// ListLandCover lists an area's land cover, newest data year first
func (r *recordRepository) ListLandCover(ctx context.Context, areaID int64) ([]models.LandCover, error) {
	covers := []models.LandCover{}
	err := r.db.SelectContext(ctx, "list_land_covers", &covers, `
		SELECT id, area_id, jenis_tutupan, luas_ha, persentase, tahun_data, sumber_data, metode_analisis, created_at
		FROM land_covers WHERE area_id = ?
		ORDER BY COALESCE(tahun_data, 0) DESC, jenis_tutupan, id`, areaID)
	if err != nil {
		return nil, eris.Wrap(err, "failed to list land cover")
	}
	return covers, nil
}

// CreateOpenArea inserts an open area
func (r *recordRepository) CreateOpenArea(ctx context.Context, open *models.OpenArea) error {
	open.CreatedAt = time.Now().UTC()
	return r.insert(ctx, "insert_open_area", &open.ID, open.AreaID, `
		INSERT INTO open_areas (area_id, nama_area, luas_ha, jenis_pembukaan, penyebab, koordinat_lokasi, tahun_terbentuk, status_pemulihan, rencana_tindakan, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		open.AreaID, open.Name, open.AreaHa, open.ClearingType, open.Cause, open.Coordinates,
		open.YearFormed, open.Recovery, open.ActionPlan, open.CreatedAt,
	)
}

// ListOpenAreas lists an area's open areas, largest first
func (r *recordRepository) ListOpenAreas(ctx context.Context, areaID int64) ([]models.OpenArea, error) {
	open := []models.OpenArea{}
	err := r.db.SelectContext(ctx, "list_open_areas", &open, `
		SELECT id, area_id, nama_area, luas_ha, jenis_pembukaan, penyebab, koordinat_lokasi, tahun_terbentuk, status_pemulihan, rencana_tindakan, created_at
		FROM open_areas WHERE area_id = ?
		ORDER BY COALESCE(luas_ha, 0) DESC, id`, areaID)
	if err != nil {
		return nil, eris.Wrap(err, "failed to list open areas")
	}
	return open, nil
}

// CreateImportantValue inserts an important value
func (r *recordRepository) CreateImportantValue(ctx context.Context, value *models.ImportantValue) error {
	value.CreatedAt = time.Now().UTC()
	return r.insert(ctx, "insert_important_value", &value.ID, value.AreaID, `
		INSERT INTO important_values (area_id, kategori_nilai, nama_nilai, deskripsi, tingkat_kepentingan, indikator_nilai, potensi_ancaman, upaya_pelestarian, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		value.AreaID, value.Category, value.Name, value.Description, value.Importance,
		value.Indicator, value.Threats, value.Conservation, value.CreatedAt,
	)
}

// ListImportantValues lists an area's important values grouped by category
func (r *recordRepository) ListImportantValues(ctx context.Context, areaID int64) ([]models.ImportantValue, error) {
	values := []models.ImportantValue{}
	err := r.db.SelectContext(ctx, "list_important_values", &values, `
		SELECT id, area_id, kategori_nilai, nama_nilai, deskripsi, tingkat_kepentingan, indikator_nilai, potensi_ancaman, upaya_pelestarian, created_at
		FROM important_values WHERE area_id = ?
		ORDER BY kategori_nilai, nama_nilai, id`, areaID)
	if err != nil {
		return nil, eris.Wrap(err, "failed to list important values")
	}
	return values, nil
}

// CreateSurvey inserts a monitoring survey
func (r *recordRepository) CreateSurvey(ctx context.Context, survey *models.Survey) error {
	survey.CreatedAt = time.Now().UTC()
	return r.insert(ctx, "insert_survey", &survey.ID, survey.AreaID, `
		INSERT INTO surveys (area_id, jenis_survey, tanggal_survey, tim_survey, metodologi, hasil_utama, rekomendasi, file_laporan, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		survey.AreaID, survey.Type, survey.Date, survey.Team, survey.Methodology,
		survey.Findings, survey.Recommendations, survey.ReportFile, survey.CreatedAt,
	)
}

// ListSurveys lists an area's surveys, most recent first
func (r *recordRepository) ListSurveys(ctx context.Context, areaID int64) ([]models.Survey, error) {
	surveys := []models.Survey{}
	err := r.db.SelectContext(ctx, "list_surveys", &surveys, `
		SELECT id, area_id, jenis_survey, tanggal_survey, tim_survey, metodologi, hasil_utama, rekomendasi, file_laporan, created_at
		FROM surveys WHERE area_id = ?
		ORDER BY COALESCE(tanggal_survey, '') DESC, id DESC`, areaID)
	if err != nil {
		return nil, eris.Wrap(err, "failed to list surveys")
	}
	return surveys, nil
}

// Delete removes one record of the given kind
func (r *recordRepository) Delete(ctx context.Context, kind RecordKind, id int64) error {
	table, ok := recordTables[kind]
	if !ok {
		return &models.ValidationError{Field: "kind", Value: string(kind), Message: "Jenis data tidak dikenal"}
	}

	result, err := r.db.ExecContext(ctx, "delete_"+table, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "failed to delete from %s", table)
	}
	return requireAffected(result, string(kind), id)
}
