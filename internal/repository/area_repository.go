package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"konservasi-platform/internal/models"
	"konservasi-platform/pkg/database"
	"konservasi-platform/pkg/logging"
	"konservasi-platform/pkg/metrics"
)

// AreaRepository provides data access for conservation areas
type AreaRepository interface {
	Create(ctx context.Context, in *models.AreaInput) (*models.Area, error)
	Get(ctx context.Context, id int64) (*models.Area, error)
	GetByRegistrationNo(ctx context.Context, registrationNo string) (*models.Area, error)
	List(ctx context.Context, search string) ([]models.Area, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, id int64, patch *models.AreaPatch) (*models.Area, error)
	UpdateBoundary(ctx context.Context, id int64, geojson *string) error
	Delete(ctx context.Context, id int64) error
	Overview(ctx context.Context, id int64) (*models.AreaOverview, error)

	HealthCheck(ctx context.Context) error
}

const areaColumns = `id, name, registration_no, category, location, boundary_geojson, created_at, updated_at`

// areaRepository implements AreaRepository
type areaRepository struct {
	db      *database.DB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewAreaRepository creates a new area repository
func NewAreaRepository(db *database.DB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) AreaRepository {
	return &areaRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// Create inserts a new area
func (r *areaRepository) Create(ctx context.Context, in *models.AreaInput) (*models.Area, error) {
	now := time.Now().UTC()
	area := &models.Area{
		Name:           strings.TrimSpace(in.Name),
		RegistrationNo: in.RegistrationNo,
		Category:       in.Category,
		Location:       in.Location,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	query := `
		INSERT INTO areas (name, registration_no, category, location, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`

	err := r.db.GetContext(ctx, "insert_area", &area.ID, query,
		area.Name,
		area.RegistrationNo,
		area.Category,
		area.Location,
		area.CreatedAt,
		area.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, &ConflictError{Resource: "area", Message: "Nama kawasan sudah terdaftar"}
		}
		return nil, eris.Wrap(err, "failed to create area")
	}

	r.logger.Debug(ctx, "[REPO_CREATE_AREA] Area created", logging.Fields{
		"area_id":  area.ID,
		"name":     area.Name,
		"category": area.Category,
	})

	return area, nil
}

// Get retrieves an area by ID
func (r *areaRepository) Get(ctx context.Context, id int64) (*models.Area, error) {
	var area models.Area
	err := r.db.GetContext(ctx, "get_area", &area, `SELECT `+areaColumns+` FROM areas WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("area", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "failed to get area")
	}
	return &area, nil
}

// GetByRegistrationNo retrieves an area by its registration number (NOREGKK)
func (r *areaRepository) GetByRegistrationNo(ctx context.Context, registrationNo string) (*models.Area, error) {
	var area models.Area
	err := r.db.GetContext(ctx, "get_area_by_registration", &area,
		`SELECT `+areaColumns+` FROM areas WHERE registration_no = ? ORDER BY id LIMIT 1`, registrationNo)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Resource: "area", ID: registrationNo}
	}
	if err != nil {
		return nil, eris.Wrap(err, "failed to get area by registration number")
	}
	return &area, nil
}

// List retrieves areas, newest first, optionally filtered by a case-insensitive
// substring of the name
func (r *areaRepository) List(ctx context.Context, search string) ([]models.Area, error) {
	query := `SELECT ` + areaColumns + ` FROM areas`
	args := []interface{}{}

	if s := strings.TrimSpace(search); s != "" {
		query += ` WHERE LOWER(name) LIKE LOWER(?)`
		args = append(args, "%"+s+"%")
	}
	query += ` ORDER BY created_at DESC, id DESC`

	areas := []models.Area{}
	if err := r.db.SelectContext(ctx, "list_areas", &areas, query, args...); err != nil {
		return nil, eris.Wrap(err, "failed to list areas")
	}
	return areas, nil
}

// Count returns the number of registered areas
func (r *areaRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, "count_areas", &n, `SELECT COUNT(*) FROM areas`); err != nil {
		return 0, eris.Wrap(err, "failed to count areas")
	}
	return n, nil
}

// Update applies a partial update to an area
func (r *areaRepository) Update(ctx context.Context, id int64, patch *models.AreaPatch) (*models.Area, error) {
	sets := []string{}
	args := []interface{}{}

	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, strings.TrimSpace(*patch.Name))
	}
	if patch.RegistrationNo != nil {
		sets = append(sets, "registration_no = ?")
		args = append(args, nullIfEmpty(*patch.RegistrationNo))
	}
	if patch.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *patch.Category)
	}
	if patch.Location != nil {
		sets = append(sets, "location = ?")
		args = append(args, nullIfEmpty(*patch.Location))
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), id)

	query := `UPDATE areas SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	result, err := r.db.ExecContext(ctx, "update_area", query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, &ConflictError{Resource: "area", Message: "Nama kawasan sudah terdaftar"}
		}
		return nil, eris.Wrap(err, "failed to update area")
	}
	if err := requireAffected(result, "area", id); err != nil {
		return nil, err
	}

	return r.Get(ctx, id)
}

// UpdateBoundary stores (or clears, when geojson is nil) the area's boundary geometry
func (r *areaRepository) UpdateBoundary(ctx context.Context, id int64, geojson *string) error {
	result, err := r.db.ExecContext(ctx, "update_area_boundary",
		`UPDATE areas SET boundary_geojson = ?, updated_at = ? WHERE id = ?`,
		geojson, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrap(err, "failed to update area boundary")
	}
	return requireAffected(result, "area", id)
}

// Delete removes an area. Assessments and records cascade.
func (r *areaRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "delete_area", `DELETE FROM areas WHERE id = ?`, id)
	if err != nil {
		return eris.Wrap(err, "failed to delete area")
	}
	if err := requireAffected(result, "area", id); err != nil {
		return err
	}

	r.logger.Info(ctx, "[REPO_DELETE_AREA] Area deleted", logging.Fields{"area_id": id})
	return nil
}

// Overview retrieves an area with counts of its attached records
func (r *areaRepository) Overview(ctx context.Context, id int64) (*models.AreaOverview, error) {
	query := `
		SELECT a.id, a.name, a.registration_no, a.category, a.location, a.boundary_geojson,
		       a.created_at, a.updated_at,
		       (SELECT COUNT(*) FROM sk_documents s WHERE s.area_id = a.id) AS sk_document_count,
		       (SELECT COUNT(*) FROM management_blocks m WHERE m.area_id = a.id) AS block_count,
		       (SELECT COUNT(*) FROM biodiversity_records b WHERE b.area_id = a.id) AS species_count,
		       (SELECT COUNT(*) FROM biodiversity_records b WHERE b.area_id = a.id AND b.endemik = TRUE) AS endemic_species_count,
		       (SELECT COUNT(*) FROM management_plans p WHERE p.area_id = a.id) AS plan_count,
		       (SELECT COUNT(*) FROM ecosystems e WHERE e.area_id = a.id) AS ecosystem_count,
		       (SELECT COUNT(*) FROM land_covers l WHERE l.area_id = a.id) AS land_cover_count,
		       (SELECT COUNT(*) FROM open_areas o WHERE o.area_id = a.id) AS open_area_count,
		       (SELECT COUNT(*) FROM important_values v WHERE v.area_id = a.id) AS important_value_count,
		       (SELECT COUNT(*) FROM surveys sv WHERE sv.area_id = a.id) AS survey_count
		FROM areas a
		WHERE a.id = ?
	`

	var overview models.AreaOverview
	err := r.db.GetContext(ctx, "area_overview", &overview, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("area", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "failed to get area overview")
	}
	return &overview, nil
}

// HealthCheck performs a repository health check
func (r *areaRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

func requireAffected(result sql.Result, resource string, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "failed to read affected rows")
	}
	if n == 0 {
		return notFound(resource, id)
	}
	return nil
}

func nullIfEmpty(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
