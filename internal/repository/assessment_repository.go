package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"konservasi-platform/internal/efektivitas"
	"konservasi-platform/internal/models"
	"konservasi-platform/pkg/database"
	"konservasi-platform/pkg/logging"
	"konservasi-platform/pkg/metrics"
)

// AssessmentRepository is the store gateway for effectiveness assessments
type AssessmentRepository interface {
	Create(ctx context.Context, in *models.AssessmentInput) (*models.Assessment, error)
	BulkInsert(ctx context.Context, inputs []models.AssessmentInput) ([]models.Assessment, error)
	Get(ctx context.Context, id int64) (*models.Assessment, error)
	Update(ctx context.Context, id int64, patch *models.AssessmentPatch) (*models.Assessment, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter models.AssessmentFilter) ([]models.Assessment, error)
}

const insertAssessmentQuery = `
	INSERT INTO efektivitas_assessments (area_id, year, score, stored_category, note, created_at)
	VALUES (?, ?, ?, ?, ?, ?)
	RETURNING id
`

const selectAssessmentQuery = `
	SELECT e.id, e.area_id, e.year, e.score, e.stored_category, e.note, e.created_at,
	       a.name AS area_name, a.category AS area_category
	FROM efektivitas_assessments e
	LEFT JOIN areas a ON a.id = e.area_id
`

// assessmentRepository implements AssessmentRepository
type assessmentRepository struct {
	db      *database.DB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewAssessmentRepository creates a new assessment repository
func NewAssessmentRepository(db *database.DB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) AssessmentRepository {
	return &assessmentRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

func newAssessment(in *models.AssessmentInput, now time.Time) models.Assessment {
	areaID := in.AreaID
	category := string(efektivitas.Classify(in.Score))
	return models.Assessment{
		AreaID:         &areaID,
		Year:           in.Year,
		Score:          in.Score,
		StoredCategory: &category,
		Note:           normalizeNote(in.Note),
		CreatedAt:      now,
	}
}

// Create inserts a single assessment
func (r *assessmentRepository) Create(ctx context.Context, in *models.AssessmentInput) (*models.Assessment, error) {
	a := newAssessment(in, time.Now().UTC())

	err := r.db.GetContext(ctx, "insert_assessment", &a.ID, insertAssessmentQuery,
		a.AreaID,
		a.Year,
		a.Score,
		a.StoredCategory,
		a.Note,
		a.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, notFound("area", in.AreaID)
		}
		return nil, eris.Wrap(err, "failed to create assessment")
	}

	r.logger.Debug(ctx, "[REPO_CREATE_ASSESSMENT] Assessment created", logging.Fields{
		"assessment_id": a.ID,
		"area_id":       in.AreaID,
		"year":          a.Year,
		"score":         a.Score,
	})

	return &a, nil
}

// BulkInsert creates multiple assessments in a single transaction. Either every
// row is stored or none is.
func (r *assessmentRepository) BulkInsert(ctx context.Context, inputs []models.AssessmentInput) ([]models.Assessment, error) {
	if len(inputs) == 0 {
		return []models.Assessment{}, nil
	}

	timer := time.Now()
	defer func() {
		duration := time.Since(timer)
		r.metrics.ImportBatchSize.Observe(float64(len(inputs)))
		r.logger.Debug(ctx, "[REPO_BATCH_INSERT] Batch insert completed", logging.Fields{
			"count":       len(inputs),
			"duration_ms": duration.Milliseconds(),
		})
	}()

	// Begin transaction
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	// Prepare statement
	stmt, err := tx.PreparexContext(ctx, tx.Rebind(insertAssessmentQuery))
	if err != nil {
		return nil, eris.Wrap(err, "failed to prepare statement")
	}
	defer stmt.Close()

	now := time.Now().UTC()
	created := make([]models.Assessment, 0, len(inputs))

	// Execute batch
	for i := range inputs {
		a := newAssessment(&inputs[i], now)
		err := stmt.QueryRowxContext(ctx,
			a.AreaID,
			a.Year,
			a.Score,
			a.StoredCategory,
			a.Note,
			a.CreatedAt,
		).Scan(&a.ID)
		if err != nil {
			r.metrics.RecordDBError("bulk_insert_error")
			if isForeignKeyViolation(err) {
				return nil, notFound("area", inputs[i].AreaID)
			}
			return nil, eris.Wrapf(err, "failed to insert assessment %d of %d", i+1, len(inputs))
		}
		created = append(created, a)
	}

	// Commit transaction
	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "failed to commit transaction")
	}

	return created, nil
}

// Get retrieves an assessment joined with its area
func (r *assessmentRepository) Get(ctx context.Context, id int64) (*models.Assessment, error) {
	var a models.Assessment
	err := r.db.GetContext(ctx, "get_assessment", &a, selectAssessmentQuery+` WHERE e.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("assessment", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "failed to get assessment")
	}
	return &a, nil
}

// Update changes year, score or note. The stored category follows the score.
func (r *assessmentRepository) Update(ctx context.Context, id int64, patch *models.AssessmentPatch) (*models.Assessment, error) {
	if patch.Empty() {
		return r.Get(ctx, id)
	}

	sets := []string{}
	args := []interface{}{}

	if patch.Year != nil {
		sets = append(sets, "year = ?")
		args = append(args, *patch.Year)
	}
	if patch.Score != nil {
		sets = append(sets, "score = ?", "stored_category = ?")
		args = append(args, *patch.Score, string(efektivitas.Classify(*patch.Score)))
	}
	if patch.Note != nil {
		sets = append(sets, "note = ?")
		args = append(args, normalizeNote(patch.Note))
	}
	args = append(args, id)

	query := `UPDATE efektivitas_assessments SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	result, err := r.db.ExecContext(ctx, "update_assessment", query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "failed to update assessment")
	}
	if err := requireAffected(result, "assessment", id); err != nil {
		return nil, err
	}

	return r.Get(ctx, id)
}

// Delete physically removes an assessment
func (r *assessmentRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "delete_assessment", `DELETE FROM efektivitas_assessments WHERE id = ?`, id)
	if err != nil {
		return eris.Wrap(err, "failed to delete assessment")
	}
	return requireAffected(result, "assessment", id)
}

// List retrieves assessments joined with area name and category, newest year
// first and then by area name
func (r *assessmentRepository) List(ctx context.Context, filter models.AssessmentFilter) ([]models.Assessment, error) {
	query := selectAssessmentQuery + ` WHERE 1=1`
	args := []interface{}{}

	if filter.AreaID != nil {
		query += ` AND e.area_id = ?`
		args = append(args, *filter.AreaID)
	}
	if filter.Year != nil {
		query += ` AND e.year = ?`
		args = append(args, *filter.Year)
	}

	query += ` ORDER BY e.year DESC, a.name ASC, e.id ASC`

	assessments := []models.Assessment{}
	if err := r.db.SelectContext(ctx, "list_assessments", &assessments, query, args...); err != nil {
		return nil, eris.Wrap(err, "failed to list assessments")
	}
	return assessments, nil
}

func normalizeNote(note *string) *string {
	if note == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*note)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
