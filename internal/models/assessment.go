package models

import (
	"fmt"
	"strconv"
	"time"
)

// Accepted ranges for assessment input
const (
	MinAssessmentYear = 2000
	MaxAssessmentYear = 2030
	MinScore          = 0
	MaxScore          = 100
)

// Assessment is one management-effectiveness measurement of one area in one year.
// AreaName and AreaCategory are only populated by joined list queries.
type Assessment struct {
	ID             int64     `json:"id" db:"id"`
	AreaID         *int64    `json:"area_id" db:"area_id"`
	Year           int       `json:"year" db:"year"`
	Score          int       `json:"score" db:"score"`
	StoredCategory *string   `json:"-" db:"stored_category"`
	Note           *string   `json:"note,omitempty" db:"note"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	AreaName       *string   `json:"area_name,omitempty" db:"area_name"`
	AreaCategory   *string   `json:"area_category,omitempty" db:"area_category"`
}

// AssessmentInput carries the fields of a new assessment
type AssessmentInput struct {
	AreaID int64   `json:"area_id"`
	Year   int     `json:"year"`
	Score  int     `json:"score"`
	Note   *string `json:"note,omitempty"`
}

// Validate checks year and score ranges and the area reference
func (in *AssessmentInput) Validate() error {
	var errs ValidationErrors
	if in.AreaID <= 0 {
		errs = append(errs, &ValidationError{
			Field:   "area_id",
			Value:   strconv.FormatInt(in.AreaID, 10),
			Message: "Kawasan harus dipilih",
		})
	}
	if err := validateYear(in.Year); err != nil {
		errs = append(errs, err)
	}
	if err := validateScore(in.Score); err != nil {
		errs = append(errs, err)
	}
	return errs.OrNil()
}

// AssessmentPatch is a partial update. The area of an assessment is immutable.
type AssessmentPatch struct {
	Year  *int    `json:"year,omitempty"`
	Score *int    `json:"score,omitempty"`
	Note  *string `json:"note,omitempty"`
}

// Validate checks the fields present in the patch
func (p *AssessmentPatch) Validate() error {
	var errs ValidationErrors
	if p.Year != nil {
		if err := validateYear(*p.Year); err != nil {
			errs = append(errs, err)
		}
	}
	if p.Score != nil {
		if err := validateScore(*p.Score); err != nil {
			errs = append(errs, err)
		}
	}
	return errs.OrNil()
}

// Empty reports whether the patch changes nothing
func (p *AssessmentPatch) Empty() bool {
	return p.Year == nil && p.Score == nil && p.Note == nil
}

// AssessmentFilter narrows list queries
type AssessmentFilter struct {
	AreaID *int64
	Year   *int
}

func validateYear(year int) *ValidationError {
	if year < MinAssessmentYear || year > MaxAssessmentYear {
		return &ValidationError{
			Field:   "year",
			Value:   strconv.Itoa(year),
			Message: fmt.Sprintf("Tahun harus antara %d-%d", MinAssessmentYear, MaxAssessmentYear),
		}
	}
	return nil
}

func validateScore(score int) *ValidationError {
	if score < MinScore || score > MaxScore {
		return &ValidationError{
			Field:   "score",
			Value:   strconv.Itoa(score),
			Message: fmt.Sprintf("Skor harus antara %d-%d", MinScore, MaxScore),
		}
	}
	return nil
}
