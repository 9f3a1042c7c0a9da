package models

import (
	"strconv"
	"strings"
	"time"
)

// PlanStatus is the approval state of a long-term management plan
type PlanStatus string

const (
	PlanDraft     PlanStatus = "Draft"
	PlanApproved  PlanStatus = "Approved"
	PlanActive    PlanStatus = "Active"
	PlanCompleted PlanStatus = "Completed"
)

// Valid reports whether s is a known plan status
func (s PlanStatus) Valid() bool {
	switch s {
	case PlanDraft, PlanApproved, PlanActive, PlanCompleted:
		return true
	}
	return false
}

// ManagementPlan is a long-term management plan (RPJP) for an area
type ManagementPlan struct {
	ID              int64      `json:"id" db:"id"`
	AreaID          int64      `json:"area_id" db:"area_id"`
	StartYear       *int       `json:"periode_awal,omitempty" db:"periode_awal"`
	EndYear         *int       `json:"periode_akhir,omitempty" db:"periode_akhir"`
	Goal            *string    `json:"tujuan,omitempty" db:"tujuan"`
	Strategy        *string    `json:"strategi,omitempty" db:"strategi"`
	TargetIndicator *string    `json:"target_indikator,omitempty" db:"target_indikator"`
	Budget          *float64   `json:"anggaran,omitempty" db:"anggaran"`
	Status          PlanStatus `json:"status" db:"status"`
	DocumentFile    *string    `json:"file_dokumen,omitempty" db:"file_dokumen"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}

// Validate checks a plan before it is stored. An empty status defaults to Draft.
func (p *ManagementPlan) Validate() error {
	var errs ValidationErrors
	if p.Status == "" {
		p.Status = PlanDraft
	}
	if !p.Status.Valid() {
		errs = append(errs, &ValidationError{Field: "status", Value: string(p.Status), Message: "Status RPJP tidak dikenal"})
	}
	for _, y := range []struct {
		field string
		year  *int
	}{{"periode_awal", p.StartYear}, {"periode_akhir", p.EndYear}} {
		if y.year != nil && !plausibleYear(*y.year) {
			errs = append(errs, &ValidationError{Field: y.field, Value: strconv.Itoa(*y.year), Message: "Tahun periode tidak valid"})
		}
	}
	if p.StartYear != nil && p.EndYear != nil && *p.EndYear < *p.StartYear {
		errs = append(errs, &ValidationError{Field: "periode_akhir", Value: strconv.Itoa(*p.EndYear), Message: "Periode akhir tidak boleh sebelum periode awal"})
	}
	if p.Budget != nil && *p.Budget < 0 {
		errs = append(errs, negative("anggaran", *p.Budget, "Anggaran tidak boleh negatif"))
	}
	return errs.OrNil()
}

// EcosystemCondition grades the state of an ecosystem type
type EcosystemCondition string

const (
	ConditionGood     EcosystemCondition = "Baik"
	ConditionModerate EcosystemCondition = "Sedang"
	ConditionDamaged  EcosystemCondition = "Rusak"
)

// Ecosystem is one ecosystem type (tipe ekosistem) found in an area
type Ecosystem struct {
	ID          int64              `json:"id" db:"id"`
	AreaID      int64              `json:"area_id" db:"area_id"`
	Name        string             `json:"nama_ekosistem" db:"nama_ekosistem"`
	AreaHa      *float64           `json:"luas_ha,omitempty" db:"luas_ha"`
	Percentage  *float64           `json:"persentase_kawasan,omitempty" db:"persentase_kawasan"`
	Condition   EcosystemCondition `json:"kondisi" db:"kondisi"`
	Description *string            `json:"deskripsi,omitempty" db:"deskripsi"`
	CreatedAt   time.Time          `json:"created_at" db:"created_at"`
}

// Validate checks an ecosystem type before it is stored. An empty condition defaults to Baik.
func (e *Ecosystem) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(e.Name) == "" {
		errs = append(errs, &ValidationError{Field: "nama_ekosistem", Message: "Nama ekosistem harus diisi"})
	}
	if e.Condition == "" {
		e.Condition = ConditionGood
	}
	switch e.Condition {
	case ConditionGood, ConditionModerate, ConditionDamaged:
	default:
		errs = append(errs, &ValidationError{Field: "kondisi", Value: string(e.Condition), Message: "Kondisi harus Baik, Sedang, atau Rusak"})
	}
	if e.AreaHa != nil && *e.AreaHa < 0 {
		errs = append(errs, negative("luas_ha", *e.AreaHa, "Luas tidak boleh negatif"))
	}
	if e.Percentage != nil && !percentage(*e.Percentage) {
		errs = append(errs, outOfPercent("persentase_kawasan", *e.Percentage))
	}
	return errs.OrNil()
}

// ValueCategory classifies an important value of an area
type ValueCategory string

const (
	ValueEcological ValueCategory = "Ekologis"
	ValueEconomic   ValueCategory = "Ekonomis"
	ValueCultural   ValueCategory = "Sosial_Budaya"
	ValueScientific ValueCategory = "Ilmiah"
	ValueAesthetic  ValueCategory = "Estetika"
)

// Importance ranks an important value
type Importance string

const (
	ImportanceVeryHigh Importance = "Sangat_Tinggi"
	ImportanceHigh     Importance = "Tinggi"
	ImportanceMedium   Importance = "Sedang"
	ImportanceLow      Importance = "Rendah"
)

// ImportantValue is a key value (nilai penting) the area protects
type ImportantValue struct {
	ID           int64         `json:"id" db:"id"`
	AreaID       int64         `json:"area_id" db:"area_id"`
	Category     ValueCategory `json:"kategori_nilai" db:"kategori_nilai"`
	Name         string        `json:"nama_nilai" db:"nama_nilai"`
	Description  *string       `json:"deskripsi,omitempty" db:"deskripsi"`
	Importance   Importance    `json:"tingkat_kepentingan" db:"tingkat_kepentingan"`
	Indicator    *string       `json:"indikator_nilai,omitempty" db:"indikator_nilai"`
	Threats      *string       `json:"potensi_ancaman,omitempty" db:"potensi_ancaman"`
	Conservation *string       `json:"upaya_pelestarian,omitempty" db:"upaya_pelestarian"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
}

// Validate checks an important value before it is stored. An empty importance defaults to Sedang.
func (v *ImportantValue) Validate() error {
	var errs ValidationErrors
	switch v.Category {
	case ValueEcological, ValueEconomic, ValueCultural, ValueScientific, ValueAesthetic:
	default:
		errs = append(errs, &ValidationError{Field: "kategori_nilai", Value: string(v.Category), Message: "Kategori nilai tidak dikenal"})
	}
	if strings.TrimSpace(v.Name) == "" {
		errs = append(errs, &ValidationError{Field: "nama_nilai", Message: "Nama nilai harus diisi"})
	}
	if v.Importance == "" {
		v.Importance = ImportanceMedium
	}
	switch v.Importance {
	case ImportanceVeryHigh, ImportanceHigh, ImportanceMedium, ImportanceLow:
	default:
		errs = append(errs, &ValidationError{Field: "tingkat_kepentingan", Value: string(v.Importance), Message: "Tingkat kepentingan tidak dikenal"})
	}
	return errs.OrNil()
}

func plausibleYear(y int) bool {
	return y >= 1900 && y <= 2100
}

func percentage(p float64) bool {
	return p >= 0 && p <= 100
}

func negative(field string, v float64, message string) *ValidationError {
	return &ValidationError{Field: field, Value: strconv.FormatFloat(v, 'f', -1, 64), Message: message}
}

func outOfPercent(field string, v float64) *ValidationError {
	return &ValidationError{Field: field, Value: strconv.FormatFloat(v, 'f', -1, 64), Message: "Persentase harus antara 0-100"}
}
