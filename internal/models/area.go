package models

import (
	"strings"
	"time"
)

// AreaCategory is the legal designation of a conservation area
type AreaCategory string

const (
	CagarAlam       AreaCategory = "Cagar_Alam"
	SuakaMargasatwa AreaCategory = "Suaka_Margasatwa"
	TamanWisataAlam AreaCategory = "Taman_Wisata_Alam"
	KASKPA          AreaCategory = "KAS/KPA"
)

// AreaCategories lists every designation in display order
var AreaCategories = []AreaCategory{CagarAlam, SuakaMargasatwa, TamanWisataAlam, KASKPA}

// Valid reports whether c is a known designation
func (c AreaCategory) Valid() bool {
	for _, known := range AreaCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Display renders the designation with spaces instead of underscores
func (c AreaCategory) Display() string {
	return strings.ReplaceAll(string(c), "_", " ")
}

// Area represents a conservation area (kawasan konservasi)
type Area struct {
	ID             int64        `json:"id" db:"id"`
	Name           string       `json:"name" db:"name"`
	RegistrationNo *string      `json:"registration_no,omitempty" db:"registration_no"`
	Category       AreaCategory `json:"category" db:"category"`
	Location       *string      `json:"location,omitempty" db:"location"`
	Boundary       *string      `json:"-" db:"boundary_geojson"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at" db:"updated_at"`
}

// HasBoundary reports whether a boundary geometry is stored for the area
func (a *Area) HasBoundary() bool {
	return a.Boundary != nil && strings.TrimSpace(*a.Boundary) != ""
}

// AreaInput carries the fields accepted when creating an area
type AreaInput struct {
	Name           string       `json:"name"`
	RegistrationNo *string      `json:"registration_no,omitempty"`
	Category       AreaCategory `json:"category"`
	Location       *string      `json:"location,omitempty"`
}

// Validate checks the required fields of a new area
func (in *AreaInput) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(in.Name) == "" {
		errs = append(errs, &ValidationError{Field: "name", Value: in.Name, Message: "Nama kawasan harus diisi"})
	}
	if !in.Category.Valid() {
		errs = append(errs, &ValidationError{
			Field:   "category",
			Value:   string(in.Category),
			Message: "Kategori kawasan tidak dikenal",
		})
	}
	return errs.OrNil()
}

// AreaPatch carries a partial update of an area
type AreaPatch struct {
	Name           *string       `json:"name,omitempty"`
	RegistrationNo *string       `json:"registration_no,omitempty"`
	Category       *AreaCategory `json:"category,omitempty"`
	Location       *string       `json:"location,omitempty"`
}

// Validate checks the fields present in the patch
func (p *AreaPatch) Validate() error {
	var errs ValidationErrors
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		errs = append(errs, &ValidationError{Field: "name", Value: *p.Name, Message: "Nama kawasan harus diisi"})
	}
	if p.Category != nil && !p.Category.Valid() {
		errs = append(errs, &ValidationError{
			Field:   "category",
			Value:   string(*p.Category),
			Message: "Kategori kawasan tidak dikenal",
		})
	}
	return errs.OrNil()
}

// Empty reports whether the patch changes nothing
func (p *AreaPatch) Empty() bool {
	return p.Name == nil && p.RegistrationNo == nil && p.Category == nil && p.Location == nil
}

// AreaOverview summarises the records attached to an area
type AreaOverview struct {
	Area
	SKDocumentCount     int `json:"sk_document_count" db:"sk_document_count"`
	BlockCount          int `json:"block_count" db:"block_count"`
	SpeciesCount        int `json:"species_count" db:"species_count"`
	EndemicSpeciesCount int `json:"endemic_species_count" db:"endemic_species_count"`
	PlanCount           int `json:"plan_count" db:"plan_count"`
	EcosystemCount      int `json:"ecosystem_count" db:"ecosystem_count"`
	LandCoverCount      int `json:"land_cover_count" db:"land_cover_count"`
	OpenAreaCount       int `json:"open_area_count" db:"open_area_count"`
	ImportantValueCount int `json:"important_value_count" db:"important_value_count"`
	SurveyCount         int `json:"survey_count" db:"survey_count"`
}
