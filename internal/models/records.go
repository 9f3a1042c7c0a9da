package models

import (
	"strconv"
	"strings"
	"time"
)

// SKType is the kind of legal decree (Surat Keputusan) attached to an area
type SKType string

const (
	SKPengukuhan SKType = "SK_Pengukuhan"
	SKPenetapan  SKType = "SK_Penetapan"
	SK6620       SKType = "SK_6620"
	SK128DPCLS   SKType = "SK_128_DPCLS"
)

// Valid reports whether t is a known decree type
func (t SKType) Valid() bool {
	switch t {
	case SKPengukuhan, SKPenetapan, SK6620, SK128DPCLS:
		return true
	}
	return false
}

// SKDocument is a legal decree recorded for an area
type SKDocument struct {
	ID        int64     `json:"id" db:"id"`
	AreaID    int64     `json:"area_id" db:"area_id"`
	Type      SKType    `json:"jenis_sk" db:"jenis_sk"`
	Number    string    `json:"nomor_sk" db:"nomor_sk"`
	Date      *string   `json:"tanggal_sk,omitempty" db:"tanggal_sk"`
	Issuer    *string   `json:"penerbit,omitempty" db:"penerbit"`
	Note      *string   `json:"keterangan,omitempty" db:"keterangan"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Validate checks a decree before it is stored
func (d *SKDocument) Validate() error {
	var errs ValidationErrors
	if !d.Type.Valid() {
		errs = append(errs, &ValidationError{Field: "jenis_sk", Value: string(d.Type), Message: "Jenis SK tidak dikenal"})
	}
	if strings.TrimSpace(d.Number) == "" {
		errs = append(errs, &ValidationError{Field: "nomor_sk", Message: "Nomor SK harus diisi"})
	}
	if d.Date != nil && *d.Date != "" {
		if _, err := time.Parse("2006-01-02", *d.Date); err != nil {
			errs = append(errs, &ValidationError{Field: "tanggal_sk", Value: *d.Date, Message: "Tanggal SK harus berformat YYYY-MM-DD"})
		}
	}
	return errs.OrNil()
}

// ManagementBlock is a zoning block (blok pengelolaan) inside an area
type ManagementBlock struct {
	ID        int64     `json:"id" db:"id"`
	AreaID    int64     `json:"area_id" db:"area_id"`
	Name      string    `json:"nama_blok" db:"nama_blok"`
	AreaHa    *float64  `json:"luas_ha,omitempty" db:"luas_ha"`
	Function  *string   `json:"fungsi,omitempty" db:"fungsi"`
	Note      *string   `json:"keterangan,omitempty" db:"keterangan"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Validate checks a management block before it is stored
func (b *ManagementBlock) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(b.Name) == "" {
		errs = append(errs, &ValidationError{Field: "nama_blok", Message: "Nama blok harus diisi"})
	}
	if b.AreaHa != nil && *b.AreaHa < 0 {
		errs = append(errs, &ValidationError{
			Field:   "luas_ha",
			Value:   strconv.FormatFloat(*b.AreaHa, 'f', -1, 64),
			Message: "Luas blok tidak boleh negatif",
		})
	}
	return errs.OrNil()
}

// TaxonKind groups biodiversity records
type TaxonKind string

const (
	Flora          TaxonKind = "Flora"
	Fauna          TaxonKind = "Fauna"
	Mikroorganisme TaxonKind = "Mikroorganisme"
)

// IUCNStatuses lists the accepted Red List codes
var IUCNStatuses = []string{"LC", "NT", "VU", "EN", "CR", "EW", "EX"}

// BiodiversityRecord is one species observed in an area
type BiodiversityRecord struct {
	ID             int64     `json:"id" db:"id"`
	AreaID         int64     `json:"area_id" db:"area_id"`
	Kind           TaxonKind `json:"kategori" db:"kategori"`
	ScientificName *string   `json:"nama_ilmiah,omitempty" db:"nama_ilmiah"`
	LocalName      *string   `json:"nama_lokal,omitempty" db:"nama_lokal"`
	IUCNStatus     *string   `json:"status_iucn,omitempty" db:"status_iucn"`
	Endemic        bool      `json:"endemik" db:"endemik"`
	SurveyYear     *int      `json:"tahun_survey,omitempty" db:"tahun_survey"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// Validate checks a biodiversity record before it is stored
func (r *BiodiversityRecord) Validate() error {
	var errs ValidationErrors
	switch r.Kind {
	case Flora, Fauna, Mikroorganisme:
	default:
		errs = append(errs, &ValidationError{Field: "kategori", Value: string(r.Kind), Message: "Kategori harus Flora, Fauna, atau Mikroorganisme"})
	}
	if blank(r.ScientificName) && blank(r.LocalName) {
		errs = append(errs, &ValidationError{Field: "nama_ilmiah", Message: "Nama ilmiah atau nama lokal harus diisi"})
	}
	if r.IUCNStatus != nil && *r.IUCNStatus != "" && !knownIUCN(*r.IUCNStatus) {
		errs = append(errs, &ValidationError{Field: "status_iucn", Value: *r.IUCNStatus, Message: "Status IUCN tidak dikenal"})
	}
	if r.SurveyYear != nil && (*r.SurveyYear < 1900 || *r.SurveyYear > MaxAssessmentYear) {
		errs = append(errs, &ValidationError{Field: "tahun_survey", Value: strconv.Itoa(*r.SurveyYear), Message: "Tahun survey tidak valid"})
	}
	return errs.OrNil()
}

func knownIUCN(code string) bool {
	for _, c := range IUCNStatuses {
		if c == code {
			return true
		}
	}
	return false
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
