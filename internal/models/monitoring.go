package models

import (
	"strconv"
	"strings"
	"time"
)

// LandCover is one land-cover class measured in an area for a data year
type LandCover struct {
	ID         int64     `json:"id" db:"id"`
	AreaID     int64     `json:"area_id" db:"area_id"`
	CoverType  string    `json:"jenis_tutupan" db:"jenis_tutupan"`
	AreaHa     *float64  `json:"luas_ha,omitempty" db:"luas_ha"`
	Percentage *float64  `json:"persentase,omitempty" db:"persentase"`
	DataYear   *int      `json:"tahun_data,omitempty" db:"tahun_data"`
	Source     *string   `json:"sumber_data,omitempty" db:"sumber_data"`
	Method     *string   `json:"metode_analisis,omitempty" db:"metode_analisis"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Validate checks a land-cover record before it is stored
func (l *LandCover) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(l.CoverType) == "" {
		errs = append(errs, &ValidationError{Field: "jenis_tutupan", Message: "Jenis tutupan harus diisi"})
	}
	if l.AreaHa != nil && *l.AreaHa < 0 {
		errs = append(errs, negative("luas_ha", *l.AreaHa, "Luas tidak boleh negatif"))
	}
	if l.Percentage != nil && !percentage(*l.Percentage) {
		errs = append(errs, outOfPercent("persentase", *l.Percentage))
	}
	if l.DataYear != nil && (*l.DataYear < 1900 || *l.DataYear > MaxAssessmentYear) {
		errs = append(errs, &ValidationError{Field: "tahun_data", Value: strconv.Itoa(*l.DataYear), Message: "Tahun data tidak valid"})
	}
	return errs.OrNil()
}

// ClearingType is how an open area came about
type ClearingType string

const (
	ClearingNatural       ClearingType = "Alami"
	ClearingAnthropogenic ClearingType = "Antropogenik"
	ClearingMixed         ClearingType = "Campuran"
)

// RecoveryStatus tracks restoration of an open area
type RecoveryStatus string

const (
	RecoveryNotStarted RecoveryStatus = "Belum"
	RecoveryInProgress RecoveryStatus = "Proses"
	RecoveryDone       RecoveryStatus = "Selesai"
)

// OpenArea is a cleared or degraded patch (areal terbuka) inside an area
type OpenArea struct {
	ID           int64           `json:"id" db:"id"`
	AreaID       int64           `json:"area_id" db:"area_id"`
	Name         *string         `json:"nama_area,omitempty" db:"nama_area"`
	AreaHa       *float64        `json:"luas_ha,omitempty" db:"luas_ha"`
	ClearingType *ClearingType   `json:"jenis_pembukaan,omitempty" db:"jenis_pembukaan"`
	Cause        *string         `json:"penyebab,omitempty" db:"penyebab"`
	Coordinates  *string         `json:"koordinat_lokasi,omitempty" db:"koordinat_lokasi"`
	YearFormed   *int            `json:"tahun_terbentuk,omitempty" db:"tahun_terbentuk"`
	Recovery     *RecoveryStatus `json:"status_pemulihan,omitempty" db:"status_pemulihan"`
	ActionPlan   *string         `json:"rencana_tindakan,omitempty" db:"rencana_tindakan"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

// Validate checks an open area before it is stored
func (o *OpenArea) Validate() error {
	var errs ValidationErrors
	if o.AreaHa != nil && *o.AreaHa < 0 {
		errs = append(errs, negative("luas_ha", *o.AreaHa, "Luas tidak boleh negatif"))
	}
	if o.ClearingType != nil {
		switch *o.ClearingType {
		case ClearingNatural, ClearingAnthropogenic, ClearingMixed:
		default:
			errs = append(errs, &ValidationError{Field: "jenis_pembukaan", Value: string(*o.ClearingType), Message: "Jenis pembukaan harus Alami, Antropogenik, atau Campuran"})
		}
	}
	if o.Recovery != nil {
		switch *o.Recovery {
		case RecoveryNotStarted, RecoveryInProgress, RecoveryDone:
		default:
			errs = append(errs, &ValidationError{Field: "status_pemulihan", Value: string(*o.Recovery), Message: "Status pemulihan harus Belum, Proses, atau Selesai"})
		}
	}
	if o.YearFormed != nil && (*o.YearFormed < 1900 || *o.YearFormed > MaxAssessmentYear) {
		errs = append(errs, &ValidationError{Field: "tahun_terbentuk", Value: strconv.Itoa(*o.YearFormed), Message: "Tahun terbentuk tidak valid"})
	}
	return errs.OrNil()
}

// SurveyType is the subject of a field survey
type SurveyType string

const (
	SurveyBiodiversity    SurveyType = "Biodiversity"
	SurveyLandCover       SurveyType = "Land_Cover"
	SurveyEcosystemHealth SurveyType = "Ecosystem_Health"
	SurveySocioEconomic   SurveyType = "Socio_Economic"
)

// Survey is a monitoring survey carried out in an area
type Survey struct {
	ID              int64       `json:"id" db:"id"`
	AreaID          int64       `json:"area_id" db:"area_id"`
	Type            *SurveyType `json:"jenis_survey,omitempty" db:"jenis_survey"`
	Date            *string     `json:"tanggal_survey,omitempty" db:"tanggal_survey"`
	Team            *string     `json:"tim_survey,omitempty" db:"tim_survey"`
	Methodology     *string     `json:"metodologi,omitempty" db:"metodologi"`
	Findings        *string     `json:"hasil_utama,omitempty" db:"hasil_utama"`
	Recommendations *string     `json:"rekomendasi,omitempty" db:"rekomendasi"`
	ReportFile      *string     `json:"file_laporan,omitempty" db:"file_laporan"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
}

// Validate checks a survey before it is stored
func (s *Survey) Validate() error {
	var errs ValidationErrors
	if s.Type != nil {
		switch *s.Type {
		case SurveyBiodiversity, SurveyLandCover, SurveyEcosystemHealth, SurveySocioEconomic:
		default:
			errs = append(errs, &ValidationError{Field: "jenis_survey", Value: string(*s.Type), Message: "Jenis survey tidak dikenal"})
		}
	}
	if s.Date != nil && *s.Date != "" {
		if _, err := time.Parse("2006-01-02", *s.Date); err != nil {
			errs = append(errs, &ValidationError{Field: "tanggal_survey", Value: *s.Date, Message: "Tanggal survey harus berformat YYYY-MM-DD"})
		}
	}
	return errs.OrNil()
}
