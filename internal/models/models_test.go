package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestAssessmentInput_Validate(t *testing.T) {
	tests := []struct {
		name     string
		input    AssessmentInput
		wantErr  bool
		messages []string
	}{
		{
			name:  "valid input",
			input: AssessmentInput{AreaID: 1, Year: 2024, Score: 75},
		},
		{
			name:  "boundary values",
			input: AssessmentInput{AreaID: 1, Year: 2000, Score: 0},
		},
		{
			name:     "year out of range",
			input:    AssessmentInput{AreaID: 1, Year: 1999, Score: 50},
			wantErr:  true,
			messages: []string{"Tahun harus antara 2000-2030"},
		},
		{
			name:     "score and year out of range are both reported",
			input:    AssessmentInput{AreaID: 1, Year: 2031, Score: 101},
			wantErr:  true,
			messages: []string{"Tahun harus antara 2000-2030", "Skor harus antara 0-100"},
		},
		{
			name:     "missing area",
			input:    AssessmentInput{Year: 2024, Score: 50},
			wantErr:  true,
			messages: []string{"Kawasan harus dipilih"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)

			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs))
			got := make([]string, 0, len(verrs))
			for _, e := range verrs {
				got = append(got, e.Message)
			}
			assert.Equal(t, tt.messages, got)
			assert.False(t, verrs.IsTransient())
		})
	}
}

func TestAssessmentPatch(t *testing.T) {
	p := AssessmentPatch{}
	assert.True(t, p.Empty())
	assert.NoError(t, p.Validate())

	p.Score = intPtr(-1)
	assert.False(t, p.Empty())
	assert.EqualError(t, p.Validate(), "Skor harus antara 0-100")

	p.Score = intPtr(40)
	p.Year = intPtr(2025)
	assert.NoError(t, p.Validate())
}

func TestAreaInput_Validate(t *testing.T) {
	in := AreaInput{Name: "  ", Category: "Hutan_Lindung"}
	err := in.Validate()
	require.Error(t, err)
	assert.Equal(t, "Nama kawasan harus diisi, Kategori kawasan tidak dikenal", err.Error())

	in = AreaInput{Name: "CA Kawah Ijen", Category: CagarAlam}
	assert.NoError(t, in.Validate())
}

func TestAreaCategory(t *testing.T) {
	for _, c := range AreaCategories {
		assert.True(t, c.Valid(), c)
	}
	assert.False(t, AreaCategory("cagar_alam").Valid())
	assert.Equal(t, "Taman Wisata Alam", TamanWisataAlam.Display())
	assert.Equal(t, "KAS/KPA", KASKPA.Display())
}

func TestArea_HasBoundary(t *testing.T) {
	a := Area{}
	assert.False(t, a.HasBoundary())
	a.Boundary = strPtr(" ")
	assert.False(t, a.HasBoundary())
	a.Boundary = strPtr(`{"type":"Polygon","coordinates":[]}`)
	assert.True(t, a.HasBoundary())
}

func TestSKDocument_Validate(t *testing.T) {
	doc := SKDocument{Type: SKPenetapan, Number: "SK.123/2019", Date: strPtr("2019-04-01")}
	assert.NoError(t, doc.Validate())

	doc = SKDocument{Type: "SK_Lain", Date: strPtr("01/04/2019")}
	err := doc.Validate()
	require.Error(t, err)
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 3)
}

func TestManagementBlock_Validate(t *testing.T) {
	ha := 12.5
	assert.NoError(t, (&ManagementBlock{Name: "Blok Perlindungan", AreaHa: &ha}).Validate())

	neg := -1.0
	err := (&ManagementBlock{AreaHa: &neg}).Validate()
	assert.EqualError(t, err, "Nama blok harus diisi, Luas blok tidak boleh negatif")
}

func TestBiodiversityRecord_Validate(t *testing.T) {
	tests := []struct {
		name    string
		record  BiodiversityRecord
		wantErr string
	}{
		{
			name:   "local name only",
			record: BiodiversityRecord{Kind: Fauna, LocalName: strPtr("Elang Jawa"), IUCNStatus: strPtr("EN")},
		},
		{
			name:    "no names",
			record:  BiodiversityRecord{Kind: Flora},
			wantErr: "Nama ilmiah atau nama lokal harus diisi",
		},
		{
			name:    "unknown iucn",
			record:  BiodiversityRecord{Kind: Flora, ScientificName: strPtr("Rafflesia arnoldii"), IUCNStatus: strPtr("XX")},
			wantErr: "Status IUCN tidak dikenal",
		},
		{
			name:    "unknown kind",
			record:  BiodiversityRecord{Kind: "Fungi", ScientificName: strPtr("Amanita")},
			wantErr: "Kategori harus Flora, Fauna, atau Mikroorganisme",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func floatPtr(f float64) *float64 { return &f }

func TestLandCover_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cover   LandCover
		wantErr string
	}{
		{
			name:  "full record",
			cover: LandCover{CoverType: "Hutan Primer", AreaHa: floatPtr(5200), Percentage: floatPtr(100), DataYear: intPtr(2023)},
		},
		{
			name:    "missing cover type",
			cover:   LandCover{CoverType: "  "},
			wantErr: "Jenis tutupan harus diisi",
		},
		{
			name:    "percentage above 100",
			cover:   LandCover{CoverType: "Hutan", Percentage: floatPtr(100.5)},
			wantErr: "Persentase harus antara 0-100",
		},
		{
			name:    "negative area and bad year are both reported",
			cover:   LandCover{CoverType: "Hutan", AreaHa: floatPtr(-1), DataYear: intPtr(1850)},
			wantErr: "Luas tidak boleh negatif, Tahun data tidak valid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cover.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestRecordDefaults(t *testing.T) {
	plan := ManagementPlan{StartYear: intPtr(2020), EndYear: intPtr(2029)}
	require.NoError(t, plan.Validate())
	assert.Equal(t, PlanDraft, plan.Status)

	eco := Ecosystem{Name: "Hutan Mangrove"}
	require.NoError(t, eco.Validate())
	assert.Equal(t, ConditionGood, eco.Condition)

	value := ImportantValue{Category: ValueCultural, Name: "Situs adat"}
	require.NoError(t, value.Validate())
	assert.Equal(t, ImportanceMedium, value.Importance)
}

func TestRecordValidationFailures(t *testing.T) {
	fire := ClearingType("Kebakaran")
	socio := SurveyType("Socio_Economic")

	tests := []struct {
		name    string
		record  interface{ Validate() error }
		wantErr string
	}{
		{"plan period reversed", &ManagementPlan{StartYear: intPtr(2030), EndYear: intPtr(2020)}, "Periode akhir tidak boleh sebelum periode awal"},
		{"plan negative budget", &ManagementPlan{Budget: floatPtr(-5)}, "Anggaran tidak boleh negatif"},
		{"plan unknown status", &ManagementPlan{Status: "Archived"}, "Status RPJP tidak dikenal"},
		{"ecosystem without name", &Ecosystem{}, "Nama ekosistem harus diisi"},
		{"ecosystem unknown condition", &Ecosystem{Name: "Rawa", Condition: "Hancur"}, "Kondisi harus Baik, Sedang, atau Rusak"},
		{"open area unknown clearing", &OpenArea{ClearingType: &fire}, "Jenis pembukaan harus Alami, Antropogenik, atau Campuran"},
		{"value missing name and category", &ImportantValue{}, "Kategori nilai tidak dikenal, Nama nilai harus diisi"},
		{"survey bad date", &Survey{Type: &socio, Date: strPtr("14/08/2023")}, "Tanggal survey harus berformat YYYY-MM-DD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, tt.record.Validate(), tt.wantErr)
		})
	}
}
