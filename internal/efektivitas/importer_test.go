package efektivitas

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"konservasi-platform/internal/models"
)

func TestResolveHeader(t *testing.T) {
	tests := []struct {
		header string
		want   Field
	}{
		{"nama_kawasan", KnownField{Name: FieldAreaName}},
		{"Nama Kawasan", KnownField{Name: FieldAreaName}},
		{" KAWASAN ", KnownField{Name: FieldAreaName}},
		{"\ufefftahun", KnownField{Name: FieldYear}},
		{"Year", KnownField{Name: FieldYear}},
		{"skor", KnownField{Name: FieldScore}},
		{"Score", KnownField{Name: FieldScore}},
		{"nilai", KnownField{Name: FieldScore}},
		{"keterangan", KnownField{Name: FieldNote}},
		{"Description", KnownField{Name: FieldNote}},
		{"notes", KnownField{Name: FieldNote}},
		{"provinsi", IgnoredField{Header: "provinsi"}},
		{"nama-kawasan", IgnoredField{Header: "nama-kawasan"}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveHeader(tt.header), tt.header)
	}
}

func TestResolveHeaders_LaterDuplicateWins(t *testing.T) {
	fields := ResolveHeaders([]string{"skor", "tahun", "nilai"})
	assert.Equal(t, IgnoredField{Header: "skor"}, fields[0])
	assert.Equal(t, KnownField{Name: FieldYear}, fields[1])
	assert.Equal(t, KnownField{Name: FieldScore}, fields[2])
}

func TestDecodeCSV(t *testing.T) {
	input := "Nama Kawasan,Provinsi,Tahun,Skor,Keterangan\n" +
		"CA Kawah Ijen,Jawa Timur,2024,85,\"Baik, perlu dipertahankan\"\n" +
		"\n" +
		"SM Baluran,Jawa Timur,2023\n" +
		"TWA Grojogan Sewu,Jawa Tengah,2022,70,Catatan,kolom lebih\n"

	records, err := DecodeCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, RawRecord{Row: 2, AreaName: "CA Kawah Ijen", Year: "2024", Score: "85", Note: "Baik, perlu dipertahankan"}, records[0])
	assert.Equal(t, RawRecord{Row: 4, AreaName: "SM Baluran", Year: "2023"}, records[1])
	assert.Equal(t, 5, records[2].Row)
	assert.Equal(t, "Catatan", records[2].Note)
}

func TestDecodeCSV_Errors(t *testing.T) {
	_, err := DecodeCSV(strings.NewReader(""))
	assert.Error(t, err)

	_, err = DecodeCSV(strings.NewReader("a,b,c\n1,2,3\n"))
	assert.ErrorIs(t, err, ErrNoRecognisedColumns)
}

func TestDecodeRows(t *testing.T) {
	records, err := DecodeRows([][]string{
		{"kawasan", "year", "score"},
		{"CA Kawah Ijen", "2024", "85"},
		{"", "", ""},
		{"SM Baluran", "2023", "40", "extra"},
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 2, records[0].Row)
	assert.Equal(t, "SM Baluran", records[1].AreaName)
	assert.Equal(t, 4, records[1].Row)

	_, err = DecodeRows(nil)
	assert.Error(t, err)
}

var knownAreas = []models.Area{
	{ID: 1, Name: "Known Place"},
	{ID: 2, Name: "CA Kawah Ijen"},
}

func TestValidateImportBatch_AreaResolution(t *testing.T) {
	records := ValidateImportBatch([]RawRecord{
		{Row: 2, AreaName: "Unknown Place", Year: "2024", Score: "50"},
		{Row: 3, AreaName: "Known Place", Year: "2024", Score: "50"},
		{Row: 4, AreaName: "  known PLACE ", Year: "2023", Score: "50"},
	}, []models.Area{{ID: 1, Name: "Known Place"}})

	require.Len(t, records, 3)
	assert.Equal(t, StatusInvalid, records[0].Status)
	assert.Contains(t, records[0].Error, MsgAreaNotFound)
	assert.Nil(t, records[0].AreaID)

	assert.Equal(t, StatusValid, records[1].Status)
	assert.Empty(t, records[1].Error)
	require.NotNil(t, records[1].AreaID)
	assert.Equal(t, int64(1), *records[1].AreaID)

	assert.Equal(t, StatusValid, records[2].Status)
	assert.Equal(t, "known PLACE", records[2].AreaName)
}

func TestValidateImportBatch_AccumulatesErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  RawRecord
		want string
	}{
		{
			name: "everything missing",
			raw:  RawRecord{},
			want: "Nama kawasan harus diisi, Tahun harus antara 2000-2030, Skor harus antara 0-100, Kawasan tidak ditemukan dalam database",
		},
		{
			name: "year and score out of range",
			raw:  RawRecord{AreaName: "Known Place", Year: "1999", Score: "101"},
			want: "Tahun harus antara 2000-2030, Skor harus antara 0-100",
		},
		{
			name: "non-numeric year and score",
			raw:  RawRecord{AreaName: "Known Place", Year: "dua ribu", Score: "tinggi"},
			want: "Tahun harus antara 2000-2030, Skor harus antara 0-100",
		},
		{
			name: "fractional score",
			raw:  RawRecord{AreaName: "Known Place", Year: "2024", Score: "85.5"},
			want: "Skor harus bilangan bulat",
		},
		{
			name: "negative score",
			raw:  RawRecord{AreaName: "Known Place", Year: "2030", Score: "-1"},
			want: "Skor harus antara 0-100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := ValidateImportBatch([]RawRecord{tt.raw}, knownAreas)
			require.Len(t, records, 1)
			assert.Equal(t, StatusInvalid, records[0].Status)
			assert.Equal(t, tt.want, records[0].Error)
		})
	}
}

func TestValidateImportBatch_Boundaries(t *testing.T) {
	records := ValidateImportBatch([]RawRecord{
		{Row: 2, AreaName: "Known Place", Year: "2000", Score: "0", Note: "  "},
		{Row: 3, AreaName: "CA Kawah Ijen", Year: "2030", Score: "100.0", Note: " awal "},
		{Row: 4, AreaName: "Known Place", Year: "2024.0", Score: "55"},
		{Row: 5, AreaName: "Known Place", Year: "2024.5", Score: "55"},
		{Row: 6, AreaName: "Known Place", Year: "NaN", Score: "55"},
	}, knownAreas)

	require.Len(t, records, 5)
	for _, r := range records[:3] {
		assert.Equal(t, StatusValid, r.Status, r.Error)
	}
	assert.Equal(t, 2024, records[2].Year)
	for _, r := range records[3:] {
		assert.Equal(t, StatusInvalid, r.Status)
		assert.Equal(t, MsgYearRange, r.Error)
	}
	assert.Nil(t, records[0].Note)
	assert.Equal(t, NotAssessed, records[0].Category)
	require.NotNil(t, records[1].Note)
	assert.Equal(t, "awal", *records[1].Note)
	assert.Equal(t, 100, records[1].Score)
	assert.Equal(t, Effective, records[1].Category)
}

func TestValidateImportBatch_Duplicates(t *testing.T) {
	records := ValidateImportBatch([]RawRecord{
		{Row: 2, AreaName: "Known Place", Year: "2024", Score: "50"},
		{Row: 3, AreaName: "known place", Year: "2024", Score: "200"},
		{Row: 4, AreaName: "KNOWN PLACE", Year: "2024", Score: "60"},
		{Row: 5, AreaName: "Known Place", Year: "2023", Score: "60"},
	}, knownAreas)

	assert.Equal(t, StatusValid, records[0].Status)
	assert.Equal(t, StatusInvalid, records[1].Status)
	assert.Equal(t, StatusDuplicate, records[2].Status)
	assert.Contains(t, records[2].Error, "baris 2")
	assert.Equal(t, StatusValid, records[3].Status)

	assert.Equal(t, ImportTally{Total: 4, Valid: 2, Invalid: 1, Duplicate: 1}, Tally(records))
}

func TestValidRecords(t *testing.T) {
	records := ValidateImportBatch([]RawRecord{
		{Row: 2, AreaName: "Known Place", Year: "2024", Score: "50", Note: "ok"},
		{Row: 3, AreaName: "Nowhere", Year: "2024", Score: "50"},
		{Row: 4, AreaName: "Known Place", Year: "2024", Score: "70"},
		{Row: 5, AreaName: "CA Kawah Ijen", Year: "2022", Score: "30"},
	}, knownAreas)

	inputs := ValidRecords(records)
	require.Len(t, inputs, 2)
	assert.Equal(t, int64(1), inputs[0].AreaID)
	assert.Equal(t, 50, inputs[0].Score)
	assert.Equal(t, "ok", *inputs[0].Note)
	assert.Equal(t, int64(2), inputs[1].AreaID)
	for _, in := range inputs {
		assert.NoError(t, in.Validate())
	}
}

func TestTemplateCSV_DecodesCleanly(t *testing.T) {
	records, err := DecodeCSV(strings.NewReader(TemplateCSV))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Contoh Kawasan 1", records[0].AreaName)
	assert.Equal(t, "85", records[0].Score)
}
