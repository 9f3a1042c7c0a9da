package efektivitas

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"konservasi-platform/internal/models"
)

func TestExportHeader(t *testing.T) {
	assert.Equal(t, []string{
		"ID", "Area Name", "Area Category", "Year", "Score", "Effectiveness Category", "Note", "Created Date",
	}, ExportHeader())
}

func TestExportRows(t *testing.T) {
	rows := ExportRows([]models.Assessment{
		{
			ID:           7,
			AreaName:     str("CA Kawah Ijen, Banyuwangi"),
			AreaCategory: str("Taman_Wisata_Alam"),
			Year:         2024,
			Score:        85,
			Note:         str("Baik"),
			CreatedAt:    time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
		},
		{ID: 8, Year: 2023, Score: 20},
	})

	require.Len(t, rows, 2)
	assert.Equal(t, ExportRow{
		ID:                    7,
		AreaName:              "CA Kawah Ijen, Banyuwangi",
		AreaCategory:          "Taman Wisata Alam",
		Year:                  2024,
		Score:                 85,
		EffectivenessCategory: "Efektif",
		Note:                  "Baik",
		CreatedDate:           "5/3/2024",
	}, rows[0])
	assert.Equal(t, "Tidak Efektif", rows[1].EffectivenessCategory)
	assert.Equal(t, "", rows[1].CreatedDate)
	assert.Equal(t, []string{"8", "", "", "2023", "20", "Tidak Efektif", "", ""}, rows[1].Values())
	assert.Len(t, rows[1].Cells(), len(ExportHeader()))
	assert.Equal(t, int64(8), rows[1].Cells()[0])
	assert.Equal(t, 2023, rows[1].Cells()[3])
}

func TestExportRows_CSVQuoting(t *testing.T) {
	rows := ExportRows([]models.Assessment{
		{ID: 1, AreaName: str("Gunung Api, Bali"), Year: 2024, Score: 50},
	})

	data, err := csvutil.Marshal(rows)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Gunung Api, Bali"`)

	parsed, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, parsed, 2)
	assert.Equal(t, ExportHeader(), parsed[0])
	assert.Equal(t, rows[0].Values(), parsed[1])
}

func TestExportFilename(t *testing.T) {
	assert.Equal(t, "efektivitas_pengelolaan", ExportFilename(ScopeAll, 0, ""))
	assert.Equal(t, "efektivitas_pengelolaan_2024", ExportFilename(ScopeYear, 2024, ""))
	assert.Equal(t, "efektivitas_pengelolaan_CA_Kawah_Ijen", ExportFilename(ScopeArea, 0, " CA  Kawah Ijen "))
	assert.True(t, ScopeArea.Valid())
	assert.False(t, ExportScope("kawasan").Valid())
}
