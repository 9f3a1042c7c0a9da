package efektivitas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"konservasi-platform/internal/models"
)

func id(v int64) *int64    { return &v }
func str(s string) *string { return &s }

func assessment(areaID int64, year, score int) models.Assessment {
	return models.Assessment{AreaID: id(areaID), Year: year, Score: score}
}

func TestPivot_Basic(t *testing.T) {
	areas := []models.Area{
		{ID: 2, Name: "B", Category: models.SuakaMargasatwa},
		{ID: 1, Name: "A", Category: models.CagarAlam},
	}
	assessments := []models.Assessment{
		assessment(1, 2023, 80),
		assessment(1, 2024, 90),
		assessment(2, 2022, 10),
	}

	rows := Pivot(assessments, areas)
	require.Len(t, rows, 2)

	assert.Equal(t, "A", rows[0].AreaName)
	assert.Equal(t, map[int]int{2023: 80, 2024: 90}, rows[0].YearScores)
	assert.Equal(t, 90, rows[0].LatestScore)
	assert.Equal(t, 2024, rows[0].LatestYear)
	assert.Equal(t, Effective, rows[0].Category)
	assert.Equal(t, "Cagar_Alam", rows[0].AreaCategory)

	assert.Equal(t, "B", rows[1].AreaName)
	assert.Equal(t, 10, rows[1].LatestScore)
	assert.Equal(t, Ineffective, rows[1].Category)
}

func TestPivot_AreaWithoutAssessments(t *testing.T) {
	areas := []models.Area{{ID: 1, Name: "A"}, {ID: 3, Name: "C"}}
	rows := Pivot([]models.Assessment{assessment(1, 2024, 50)}, areas)

	require.Len(t, rows, 2)
	c := rows[1]
	assert.Equal(t, "C", c.AreaName)
	assert.Empty(t, c.YearScores)
	assert.NotNil(t, c.YearScores)
	assert.Equal(t, 0, c.LatestScore)
	assert.Equal(t, NotAssessed, c.Category)
}

func TestPivot_DropsAssessmentsWithoutArea(t *testing.T) {
	assessments := []models.Assessment{
		{Year: 2024, Score: 70},
		assessment(1, 2024, 20),
	}
	rows := Pivot(assessments, []models.Area{{ID: 1, Name: "A"}})

	require.Len(t, rows, 1)
	assert.Equal(t, 20, rows[0].LatestScore)
}

func TestPivot_DuplicateYearLastWriteWins(t *testing.T) {
	assessments := []models.Assessment{
		assessment(1, 2024, 20),
		assessment(1, 2022, 95),
		assessment(1, 2024, 60),
	}
	rows := Pivot(assessments, []models.Area{{ID: 1, Name: "A"}})

	require.Len(t, rows, 1)
	assert.Equal(t, 60, rows[0].YearScores[2024])
	assert.Equal(t, 60, rows[0].LatestScore)
	assert.Equal(t, PartiallyEffective, rows[0].Category)
	assert.Len(t, rows[0].YearScores, 2)
}

func TestPivot_AreaMissingFromListUsesJoinedName(t *testing.T) {
	a := assessment(9, 2024, 70)
	a.AreaName = str("Zeta")
	a.AreaCategory = str("KAS/KPA")

	rows := Pivot([]models.Assessment{a}, []models.Area{{ID: 1, Name: "Alpha"}})
	require.Len(t, rows, 2)
	assert.Equal(t, "Alpha", rows[0].AreaName)
	assert.Equal(t, "Zeta", rows[1].AreaName)
	assert.Equal(t, "KAS/KPA", rows[1].AreaCategory)
}

func TestPivot_OneRowPerArea(t *testing.T) {
	areas := []models.Area{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}
	var assessments []models.Assessment
	for year := 2010; year < 2020; year++ {
		assessments = append(assessments, assessment(1, year, year-2000), assessment(2, year, 100-(year-2000)))
	}

	rows := Pivot(assessments, areas)
	seen := map[int64]bool{}
	for _, r := range rows {
		assert.False(t, seen[r.AreaID], "duplicate row for area %d", r.AreaID)
		seen[r.AreaID] = true
	}
	assert.Len(t, rows, 2)
}

func TestPivot_LocaleOrdering(t *testing.T) {
	areas := []models.Area{
		{ID: 1, Name: "taman Wisata"},
		{ID: 2, Name: "Cagar Alam Ujung"},
		{ID: 3, Name: "Suaka Margasatwa"},
		{ID: 4, Name: "cagar alam Batang"},
	}
	rows := Pivot(nil, areas)

	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.AreaName)
	}
	assert.Equal(t, []string{"cagar alam Batang", "Cagar Alam Ujung", "Suaka Margasatwa", "taman Wisata"}, names)
}

func TestPivot_LatestScoreMatchesClassifier(t *testing.T) {
	areas := []models.Area{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}, {ID: 3, Name: "C"}}
	assessments := []models.Assessment{
		assessment(1, 2020, 33),
		assessment(1, 2021, 34),
		assessment(2, 2021, 67),
		assessment(2, 2019, 0),
		assessment(3, 2024, 150),
	}

	for _, row := range Pivot(assessments, areas) {
		assert.Equal(t, Classify(row.LatestScore), row.Category, row.AreaName)
	}
}

func TestAvailableYears(t *testing.T) {
	years := AvailableYears([]models.Assessment{
		assessment(1, 2022, 10),
		assessment(2, 2024, 10),
		assessment(3, 2022, 10),
		assessment(1, 2023, 10),
	})
	assert.Equal(t, []int{2024, 2023, 2022}, years)
	assert.Empty(t, AvailableYears(nil))
}
