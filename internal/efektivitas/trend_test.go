package efektivitas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"konservasi-platform/internal/models"
)

func named(name string, year, score int) models.Assessment {
	return models.Assessment{AreaName: str(name), Year: year, Score: score}
}

func TestAnalyze_Empty(t *testing.T) {
	assert.Nil(t, Analyze(nil))
	assert.Nil(t, Analyze([]models.Assessment{}))
}

func TestAnalyze_SingleAreaUp(t *testing.T) {
	report := Analyze([]models.Assessment{
		named("A", 2022, 40),
		named("A", 2023, 50),
	})
	require.NotNil(t, report)

	require.Len(t, report.YearlyAverages, 2)
	assert.Equal(t, 2022, report.YearlyAverages[0].Year)
	assert.Equal(t, 40.0, report.YearlyAverages[0].Average)
	assert.Equal(t, 2023, report.YearlyAverages[1].Year)
	assert.Equal(t, 50.0, report.YearlyAverages[1].Average)
	assert.Equal(t, TrendUp, report.Trend)

	require.Len(t, report.TopChanges, 1)
	change := report.TopChanges[0]
	assert.Equal(t, "A", change.AreaName)
	assert.Equal(t, 10, change.Change)
	require.NotNil(t, change.ChangePercent)
	assert.Equal(t, 25, *change.ChangePercent)
	assert.Equal(t, PartiallyEffective, change.LatestCategory)
}

func TestAnalyze_Direction(t *testing.T) {
	tests := []struct {
		name  string
		first int
		last  int
		want  Direction
	}{
		{"exactly two points up is stable", 40, 42, TrendStable},
		{"just over two points up", 40, 43, TrendUp},
		{"exactly two points down is stable", 50, 48, TrendStable},
		{"down", 50, 40, TrendDown},
		{"flat", 60, 60, TrendStable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Analyze([]models.Assessment{named("A", 2020, tt.first), named("A", 2024, tt.last)})
			require.NotNil(t, report)
			assert.Equal(t, tt.want, report.Trend)
		})
	}
}

func TestAnalyze_DirectionUsesRoundedAverages(t *testing.T) {
	// 40.125 rounds to 40.1 and 42.125 to 42.1, a difference of exactly 2.0
	var data []models.Assessment
	for _, s := range []int{40, 40, 40, 41, 40, 40, 40, 40} {
		data = append(data, named("X", 2020, s))
	}
	for _, s := range []int{42, 42, 42, 43, 42, 42, 42, 42} {
		data = append(data, named("Y", 2021, s))
	}

	report := Analyze(data)
	require.NotNil(t, report)
	assert.Equal(t, 40.1, report.YearlyAverages[0].Average)
	assert.Equal(t, 42.1, report.YearlyAverages[1].Average)
	assert.Equal(t, TrendStable, report.Trend)
}

func TestAnalyze_SingleYearIsStable(t *testing.T) {
	report := Analyze([]models.Assessment{named("A", 2024, 10), named("B", 2024, 90)})
	require.NotNil(t, report)
	assert.Equal(t, TrendStable, report.Trend)
	assert.Empty(t, report.TopChanges)

	require.Len(t, report.YearlyAverages, 1)
	y := report.YearlyAverages[0]
	assert.Equal(t, 50.0, y.Average)
	assert.Equal(t, 2, y.Count)
	assert.Equal(t, 1, y.CategoryBreakdown[Ineffective])
	assert.Equal(t, 1, y.CategoryBreakdown[Effective])
	assert.Equal(t, 0, y.CategoryBreakdown[NotAssessed])
	assert.Equal(t, PartiallyEffective, y.Category)
}

func TestAnalyze_AverageRoundsHalfUp(t *testing.T) {
	// (33 + 34 + 34 + 34) / 4 = 33.75 -> 33.8; (10 + 11) / 2 = 10.5
	report := Analyze([]models.Assessment{
		named("A", 2020, 33), named("B", 2020, 34), named("C", 2020, 34), named("D", 2020, 34),
		named("A", 2021, 10), named("B", 2021, 11),
	})
	require.NotNil(t, report)
	assert.Equal(t, 33.8, report.YearlyAverages[0].Average)
	assert.Equal(t, 10.5, report.YearlyAverages[1].Average)
}

func TestAnalyze_ZeroFirstScoreHasNoPercent(t *testing.T) {
	report := Analyze([]models.Assessment{named("A", 2020, 0), named("A", 2022, 50)})
	require.NotNil(t, report)
	require.Len(t, report.TopChanges, 1)
	assert.Equal(t, 50, report.TopChanges[0].Change)
	assert.Nil(t, report.TopChanges[0].ChangePercent)
}

func TestAnalyze_ChangePercentRounding(t *testing.T) {
	report := Analyze([]models.Assessment{
		named("Up", 2020, 30), named("Up", 2021, 31),
		named("Down", 2020, 80), named("Down", 2021, 30),
	})
	require.NotNil(t, report)
	require.Len(t, report.TopChanges, 2)

	assert.Equal(t, "Down", report.TopChanges[0].AreaName)
	assert.Equal(t, -50, report.TopChanges[0].Change)
	assert.Equal(t, -62, *report.TopChanges[0].ChangePercent) // -62.5 rounds toward +inf

	assert.Equal(t, "Up", report.TopChanges[1].AreaName)
	assert.Equal(t, 3, *report.TopChanges[1].ChangePercent) // 3.33
}

func TestAnalyze_TopChanges(t *testing.T) {
	var data []models.Assessment
	names := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L"}
	for i, n := range names {
		data = append(data, named(n, 2024, 50+i), named(n, 2020, 50))
	}
	// skipped: no name, and a single-year area
	data = append(data, models.Assessment{Year: 2020, Score: 0}, models.Assessment{Year: 2024, Score: 100})
	data = append(data, named("Solo", 2021, 1), named("Solo", 2021, 99))

	report := Analyze(data)
	require.NotNil(t, report)
	require.Len(t, report.TopChanges, 10)

	assert.Equal(t, "L", report.TopChanges[0].AreaName)
	assert.Equal(t, 11, report.TopChanges[0].Change)
	assert.Equal(t, 2020, report.TopChanges[0].FirstYear)
	assert.Equal(t, 2024, report.TopChanges[0].LastYear)
	for i := 1; i < len(report.TopChanges); i++ {
		prev, cur := report.TopChanges[i-1].Change, report.TopChanges[i].Change
		assert.GreaterOrEqual(t, abs(prev), abs(cur))
	}
	for _, c := range report.TopChanges {
		assert.NotEqual(t, "Solo", c.AreaName)
		assert.NotEqual(t, "", c.AreaName)
	}
}

func TestAnalyze_DoesNotReorderInput(t *testing.T) {
	data := []models.Assessment{named("A", 2024, 90), named("A", 2020, 10)}
	Analyze(data)
	assert.Equal(t, 2024, data[0].Year)
}
