package efektivitas

import (
	"math"
	"sort"

	"konservasi-platform/internal/models"
)

// Direction is the overall movement of yearly averages
type Direction string

const (
	TrendUp     Direction = "UP"
	TrendDown   Direction = "DOWN"
	TrendStable Direction = "STABLE"
)

// trendThresholdTenths is the minimum change in yearly average, in tenths of a
// point, that counts as movement. The comparison is strict: exactly 2.0 is stable.
const trendThresholdTenths = 20

// maxTopChanges caps the per-area change ranking
const maxTopChanges = 10

// YearlyAverage summarises every assessment of one year
type YearlyAverage struct {
	Year              int       `json:"year"`
	Average           float64   `json:"average"`
	Count             int       `json:"count"`
	CategoryBreakdown Breakdown `json:"category_breakdown"`
	Category          Category  `json:"category"`

	averageTenths int
}

// AreaChange is the score movement of one area between its earliest and latest year.
// ChangePercent is nil when the first score is zero.
type AreaChange struct {
	AreaName       string   `json:"area_name"`
	FirstYear      int      `json:"first_year"`
	LastYear       int      `json:"last_year"`
	FirstScore     int      `json:"first_score"`
	LastScore      int      `json:"last_score"`
	Change         int      `json:"change"`
	ChangePercent  *int     `json:"change_percent"`
	LatestCategory Category `json:"latest_category"`
}

// TrendReport is the result of Analyze
type TrendReport struct {
	YearlyAverages []YearlyAverage `json:"yearly_averages"`
	Trend          Direction       `json:"trend"`
	TopChanges     []AreaChange    `json:"top_changes"`
}

// Analyze computes yearly averages, the overall direction and the largest
// per-area changes. It returns nil for an empty input.
func Analyze(assessments []models.Assessment) *TrendReport {
	if len(assessments) == 0 {
		return nil
	}

	yearly := yearlyAverages(assessments)

	return &TrendReport{
		YearlyAverages: yearly,
		Trend:          direction(yearly),
		TopChanges:     topChanges(assessments),
	}
}

func yearlyAverages(assessments []models.Assessment) []YearlyAverage {
	type acc struct {
		total     int
		count     int
		breakdown Breakdown
	}

	byYear := make(map[int]*acc)
	for _, a := range assessments {
		y, ok := byYear[a.Year]
		if !ok {
			y = &acc{breakdown: newBreakdown()}
			byYear[a.Year] = y
		}
		y.total += a.Score
		y.count++
		y.breakdown[Classify(a.Score)]++
	}

	years := make([]int, 0, len(byYear))
	for year := range byYear {
		years = append(years, year)
	}
	sort.Ints(years)

	result := make([]YearlyAverage, 0, len(years))
	for _, year := range years {
		y := byYear[year]
		tenths := roundTenths(y.total, y.count)
		avg := float64(tenths) / 10
		result = append(result, YearlyAverage{
			Year:              year,
			Average:           avg,
			Count:             y.count,
			CategoryBreakdown: y.breakdown,
			Category:          ClassifyFloat(avg),
			averageTenths:     tenths,
		})
	}
	return result
}

// roundTenths returns total/count rounded half-up to one decimal, scaled by ten
func roundTenths(total, count int) int {
	return int(math.Floor(float64(total)*10/float64(count) + 0.5))
}

func direction(yearly []YearlyAverage) Direction {
	if len(yearly) < 2 {
		return TrendStable
	}

	diff := yearly[len(yearly)-1].averageTenths - yearly[0].averageTenths
	switch {
	case diff > trendThresholdTenths:
		return TrendUp
	case diff < -trendThresholdTenths:
		return TrendDown
	default:
		return TrendStable
	}
}

func topChanges(assessments []models.Assessment) []AreaChange {
	groups := make(map[string][]models.Assessment)
	var names []string
	for _, a := range assessments {
		if a.AreaName == nil || *a.AreaName == "" {
			continue
		}
		name := *a.AreaName
		if _, ok := groups[name]; !ok {
			names = append(names, name)
		}
		groups[name] = append(groups[name], a)
	}

	changes := make([]AreaChange, 0, len(names))
	for _, name := range names {
		records := groups[name]
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].Year < records[j].Year
		})

		first := records[0]
		last := records[len(records)-1]
		if first.Year == last.Year {
			continue
		}

		change := last.Score - first.Score
		changes = append(changes, AreaChange{
			AreaName:       name,
			FirstYear:      first.Year,
			LastYear:       last.Year,
			FirstScore:     first.Score,
			LastScore:      last.Score,
			Change:         change,
			ChangePercent:  changePercent(change, first.Score),
			LatestCategory: Classify(last.Score),
		})
	}

	sort.SliceStable(changes, func(i, j int) bool {
		return abs(changes[i].Change) > abs(changes[j].Change)
	})

	if len(changes) > maxTopChanges {
		changes = changes[:maxTopChanges]
	}
	return changes
}

func changePercent(change, firstScore int) *int {
	if firstScore == 0 {
		return nil
	}
	pct := int(math.Floor(float64(change)/float64(firstScore)*100 + 0.5))
	return &pct
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
