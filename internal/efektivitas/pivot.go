package efektivitas

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"konservasi-platform/internal/models"
)

// PivotRow is one area's assessments reshaped into a year-indexed view
type PivotRow struct {
	AreaID       int64       `json:"area_id"`
	AreaName     string      `json:"area_name"`
	AreaCategory string      `json:"area_category,omitempty"`
	YearScores   map[int]int `json:"year_scores"`
	LatestYear   int         `json:"latest_year,omitempty"`
	LatestScore  int         `json:"latest_score"`
	Category     Category    `json:"category"`
}

// Label is the display name of the row's latest category
func (r PivotRow) Label() string {
	return r.Category.Label()
}

// Score returns the score recorded for year, if any
func (r PivotRow) Score(year int) (int, bool) {
	s, ok := r.YearScores[year]
	return s, ok
}

// Pivot builds one row per area that has assessments or appears in areas.
// Assessments without an area are dropped. When an area has several assessments
// for one year the later one in input order wins. Rows are ordered by area name
// using Indonesian collation, then by area id.
func Pivot(assessments []models.Assessment, areas []models.Area) []PivotRow {
	lookup := make(map[int64]models.Area, len(areas))
	for _, a := range areas {
		lookup[a.ID] = a
	}

	rows := make(map[int64]*PivotRow)
	order := make([]int64, 0, len(areas))

	for _, a := range assessments {
		if a.AreaID == nil {
			continue
		}
		id := *a.AreaID

		row, ok := rows[id]
		if !ok {
			row = &PivotRow{AreaID: id, YearScores: make(map[int]int)}
			if area, known := lookup[id]; known {
				row.AreaName = area.Name
				row.AreaCategory = string(area.Category)
			} else {
				if a.AreaName != nil {
					row.AreaName = *a.AreaName
				}
				if a.AreaCategory != nil {
					row.AreaCategory = *a.AreaCategory
				}
			}
			row.LatestYear = a.Year
			rows[id] = row
			order = append(order, id)
		}

		row.YearScores[a.Year] = a.Score
		if a.Year > row.LatestYear {
			row.LatestYear = a.Year
		}
	}

	for _, id := range order {
		row := rows[id]
		row.LatestScore = row.YearScores[row.LatestYear]
		row.Category = Classify(row.LatestScore)
	}

	for _, area := range areas {
		if _, ok := rows[area.ID]; ok {
			continue
		}
		rows[area.ID] = &PivotRow{
			AreaID:       area.ID,
			AreaName:     area.Name,
			AreaCategory: string(area.Category),
			YearScores:   map[int]int{},
			LatestScore:  0,
			Category:     NotAssessed,
		}
		order = append(order, area.ID)
	}

	result := make([]PivotRow, 0, len(order))
	for _, id := range order {
		result = append(result, *rows[id])
	}

	// A collator is not safe for concurrent use, so each call gets its own.
	col := collate.New(language.Indonesian)
	sort.SliceStable(result, func(i, j int) bool {
		if c := col.CompareString(result[i].AreaName, result[j].AreaName); c != 0 {
			return c < 0
		}
		return result[i].AreaID < result[j].AreaID
	})

	return result
}

// AvailableYears returns the distinct assessment years, newest first
func AvailableYears(assessments []models.Assessment) []int {
	seen := make(map[int]struct{})
	years := make([]int, 0)
	for _, a := range assessments {
		if _, ok := seen[a.Year]; ok {
			continue
		}
		seen[a.Year] = struct{}{}
		years = append(years, a.Year)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}
