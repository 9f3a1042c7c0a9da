package efektivitas

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jszwec/csvutil"

	"konservasi-platform/internal/models"
)

// ExportRow is one assessment in the fixed export column order
type ExportRow struct {
	ID                    int64  `csv:"ID"`
	AreaName              string `csv:"Area Name"`
	AreaCategory          string `csv:"Area Category"`
	Year                  int    `csv:"Year"`
	Score                 int    `csv:"Score"`
	EffectivenessCategory string `csv:"Effectiveness Category"`
	Note                  string `csv:"Note"`
	CreatedDate           string `csv:"Created Date"`
}

// Cells returns the row's typed values in header order
func (r ExportRow) Cells() []interface{} {
	return []interface{}{
		r.ID,
		r.AreaName,
		r.AreaCategory,
		r.Year,
		r.Score,
		r.EffectivenessCategory,
		r.Note,
		r.CreatedDate,
	}
}

// Values returns the row's cells in header order, formatted as text
func (r ExportRow) Values() []string {
	cells := r.Cells()
	values := make([]string, len(cells))
	for i, c := range cells {
		switch v := c.(type) {
		case int64:
			values[i] = strconv.FormatInt(v, 10)
		case int:
			values[i] = strconv.Itoa(v)
		case string:
			values[i] = v
		}
	}
	return values
}

// ExportHeader returns the export column names
func ExportHeader() []string {
	header, err := csvutil.Header(ExportRow{}, "csv")
	if err != nil {
		// ExportRow is a static struct; Header only fails on unsupported types.
		panic(err)
	}
	return header
}

// createdDateLayout matches the Indonesian short date (day/month/year, no padding)
const createdDateLayout = "2/1/2006"

// ExportRows shapes assessments for export. The category is always recomputed
// from the score.
func ExportRows(assessments []models.Assessment) []ExportRow {
	rows := make([]ExportRow, 0, len(assessments))
	for _, a := range assessments {
		row := ExportRow{
			ID:                    a.ID,
			Year:                  a.Year,
			Score:                 a.Score,
			EffectivenessCategory: Classify(a.Score).Label(),
		}
		if a.AreaName != nil {
			row.AreaName = *a.AreaName
		}
		if a.AreaCategory != nil {
			row.AreaCategory = strings.ReplaceAll(*a.AreaCategory, "_", " ")
		}
		if a.Note != nil {
			row.Note = *a.Note
		}
		if !a.CreatedAt.IsZero() {
			row.CreatedDate = a.CreatedAt.Format(createdDateLayout)
		}
		rows = append(rows, row)
	}
	return rows
}

// ExportScope selects which assessments an export covers
type ExportScope string

const (
	ScopeAll  ExportScope = "all"
	ScopeYear ExportScope = "year"
	ScopeArea ExportScope = "area"
)

// Valid reports whether s is a known scope
func (s ExportScope) Valid() bool {
	return s == ScopeAll || s == ScopeYear || s == ScopeArea
}

var whitespace = regexp.MustCompile(`\s+`)

// ExportFilename builds the download name without extension
func ExportFilename(scope ExportScope, year int, areaName string) string {
	name := "efektivitas_pengelolaan"
	switch scope {
	case ScopeYear:
		name += "_" + strconv.Itoa(year)
	case ScopeArea:
		name += "_" + whitespace.ReplaceAllString(strings.TrimSpace(areaName), "_")
	}
	return name
}
