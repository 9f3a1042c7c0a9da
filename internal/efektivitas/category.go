// Package efektivitas holds the management-effectiveness rules: score banding,
// the area-by-year pivot, trend analysis, import validation and export shaping.
// Every function works on fully materialised slices and keeps no state between calls.
package efektivitas

import "math"

// Category is an effectiveness band derived from a score
type Category string

const (
	NotAssessed        Category = "NOT_ASSESSED"
	Ineffective        Category = "INEFFECTIVE"
	PartiallyEffective Category = "PARTIALLY_EFFECTIVE"
	Effective          Category = "EFFECTIVE"
)

// Categories lists the bands from lowest to highest
var Categories = []Category{NotAssessed, Ineffective, PartiallyEffective, Effective}

type categoryInfo struct {
	label string
	color string
}

var categoryTable = map[Category]categoryInfo{
	NotAssessed:        {label: "Belum Dilakukan Penilaian", color: "gray"},
	Ineffective:        {label: "Tidak Efektif", color: "red"},
	PartiallyEffective: {label: "Kurang Efektif", color: "yellow"},
	Effective:          {label: "Efektif", color: "green"},
}

// Classify maps a score to its band. Scores outside 0-100 fall back to NotAssessed.
func Classify(score int) Category {
	switch {
	case score == 0:
		return NotAssessed
	case score >= 1 && score <= 33:
		return Ineffective
	case score >= 34 && score <= 66:
		return PartiallyEffective
	case score >= 67 && score <= 100:
		return Effective
	default:
		return NotAssessed
	}
}

// ClassifyFloat rounds an averaged score half-up and classifies it.
// NaN and infinities fall back to NotAssessed.
func ClassifyFloat(score float64) Category {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return NotAssessed
	}
	rounded := math.Floor(score + 0.5)
	if rounded < math.MinInt32 || rounded > math.MaxInt32 {
		return NotAssessed
	}
	return Classify(int(rounded))
}

// Valid reports whether c is one of the four bands
func (c Category) Valid() bool {
	_, ok := categoryTable[c]
	return ok
}

// Label is the Indonesian display name of the band
func (c Category) Label() string {
	if info, ok := categoryTable[c]; ok {
		return info.label
	}
	return categoryTable[NotAssessed].label
}

// Color is the presentation colour tag of the band
func (c Category) Color() string {
	if info, ok := categoryTable[c]; ok {
		return info.color
	}
	return categoryTable[NotAssessed].color
}

// Breakdown counts records per band. All four bands are always present.
type Breakdown map[Category]int

func newBreakdown() Breakdown {
	b := make(Breakdown, len(Categories))
	for _, c := range Categories {
		b[c] = 0
	}
	return b
}

// Total sums the counts of every band
func (b Breakdown) Total() int {
	total := 0
	for _, n := range b {
		total += n
	}
	return total
}
