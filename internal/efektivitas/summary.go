package efektivitas

import "konservasi-platform/internal/models"

// Summary is the headline statistics block of the effectiveness dashboard
type Summary struct {
	TotalAreas        int       `json:"total_areas"`
	TotalAssessments  int       `json:"total_assessments"`
	AverageScore      float64   `json:"average_score"`
	CategoryCounts    Breakdown `json:"category_counts"`
	RecentAssessments int       `json:"recent_assessments"`
	CurrentYear       int       `json:"current_year"`
}

// Summarize computes the dashboard statistics. RecentAssessments counts the
// assessments recorded for currentYear.
func Summarize(assessments []models.Assessment, totalAreas, currentYear int) Summary {
	s := Summary{
		TotalAreas:       totalAreas,
		TotalAssessments: len(assessments),
		CategoryCounts:   newBreakdown(),
		CurrentYear:      currentYear,
	}

	total := 0
	for _, a := range assessments {
		total += a.Score
		s.CategoryCounts[Classify(a.Score)]++
		if a.Year == currentYear {
			s.RecentAssessments++
		}
	}

	if len(assessments) > 0 {
		s.AverageScore = float64(roundTenths(total, len(assessments))) / 10
	}
	return s
}

// YearBreakdown counts the assessments of one year per category
func YearBreakdown(assessments []models.Assessment, year int) Breakdown {
	b := newBreakdown()
	for _, a := range assessments {
		if a.Year == year {
			b[Classify(a.Score)]++
		}
	}
	return b
}
