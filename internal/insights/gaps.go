package insights

import (
	"sort"

	"nutrisnap/internal/catalog"
	"nutrisnap/internal/domain"
)

// Severity grades how persistent a nutritional gap is.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

func (s Severity) rank() int {
	switch s {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return 1
	default:
		return 2
	}
}

// A day is deficient when its total is below this share of the requirement.
const deficientShare = 0.7

// NutritionalGap is a nutrient that fell short on at least two days.
type NutritionalGap struct {
	Nutrient       string   `json:"nutrient"`
	Severity       Severity `json:"severity"`
	DaysDeficient  int      `json:"daysDeficient"`
	Recommendation string   `json:"recommendation"`
	TargetFoods    []string `json:"targetFoods"`
}

// AnalyzeGaps sums each tracked nutrient per calendar day and reports the
// nutrients that missed 70% of their requirement on two or more days.
//
// Only days that have at least one meal are considered. Sparse logging
// therefore counts against fewer days rather than the whole window: two
// logged days that both miss a target produce a "low" gap even if the
// window is a week long.
func AnalyzeGaps(meals []domain.MealRecord) []NutritionalGap {
	var days []string
	totals := make(map[string]domain.Nutrition)
	for _, m := range meals {
		day := m.Day()
		t, ok := totals[day]
		if !ok {
			t = make(domain.Nutrition)
			totals[day] = t
			days = append(days, day)
		}
		for _, r := range catalog.Requirements {
			t[r.Nutrient] += m.Nutrition.Get(r.Nutrient)
		}
	}

	gaps := make([]NutritionalGap, 0)
	for _, r := range catalog.Requirements {
		deficient := 0
		for _, day := range days {
			if totals[day].Get(r.Nutrient) < r.Daily*deficientShare {
				deficient++
			}
		}
		if deficient < 2 {
			continue
		}
		gaps = append(gaps, NutritionalGap{
			Nutrient:       catalog.DisplayName(r.Nutrient),
			Severity:       severityFor(deficient),
			DaysDeficient:  deficient,
			Recommendation: catalog.Recommendation(r.Nutrient),
			TargetFoods:    catalog.TargetFoods(r.Nutrient),
		})
	}

	sort.SliceStable(gaps, func(i, j int) bool {
		return gaps[i].Severity.rank() < gaps[j].Severity.rank()
	})
	return gaps
}

func severityFor(days int) Severity {
	switch {
	case days >= 4:
		return SeverityHigh
	case days == 3:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
