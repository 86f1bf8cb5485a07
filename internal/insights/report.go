// Package insights is the analytics core: pure functions that derive
// intolerance findings, nutritional gaps, predictions and trends from a
// user's meal history.
//
// Every function expects meals ordered most recent first, never mutates its
// input and is safe for concurrent use.
package insights

import "nutrisnap/internal/domain"

// Report combines the four analyses over a single meal snapshot.
type Report struct {
	Intolerances    []IntoleranceFinding `json:"intolerances"`
	NutritionalGaps []NutritionalGap     `json:"nutritionalGaps"`
	Predictions     Predictions          `json:"predictions"`
	WeeklyTrends    WeeklyTrends         `json:"weeklyTrends"`
}

// Analyze runs every analyzer over the same meals.
func Analyze(meals []domain.MealRecord) Report {
	return Report{
		Intolerances:    DetectIntolerances(meals),
		NutritionalGaps: AnalyzeGaps(meals),
		Predictions:     Predict(meals),
		WeeklyTrends:    SummarizeTrends(meals),
	}
}
