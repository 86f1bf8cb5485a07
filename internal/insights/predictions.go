package insights

import (
	"fmt"
	"math"

	"nutrisnap/internal/domain"
)

// Predictions are short-term suggestions derived from recent macros.
type Predictions struct {
	EnergyLevel     int    `json:"energyLevel"`
	NextMealTiming  string `json:"nextMealTiming"`
	OptimalNextMeal string `json:"optimalNextMeal"`
	SleepQuality    string `json:"sleepQuality"`
}

// DefaultPredictions is returned until enough meals are logged.
var DefaultPredictions = Predictions{
	EnergyLevel:     7,
	NextMealTiming:  "3-4 hours",
	OptimalNextMeal: "Balanced meal",
	SleepQuality:    "Track more meals",
}

const (
	minPredictionMeals = 3
	recentMeals        = 5
	maxMealGapHours    = 12
	fallbackGapHours   = 4
)

// Predict estimates energy, next-meal timing, the next meal's composition and
// sleep impact. meals must be ordered most recent first.
func Predict(meals []domain.MealRecord) Predictions {
	if len(meals) < minPredictionMeals {
		return DefaultPredictions
	}

	recent := meals[:min(recentMeals, len(meals))]
	avgProtein := mean(recent, domain.Protein)
	avgCarbs := mean(recent, domain.Carbs)

	p := Predictions{EnergyLevel: 5}
	if avgProtein > 30 && avgCarbs > 40 {
		p.EnergyLevel = 7
	}

	p.NextMealTiming = fmt.Sprintf("%.1f hours", averageGapHours(meals))

	switch {
	case avgProtein < 25:
		p.OptimalNextMeal = "High protein, moderate carbs"
	case avgCarbs < 30:
		p.OptimalNextMeal = "Balanced with complex carbs"
	default:
		p.OptimalNextMeal = "Light meal with vegetables"
	}

	if meals[0].Nutrition.Get(domain.Sugar) < 15 {
		p.SleepQuality = "Good - balanced macros"
	} else {
		p.SleepQuality = "May affect sleep - high sugar"
	}
	return p
}

func mean(meals []domain.MealRecord, n domain.Nutrient) float64 {
	if len(meals) == 0 {
		return 0
	}
	return sum(meals, n) / float64(len(meals))
}

// averageGapHours averages the gaps between consecutive meals, ignoring
// gaps of 12 hours or more (overnight and skipped days).
func averageGapHours(meals []domain.MealRecord) float64 {
	var total float64
	var n int
	for i := 0; i+1 < len(meals); i++ {
		gap := math.Abs(meals[i].Timestamp.Sub(meals[i+1].Timestamp).Hours())
		if gap < maxMealGapHours {
			total += gap
			n++
		}
	}
	if n == 0 {
		return fallbackGapHours
	}
	return total / float64(n)
}
