package insights

import (
	"math"
	"strconv"

	"nutrisnap/internal/catalog"
	"nutrisnap/internal/domain"
)

// Trend and digestive-health labels.
const (
	Tracking       = "tracking"
	Increasing     = "increasing"
	Stable         = "stable"
	Excellent      = "excellent"
	Improving      = "improving"
	NeedsAttention = "needs attention"
)

// WeeklyTrends summarizes a meal history.
type WeeklyTrends struct {
	AvgCalories     int     `json:"avgCalories"`
	ProteinTrend    string  `json:"proteinTrend"`
	MoodScore       float64 `json:"moodScore"`
	DigestiveHealth string  `json:"digestiveHealth"`
}

const defaultMood = 7.0

// SummarizeTrends computes average calories, the protein trajectory, the mean
// mood and a digestive-health class. meals must be ordered most recent first.
func SummarizeTrends(meals []domain.MealRecord) WeeklyTrends {
	if len(meals) == 0 {
		return WeeklyTrends{
			AvgCalories:     0,
			ProteinTrend:    Tracking,
			MoodScore:       defaultMood,
			DigestiveHealth: Tracking,
		}
	}

	var calories float64
	for _, m := range meals {
		calories += m.Nutrition.Get(domain.Calories)
	}

	return WeeklyTrends{
		AvgCalories:     int(math.Floor(calories / float64(len(meals)))),
		ProteinTrend:    proteinTrend(meals),
		MoodScore:       moodScore(meals),
		DigestiveHealth: digestiveHealth(meals),
	}
}

// proteinTrend compares the newer half of the history with the older half.
// Ties are stable.
func proteinTrend(meals []domain.MealRecord) string {
	if len(meals) < 4 {
		return Stable
	}
	half := len(meals) / 2
	later := sum(meals[:half], domain.Protein)
	earlier := sum(meals[half:], domain.Protein)
	if later > earlier {
		return Increasing
	}
	return Stable
}

func moodScore(meals []domain.MealRecord) float64 {
	var total, n int
	for _, m := range meals {
		if m.Rated() {
			total += *m.Feeling
			n++
		}
	}
	if n == 0 {
		return defaultMood
	}
	return roundTenths(float64(total) / float64(n))
}

// roundTenths rounds v to one decimal place using the shortest decimal
// rendering, so exact binary ties go to the even digit.
func roundTenths(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	if err != nil {
		return v
	}
	return r
}

func digestiveHealth(meals []domain.MealRecord) string {
	issues := 0
	for _, m := range meals {
		for _, s := range m.Symptoms {
			if catalog.IsDigestive(s) {
				issues++
			}
		}
	}
	switch {
	case issues == 0:
		return Excellent
	case issues < 3:
		return Improving
	default:
		return NeedsAttention
	}
}

func sum(meals []domain.MealRecord, n domain.Nutrient) float64 {
	var total float64
	for _, m := range meals {
		total += m.Nutrition.Get(n)
	}
	return total
}
