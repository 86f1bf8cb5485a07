package insights_test

import (
	"fmt"
	"time"

	"nutrisnap/internal/domain"
)

var base = time.Date(2026, 2, 8, 20, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

// meal builds a record captured hoursAgo hours before base.
func meal(hoursAgo float64, opts ...func(*domain.MealRecord)) domain.MealRecord {
	m := domain.MealRecord{
		UserID:    "u1",
		MealID:    fmt.Sprintf("m-%v", hoursAgo),
		Timestamp: base.Add(-time.Duration(hoursAgo * float64(time.Hour))),
		Nutrition: domain.Nutrition{},
	}
	for _, o := range opts {
		o(&m)
	}
	return m
}

func foods(names ...string) func(*domain.MealRecord) {
	return func(m *domain.MealRecord) {
		for _, n := range names {
			m.DetectedFoods = append(m.DetectedFoods, domain.DetectedFood{Name: n, Confidence: 90, Category: domain.CategoryOther})
		}
	}
}

func feeling(v int, symptoms ...string) func(*domain.MealRecord) {
	return func(m *domain.MealRecord) {
		m.Feeling = intPtr(v)
		m.Symptoms = symptoms
	}
}

func symptoms(s ...string) func(*domain.MealRecord) {
	return func(m *domain.MealRecord) { m.Symptoms = s }
}

func nutrient(n domain.Nutrient, v float64) func(*domain.MealRecord) {
	return func(m *domain.MealRecord) { m.Nutrition[n] = v }
}

// everyDay returns the daily requirement of every tracked nutrient except the
// ones listed, so a test can isolate a single gap.
func everyDay(except ...domain.Nutrient) func(*domain.MealRecord) {
	skip := make(map[domain.Nutrient]bool)
	for _, n := range except {
		skip[n] = true
	}
	return func(m *domain.MealRecord) {
		for n, v := range map[domain.Nutrient]float64{
			domain.VitaminC: 90, domain.VitaminD: 20, domain.Calcium: 1000, domain.Iron: 18,
			domain.Omega3: 1.6, domain.Fiber: 25, domain.Protein: 50, domain.Potassium: 3500,
		} {
			if !skip[n] {
				m.Nutrition[n] = v
			}
		}
	}
}
