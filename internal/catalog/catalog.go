// Package catalog holds the static reference data used by the analytics:
// daily nutrient requirements, display names, recommendations, symptom
// classes and the food-label tables used when labeling meal photos.
//
// Every lookup has an explicit fallback for keys without a special case.
package catalog

import (
	"fmt"
	"strings"

	"nutrisnap/internal/domain"
)

// Requirement is a daily target for one tracked nutrient.
type Requirement struct {
	Nutrient domain.Nutrient
	Daily    float64
}

// Requirements lists the tracked nutrients in canonical report order.
var Requirements = []Requirement{
	{domain.VitaminC, 90},
	{domain.VitaminD, 20},
	{domain.Calcium, 1000},
	{domain.Iron, 18},
	{domain.Omega3, 1.6},
	{domain.Fiber, 25},
	{domain.Protein, 50},
	{domain.Potassium, 3500},
}

// DailyRequirement returns the daily target for n and whether it is tracked.
func DailyRequirement(n domain.Nutrient) (float64, bool) {
	for _, r := range Requirements {
		if r.Nutrient == n {
			return r.Daily, true
		}
	}
	return 0, false
}

type nutrientInfo struct {
	name           string
	recommendation string
	foods          []string
}

var nutrients = map[domain.Nutrient]nutrientInfo{
	domain.VitaminC: {"Vitamin C", "Add citrus fruits or bell peppers", []string{"Oranges", "Strawberries", "Bell Peppers"}},
	domain.VitaminD: {name: "Vitamin D"},
	domain.Omega3:   {"Omega-3", "Include fatty fish or walnuts", []string{"Salmon", "Walnuts", "Chia Seeds"}},
	domain.Fiber:    {"Fiber", "Increase whole grains and vegetables", []string{"Oats", "Lentils", "Broccoli"}},
}

const defaultRecommendation = "Diversify your diet"

var defaultFoods = []string{"Whole Foods", "Vegetables"}

// DisplayName returns the human-readable name of n. Nutrients without a
// special case are capitalized.
func DisplayName(n domain.Nutrient) string {
	if info, ok := nutrients[n]; ok && info.name != "" {
		return info.name
	}
	s := string(n)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Recommendation returns dietary advice for a deficiency in n.
func Recommendation(n domain.Nutrient) string {
	if info, ok := nutrients[n]; ok && info.recommendation != "" {
		return info.recommendation
	}
	return defaultRecommendation
}

// TargetFoods returns foods high in n. The result is a fresh slice.
func TargetFoods(n domain.Nutrient) []string {
	src := defaultFoods
	if info, ok := nutrients[n]; ok && len(info.foods) > 0 {
		src = info.foods
	}
	return append([]string(nil), src...)
}

// DigestiveSymptoms is the closed set of symptom labels counted toward
// digestive health.
var DigestiveSymptoms = map[string]bool{
	"Bloating":     true,
	"Gas":          true,
	"Nausea":       true,
	"Stomach Pain": true,
}

// IsDigestive reports whether symptom belongs to the digestive class.
func IsDigestive(symptom string) bool {
	return DigestiveSymptoms[symptom]
}

type intoleranceRule struct {
	keywords []string
	advice   string
}

var intoleranceRules = []intoleranceRule{
	{[]string{"dairy", "milk"}, "Try lactose-free alternatives"},
	{[]string{"wheat", "bread"}, "Try gluten-free options"},
}

// IntoleranceAdvice returns the recommendation for a suspected intolerance
// to food, matched case-insensitively by substring.
func IntoleranceAdvice(food string) string {
	f := strings.ToLower(food)
	for _, r := range intoleranceRules {
		if containsAny(f, r.keywords) {
			return r.advice
		}
	}
	return fmt.Sprintf("Consider eliminating %s for 2 weeks", food)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
