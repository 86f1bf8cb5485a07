package catalog

import (
	"math"
	"strings"

	"nutrisnap/internal/domain"
)

var foodKeywords = []string{
	"food", "meal", "dish", "chicken", "beef", "fish", "rice", "pasta",
	"bread", "vegetable", "fruit", "salad",
}

// Checked in order; the first match wins.
var categoryRules = []struct {
	category domain.Category
	keywords []string
}{
	{domain.CategoryProtein, []string{"chicken", "beef", "fish", "egg"}},
	{domain.CategoryGrains, []string{"rice", "pasta", "bread"}},
	{domain.CategoryVegetables, []string{"vegetable", "broccoli", "salad"}},
	{domain.CategoryFruits, []string{"fruit", "apple", "banana"}},
	{domain.CategoryDairy, []string{"milk", "cheese", "yogurt"}},
}

// IsFoodLabel reports whether an image label names something edible.
func IsFoodLabel(label string) bool {
	return containsAny(strings.ToLower(label), foodKeywords)
}

// Categorize assigns a food name to a category, falling back to "other".
func Categorize(name string) domain.Category {
	n := strings.ToLower(name)
	for _, r := range categoryRules {
		if containsAny(n, r.keywords) {
			return r.category
		}
	}
	return domain.CategoryOther
}

// FoodsFromLabels keeps the food-related labels, in order, with confidence
// rounded to two decimals.
func FoodsFromLabels(labels []domain.Label) []domain.DetectedFood {
	out := make([]domain.DetectedFood, 0, len(labels))
	for _, l := range labels {
		if !IsFoodLabel(l.Name) {
			continue
		}
		out = append(out, domain.DetectedFood{
			Name:       l.Name,
			Confidence: math.Round(l.Confidence*100) / 100,
			Category:   Categorize(l.Name),
		})
	}
	return out
}
