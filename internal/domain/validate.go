package domain

import (
	"fmt"
	"maps"
	"math"
	"slices"
)

// Validate checks a meal record against the collaborator contract. Missing
// optional fields are fine; present-but-malformed ones are not.
func (m MealRecord) Validate() error {
	invalid := func(field, reason string) error {
		return &InvalidRecordError{MealID: m.MealID, Field: field, Reason: reason}
	}

	if m.Timestamp.IsZero() {
		return invalid("timestamp", "missing")
	}
	if m.Feeling != nil && (*m.Feeling < MinFeeling || *m.Feeling > MaxFeeling) {
		return invalid("feeling", fmt.Sprintf("%d not in [%d, %d]", *m.Feeling, MinFeeling, MaxFeeling))
	}
	for i, f := range m.DetectedFoods {
		field := fmt.Sprintf("detectedFoods[%d]", i)
		if f.Name == "" {
			return invalid(field+".name", "empty")
		}
		if math.IsNaN(f.Confidence) || f.Confidence < 0 || f.Confidence > 100 {
			return invalid(field+".confidence", fmt.Sprintf("%v not in [0, 100]", f.Confidence))
		}
		if !f.Category.Valid() {
			return invalid(field+".category", fmt.Sprintf("unknown category %q", f.Category))
		}
	}
	for _, k := range slices.Sorted(maps.Keys(m.Nutrition)) {
		v := m.Nutrition[k]
		if !k.Valid() {
			return invalid("nutrition."+string(k), "unknown nutrient")
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return invalid("nutrition."+string(k), fmt.Sprintf("amount %v out of range", v))
		}
	}
	return nil
}

// ValidateMeals validates every record and returns the first violation.
func ValidateMeals(meals []MealRecord) error {
	for _, m := range meals {
		if err := m.Validate(); err != nil {
			return err
		}
	}
	return nil
}
