// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"time"
)

// Category classifies a detected food.
type Category string

const (
	CategoryProtein    Category = "protein"
	CategoryGrains     Category = "grains"
	CategoryVegetables Category = "vegetables"
	CategoryFruits     Category = "fruits"
	CategoryDairy      Category = "dairy"
	CategoryOther      Category = "other"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryProtein, CategoryGrains, CategoryVegetables, CategoryFruits, CategoryDairy, CategoryOther:
		return true
	}
	return false
}

// DetectedFood is a food label proposed by image labeling, already filtered
// to food-relevant labels.
type DetectedFood struct {
	Name       string   `json:"name"`
	Confidence float64  `json:"confidence"`
	Category   Category `json:"category"`
}

// MealRecord is one analyzed meal. Feeling and Symptoms are set together by
// a feedback update after creation; a nil Feeling marks the meal as unrated.
type MealRecord struct {
	UserID         string         `json:"userId"`
	MealID         string         `json:"mealId"`
	Timestamp      time.Time      `json:"timestamp"`
	ImageURL       string         `json:"imageUrl,omitempty"`
	ImageKey       string         `json:"imageKey,omitempty"`
	DetectedFoods  []DetectedFood `json:"detectedFoods"`
	Nutrition      Nutrition      `json:"nutrition"`
	Insights       []string       `json:"insights,omitempty"`
	Micronutrients []string       `json:"micronutrients,omitempty"`
	Feeling        *int           `json:"feeling"`
	Symptoms       []string       `json:"symptoms"`
	FeelingAt      *time.Time     `json:"feelingAt,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// Rated reports whether feeling feedback has been submitted for the meal.
func (m MealRecord) Rated() bool {
	return m.Feeling != nil
}

// Day returns the calendar date of the capture time in its recorded offset.
func (m MealRecord) Day() string {
	return m.Timestamp.Format("2006-01-02")
}

// Feeling bounds.
const (
	MinFeeling = 1
	MaxFeeling = 5
)

// MealRepository is the port for meal record persistence.
type MealRepository interface {
	Save(ctx context.Context, meal MealRecord) error
	// FetchRecent returns the user's meals captured within the trailing
	// windowDays, most recent first, at most limit records.
	FetchRecent(ctx context.Context, userID string, windowDays, limit int) ([]MealRecord, error)
	// RecordFeeling overwrites the feedback fields of one meal.
	RecordFeeling(ctx context.Context, userID, mealID string, feeling int, symptoms []string, at time.Time) error
}
