// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"nutrisnap/internal/domain"
)

// DB implements an in-memory meal store.
type DB struct {
	mu    sync.Mutex
	meals map[string][]domain.MealRecord // keyed by user ID
	now   func() time.Time
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		meals: make(map[string][]domain.MealRecord),
		now:   time.Now,
	}
}

// WithClock overrides the clock used to evaluate fetch windows.
func (db *DB) WithClock(now func() time.Time) *DB {
	db.now = now
	return db
}

// Ensure interfaces are met.
var _ domain.MealRepository = (*DB)(nil)

// Save stores a meal. Saving an existing meal ID replaces the record.
func (db *DB) Save(ctx context.Context, meal domain.MealRecord) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	meal = clone(meal)
	list := db.meals[meal.UserID]
	for i := range list {
		if list[i].MealID == meal.MealID {
			list[i] = meal
			return nil
		}
	}
	db.meals[meal.UserID] = append(list, meal)
	return nil
}

// FetchRecent lists the user's meals captured within the trailing window,
// most recent first.
func (db *DB) FetchRecent(ctx context.Context, userID string, windowDays, limit int) ([]domain.MealRecord, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	cutoff := db.now().Add(-time.Duration(windowDays) * 24 * time.Hour)
	result := make([]domain.MealRecord, 0, len(db.meals[userID]))
	for _, m := range db.meals[userID] {
		if !m.Timestamp.Before(cutoff) {
			result = append(result, clone(m))
		}
	}

	// sort desc
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.After(result[j].Timestamp)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// RecordFeeling overwrites the feedback fields of one meal.
func (db *DB) RecordFeeling(ctx context.Context, userID, mealID string, feeling int, symptoms []string, at time.Time) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	list := db.meals[userID]
	for i := range list {
		if list[i].MealID != mealID {
			continue
		}
		f := feeling
		ts := at
		list[i].Feeling = &f
		list[i].Symptoms = slices.Clone(symptoms)
		list[i].FeelingAt = &ts
		return nil
	}
	return domain.ErrMealNotFound
}

// clone copies the record's slices, map and pointers so callers never share
// state with the store.
func clone(m domain.MealRecord) domain.MealRecord {
	m.DetectedFoods = slices.Clone(m.DetectedFoods)
	m.Insights = slices.Clone(m.Insights)
	m.Micronutrients = slices.Clone(m.Micronutrients)
	m.Symptoms = slices.Clone(m.Symptoms)
	m.Nutrition = maps.Clone(m.Nutrition)
	if m.Feeling != nil {
		f := *m.Feeling
		m.Feeling = &f
	}
	if m.FeelingAt != nil {
		t := *m.FeelingAt
		m.FeelingAt = &t
	}
	return m
}
