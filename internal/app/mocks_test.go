package app_test

import (
	"context"
	"time"

	"nutrisnap/internal/domain"
)

type mockMealRepo struct {
	saveFn    func(ctx context.Context, meal domain.MealRecord) error
	fetchFn   func(ctx context.Context, userID string, windowDays, limit int) ([]domain.MealRecord, error)
	feelingFn func(ctx context.Context, userID, mealID string, feeling int, symptoms []string, at time.Time) error
}

func (m *mockMealRepo) Save(ctx context.Context, meal domain.MealRecord) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, meal)
	}
	return nil
}

func (m *mockMealRepo) FetchRecent(ctx context.Context, userID string, windowDays, limit int) ([]domain.MealRecord, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx, userID, windowDays, limit)
	}
	return nil, nil
}

func (m *mockMealRepo) RecordFeeling(ctx context.Context, userID, mealID string, feeling int, symptoms []string, at time.Time) error {
	if m.feelingFn != nil {
		return m.feelingFn(ctx, userID, mealID, feeling, symptoms, at)
	}
	return nil
}

type mockImageStore struct {
	putFn func(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

func (m *mockImageStore) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	if m.putFn != nil {
		return m.putFn(ctx, key, body, contentType)
	}
	return "https://images.example/" + key, nil
}

type mockLabeler struct {
	detectFn func(ctx context.Context, image []byte) ([]domain.Label, error)
}

func (m *mockLabeler) DetectLabels(ctx context.Context, image []byte) ([]domain.Label, error) {
	if m.detectFn != nil {
		return m.detectFn(ctx, image)
	}
	return []domain.Label{{Name: "Chicken", Confidence: 97.5}, {Name: "Plate", Confidence: 99}}, nil
}

type mockEstimator struct {
	estimateFn func(ctx context.Context, foods []string) (*domain.Estimate, error)
}

func (m *mockEstimator) Estimate(ctx context.Context, foods []string) (*domain.Estimate, error) {
	if m.estimateFn != nil {
		return m.estimateFn(ctx, foods)
	}
	return &domain.Estimate{
		Nutrition: domain.Nutrition{domain.Calories: 520, domain.Protein: 42},
		Insights:  []string{"Good protein"},
	}, nil
}
