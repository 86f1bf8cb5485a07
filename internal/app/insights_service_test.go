package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"nutrisnap/internal/app"
	"nutrisnap/internal/domain"
	"nutrisnap/internal/logger"
)

func newInsightsService(repo domain.MealRepository) *app.InsightsService {
	return app.NewInsightsService(repo, app.InsightsOptions{
		DefaultWindowDays: 7,
		MaxWindowDays:     30,
		FetchLimit:        100,
		FetchTimeout:      time.Second,
	}, logger.Nop())
}

func ratedMeal(id string, hoursAgo int, feeling int, foods ...string) domain.MealRecord {
	m := domain.MealRecord{
		UserID:    "u1",
		MealID:    id,
		Timestamp: time.Date(2026, 2, 8, 20, 0, 0, 0, time.UTC).Add(-time.Duration(hoursAgo) * time.Hour),
		Nutrition: domain.Nutrition{domain.Protein: 20},
		Feeling:   &feeling,
	}
	for _, f := range foods {
		m.DetectedFoods = append(m.DetectedFoods, domain.DetectedFood{Name: f, Confidence: 90, Category: domain.CategoryOther})
	}
	return m
}

func TestGetInsights_FetchesOnce(t *testing.T) {
	calls := 0
	repo := &mockMealRepo{
		fetchFn: func(ctx context.Context, userID string, windowDays, limit int) ([]domain.MealRecord, error) {
			calls++
			if userID != "u1" || windowDays != 7 || limit != 100 {
				t.Fatalf("unexpected fetch args %q %d %d", userID, windowDays, limit)
			}
			if _, ok := ctx.Deadline(); !ok {
				t.Fatal("expected fetch to carry a deadline")
			}
			return []domain.MealRecord{
				ratedMeal("m1", 0, 1, "Milk"),
				ratedMeal("m2", 4, 2, "Milk"),
				ratedMeal("m3", 8, 1, "Milk"),
			}, nil
		},
	}
	report, err := newInsightsService(repo).GetInsights(context.Background(), "u1", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single fetch, got %d", calls)
	}
	if len(report.Intolerances) != 1 || report.Intolerances[0].Food != "Milk" {
		t.Fatalf("expected a Milk finding, got %+v", report.Intolerances)
	}
	if report.WeeklyTrends.MoodScore != 1.3 {
		t.Fatalf("expected mood 1.3, got %v", report.WeeklyTrends.MoodScore)
	}
	if report.Predictions.NextMealTiming != "4.0 hours" {
		t.Fatalf("expected 4.0 hours, got %q", report.Predictions.NextMealTiming)
	}
}

func TestGetInsights_ClampsWindow(t *testing.T) {
	var got int
	repo := &mockMealRepo{
		fetchFn: func(_ context.Context, _ string, windowDays, _ int) ([]domain.MealRecord, error) {
			got = windowDays
			return nil, nil
		},
	}
	svc := newInsightsService(repo)
	if _, err := svc.GetInsights(context.Background(), "u1", 365); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 30 {
		t.Fatalf("expected window clamped to 30, got %d", got)
	}
	if _, err := svc.GetInsights(context.Background(), "u1", 14); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 14 {
		t.Fatalf("expected window 14, got %d", got)
	}
}

func TestGetInsights_MissingUser(t *testing.T) {
	_, err := newInsightsService(&mockMealRepo{}).GetInsights(context.Background(), "", 7)
	if !errors.Is(err, app.ErrMissingUser) {
		t.Fatalf("expected ErrMissingUser, got %v", err)
	}
}

func TestGetInsights_UpstreamFailure(t *testing.T) {
	cause := errors.New("throttled")
	repo := &mockMealRepo{
		fetchFn: func(context.Context, string, int, int) ([]domain.MealRecord, error) {
			return nil, cause
		},
	}
	report, err := newInsightsService(repo).GetInsights(context.Background(), "u1", 7)
	if report != nil {
		t.Fatal("expected no partial report")
	}
	var up *domain.UpstreamUnavailableError
	if !errors.As(err, &up) || up.Collaborator != domain.MealStore || !errors.Is(err, cause) {
		t.Fatalf("expected meal-store upstream error, got %v", err)
	}
}

func TestGetInsights_InvalidRecord(t *testing.T) {
	bad := ratedMeal("m2", 4, 9, "Rice")
	repo := &mockMealRepo{
		fetchFn: func(context.Context, string, int, int) ([]domain.MealRecord, error) {
			return []domain.MealRecord{ratedMeal("m1", 0, 3), bad}, nil
		},
	}
	_, err := newInsightsService(repo).GetInsights(context.Background(), "u1", 7)
	var invalid *domain.InvalidRecordError
	if !errors.As(err, &invalid) || invalid.MealID != "m2" || invalid.Field != "feeling" {
		t.Fatalf("expected invalid feeling on m2, got %v", err)
	}
}

func TestListRecent(t *testing.T) {
	repo := &mockMealRepo{
		fetchFn: func(context.Context, string, int, int) ([]domain.MealRecord, error) {
			return []domain.MealRecord{ratedMeal("m1", 0, 3)}, nil
		},
	}
	meals, err := newInsightsService(repo).ListRecent(context.Background(), "u1", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(meals) != 1 || meals[0].MealID != "m1" {
		t.Fatalf("unexpected meals %+v", meals)
	}
}
