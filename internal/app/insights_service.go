// Package app holds the application services that orchestrate the domain
// ports and the analytics core.
package app

import (
	"context"
	"errors"
	"time"

	"nutrisnap/internal/domain"
	"nutrisnap/internal/insights"
	"nutrisnap/internal/logger"
)

var (
	// ErrMissingUser indicates that a request carried no user ID.
	ErrMissingUser = errors.New("userId is required")
)

// InsightsOptions bounds insight queries.
type InsightsOptions struct {
	DefaultWindowDays int
	MaxWindowDays     int
	FetchLimit        int
	FetchTimeout      time.Duration
}

// InsightsService computes insights over a user's recent meals.
type InsightsService struct {
	repo domain.MealRepository
	opts InsightsOptions
	log  *logger.Logger
}

// NewInsightsService creates an InsightsService backed by the given repository.
func NewInsightsService(repo domain.MealRepository, opts InsightsOptions, log *logger.Logger) *InsightsService {
	if opts.DefaultWindowDays <= 0 {
		opts.DefaultWindowDays = 7
	}
	if opts.MaxWindowDays < opts.DefaultWindowDays {
		opts.MaxWindowDays = opts.DefaultWindowDays
	}
	if opts.FetchLimit <= 0 {
		opts.FetchLimit = 100
	}
	return &InsightsService{repo: repo, opts: opts, log: log.With("service", "InsightsService")}
}

// GetInsights fetches the user's meals for the trailing window once and runs
// every analyzer over that snapshot. windowDays <= 0 selects the default.
func (s *InsightsService) GetInsights(ctx context.Context, userID string, windowDays int) (*insights.Report, error) {
	meals, err := s.fetch(ctx, userID, windowDays)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateMeals(meals); err != nil {
		s.log.Warn("rejecting meal snapshot", "user_id", userID, "error", err)
		return nil, err
	}
	report := insights.Analyze(meals)
	s.log.Debug("insights computed",
		"user_id", userID,
		"meals", len(meals),
		"intolerances", len(report.Intolerances),
		"gaps", len(report.NutritionalGaps),
	)
	return &report, nil
}

// ListRecent returns the raw meal history for the trailing window.
func (s *InsightsService) ListRecent(ctx context.Context, userID string, windowDays int) ([]domain.MealRecord, error) {
	return s.fetch(ctx, userID, windowDays)
}

func (s *InsightsService) fetch(ctx context.Context, userID string, windowDays int) ([]domain.MealRecord, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	windowDays = s.window(windowDays)

	if s.opts.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.FetchTimeout)
		defer cancel()
	}
	meals, err := s.repo.FetchRecent(ctx, userID, windowDays, s.opts.FetchLimit)
	if err != nil {
		s.log.Error("meal fetch failed", "user_id", userID, "window_days", windowDays, "error", err)
		return nil, domain.Upstream(domain.MealStore, err)
	}
	return meals, nil
}

func (s *InsightsService) window(days int) int {
	if days <= 0 {
		return s.opts.DefaultWindowDays
	}
	return min(days, s.opts.MaxWindowDays)
}
