package app

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"nutrisnap/internal/catalog"
	"nutrisnap/internal/domain"
	"nutrisnap/internal/logger"
)

var (
	// ErrEmptyImage indicates that no image bytes were supplied.
	ErrEmptyImage = errors.New("image is required")
	// ErrInvalidImage indicates that the image was not valid base64.
	ErrInvalidImage = errors.New("image must be base64 encoded")
	// ErrInvalidFeeling indicates a feeling outside [1, 5].
	ErrInvalidFeeling = fmt.Errorf("feeling must be between %d and %d", domain.MinFeeling, domain.MaxFeeling)
	// ErrMissingMeal indicates that a feedback request carried no meal ID.
	ErrMissingMeal = errors.New("mealId is required")
)

// AnalyzedMeal is the result of analyzing a meal photo.
type AnalyzedMeal struct {
	MealID    string                `json:"mealId"`
	ImageURL  string                `json:"imageUrl"`
	Foods     []domain.DetectedFood `json:"foods"`
	Nutrition domain.Nutrition      `json:"nutrition"`
	Insights  []string              `json:"insights"`
}

// MealService encapsulates meal capture and feedback use cases.
type MealService struct {
	repo      domain.MealRepository
	images    domain.ImageStore
	labeler   domain.FoodLabeler
	estimator domain.NutritionEstimator
	timeout   time.Duration
	log       *logger.Logger

	now   func() time.Time
	newID func() (string, error)
}

// NewMealService creates a MealService wired to its collaborators. timeout
// bounds the upstream calls of a single analysis; zero means no bound.
func NewMealService(repo domain.MealRepository, images domain.ImageStore, labeler domain.FoodLabeler, estimator domain.NutritionEstimator, timeout time.Duration, log *logger.Logger) *MealService {
	return &MealService{
		repo:      repo,
		images:    images,
		labeler:   labeler,
		estimator: estimator,
		timeout:   timeout,
		log:       log.With("service", "MealService"),
		now:       time.Now,
		newID:     newMealID,
	}
}

// WithClock overrides the capture clock.
func (s *MealService) WithClock(now func() time.Time) *MealService {
	s.now = now
	return s
}

// newMealID returns a time-ordered UUID so meal IDs sort by capture time.
func newMealID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// AnalyzeMeal stores the photo, detects the foods in it, estimates their
// nutrition and persists an unrated meal record. image may be raw base64 or
// a data URI.
func (s *MealService) AnalyzeMeal(ctx context.Context, userID, image string) (*AnalyzedMeal, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	data, err := decodeImage(image)
	if err != nil {
		return nil, err
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	now := s.now()
	mealID, err := s.newID()
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("meals/%s/%s.jpg", url.PathEscape(userID), now.Format(time.RFC3339Nano))

	var (
		imageURL string
		labels   []domain.Label
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		loc, err := s.images.Put(gctx, key, data, "image/jpeg")
		if err != nil {
			return domain.Upstream(domain.ImageStorage, err)
		}
		imageURL = loc
		return nil
	})
	g.Go(func() error {
		l, err := s.labeler.DetectLabels(gctx, data)
		if err != nil {
			return domain.Upstream(domain.FoodLabeling, err)
		}
		labels = l
		return nil
	})
	if err := g.Wait(); err != nil {
		s.log.Error("meal capture failed", "user_id", userID, "error", err)
		return nil, err
	}

	foods := catalog.FoodsFromLabels(labels)
	names := make([]string, 0, len(foods))
	for _, f := range foods {
		names = append(names, f.Name)
	}
	est, err := s.estimator.Estimate(ctx, names)
	if err != nil {
		s.log.Error("nutrition estimate failed", "user_id", userID, "foods", names, "error", err)
		return nil, domain.Upstream(domain.NutritionEstimates, err)
	}

	meal := domain.MealRecord{
		UserID:         userID,
		MealID:         mealID,
		Timestamp:      now,
		ImageURL:       imageURL,
		ImageKey:       key,
		DetectedFoods:  foods,
		Nutrition:      est.Nutrition,
		Insights:       est.Insights,
		Micronutrients: est.Micronutrients,
		Symptoms:       []string{},
		CreatedAt:      now,
	}
	if meal.Nutrition == nil {
		meal.Nutrition = domain.Nutrition{}
	}
	if err := meal.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, meal); err != nil {
		s.log.Error("meal save failed", "user_id", userID, "meal_id", mealID, "error", err)
		return nil, domain.Upstream(domain.MealStore, err)
	}

	s.log.Info("meal analyzed", "user_id", userID, "meal_id", mealID, "foods", len(foods))
	return &AnalyzedMeal{
		MealID:    mealID,
		ImageURL:  imageURL,
		Foods:     foods,
		Nutrition: meal.Nutrition,
		Insights:  est.Insights,
	}, nil
}

// RecordFeeling validates and stores the user's feedback for one meal.
// Submitting again overwrites the previous feedback.
func (s *MealService) RecordFeeling(ctx context.Context, userID, mealID string, feeling int, symptoms []string) error {
	if userID == "" {
		return ErrMissingUser
	}
	if mealID == "" {
		return ErrMissingMeal
	}
	if feeling < domain.MinFeeling || feeling > domain.MaxFeeling {
		return ErrInvalidFeeling
	}
	if symptoms == nil {
		symptoms = []string{}
	}
	if err := s.repo.RecordFeeling(ctx, userID, mealID, feeling, symptoms, s.now()); err != nil {
		if errors.Is(err, domain.ErrMealNotFound) {
			return err
		}
		s.log.Error("feeling update failed", "user_id", userID, "meal_id", mealID, "error", err)
		return domain.Upstream(domain.MealStore, err)
	}
	return nil
}

func decodeImage(image string) ([]byte, error) {
	if i := strings.IndexByte(image, ','); i >= 0 {
		image = image[i+1:]
	}
	image = strings.TrimSpace(image)
	if image == "" {
		return nil, ErrEmptyImage
	}
	data, err := base64.StdEncoding.DecodeString(image)
	if err != nil {
		return nil, ErrInvalidImage
	}
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	return data, nil
}
