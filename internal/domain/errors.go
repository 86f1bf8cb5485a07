package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMealNotFound indicates that the referenced meal does not exist for the user.
	ErrMealNotFound = errors.New("meal not found")
)

// InvalidRecordError reports a meal record that violates the collaborator
// contract, such as a non-numeric nutrient or an out-of-range feeling.
type InvalidRecordError struct {
	MealID string
	Field  string
	Reason string
}

func (e *InvalidRecordError) Error() string {
	if e.MealID == "" {
		return fmt.Sprintf("invalid record: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid record %s: %s: %s", e.MealID, e.Field, e.Reason)
}

// Collaborator names an external dependency of the analytics pipeline.
type Collaborator string

const (
	MealStore          Collaborator = "meal-store"
	ImageStorage       Collaborator = "image-store"
	FoodLabeling       Collaborator = "food-labeler"
	NutritionEstimates Collaborator = "nutrition-estimator"
)

// UpstreamUnavailableError wraps a failure of an external collaborator.
type UpstreamUnavailableError struct {
	Collaborator Collaborator
	Err          error
}

func (e *UpstreamUnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Collaborator, e.Err)
}

func (e *UpstreamUnavailableError) Unwrap() error {
	return e.Err
}

// Upstream wraps err as an UpstreamUnavailableError for c. A nil err, or an
// error that is already an InvalidRecordError or ErrMealNotFound, is returned
// unchanged.
func Upstream(c Collaborator, err error) error {
	if err == nil {
		return nil
	}
	var invalid *InvalidRecordError
	if errors.As(err, &invalid) || errors.Is(err, ErrMealNotFound) {
		return err
	}
	var up *UpstreamUnavailableError
	if errors.As(err, &up) {
		return err
	}
	return &UpstreamUnavailableError{Collaborator: c, Err: err}
}
