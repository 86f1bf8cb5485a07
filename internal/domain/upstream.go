package domain

import "context"

// Label is a raw label proposed by the image-labeling service.
type Label struct {
	Name       string
	Confidence float64
}

// Estimate is the nutrition-estimation service's view of a meal.
type Estimate struct {
	Nutrition      Nutrition
	Insights       []string
	Micronutrients []string
}

// ImageStore is the port for meal photo storage.
type ImageStore interface {
	// Put stores the image under key and returns its public URL.
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// FoodLabeler is the port for the image-labeling service.
type FoodLabeler interface {
	DetectLabels(ctx context.Context, image []byte) ([]Label, error)
}

// NutritionEstimator is the port for the generative nutrition estimator.
type NutritionEstimator interface {
	Estimate(ctx context.Context, foods []string) (*Estimate, error)
}
