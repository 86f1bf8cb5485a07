package dynamo

import (
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"nutrisnap/internal/domain"
)

type foodItem struct {
	Name       string  `dynamodbav:"name"`
	Confidence float64 `dynamodbav:"confidence"`
	Category   string  `dynamodbav:"category"`
}

type mealItem struct {
	UserID           string         `dynamodbav:"user_id"`
	MealID           string         `dynamodbav:"meal_id"`
	Timestamp        string         `dynamodbav:"timestamp"`
	ImageURL         string         `dynamodbav:"image_url,omitempty"`
	S3Key            string         `dynamodbav:"s3_key,omitempty"`
	DetectedFoods    []foodItem     `dynamodbav:"detected_foods"`
	Nutrition        map[string]any `dynamodbav:"nutrition"`
	Insights         []string       `dynamodbav:"insights"`
	Micronutrients   []string       `dynamodbav:"micronutrients"`
	Feeling          *int           `dynamodbav:"feeling"`
	Symptoms         []string       `dynamodbav:"symptoms"`
	FeelingTimestamp string         `dynamodbav:"feeling_timestamp,omitempty"`
	CreatedAt        string         `dynamodbav:"created_at"`
}

// naiveLayout matches timestamps written without a UTC offset.
const naiveLayout = "2006-01-02T15:04:05.999999999"

func toItem(m domain.MealRecord) mealItem {
	it := mealItem{
		UserID:         m.UserID,
		MealID:         m.MealID,
		Timestamp:      m.Timestamp.Format(time.RFC3339Nano),
		ImageURL:       m.ImageURL,
		S3Key:          m.ImageKey,
		DetectedFoods:  make([]foodItem, 0, len(m.DetectedFoods)),
		Nutrition:      make(map[string]any, len(m.Nutrition)),
		Insights:       nonNil(m.Insights),
		Micronutrients: nonNil(m.Micronutrients),
		Feeling:        m.Feeling,
		Symptoms:       nonNil(m.Symptoms),
		CreatedAt:      m.CreatedAt.Format(time.RFC3339Nano),
	}
	for _, f := range m.DetectedFoods {
		it.DetectedFoods = append(it.DetectedFoods, foodItem{Name: f.Name, Confidence: f.Confidence, Category: string(f.Category)})
	}
	for k, v := range m.Nutrition {
		it.Nutrition[string(k)] = v
	}
	if m.FeelingAt != nil {
		it.FeelingTimestamp = m.FeelingAt.Format(time.RFC3339Nano)
	}
	return it
}

// decodeItem converts a stored item into a MealRecord. Numbers are decoded
// as attributevalue.Number and converted by domain.ParseNutrition.
func decodeItem(av map[string]types.AttributeValue) (domain.MealRecord, error) {
	var it mealItem
	mealID := ""
	if s, ok := av["meal_id"].(*types.AttributeValueMemberS); ok {
		mealID = s.Value
	}
	invalid := func(field string, err error) error {
		return &domain.InvalidRecordError{MealID: mealID, Field: field, Reason: err.Error()}
	}

	if err := attributevalue.UnmarshalMapWithOptions(av, &it, func(o *attributevalue.DecoderOptions) {
		o.UseNumber = true
	}); err != nil {
		return domain.MealRecord{}, invalid("item", err)
	}

	ts, err := parseTime(it.Timestamp)
	if err != nil {
		return domain.MealRecord{}, invalid("timestamp", err)
	}
	n, err := domain.ParseNutrition(it.Nutrition)
	if err != nil {
		var ire *domain.InvalidRecordError
		if errors.As(err, &ire) {
			ire.MealID = mealID
		}
		return domain.MealRecord{}, err
	}

	m := domain.MealRecord{
		UserID:         it.UserID,
		MealID:         it.MealID,
		Timestamp:      ts,
		ImageURL:       it.ImageURL,
		ImageKey:       it.S3Key,
		DetectedFoods:  make([]domain.DetectedFood, 0, len(it.DetectedFoods)),
		Nutrition:      n,
		Insights:       it.Insights,
		Micronutrients: it.Micronutrients,
		Feeling:        it.Feeling,
		Symptoms:       nonNil(it.Symptoms),
	}
	for _, f := range it.DetectedFoods {
		m.DetectedFoods = append(m.DetectedFoods, domain.DetectedFood{Name: f.Name, Confidence: f.Confidence, Category: domain.Category(f.Category)})
	}
	if it.CreatedAt != "" {
		if m.CreatedAt, err = parseTime(it.CreatedAt); err != nil {
			return domain.MealRecord{}, invalid("createdAt", err)
		}
	}
	if it.FeelingTimestamp != "" {
		at, err := parseTime(it.FeelingTimestamp)
		if err != nil {
			return domain.MealRecord{}, invalid("feelingAt", err)
		}
		m.FeelingAt = &at
	}
	return m, nil
}

// parseTime accepts RFC 3339 and offset-less ISO timestamps, reading the
// latter as UTC.
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(naiveLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized time %q", s)
	}
	return t, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
