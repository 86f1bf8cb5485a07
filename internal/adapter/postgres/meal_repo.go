package postgres

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"nutrisnap/internal/domain"
)

var _ domain.MealRepository = (*DB)(nil)

const mealColumns = "meal_id, captured_at, utc_offset, image_url, image_key, detected_foods, nutrition, insights, micronutrients, feeling, symptoms, feeling_at, created_at"

// Save upserts a meal record.
func (d *DB) Save(ctx context.Context, m domain.MealRecord) error {
	foods, err := json.Marshal(nonNil(m.DetectedFoods))
	if err != nil {
		return err
	}
	if m.Nutrition == nil {
		m.Nutrition = domain.Nutrition{}
	}
	nutrition, err := json.Marshal(m.Nutrition)
	if err != nil {
		return err
	}
	insights, err := json.Marshal(nonNil(m.Insights))
	if err != nil {
		return err
	}
	micros, err := json.Marshal(nonNil(m.Micronutrients))
	if err != nil {
		return err
	}
	symptoms, err := json.Marshal(nonNil(m.Symptoms))
	if err != nil {
		return err
	}
	var feeling sql.NullInt64
	if m.Feeling != nil {
		feeling = sql.NullInt64{Int64: int64(*m.Feeling), Valid: true}
	}
	var feelingAt sql.NullTime
	if m.FeelingAt != nil {
		feelingAt = sql.NullTime{Time: m.FeelingAt.UTC(), Valid: true}
	}
	_, offset := m.Timestamp.Zone()

	_, err = d.sql.ExecContext(ctx, `
		INSERT INTO meals(user_id, `+mealColumns+`)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (user_id, meal_id) DO UPDATE SET
			captured_at=EXCLUDED.captured_at, utc_offset=EXCLUDED.utc_offset,
			image_url=EXCLUDED.image_url, image_key=EXCLUDED.image_key,
			detected_foods=EXCLUDED.detected_foods, nutrition=EXCLUDED.nutrition,
			insights=EXCLUDED.insights, micronutrients=EXCLUDED.micronutrients,
			feeling=EXCLUDED.feeling, symptoms=EXCLUDED.symptoms, feeling_at=EXCLUDED.feeling_at;`,
		m.UserID, m.MealID, m.Timestamp.UTC(), offset, m.ImageURL, m.ImageKey,
		string(foods), string(nutrition), string(insights), string(micros), feeling, string(symptoms), feelingAt, m.CreatedAt.UTC(),
	)
	return err
}

// FetchRecent returns the user's meals captured within the trailing window,
// most recent first.
func (d *DB) FetchRecent(ctx context.Context, userID string, windowDays, limit int) ([]domain.MealRecord, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT "+mealColumns+" FROM meals WHERE user_id=$1 AND captured_at >= now() - make_interval(days => $2) ORDER BY captured_at DESC LIMIT $3;",
		userID, windowDays, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	out := make([]domain.MealRecord, 0, limit)
	for rows.Next() {
		var r mealRow
		if err := rows.Scan(&r.mealID, &r.capturedAt, &r.utcOffset, &r.imageURL, &r.imageKey,
			&r.foods, &r.nutrition, &r.insights, &r.micros, &r.feeling, &r.symptoms, &r.feelingAt, &r.createdAt); err != nil {
			return nil, err
		}
		m, err := r.record(userID)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// RecordFeeling overwrites the feedback fields of one meal.
func (d *DB) RecordFeeling(ctx context.Context, userID, mealID string, feeling int, symptoms []string, at time.Time) error {
	b, err := json.Marshal(nonNil(symptoms))
	if err != nil {
		return err
	}
	res, err := d.sql.ExecContext(ctx,
		"UPDATE meals SET feeling=$1, symptoms=$2, feeling_at=$3 WHERE user_id=$4 AND meal_id=$5;",
		feeling, string(b), at.UTC(), userID, mealID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrMealNotFound
	}
	return nil
}

type mealRow struct {
	mealID     string
	capturedAt time.Time
	utcOffset  int
	imageURL   string
	imageKey   string
	foods      []byte
	nutrition  []byte
	insights   []byte
	micros     []byte
	feeling    sql.NullInt64
	symptoms   []byte
	feelingAt  sql.NullTime
	createdAt  time.Time
}

// record decodes the JSONB columns. Nutrient values go through
// domain.ParseNutrition so a malformed row surfaces as an InvalidRecordError.
func (r mealRow) record(userID string) (domain.MealRecord, error) {
	m := domain.MealRecord{
		UserID:    userID,
		MealID:    r.mealID,
		Timestamp: r.capturedAt.In(time.FixedZone("", r.utcOffset)),
		ImageURL:  r.imageURL,
		ImageKey:  r.imageKey,
		CreatedAt: r.createdAt,
	}
	invalid := func(field string, err error) error {
		return &domain.InvalidRecordError{MealID: r.mealID, Field: field, Reason: err.Error()}
	}
	if err := json.Unmarshal(r.foods, &m.DetectedFoods); err != nil {
		return m, invalid("detectedFoods", err)
	}
	if err := json.Unmarshal(r.insights, &m.Insights); err != nil {
		return m, invalid("insights", err)
	}
	if err := json.Unmarshal(r.micros, &m.Micronutrients); err != nil {
		return m, invalid("micronutrients", err)
	}
	if err := json.Unmarshal(r.symptoms, &m.Symptoms); err != nil {
		return m, invalid("symptoms", err)
	}

	var raw map[string]any
	dec := json.NewDecoder(bytes.NewReader(r.nutrition))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return m, invalid("nutrition", err)
	}
	n, err := domain.ParseNutrition(raw)
	if err != nil {
		var ire *domain.InvalidRecordError
		if errors.As(err, &ire) {
			ire.MealID = r.mealID
		}
		return m, err
	}
	m.Nutrition = n

	if r.feeling.Valid {
		f := int(r.feeling.Int64)
		m.Feeling = &f
	}
	if r.feelingAt.Valid {
		t := r.feelingAt.Time
		m.FeelingAt = &t
	}
	if m.Symptoms == nil {
		m.Symptoms = []string{}
	}
	return m, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
