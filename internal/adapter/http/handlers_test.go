package adapthttp_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	adapthttp "nutrisnap/internal/adapter/http"
	"nutrisnap/internal/app"
	"nutrisnap/internal/domain"
	"nutrisnap/internal/logger"
)

// ---------------------------------------------------------------------------
// Mock collaborators (function-fields pattern)
// ---------------------------------------------------------------------------

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

type stubImages struct{}

func (stubImages) Put(_ context.Context, key string, _ []byte, _ string) (string, error) {
	return "https://images.example/" + key, nil
}

type stubLabeler struct{ err error }

func (l stubLabeler) DetectLabels(context.Context, []byte) ([]domain.Label, error) {
	if l.err != nil {
		return nil, l.err
	}
	return []domain.Label{{Name: "Salad", Confidence: 91.234}, {Name: "Fork", Confidence: 99}}, nil
}

type stubEstimator struct{}

func (stubEstimator) Estimate(context.Context, []string) (*domain.Estimate, error) {
	return &domain.Estimate{
		Nutrition: domain.Nutrition{domain.Calories: 250, domain.Fiber: 6},
		Insights:  []string{"Add protein"},
	}, nil
}

// ---------------------------------------------------------------------------
// Test-server helper
// ---------------------------------------------------------------------------

func newTestServer(t *testing.T, repo *mockMealRepo, labeler domain.FoodLabeler) *httptest.Server {
	t.Helper()

	if repo == nil {
		repo = &mockMealRepo{}
	}
	if labeler == nil {
		labeler = stubLabeler{}
	}
	log := logger.Nop()
	ms := app.NewMealService(repo, stubImages{}, labeler, stubEstimator{}, time.Second, log)
	is := app.NewInsightsService(repo, app.InsightsOptions{DefaultWindowDays: 7, MaxWindowDays: 30}, log)

	srv := adapthttp.New(ms, is, log)
	return httptest.NewServer(srv.Handler())
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return m
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	b, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func feelingMeal(id string, hoursAgo, feeling int) domain.MealRecord {
	return domain.MealRecord{
		UserID:        "u1",
		MealID:        id,
		Timestamp:     time.Date(2026, 2, 8, 20, 0, 0, 0, time.UTC).Add(-time.Duration(hoursAgo) * time.Hour),
		DetectedFoods: []domain.DetectedFood{{Name: "Cheese", Confidence: 90, Category: domain.CategoryDairy}},
		Nutrition:     domain.Nutrition{domain.Protein: 12},
		Feeling:       &feeling,
		Symptoms:      []string{"Bloating", "Gas"},
	}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "no-store" {
		t.Fatalf("expected no-store, got %q", cc)
	}
	body := decodeBody(t, resp)
	if body["status"] != "ok" {
		t.Fatalf("expected status=ok, got %v", body["status"])
	}
}

func TestAnalyzeMeal(t *testing.T) {
	var saved domain.MealRecord
	ts := newTestServer(t, &mockMealRepo{
		saveFn: func(_ context.Context, m domain.MealRecord) error {
			saved = m
			return nil
		},
	}, nil)
	defer ts.Close()

	image := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("photo"))
	resp := postJSON(t, ts.URL+"/api/meals", map[string]any{"userId": "u1", "image": image})
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["mealId"] != saved.MealID || saved.MealID == "" {
		t.Fatalf("expected saved meal id, got %v", body["mealId"])
	}
	foods, _ := body["foods"].([]any)
	if len(foods) != 1 {
		t.Fatalf("expected one food, got %v", body["foods"])
	}
	food := foods[0].(map[string]any)
	if food["name"] != "Salad" || food["category"] != "vegetables" || food["confidence"] != 91.23 {
		t.Fatalf("unexpected food %v", food)
	}
	nutrition := body["nutrition"].(map[string]any)
	if nutrition["calories"] != 250.0 {
		t.Fatalf("unexpected nutrition %v", nutrition)
	}
}

func TestAnalyzeMeal_Errors(t *testing.T) {
	image := base64.StdEncoding.EncodeToString([]byte("photo"))
	tests := []struct {
		name       string
		labeler    domain.FoodLabeler
		method     string
		payload    any
		wantStatus int
	}{
		{"missing user", nil, http.MethodPost, map[string]any{"image": image}, http.StatusBadRequest},
		{"missing image", nil, http.MethodPost, map[string]any{"userId": "u1"}, http.StatusBadRequest},
		{"bad base64", nil, http.MethodPost, map[string]any{"userId": "u1", "image": "!!"}, http.StatusBadRequest},
		{"unknown field", nil, http.MethodPost, map[string]any{"userId": "u1", "image": image, "extra": 1}, http.StatusBadRequest},
		{"labeler down", stubLabeler{err: errors.New("throttled")}, http.MethodPost, map[string]any{"userId": "u1", "image": image}, http.StatusBadGateway},
		{"wrong method", nil, http.MethodGet, nil, http.StatusMethodNotAllowed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServer(t, nil, tc.labeler)
			defer ts.Close()

			var resp *http.Response
			if tc.method == http.MethodGet {
				var err error
				resp, err = http.Get(ts.URL + "/api/meals")
				if err != nil {
					t.Fatalf("request failed: %v", err)
				}
			} else {
				resp = postJSON(t, ts.URL+"/api/meals", tc.payload)
			}
			defer resp.Body.Close() //nolint:errcheck

			if resp.StatusCode != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, resp.StatusCode)
			}
		})
	}
}

func TestAnalyzeMeal_BodyTooLarge(t *testing.T) {
	log := logger.Nop()
	repo := &mockMealRepo{}
	ms := app.NewMealService(repo, stubImages{}, stubLabeler{}, stubEstimator{}, time.Second, log)
	is := app.NewInsightsService(repo, app.InsightsOptions{DefaultWindowDays: 7, MaxWindowDays: 30}, log)
	h := adapthttp.New(ms, is, log).Handler()

	body := `{"userId":"u1","image":"` + strings.Repeat("A", 11<<20) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/meals", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestMealFeeling(t *testing.T) {
	tests := []struct {
		name       string
		payload    map[string]any
		repoErr    error
		wantStatus int
	}{
		{"valid", map[string]any{"userId": "u1", "mealId": "m1", "feeling": 2, "symptoms": []string{"Gas"}}, nil, http.StatusOK},
		{"no symptoms", map[string]any{"userId": "u1", "mealId": "m1", "feeling": 5}, nil, http.StatusOK},
		{"feeling too high", map[string]any{"userId": "u1", "mealId": "m1", "feeling": 6}, nil, http.StatusBadRequest},
		{"fractional feeling", map[string]any{"userId": "u1", "mealId": "m1", "feeling": 2.5}, nil, http.StatusBadRequest},
		{"missing meal", map[string]any{"userId": "u1", "feeling": 3}, nil, http.StatusBadRequest},
		{"unknown meal", map[string]any{"userId": "u1", "mealId": "nope", "feeling": 3}, domain.ErrMealNotFound, http.StatusNotFound},
		{"store down", map[string]any{"userId": "u1", "mealId": "m1", "feeling": 3}, errors.New("timeout"), http.StatusBadGateway},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServer(t, &mockMealRepo{
				feelingFn: func(context.Context, string, string, int, []string, time.Time) error {
					return tc.repoErr
				},
			}, nil)
			defer ts.Close()

			resp := postJSON(t, ts.URL+"/api/meals/feeling", tc.payload)
			defer resp.Body.Close() //nolint:errcheck

			if resp.StatusCode != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, resp.StatusCode)
			}
			body := decodeBody(t, resp)
			if tc.wantStatus == http.StatusOK && body["message"] != "Feeling recorded" {
				t.Fatalf("unexpected body %v", body)
			}
			if tc.wantStatus != http.StatusOK && body["error"] == nil {
				t.Fatalf("expected error body, got %v", body)
			}
		})
	}
}

func TestMealsRecent(t *testing.T) {
	var gotDays int
	ts := newTestServer(t, &mockMealRepo{
		fetchFn: func(_ context.Context, userID string, windowDays, _ int) ([]domain.MealRecord, error) {
			gotDays = windowDays
			if userID == "empty" {
				return nil, nil
			}
			return []domain.MealRecord{feelingMeal("m1", 0, 3)}, nil
		},
	}, nil)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/meals/recent?userId=u1&days=3")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if meals, _ := body["meals"].([]any); len(meals) != 1 || gotDays != 3 {
		t.Fatalf("unexpected meals %v for %d days", body["meals"], gotDays)
	}

	resp2, err := http.Get(ts.URL + "/api/meals/recent?userId=empty")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp2.Body.Close() //nolint:errcheck
	body = decodeBody(t, resp2)
	if meals, ok := body["meals"].([]any); !ok || len(meals) != 0 || gotDays != 7 {
		t.Fatalf("expected empty array over default window, got %v for %d days", body["meals"], gotDays)
	}
}

func TestInsights(t *testing.T) {
	ts := newTestServer(t, &mockMealRepo{
		fetchFn: func(context.Context, string, int, int) ([]domain.MealRecord, error) {
			return []domain.MealRecord{
				feelingMeal("m1", 0, 1),
				feelingMeal("m2", 4, 2),
				feelingMeal("m3", 8, 2),
			}, nil
		},
	}, nil)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/insights?userId=u1")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	for _, key := range []string{"intolerances", "nutritionalGaps", "predictions", "weeklyTrends"} {
		if _, ok := body[key]; !ok {
			t.Fatalf("response missing %q", key)
		}
	}
	findings := body["intolerances"].([]any)
	if len(findings) != 1 {
		t.Fatalf("expected one intolerance, got %v", findings)
	}
	f := findings[0].(map[string]any)
	if f["food"] != "Cheese" || f["confidence"] != 95.0 || f["recommendation"] != "Consider eliminating Cheese for 2 weeks" {
		t.Fatalf("unexpected finding %v", f)
	}
	trends := body["weeklyTrends"].(map[string]any)
	if trends["digestiveHealth"] != "needs attention" {
		t.Fatalf("unexpected trends %v", trends)
	}
}

func TestInsights_Errors(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		meals      []domain.MealRecord
		fetchErr   error
		wantStatus int
	}{
		{"missing user", "", nil, nil, http.StatusBadRequest},
		{"bad days", "userId=u1&days=abc", nil, nil, http.StatusBadRequest},
		{"negative days", "userId=u1&days=-2", nil, nil, http.StatusBadRequest},
		{"store down", "userId=u1", nil, errors.New("timeout"), http.StatusBadGateway},
		{"invalid record", "userId=u1", []domain.MealRecord{feelingMeal("m1", 0, 7)}, nil, http.StatusUnprocessableEntity},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServer(t, &mockMealRepo{
				fetchFn: func(context.Context, string, int, int) ([]domain.MealRecord, error) {
					return tc.meals, tc.fetchErr
				},
			}, nil)
			defer ts.Close()

			resp, err := http.Get(ts.URL + "/api/insights?" + tc.query)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close() //nolint:errcheck
			if resp.StatusCode != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, resp.StatusCode)
			}
		})
	}
}
