package adapthttp

import (
	"net/http"

	"nutrisnap/internal/domain"
)

func (s *Server) handleAnalyzeMeal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var body struct {
		UserID string `json:"userId"`
		Image  string `json:"image"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeBodyError(w, err)
		return
	}
	meal, err := s.meals.AnalyzeMeal(r.Context(), body.UserID, body.Image)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, meal)
}

func (s *Server) handleMealFeeling(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var body struct {
		UserID   string   `json:"userId"`
		MealID   string   `json:"mealId"`
		Feeling  int      `json:"feeling"`
		Symptoms []string `json:"symptoms"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeBodyError(w, err)
		return
	}
	if err := s.meals.RecordFeeling(r.Context(), body.UserID, body.MealID, body.Feeling, body.Symptoms); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Feeling recorded"})
}

func (s *Server) handleMealsRecent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	days, err := intQuery(r, "days")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	meals, err := s.insights.ListRecent(r.Context(), r.URL.Query().Get("userId"), days)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if meals == nil {
		meals = []domain.MealRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"meals": meals})
}
