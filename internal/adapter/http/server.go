// Package adapthttp is the driving HTTP adapter: JSON endpoints over the
// meal and insights services.
package adapthttp

import (
	"net/http"

	"nutrisnap/internal/app"
	"nutrisnap/internal/logger"
)

// maxBodyBytes caps request bodies; meal photos arrive base64 encoded.
const maxBodyBytes = 10 << 20

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	meals    *app.MealService
	insights *app.InsightsService
	log      *logger.Logger
}

// New creates a Server wired to the given application services.
func New(ms *app.MealService, is *app.InsightsService, log *logger.Logger) *Server {
	return &Server{meals: ms, insights: is, log: log.With("component", "http")}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})

	api.HandleFunc("/meals", s.handleAnalyzeMeal)
	api.HandleFunc("/meals/recent", s.handleMealsRecent)
	api.HandleFunc("/meals/feeling", s.handleMealFeeling)

	api.HandleFunc("/insights", s.handleInsights)

	root := http.NewServeMux()
	root.Handle("/api/", withNoCache(limitBody(http.StripPrefix("/api", api))))

	return s.loggingMiddleware(root)
}
