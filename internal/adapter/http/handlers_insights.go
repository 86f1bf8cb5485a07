package adapthttp

import "net/http"

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	days, err := intQuery(r, "days")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	report, err := s.insights.GetInsights(r.Context(), r.URL.Query().Get("userId"), days)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
