package httpapi

import "net/http"

func (s *Server) handleStatsOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := s.stats.Overview(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatsResponse(overview))
}

func (s *Server) handleAnalyzeInsights(w http.ResponseWriter, r *http.Request) {
	result, err := s.insights.Analyze(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, insightResponse{
		Suggestion:  result.Suggestion,
		GeneratedAt: result.GeneratedAt,
	})
}
