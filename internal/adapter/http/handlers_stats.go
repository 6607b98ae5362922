package adapthttp

import (
	"net/http"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	if user == nil {
		writeError(w, http.StatusForbidden, errAuthRequired)
		return
	}

	days := intQuery(r, "days", 30)
	summary, err := s.stats.GetSummary(r.Context(), user.ID, days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errInternal)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"days":  days,
		"stats": summary,
	})
}
