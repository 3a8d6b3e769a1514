package api

import (
	"net/http"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"inbox":   s.orchestrator.Counters(),
		"latency": s.orchestrator.Stats().Snapshot(),
	})
}
