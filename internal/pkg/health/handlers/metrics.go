package handlers

import (
	"net/http"
)

// HandleMetrics handles /metrics endpoint
func (h *Handler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.tracker.GetMetrics())
}
