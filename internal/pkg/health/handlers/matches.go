package handlers

import (
	"fmt"
	"net/http"
	"time"
)

// maxMatches caps the limit query parameter.
const maxMatches = 200

// HandleMatches handles GET /api/v1/matches?limit=N: upcoming fixtures with a handicap line.
func (h *Handler) HandleMatches(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	limit := parseIntParam(r, "limit", 0)
	if limit < 0 {
		respondError(w, http.StatusBadRequest, "limit must not be negative", nil)
		return
	}
	if limit > maxMatches {
		limit = maxMatches
	}

	matches, err := h.studier.Upcoming(r.Context(), limit)
	if err != nil {
		status, msg := statusFor(err)
		respondError(w, status, msg, err)
		return
	}

	duration := time.Since(start)
	w.Header().Set("X-Query-Duration", duration.String())
	w.Header().Set("X-Matches-Count", fmt.Sprintf("%d", len(matches)))
	respondJSON(w, http.StatusOK, map[string]any{
		"matches": matches,
		"meta": map[string]any{
			"count":    len(matches),
			"duration": duration.String(),
		},
	})
}
