package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgb173/Masivo/internal/render"
	"github.com/dgb173/Masivo/internal/study"
)

// HandleStudy handles GET /api/v1/study/{matchID}. format=text returns the plain rendering.
func (h *Handler) HandleStudy(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "matchID")
	if !study.ValidMatchID(id) {
		respondError(w, http.StatusBadRequest, "match id must be numeric", nil)
		return
	}

	rep, err := h.studier.Study(r.Context(), id)
	if err != nil {
		status, msg := statusFor(err)
		respondError(w, status, msg, err)
		return
	}

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(render.Report(rep)))
		return
	}
	respondJSON(w, http.StatusOK, rep)
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, study.ErrInvalidMatchID):
		return http.StatusBadRequest, "invalid match id"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "study timed out"
	case errors.Is(err, study.ErrUpstream):
		return http.StatusBadGateway, "source site unavailable"
	}
	return http.StatusInternalServerError, "study failed"
}
