// Package handlers implements the HTTP endpoints of the study service.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dgb173/Masivo/internal/pkg/models"
	"github.com/dgb173/Masivo/internal/pkg/performance"
	"github.com/dgb173/Masivo/internal/pkg/report"
)

// Studier runs studies and lists fixtures. *study.Service implements it.
type Studier interface {
	Study(ctx context.Context, matchID string) (*report.MarketReport, error)
	Upcoming(ctx context.Context, limit int) ([]models.UpcomingMatch, error)
}

// Handler holds the dependencies of the API endpoints.
type Handler struct {
	studier Studier
	tracker *performance.Tracker
}

func NewHandler(studier Studier, tracker *performance.Tracker) *Handler {
	if tracker == nil {
		tracker = performance.GetTracker()
	}
	return &Handler{studier: studier, tracker: tracker}
}

// ErrorResponse is the body of every non-2xx JSON answer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		slog.Warn("Request failed", "status", status, "message", message, "error", err)
	}
	respondJSON(w, status, ErrorResponse{Error: http.StatusText(status), Message: message, Code: status})
}

func parseIntParam(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return v
}
