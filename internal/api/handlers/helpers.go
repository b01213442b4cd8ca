package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mission-circuit-service/internal/api/dto"
	"mission-circuit-service/internal/platform/obs"
	"mission-circuit-service/internal/services"
	"net/http"
	"strconv"
)

const (
	ReasonMissionNotFound   = "mission_not_found"
	ReasonNoTasks           = "no_tasks"
	ReasonMatrixUnavailable = "matrix_unavailable"
	ReasonInvalidMissionID  = "invalid_mission_id"
	ReasonInternal          = "internal"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "encode failed",
			"req_id", obs.RequestID(r.Context()), "method", r.Method, "path", r.URL.Path, "err", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg, reason string) {
	writeJSON(w, r, status, dto.ErrorResponse{Error: msg, Reason: reason})
}

// writeServiceError maps service errors to a status and reason code.
// Unknown errors are logged and reported as 500 without details.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrMissionNotFound):
		writeError(w, r, http.StatusNotFound, "mission not found", ReasonMissionNotFound)
	case errors.Is(err, services.ErrNoTasks):
		writeError(w, r, http.StatusNotFound, "mission has no tasks", ReasonNoTasks)
	case errors.Is(err, services.ErrMatrixUnavailable):
		slog.WarnContext(r.Context(), "distance matrix unavailable",
			"req_id", obs.RequestID(r.Context()), "path", r.URL.Path, "err", err)
		writeError(w, r, http.StatusBadGateway, "distance matrix unavailable", ReasonMatrixUnavailable)
	default:
		slog.ErrorContext(r.Context(), "request failed",
			"req_id", obs.RequestID(r.Context()), "path", r.URL.Path, "err", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error", ReasonInternal)
	}
}

// missionID reads the {id} path value; it must be a positive integer.
func missionID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
