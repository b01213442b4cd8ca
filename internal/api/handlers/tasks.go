package handlers

import (
	"mission-circuit-service/internal/api/dto"
	"net/http"
)

// ListTasks returns the mission's tasks with their sites and first-task flag.
func (h *CircuitHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	id, ok := missionID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "mission id must be a positive integer", ReasonInvalidMissionID)
		return
	}

	tasks, err := h.Service.ListTasks(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	res := dto.ListTasksResponse{MissionID: id, Tasks: make([]dto.TaskResponse, 0, len(tasks))}
	for _, t := range tasks {
		tr := dto.TaskResponse{TaskID: t.TaskID, SiteID: t.SiteID, IsFirst: t.IsFirst}
		if t.Site != nil {
			tr.SiteName = t.Site.Name
			tr.Lon = t.Site.Coordinates.Lon
			tr.Lat = t.Site.Coordinates.Lat
		}
		res.Tasks = append(res.Tasks, tr)
	}

	writeJSON(w, r, http.StatusOK, res)
}
