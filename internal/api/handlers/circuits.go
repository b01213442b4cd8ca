package handlers

import (
	"context"
	"fmt"
	"mission-circuit-service/internal/api/dto"
	"mission-circuit-service/internal/domain"
	"mission-circuit-service/internal/services"
	"net/http"
)

// CircuitService is implemented by *services.CircuitGenerator.
type CircuitService interface {
	GenerateCircuits(ctx context.Context, missionID int64) (*services.GenerationResult, error)
	ListCircuits(ctx context.Context, missionID int64) ([]*domain.Circuit, error)
	ListTasks(ctx context.Context, missionID int64) ([]*domain.Task, error)
}

type CircuitHandler struct {
	Service CircuitService
}

// Generate replaces the mission's circuit with a freshly planned one.
func (h *CircuitHandler) Generate(w http.ResponseWriter, r *http.Request) {
	id, ok := missionID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "mission id must be a positive integer", ReasonInvalidMissionID)
		return
	}

	res, err := h.Service.GenerateCircuits(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.GenerateCircuitsResponse{
		Message:             fmt.Sprintf("circuit generated for mission %d", id),
		Circuit:             circuitResponse(res.Circuit),
		FirstStopDesignated: res.FirstStopDesignated,
		FirstTaskID:         res.FirstTaskID,
	})
}

func (h *CircuitHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := missionID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "mission id must be a positive integer", ReasonInvalidMissionID)
		return
	}

	circuits, err := h.Service.ListCircuits(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	res := dto.ListCircuitsResponse{MissionID: id, Circuits: make([]dto.CircuitResponse, 0, len(circuits))}
	for _, c := range circuits {
		res.Circuits = append(res.Circuits, circuitResponse(c))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func circuitResponse(c *domain.Circuit) dto.CircuitResponse {
	routes := make([]dto.RouteSegmentResponse, 0, len(c.Segments))
	for _, s := range c.Segments {
		routes = append(routes, dto.RouteSegmentResponse{
			RouteID:         s.RouteID,
			DepartureSiteID: s.DepartureSiteID,
			ArrivalSiteID:   s.ArrivalSiteID,
			DistanceKm:      s.DistanceKm,
			Order:           s.Order,
		})
	}

	return dto.CircuitResponse{
		CircuitID:       c.CircuitID,
		MissionID:       c.MissionID,
		DepartureDate:   c.DepartureDate,
		DepartureSiteID: c.DepartureSiteID,
		ArrivalSiteID:   c.ArrivalSiteID,
		TotalDistanceKm: c.TotalDistanceKm(),
		Routes:          routes,
	}
}
