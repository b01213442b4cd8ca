package dto

import "time"

type RouteSegmentResponse struct {
	RouteID         int64   `json:"route_id"`
	DepartureSiteID int64   `json:"departure_site_id"`
	ArrivalSiteID   int64   `json:"arrival_site_id"`
	DistanceKm      float64 `json:"distance_km"`
	Order           int     `json:"order"`
}

type CircuitResponse struct {
	CircuitID       int64                  `json:"circuit_id"`
	MissionID       int64                  `json:"mission_id"`
	DepartureDate   time.Time              `json:"departure_date"`
	DepartureSiteID int64                  `json:"departure_site_id"`
	ArrivalSiteID   int64                  `json:"arrival_site_id"`
	TotalDistanceKm float64                `json:"total_distance_km"`
	Routes          []RouteSegmentResponse `json:"routes"`
}

type GenerateCircuitsResponse struct {
	Message             string          `json:"message"`
	Circuit             CircuitResponse `json:"circuit"`
	FirstStopDesignated bool            `json:"first_stop_designated"`
	FirstTaskID         int64           `json:"first_task_id"`
}

type ListCircuitsResponse struct {
	MissionID int64             `json:"mission_id"`
	Circuits  []CircuitResponse `json:"circuits"`
}
