package domain

import "time"

// Circuit is the persisted plan for visiting every site of a mission.
// A mission has at most one current circuit; regeneration replaces it.
type Circuit struct {
	CircuitID       int64
	MissionID       int64
	DepartureDate   time.Time
	DepartureSiteID int64
	ArrivalSiteID   int64
	Segments        []RouteSegment
}

// RouteSegment is one leg of a circuit. Order is 1-based along the circuit.
type RouteSegment struct {
	RouteID         int64
	CircuitID       int64
	DepartureSiteID int64
	ArrivalSiteID   int64
	DistanceKm      float64
	Order           int
}

// Sum of all segment distances.
func (c *Circuit) TotalDistanceKm() float64 {
	total := 0.0
	for _, s := range c.Segments {
		total += s.DistanceKm
	}
	return total
}

// CircuitPlan is a fully computed circuit that has not been stored yet.
// FirstTaskID is written back as the mission's single first task when
// MarkFirstTask is set.
type CircuitPlan struct {
	MissionID     int64
	FirstTaskID   int64
	MarkFirstTask bool
	Circuit       Circuit
}
