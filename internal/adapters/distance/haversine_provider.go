package distance

import (
	"context"
	"math"
	"mission-circuit-service/internal/domain"
	"mission-circuit-service/internal/ports"
)

const earthRadiusMeters = 6371000.0

// HaversineProvider estimates road distance from great-circle distance.
// It needs no network access and is meant for local runs and demos.
type HaversineProvider struct {
	// RoadFactor scales straight-line distance to approximate road distance.
	RoadFactor float64
	// SpeedMetersPerSecond drives the duration estimate.
	SpeedMetersPerSecond float64
}

func NewHaversineProvider() *HaversineProvider {
	return &HaversineProvider{RoadFactor: 1.3, SpeedMetersPerSecond: 13.9}
}

func (h *HaversineProvider) GetDistance(ctx context.Context, origin, destination domain.Coordinates) (ports.DistanceResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.DistanceResult{}, err
	}

	meters := haversineMeters(origin.Lat, origin.Lon, destination.Lat, destination.Lon) * h.RoadFactor

	var seconds float64
	if h.SpeedMetersPerSecond > 0 {
		seconds = meters / h.SpeedMetersPerSecond
	}

	return ports.DistanceResult{DistanceMeters: meters, DurationSeconds: seconds}, nil
}

func haversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(a))
}
