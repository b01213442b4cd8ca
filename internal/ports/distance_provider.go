package ports

import (
	"context"
	"mission-circuit-service/internal/domain"
)

// Distance and travel duration between two locations.
type DistanceResult struct {
	DistanceMeters  float64
	DurationSeconds float64
}

// Contract for retrieving travel distance and duration between locations.
type DistanceProvider interface {
	// Return travel distance and estimated duration from origin to destination.
	GetDistance(ctx context.Context, origin, destination domain.Coordinates) (DistanceResult, error)
}
