package distance

import (
	"context"
	"math"
	"testing"

	"mission-circuit-service/internal/domain"
)

func TestHaversineProvider(t *testing.T) {
	h := &HaversineProvider{RoadFactor: 1, SpeedMetersPerSecond: 10}

	// One degree of latitude is ~111.19 km.
	r, err := h.GetDistance(context.Background(), domain.Coordinates{Lon: 0, Lat: 0}, domain.Coordinates{Lon: 0, Lat: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(r.DistanceMeters-111195) > 100 {
		t.Fatalf("distance = %v, want ~111195", r.DistanceMeters)
	}
	if math.Abs(r.DurationSeconds-r.DistanceMeters/10) > 1e-6 {
		t.Fatalf("duration = %v, want distance/speed", r.DurationSeconds)
	}

	same, err := h.GetDistance(context.Background(), domain.Coordinates{Lon: 2, Lat: 48}, domain.Coordinates{Lon: 2, Lat: 48})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if same.DistanceMeters != 0 {
		t.Fatalf("same point distance = %v, want 0", same.DistanceMeters)
	}
}
