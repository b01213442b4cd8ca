package ports

import (
	"context"
	"mission-circuit-service/internal/domain"
)

// Optional extension of DistanceProvider that returns a full matrix in one call.
type DistanceMatrixProvider interface {
	DistanceProvider
	// Return an N×N matrix indexed like locations.
	GetMatrix(ctx context.Context, locations []domain.Coordinates) (*domain.DistanceMatrix, error)
}

// Persistent cache for whole distance matrices, keyed by the caller.
type MatrixCache interface {
	Get(ctx context.Context, key string) (*domain.DistanceMatrix, bool, error)
	Put(ctx context.Context, key string, m *domain.DistanceMatrix) error
}
