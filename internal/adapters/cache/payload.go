package cache

import (
	"encoding/json"
	"fmt"
	"mission-circuit-service/internal/domain"
)

type matrixPayload struct {
	Distances [][]float64 `json:"distances"`
	Durations [][]float64 `json:"durations,omitempty"`
}

func encodeMatrix(m *domain.DistanceMatrix) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("encode matrix: nil matrix")
	}
	b, err := json.Marshal(matrixPayload{Distances: m.Distances, Durations: m.Durations})
	if err != nil {
		return nil, fmt.Errorf("encode matrix: %w", err)
	}
	return b, nil
}

func decodeMatrix(b []byte) (*domain.DistanceMatrix, error) {
	var p matrixPayload
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("decode matrix: %w", err)
	}
	return &domain.DistanceMatrix{Distances: p.Distances, Durations: p.Durations}, nil
}
