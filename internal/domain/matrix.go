package domain

import (
	"fmt"
	"math"
)

// DistanceMatrix holds pairwise travel metrics indexed like the input
// location list. Distances are meters, durations seconds. The matrix is not
// assumed to be symmetric.
type DistanceMatrix struct {
	Distances [][]float64
	Durations [][]float64
}

func (m *DistanceMatrix) Size() int {
	if m == nil {
		return 0
	}
	return len(m.Distances)
}

// Meters returns the travel distance from i to j.
func (m *DistanceMatrix) Meters(i, j int) float64 { return m.Distances[i][j] }

// Validate checks the matrix is n×n with finite, non-negative distances.
// Durations are optional but must have the same shape when present.
func (m *DistanceMatrix) Validate(n int) error {
	if m == nil {
		return fmt.Errorf("distance matrix: nil")
	}
	if len(m.Distances) != n {
		return fmt.Errorf("distance matrix: got %d rows, want %d", len(m.Distances), n)
	}
	for i, row := range m.Distances {
		if len(row) != n {
			return fmt.Errorf("distance matrix: row %d has %d columns, want %d", i, len(row), n)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return fmt.Errorf("distance matrix: invalid distance %v at [%d][%d]", v, i, j)
			}
		}
	}

	if m.Durations == nil {
		return nil
	}
	if len(m.Durations) != n {
		return fmt.Errorf("duration matrix: got %d rows, want %d", len(m.Durations), n)
	}
	for i, row := range m.Durations {
		if len(row) != n {
			return fmt.Errorf("duration matrix: row %d has %d columns, want %d", i, len(row), n)
		}
	}

	return nil
}
