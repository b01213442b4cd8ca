package services

import (
	"errors"
	"fmt"
	"mission-circuit-service/internal/domain"
)

// NearestNeighborOrder visits every location once, starting at start and
// always moving to the closest unvisited location by matrix distance.
//
// The matrix is read row by row from the current location, so asymmetric
// matrices are honored. Ties go to the lowest index. The diagonal is never
// read.
func NearestNeighborOrder(m *domain.DistanceMatrix, start int) ([]int, error) {
	n := m.Size()
	if n == 0 {
		return nil, errors.New("nearest neighbor: empty matrix")
	}
	if start < 0 || start >= n {
		return nil, fmt.Errorf("nearest neighbor: start index %d out of range [0,%d)", start, n)
	}
	for i, row := range m.Distances {
		if len(row) != n {
			return nil, fmt.Errorf("nearest neighbor: row %d has %d columns, want %d", i, len(row), n)
		}
	}

	visited := make([]bool, n)
	visited[start] = true

	order := make([]int, 0, n)
	order = append(order, start)
	current := start

	for len(order) < n {
		best := -1
		bestMeters := 0.0

		// Strict comparison keeps the first (lowest) index on equal distances.
		for j := 0; j < n; j++ {
			if visited[j] {
				continue
			}
			d := m.Meters(current, j)
			if best < 0 || d < bestMeters {
				best = j
				bestMeters = d
			}
		}

		if best < 0 {
			return nil, errors.New("nearest neighbor: failed to select next location")
		}

		visited[best] = true
		order = append(order, best)
		current = best
	}

	return order, nil
}
