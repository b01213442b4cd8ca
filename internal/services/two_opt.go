package services

import "mission-circuit-service/internal/domain"

// ImproveOrderTwoOpt refines an open path with 2-opt moves. order[0] stays
// fixed; the tail may be reversed. Path cost is recomputed on the directed
// matrix for every candidate, so reversals on asymmetric matrices are costed
// correctly. passes <= 0 returns a copy of order unchanged.
func ImproveOrderTwoOpt(m *domain.DistanceMatrix, order []int, passes int) []int {
	best := append([]int(nil), order...)
	n := len(best)
	if passes <= 0 || n < 3 {
		return best
	}

	bestMeters := pathMeters(m, best)
	for pass := 0; pass < passes; pass++ {
		improved := false
		for i := 1; i < n-1; i++ {
			for k := i + 1; k < n; k++ {
				candidate := twoOptSwap(best, i, k)
				d := pathMeters(m, candidate)
				if d+1e-6 < bestMeters {
					best = candidate
					bestMeters = d
					improved = true
				}
			}
		}
		if !improved {
			break
		}
	}

	return best
}

// twoOptSwap returns a copy of ord with ord[i..k] reversed.
func twoOptSwap(ord []int, i, k int) []int {
	out := make([]int, len(ord))
	copy(out, ord[:i])
	pos := i
	for j := k; j >= i; j-- {
		out[pos] = ord[j]
		pos++
	}
	copy(out[pos:], ord[k+1:])
	return out
}

func pathMeters(m *domain.DistanceMatrix, order []int) float64 {
	total := 0.0
	for i := 1; i < len(order); i++ {
		total += m.Meters(order[i-1], order[i])
	}
	return total
}
