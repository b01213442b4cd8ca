package services

import (
	"context"
	"errors"
	"fmt"
	"mission-circuit-service/internal/domain"
	"mission-circuit-service/internal/platform/obs"
	"mission-circuit-service/internal/ports"

	"golang.org/x/sync/errgroup"
)

// ErrMatrixUnavailable wraps every failure to obtain a usable distance
// matrix. The provider's own error stays reachable through errors.As.
var ErrMatrixUnavailable = errors.New("distance matrix unavailable")

// Max concurrent pairwise lookups when the provider has no matrix endpoint.
const pairwiseConcurrency = 5

// PlannedCircuit is the ordered visit of a set of stops, not yet stored.
type PlannedCircuit struct {
	// Order holds stop indexes in visit order; Order[0] is the start.
	Order           []int
	Segments        []domain.RouteSegment
	DepartureSiteID int64
	ArrivalSiteID   int64
	TotalDistanceKm float64
}

// CircuitPlanner orders stops with a greedy nearest-neighbor pass over a
// provider distance matrix, optionally refined with 2-opt.
type CircuitPlanner struct {
	Provider ports.DistanceProvider
	// TwoOptPasses > 0 enables 2-opt refinement of the greedy order.
	TwoOptPasses int
}

func NewCircuitPlanner(provider ports.DistanceProvider, twoOptPasses int) *CircuitPlanner {
	return &CircuitPlanner{Provider: provider, TwoOptPasses: twoOptPasses}
}

// Plan a circuit over stops starting at stops[start].
//
// A single stop needs no distances: the circuit starts and ends there and
// has no segments. Otherwise one matrix is fetched for all stops.
func (p *CircuitPlanner) Plan(ctx context.Context, stops []domain.Stop, start int) (_ *PlannedCircuit, err error) {
	defer obs.Time(ctx, "planner.Plan")(&err)

	n := len(stops)
	if n == 0 {
		return nil, errors.New("plan circuit: no stops")
	}
	if start < 0 || start >= n {
		return nil, fmt.Errorf("plan circuit: start index %d out of range [0,%d)", start, n)
	}

	if n == 1 {
		return &PlannedCircuit{
			Order:           []int{start},
			Segments:        []domain.RouteSegment{},
			DepartureSiteID: stops[start].SiteID,
			ArrivalSiteID:   stops[start].SiteID,
		}, nil
	}

	if p.Provider == nil {
		return nil, errors.New("plan circuit: distance provider is nil")
	}

	m, err := p.matrix(ctx, domain.Locations(stops))
	if err != nil {
		return nil, fmt.Errorf("plan circuit: %w: %w", ErrMatrixUnavailable, err)
	}
	if err := m.Validate(n); err != nil {
		return nil, fmt.Errorf("plan circuit: %w: %w", ErrMatrixUnavailable, err)
	}

	order, err := NearestNeighborOrder(m, start)
	if err != nil {
		return nil, fmt.Errorf("plan circuit: %w", err)
	}
	order = ImproveOrderTwoOpt(m, order, p.TwoOptPasses)

	segments := BuildSegments(stops, m, order)
	total := 0.0
	for _, s := range segments {
		total += s.DistanceKm
	}

	return &PlannedCircuit{
		Order:           order,
		Segments:        segments,
		DepartureSiteID: stops[order[0]].SiteID,
		ArrivalSiteID:   stops[order[n-1]].SiteID,
		TotalDistanceKm: total,
	}, nil
}

// BuildSegments turns a visit order into consecutive legs. Leg k (1-based)
// goes from order[k-1] to order[k]; distances are converted to kilometers.
func BuildSegments(stops []domain.Stop, m *domain.DistanceMatrix, order []int) []domain.RouteSegment {
	if len(order) < 2 {
		return []domain.RouteSegment{}
	}

	segments := make([]domain.RouteSegment, 0, len(order)-1)
	for k := 1; k < len(order); k++ {
		from, to := order[k-1], order[k]
		segments = append(segments, domain.RouteSegment{
			DepartureSiteID: stops[from].SiteID,
			ArrivalSiteID:   stops[to].SiteID,
			DistanceKm:      m.Meters(from, to) / 1000,
			Order:           k,
		})
	}
	return segments
}

// Prefer a single matrix call when supported to reduce external API calls.
func (p *CircuitPlanner) matrix(ctx context.Context, locations []domain.Coordinates) (*domain.DistanceMatrix, error) {
	if mp, ok := p.Provider.(ports.DistanceMatrixProvider); ok {
		m, err := mp.GetMatrix(ctx, locations)
		if err != nil {
			return nil, fmt.Errorf("get matrix: %w", err)
		}
		return m, nil
	}

	return pairwiseMatrix(ctx, p.Provider, locations)
}

// pairwiseMatrix assembles a matrix from one lookup per ordered pair.
// The first failure cancels the remaining lookups.
func pairwiseMatrix(ctx context.Context, provider ports.DistanceProvider, locations []domain.Coordinates) (*domain.DistanceMatrix, error) {
	n := len(locations)
	m := &domain.DistanceMatrix{
		Distances: make([][]float64, n),
		Durations: make([][]float64, n),
	}
	for i := range n {
		m.Distances[i] = make([]float64, n)
		m.Durations[i] = make([]float64, n)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(pairwiseConcurrency)

	for i := range n {
		for j := range n {
			if i == j {
				continue
			}
			g.Go(func() error {
				r, err := provider.GetDistance(ctx, locations[i], locations[j])
				if err != nil {
					return fmt.Errorf("get distance %d -> %d: %w", i, j, err)
				}
				// Each goroutine owns a distinct cell.
				m.Distances[i][j] = r.DistanceMeters
				m.Durations[i][j] = r.DurationSeconds
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return m, nil
}
