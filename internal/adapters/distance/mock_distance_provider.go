package distance

import (
	"context"
	"fmt"
	"mission-circuit-service/internal/domain"
	"mission-circuit-service/internal/ports"
	"sync"
	"sync/atomic"
)

type MockPair struct {
	From, To domain.Coordinates
	Meters   float64
	Seconds  float64
}

// MockDistanceProvider answers pairwise lookups from a fixed table.
// It does not implement GetMatrix, so planners fall back to pairwise calls.
type MockDistanceProvider struct {
	m     map[string]ports.DistanceResult
	calls atomic.Int64
}

func NewMockDistanceProvider(pairs []MockPair) *MockDistanceProvider {
	m := make(map[string]ports.DistanceResult, len(pairs))
	for _, p := range pairs {
		m[p.From.Key()+"|"+p.To.Key()] = ports.DistanceResult{DistanceMeters: p.Meters, DurationSeconds: p.Seconds}
	}
	return &MockDistanceProvider{m: m}
}

func (p *MockDistanceProvider) GetDistance(ctx context.Context, origin, destination domain.Coordinates) (ports.DistanceResult, error) {
	p.calls.Add(1)

	r, ok := p.m[origin.Key()+"|"+destination.Key()]
	if !ok {
		return ports.DistanceResult{}, fmt.Errorf("missing pair %s -> %s", origin.Key(), destination.Key())
	}

	return r, nil
}

// Calls returns how many lookups were made.
func (p *MockDistanceProvider) Calls() int64 { return p.calls.Load() }

// StaticMatrixProvider returns a canned matrix (or error) for every call
// and counts how often it was asked.
type StaticMatrixProvider struct {
	Matrix *domain.DistanceMatrix
	Err    error

	mu    sync.Mutex
	calls [][]domain.Coordinates
}

func (p *StaticMatrixProvider) GetMatrix(ctx context.Context, locations []domain.Coordinates) (*domain.DistanceMatrix, error) {
	p.mu.Lock()
	p.calls = append(p.calls, append([]domain.Coordinates(nil), locations...))
	p.mu.Unlock()

	if p.Err != nil {
		return nil, p.Err
	}
	return p.Matrix, nil
}

func (p *StaticMatrixProvider) GetDistance(ctx context.Context, origin, destination domain.Coordinates) (ports.DistanceResult, error) {
	return ports.DistanceResult{}, fmt.Errorf("static matrix provider: pairwise lookups not supported")
}

// Calls returns the location lists received so far.
func (p *StaticMatrixProvider) Calls() [][]domain.Coordinates {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]domain.Coordinates(nil), p.calls...)
}
