package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mission-circuit-service/internal/domain"
	"mission-circuit-service/internal/platform/obs"
	"mission-circuit-service/internal/ports"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"
)

var (
	ErrMissionNotFound = errors.New("mission not found")
	ErrNoTasks         = errors.New("mission has no tasks")
)

// GenerationResult describes the circuit that replaced a mission's previous
// circuits.
type GenerationResult struct {
	Circuit *domain.Circuit
	// Order holds task indexes (as loaded, ordered by task id) in visit order.
	Order []int
	// FirstStopDesignated is true when no task was flagged as first and the
	// first loaded task was flagged by this run.
	FirstStopDesignated bool
	FirstTaskID         int64
}

// CircuitGenerator rebuilds a mission's circuit from its tasks.
type CircuitGenerator struct {
	Store   ports.MissionStore
	Planner *CircuitPlanner
	Clock   func() time.Time
	// Timeout bounds a shared run, which no longer follows any single
	// caller's cancellation.
	Timeout time.Duration

	// Collapses concurrent in-process runs for the same mission.
	group singleflight.Group
}

func NewCircuitGenerator(store ports.MissionStore, planner *CircuitPlanner) *CircuitGenerator {
	return &CircuitGenerator{Store: store, Planner: planner, Clock: time.Now, Timeout: defaultGenerationTimeout}
}

const defaultGenerationTimeout = 2 * time.Minute

// GenerateCircuits plans a new circuit for the mission and stores it in
// place of any existing one.
//
// Distances are fetched before anything is written: if the matrix cannot be
// obtained the previous circuit is left untouched. A mission without tasks
// loses its circuits and fails with ErrNoTasks. Concurrent calls for the
// same mission in this process share a single run.
func (g *CircuitGenerator) GenerateCircuits(ctx context.Context, missionID int64) (*GenerationResult, error) {
	// The run is shared, so it is detached from the caller that started it;
	// each caller still stops waiting when its own context ends.
	ch := g.group.DoChan(strconv.FormatInt(missionID, 10), func() (any, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.timeout())
		defer cancel()

		res, err := g.generate(runCtx, missionID)
		obs.CircuitGenerationsTotal.WithLabelValues(generationOutcome(err)).Inc()
		return res, err
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("generate circuits: mission %d: %w", missionID, ctx.Err())
	case r := <-ch:
		if r.Shared {
			slog.DebugContext(ctx, "circuit generation shared", "req_id", obs.RequestID(ctx), "mission_id", missionID)
		}
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*GenerationResult), nil
	}
}

func (g *CircuitGenerator) generate(ctx context.Context, missionID int64) (_ *GenerationResult, err error) {
	defer obs.Time(ctx, "circuits.Generate")(&err)

	if g.Store == nil || g.Planner == nil {
		return nil, errors.New("generate circuits: generator is not configured")
	}

	if _, err := g.Store.GetMission(ctx, missionID); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, fmt.Errorf("generate circuits: mission %d: %w", missionID, ErrMissionNotFound)
		}
		return nil, fmt.Errorf("generate circuits: %w", err)
	}

	tasks, err := g.Store.ListMissionTasks(ctx, missionID)
	if err != nil {
		return nil, fmt.Errorf("generate circuits: %w", err)
	}
	if len(tasks) == 0 {
		// Circuits of a mission without tasks would point at removed work.
		if err := g.Store.DeleteCircuits(ctx, missionID); err != nil && !errors.Is(err, ports.ErrNotFound) {
			return nil, fmt.Errorf("generate circuits: mission %d: %w", missionID, err)
		}
		return nil, fmt.Errorf("generate circuits: mission %d: %w", missionID, ErrNoTasks)
	}

	stops, err := domain.StopsFromTasks(tasks)
	if err != nil {
		return nil, fmt.Errorf("generate circuits: mission %d: %w", missionID, err)
	}

	start, designated, err := domain.FirstStopIndex(stops)
	if err != nil {
		return nil, fmt.Errorf("generate circuits: mission %d: %w", missionID, err)
	}

	planned, err := g.Planner.Plan(ctx, stops, start)
	if err != nil {
		return nil, fmt.Errorf("generate circuits: mission %d: %w", missionID, err)
	}

	plan := &domain.CircuitPlan{
		MissionID:     missionID,
		FirstTaskID:   stops[start].TaskID,
		MarkFirstTask: designated,
		Circuit: domain.Circuit{
			MissionID:       missionID,
			DepartureDate:   g.now(),
			DepartureSiteID: planned.DepartureSiteID,
			ArrivalSiteID:   planned.ArrivalSiteID,
			Segments:        planned.Segments,
		},
	}

	saved, err := g.Store.ReplaceCircuits(ctx, plan)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, fmt.Errorf("generate circuits: mission %d: %w", missionID, ErrMissionNotFound)
		}
		return nil, fmt.Errorf("generate circuits: mission %d: %w", missionID, err)
	}

	slog.InfoContext(ctx, "circuit generated",
		"req_id", obs.RequestID(ctx),
		"mission_id", missionID,
		"circuit_id", saved.CircuitID,
		"stops", len(stops),
		"segments", len(saved.Segments),
		"total_km", saved.TotalDistanceKm(),
		"first_task_id", plan.FirstTaskID,
		"first_stop_designated", designated,
	)

	return &GenerationResult{
		Circuit:             saved,
		Order:               planned.Order,
		FirstStopDesignated: designated,
		FirstTaskID:         plan.FirstTaskID,
	}, nil
}

// ListCircuits returns the mission's stored circuits, newest first.
func (g *CircuitGenerator) ListCircuits(ctx context.Context, missionID int64) ([]*domain.Circuit, error) {
	if err := g.requireMission(ctx, missionID); err != nil {
		return nil, fmt.Errorf("list circuits: %w", err)
	}

	circuits, err := g.Store.ListCircuits(ctx, missionID)
	if err != nil {
		return nil, fmt.Errorf("list circuits: %w", err)
	}
	return circuits, nil
}

// ListTasks returns the mission's tasks with their sites.
func (g *CircuitGenerator) ListTasks(ctx context.Context, missionID int64) ([]*domain.Task, error) {
	if err := g.requireMission(ctx, missionID); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	tasks, err := g.Store.ListMissionTasks(ctx, missionID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (g *CircuitGenerator) requireMission(ctx context.Context, missionID int64) error {
	if _, err := g.Store.GetMission(ctx, missionID); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return fmt.Errorf("mission %d: %w", missionID, ErrMissionNotFound)
		}
		return err
	}
	return nil
}

func (g *CircuitGenerator) timeout() time.Duration {
	if g.Timeout <= 0 {
		return defaultGenerationTimeout
	}
	return g.Timeout
}

func (g *CircuitGenerator) now() time.Time {
	if g.Clock == nil {
		return time.Now().UTC()
	}
	return g.Clock().UTC()
}

func generationOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMissionNotFound):
		return "mission_not_found"
	case errors.Is(err, ErrNoTasks):
		return "no_tasks"
	case errors.Is(err, ErrMatrixUnavailable):
		return "matrix_unavailable"
	default:
		return "error"
	}
}
